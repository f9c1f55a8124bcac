//go:build integration

package integration

import (
	"context"
	"database/sql"
	"log"
	"net"
	"testing"
	"time"

	"github.com/iyhunko/apm-demo-service/internal/config"
	reposql "github.com/iyhunko/apm-demo-service/internal/repository/sql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
)

// TestDB holds the test database connection and cleanup function
type TestDB struct {
	DB       *sql.DB
	Config   config.DB
	Pool     *dockertest.Pool
	Resource *dockertest.Resource
}

// SetupTestDB starts a PostgreSQL container using dockertest and opens a pool
// with the given driver. The schema is not migrated; tests decide when to do that.
func SetupTestDB(t *testing.T, driverName string) *TestDB {
	t.Helper()

	// Create dockertest pool
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	// Set max wait time for Docker operations
	pool.MaxWait = 120 * time.Second

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16",
		Env: []string{
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_USER=demo",
			"POSTGRES_DB=demo",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("Could not start resource: %s", err)
	}

	// Set container to expire after 2 minutes to avoid orphaned containers
	if err := resource.Expire(120); err != nil {
		t.Fatalf("Could not set expiration: %s", err)
	}

	host, port, err := net.SplitHostPort(resource.GetHostPort("5432/tcp"))
	if err != nil {
		t.Fatalf("Could not parse container address: %s", err)
	}

	dbConf := config.DB{
		Driver:          driverName,
		Host:            host,
		Port:            port,
		User:            "demo",
		Password:        "secret",
		Name:            "demo",
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		AcquireTimeout:  5 * time.Second,
		SlowQueryDelay:  50 * time.Millisecond,
	}
	log.Println("Connecting to database on host: ", host, port)

	db, err := reposql.OpenDB(dbConf)
	if err != nil {
		t.Fatalf("Could not open database: %s", err)
	}

	// Wait for database to be ready
	if err = pool.Retry(func() error {
		return db.PingContext(context.Background())
	}); err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	return &TestDB{
		DB:       db,
		Config:   dbConf,
		Pool:     pool,
		Resource: resource,
	}
}

// Cleanup closes the database connection and purges the Docker container
func (tdb *TestDB) Cleanup(t *testing.T) {
	t.Helper()

	if tdb.DB != nil {
		if err := tdb.DB.Close(); err != nil {
			t.Errorf("Could not close database: %s", err)
		}
	}

	if tdb.Pool != nil && tdb.Resource != nil {
		if err := tdb.Pool.Purge(tdb.Resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	}
}

// TruncateProducts empties the catalog and resets its id sequence.
func (tdb *TestDB) TruncateProducts(t *testing.T) {
	t.Helper()

	if _, err := tdb.DB.ExecContext(context.Background(), "TRUNCATE TABLE products RESTART IDENTITY"); err != nil {
		t.Fatalf("Could not truncate table products: %s", err)
	}
}

// CountProducts reads the row count directly.
func (tdb *TestDB) CountProducts(t *testing.T) int {
	t.Helper()

	var count int
	if err := tdb.DB.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM products").Scan(&count); err != nil {
		t.Fatalf("Could not count products: %s", err)
	}
	return count
}
