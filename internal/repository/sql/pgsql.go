package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/iyhunko/apm-demo-service/internal/config"
	"github.com/iyhunko/apm-demo-service/internal/repository"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const tracerName = "github.com/iyhunko/apm-demo-service/internal/repository/sql"

// StartDB opens the pool and checks reachability once. An unreachable
// database is logged, not returned: endpoints that do not touch the
// database keep serving and the others report the failure per request.
func StartDB(ctx context.Context, dbConf config.DB) (*sql.DB, error) {
	db, err := OpenDB(dbConf)
	if err != nil {
		slog.Error("failed to initialize DB connection", slog.Any("err", err))
		return nil, fmt.Errorf("failed to initialize DB connection: %w", err)
	}

	conn, err := Acquire(ctx, db, dbConf.AcquireTimeout)
	if err != nil {
		slog.Warn("database not reachable at startup", slog.String("host", dbConf.Host), slog.Any("err", err))
		return db, nil
	}
	_ = conn.Close()
	slog.Info("DB connection done", slog.String("host", dbConf.Host), slog.String("database", dbConf.Name))
	return db, nil
}

// OpenDB returns a bounded connection pool for the configured driver.
// No connection is made until the first Acquire.
func OpenDB(conf config.DB) (*sql.DB, error) {
	db, err := sql.Open(conf.Driver, conf.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(conf.MaxOpenConns)
	db.SetMaxIdleConns(conf.MaxIdleConns)
	db.SetConnMaxLifetime(conf.ConnMaxLifetime)

	return db, nil
}

// Acquire takes one connection from the pool, waiting at most timeout.
// The caller releases it with Close.
func Acquire(ctx context.Context, db *sql.DB, timeout time.Duration) (*sql.Conn, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := db.Conn(acquireCtx)
	if err != nil {
		return nil, &repository.ConnectionError{Op: "acquire connection", Err: err}
	}
	return conn, nil
}

// RunMigrations applies the embedded schema migrations on one connection
// taken from db. The connection goes back to the pool when it returns.
func RunMigrations(ctx context.Context, db *sql.DB, acquireTimeout time.Duration) error {
	conn, err := Acquire(ctx, db, acquireTimeout)
	if err != nil {
		return err
	}
	// Closing the migrate driver would release conn as well; closing conn
	// directly leaves db open for the caller.
	defer conn.Close()

	dbDriver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		return classify("create migration driver", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return classify("run migrations", err)
	}

	return nil
}

// classify maps a driver error onto the repository error kinds.
// SQLSTATE classes 08 (connection exception), 28 (invalid authorization)
// and 3D (unknown database) count as connection failures.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var (
		connErr  *repository.ConnectionError
		queryErr *repository.QueryError
		dialErr  *pgconn.ConnectError
		pgErr    *pgconn.PgError
		pqErr    *pq.Error
		netErr   net.Error
	)
	switch {
	case errors.As(err, &connErr), errors.As(err, &queryErr):
		return err
	case errors.As(err, &dialErr):
		return &repository.ConnectionError{Op: op, Err: err}
	case errors.As(err, &pgErr):
		if isConnectionClass(pgErr.Code) {
			return &repository.ConnectionError{Op: op, Err: err}
		}
		return &repository.QueryError{Op: op, Err: err}
	case errors.As(err, &pqErr):
		if isConnectionClass(string(pqErr.Code)) {
			return &repository.ConnectionError{Op: op, Err: err}
		}
		return &repository.QueryError{Op: op, Err: err}
	case errors.As(err, &netErr),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded):
		return &repository.ConnectionError{Op: op, Err: err}
	}
	return &repository.QueryError{Op: op, Err: err}
}

func isConnectionClass(sqlState string) bool {
	if len(sqlState) < 2 {
		return false
	}
	switch sqlState[:2] {
	case "08", "28", "3D":
		return true
	}
	return false
}

func startSpan(ctx context.Context, name, statement string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.statement", statement),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
