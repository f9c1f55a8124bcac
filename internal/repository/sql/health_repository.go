package sql

import (
	"context"
	"database/sql"
	"time"
)

// HealthRepository runs the liveness probe on its own connection.
type HealthRepository struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// NewHealthRepository creates a new HealthRepository instance.
func NewHealthRepository(db *sql.DB, acquireTimeout time.Duration) *HealthRepository {
	return &HealthRepository{db: db, acquireTimeout: acquireTimeout}
}

// SelectOne acquires a connection, runs SELECT 1 and releases the connection.
func (r *HealthRepository) SelectOne(ctx context.Context) (err error) {
	query := `SELECT 1`

	ctx, span := startSpan(ctx, "db.health", query)
	defer func() { endSpan(span, err) }()

	conn, err := Acquire(ctx, r.db, r.acquireTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	var one int
	if err := conn.QueryRowContext(ctx, query).Scan(&one); err != nil {
		return classify("select 1", err)
	}
	return nil
}
