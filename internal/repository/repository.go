package repository

import (
	"context"
	"time"

	"github.com/iyhunko/apm-demo-service/internal/model"
)

// ProductRepository defines read and seed access to the products catalog.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	List(ctx context.Context, query Query) ([]*model.Product, error)
	// ListAfterDelay sleeps on the database side for delay, then runs the
	// filtered select on the same connection.
	ListAfterDelay(ctx context.Context, delay time.Duration, query Query) ([]*model.Product, error)
	Count(ctx context.Context) (int, error)
	WithinTransaction(ctx context.Context, fn func(repo ProductRepository) error) error
}

// HealthRepository runs the trivial liveness query.
type HealthRepository interface {
	SelectOne(ctx context.Context) error
}

// ConnectionError reports that no database session could be used:
// unreachable host, rejected credentials, acquisition timeout or a dropped connection.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// QueryError reports a failure while executing a statement or reading its rows.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
