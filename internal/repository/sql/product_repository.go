package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iyhunko/apm-demo-service/internal/model"
	"github.com/iyhunko/apm-demo-service/internal/repository"
)

const productColumns = "id, name, category, price, created_at"

// ProductRepository implements repository.ProductRepository on Postgres.
// Outside a transaction every call acquires its own connection and releases
// it before returning.
type ProductRepository struct {
	db             *sql.DB
	txn            *sql.Tx
	acquireTimeout time.Duration
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB, acquireTimeout time.Duration) *ProductRepository {
	return &ProductRepository{db: db, acquireTimeout: acquireTimeout}
}

// withExecutor runs fn on the active transaction, or on a freshly acquired connection.
func (r *ProductRepository) withExecutor(ctx context.Context, fn func(executor dbExecutor) error) error {
	if r.txn != nil {
		return fn(r.txn)
	}

	conn, err := Acquire(ctx, r.db, r.acquireTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(conn)
}

// WithinTransaction executes fn within a database transaction on a single connection.
func (r *ProductRepository) WithinTransaction(ctx context.Context, fn func(repo repository.ProductRepository) error) error {
	conn, err := Acquire(ctx, r.db, r.acquireTimeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin transaction", err)
	}

	txRepo := &ProductRepository{
		db:             r.db,
		txn:            tx,
		acquireTimeout: r.acquireTimeout,
	}

	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("failed to rollback transaction: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return classify("commit transaction", err)
	}

	return nil
}

// Create inserts a product and fills in the generated id and created_at.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	query := `INSERT INTO products (name, category, price) VALUES ($1, $2, $3) RETURNING id, created_at`

	ctx, span := startSpan(ctx, "products.insert", query)
	err := r.withExecutor(ctx, func(executor dbExecutor) error {
		stmt, err := executor.PrepareContext(ctx, query)
		if err != nil {
			return classify("prepare insert statement", err)
		}
		defer stmt.Close()

		err = stmt.QueryRowContext(ctx, product.Name, product.Category, product.Price).Scan(&product.ID, &product.CreatedAt)
		if err != nil {
			return classify("insert product", err)
		}
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	return product, nil
}

// List returns products matching query, newest first.
func (r *ProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	statement, args := buildSelect(query)

	ctx, span := startSpan(ctx, "products.select", statement)
	var products []*model.Product
	err := r.withExecutor(ctx, func(executor dbExecutor) error {
		var err error
		products, err = selectProducts(ctx, executor, statement, args)
		return err
	})
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// ListAfterDelay keeps the connection busy in pg_sleep for delay, then runs
// the select on that same connection. The sleep's result is discarded.
func (r *ProductRepository) ListAfterDelay(ctx context.Context, delay time.Duration, query repository.Query) ([]*model.Product, error) {
	statement, args := buildSelect(query)

	ctx, span := startSpan(ctx, "products.select_slow", "SELECT pg_sleep($1); "+statement)
	var products []*model.Product
	err := r.withExecutor(ctx, func(executor dbExecutor) error {
		if _, err := executor.ExecContext(ctx, "SELECT pg_sleep($1)", delay.Seconds()); err != nil {
			return classify("sleep before query", err)
		}

		var err error
		products, err = selectProducts(ctx, executor, statement, args)
		return err
	})
	endSpan(span, err)
	if err != nil {
		return nil, err
	}

	return products, nil
}

// Count returns the number of rows in the products table.
func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM products`

	ctx, span := startSpan(ctx, "products.count", query)
	var count int
	err := r.withExecutor(ctx, func(executor dbExecutor) error {
		if err := executor.QueryRowContext(ctx, query).Scan(&count); err != nil {
			return classify("count products", err)
		}
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func buildSelect(query repository.Query) (string, []interface{}) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + productColumns + " FROM products WHERE 1=1")

	var args []interface{}
	if minPrice, ok := query.Values[repository.MinPriceField]; ok {
		args = append(args, minPrice)
		queryBuilder.WriteString(fmt.Sprintf(" AND price > $%d", len(args)))
	}

	// id breaks ties between rows seeded in the same transaction
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	return queryBuilder.String(), args
}

func selectProducts(ctx context.Context, executor dbExecutor, statement string, args []interface{}) ([]*model.Product, error) {
	stmt, err := executor.PrepareContext(ctx, statement)
	if err != nil {
		return nil, classify("prepare select statement", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, classify("query products", err)
	}
	defer rows.Close()

	products := []*model.Product{}
	for rows.Next() {
		var product model.Product
		err := rows.Scan(&product.ID, &product.Name, &product.Category, &product.Price, &product.CreatedAt)
		if err != nil {
			return nil, classify("scan product", err)
		}
		products = append(products, &product)
	}

	if err = rows.Err(); err != nil {
		return nil, classify("iterate rows", err)
	}

	return products, nil
}
