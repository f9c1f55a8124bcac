package service

import (
	"context"
	"time"

	"github.com/iyhunko/apm-demo-service/internal/metrics"
	"github.com/iyhunko/apm-demo-service/internal/model"
	"github.com/iyhunko/apm-demo-service/internal/repository"
)

// SlowQueryMinPrice is the price floor of the slow products query.
const SlowQueryMinPrice = "10.0"

type ProductService struct {
	repo      repository.ProductRepository
	slowDelay time.Duration
}

func NewProductService(repo repository.ProductRepository, slowDelay time.Duration) *ProductService {
	return &ProductService{
		repo:      repo,
		slowDelay: slowDelay,
	}
}

// ListProducts returns the whole catalog, newest first.
func (ps *ProductService) ListProducts(ctx context.Context) ([]*model.Product, error) {
	products, err := ps.repo.List(ctx, *repository.NewQuery())
	if err != nil {
		return nil, err
	}

	metrics.ProductsServed.Add(float64(len(products)))
	return products, nil
}

// CountProductsSlowly waits slowDelay inside the database, then counts the
// products priced above SlowQueryMinPrice.
func (ps *ProductService) CountProductsSlowly(ctx context.Context) (int, error) {
	query := repository.NewQuery().With(repository.MinPriceField, SlowQueryMinPrice)

	products, err := ps.repo.ListAfterDelay(ctx, ps.slowDelay, *query)
	if err != nil {
		return 0, err
	}

	metrics.ProductsServed.Add(float64(len(products)))
	return len(products), nil
}
