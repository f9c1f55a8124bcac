package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iyhunko/apm-demo-service/internal/metrics"
	"github.com/iyhunko/apm-demo-service/internal/model"
	"github.com/iyhunko/apm-demo-service/internal/repository"
	"github.com/iyhunko/apm-demo-service/internal/service"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)

	products := []*model.Product{
		{ID: 2, Name: "Blue Leash", Category: "Pet Accessories", Price: decimal.RequireFromString("24.99")},
		{ID: 1, Name: "Red Collar", Category: "Pet Accessories", Price: decimal.RequireFromString("19.99")},
	}
	mockRepo.On("List", ctx, *repository.NewQuery()).Return(products, nil)

	before := testutil.ToFloat64(metrics.ProductsServed)

	result, err := service.NewProductService(mockRepo, time.Millisecond).ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, products, result)
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.ProductsServed))

	mockRepo.AssertExpectations(t)
}

func TestListProducts_Error(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)

	connErr := &repository.ConnectionError{Op: "acquire connection", Err: errors.New("dial tcp: connection refused")}
	mockRepo.On("List", ctx, *repository.NewQuery()).Return(nil, connErr)

	result, err := service.NewProductService(mockRepo, time.Millisecond).ListProducts(ctx)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, connErr)

	mockRepo.AssertExpectations(t)
}

func TestCountProductsSlowly(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	delay := 400 * time.Millisecond

	query := repository.NewQuery().With(repository.MinPriceField, service.SlowQueryMinPrice)
	mockRepo.On("ListAfterDelay", ctx, delay, *query).Return([]*model.Product{{ID: 1}, {ID: 2}, {ID: 3}}, nil)

	count, err := service.NewProductService(mockRepo, delay).CountProductsSlowly(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	mockRepo.AssertExpectations(t)
}

func TestCountProductsSlowly_Error(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)

	queryErr := &repository.QueryError{Op: "sleep before query", Err: errors.New("statement timeout")}
	mockRepo.On("ListAfterDelay", ctx, time.Second, *repository.NewQuery().With(repository.MinPriceField, "10.0")).
		Return(nil, queryErr)

	count, err := service.NewProductService(mockRepo, time.Second).CountProductsSlowly(ctx)
	assert.Zero(t, count)
	assert.ErrorIs(t, err, queryErr)
}
