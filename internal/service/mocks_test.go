package service_test

import (
	"context"
	"time"

	"github.com/iyhunko/apm-demo-service/internal/model"
	"github.com/iyhunko/apm-demo-service/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repository.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	args := m.Called(ctx, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, query repository.Query) ([]*model.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockProductRepository) ListAfterDelay(ctx context.Context, delay time.Duration, query repository.Query) ([]*model.Product, error) {
	args := m.Called(ctx, delay, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// WithinTransaction runs fn against the same mock unless a begin error is configured.
func (m *MockProductRepository) WithinTransaction(ctx context.Context, fn func(repo repository.ProductRepository) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

type MockHealthRepository struct {
	mock.Mock
}

func (m *MockHealthRepository) SelectOne(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishHealthEvent(ctx context.Context, event *model.HealthEvent) error {
	return m.Called(ctx, event).Error(0)
}
