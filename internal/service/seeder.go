package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iyhunko/apm-demo-service/internal/model"
	"github.com/iyhunko/apm-demo-service/internal/repository"
	"github.com/shopspring/decimal"
)

// DefaultCatalog is inserted into an empty products table.
var DefaultCatalog = []model.Product{
	{Name: "Red Collar", Category: "Pet Accessories", Price: decimal.RequireFromString("19.99")},
	{Name: "Blue Leash", Category: "Pet Accessories", Price: decimal.RequireFromString("24.99")},
	{Name: "Dog Bed XL", Category: "Pet Furniture", Price: decimal.RequireFromString("89.99")},
	{Name: "Cat Tower", Category: "Pet Furniture", Price: decimal.RequireFromString("129.99")},
	{Name: "Fish Food Premium", Category: "Pet Food", Price: decimal.RequireFromString("9.99")},
	{Name: "Bird Seed Mix", Category: "Pet Food", Price: decimal.RequireFromString("14.49")},
}

// SeedResult reports what Seed did.
type SeedResult struct {
	Inserted int
	Existing int
}

type Seeder struct {
	repo    repository.ProductRepository
	catalog []model.Product
}

func NewSeeder(repo repository.ProductRepository) *Seeder {
	return &Seeder{
		repo:    repo,
		catalog: DefaultCatalog,
	}
}

// Seed inserts the catalog only when the table is empty. Count and inserts
// share one transaction, so a failed seed leaves the table empty.
func (s *Seeder) Seed(ctx context.Context) (SeedResult, error) {
	var result SeedResult

	err := s.repo.WithinTransaction(ctx, func(repo repository.ProductRepository) error {
		count, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			result.Existing = count
			return nil
		}

		for i := range s.catalog {
			product := s.catalog[i]
			if _, err := repo.Create(ctx, &product); err != nil {
				return fmt.Errorf("failed to seed %q: %w", product.Name, err)
			}
			result.Inserted++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}

	if result.Inserted > 0 {
		slog.Info("Inserted sample products", slog.Int("count", result.Inserted))
	} else {
		slog.Info("Products table already populated", slog.Int("count", result.Existing))
	}
	return result, nil
}

// InitDatabase applies the schema and seeds the catalog.
func InitDatabase(ctx context.Context, migrate func() error, seeder *Seeder) (SeedResult, error) {
	if err := migrate(); err != nil {
		return SeedResult{}, err
	}
	return seeder.Seed(ctx)
}
