package repository

import (
	"context"
	"fmt"

	"inventory-api/internal/domain"

	"go.uber.org/zap"
)

func describe(s string) *string { return &s }

// SampleProducts is the catalogue inserted into an empty database when seeding is enabled
var SampleProducts = []domain.Product{
	{Name: "Laptop", Description: describe("A high performance laptop"), Price: 999.99, Quantity: 10},
	{Name: "Smartphone", Description: describe("A latest model smartphone"), Price: 699.99, Quantity: 25},
	{Name: "Headphones", Description: describe("Noise cancelling headphones"), Price: 199.99, Quantity: 15},
	{Name: "Monitor", Description: describe("4K UHD Monitor"), Price: 399.99, Quantity: 8},
}

// Seed inserts SampleProducts when the products table is empty.
// It returns the number of inserted rows.
func Seed(ctx context.Context, sessions SessionFactory, logger *zap.Logger) (int, error) {
	session, err := sessions.OpenSession(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to open session: %w", err)
	}
	defer session.Close()

	count, err := session.Products().Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logger.Info("Skipping seed, products already present", zap.Int("count", count))
		return 0, nil
	}

	for _, sample := range SampleProducts {
		product := sample
		if err := session.Products().Create(ctx, &product); err != nil {
			return 0, fmt.Errorf("failed to seed product %q: %w", sample.Name, err)
		}
	}

	if err := session.Commit(); err != nil {
		return 0, err
	}

	logger.Info("Seeded sample products", zap.Int("count", len(SampleProducts)))
	return len(SampleProducts), nil
}
