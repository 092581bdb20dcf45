package repository

import (
	"context"
	"math"
	"testing"

	"inventory-api/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: creating a product and reading it back preserves every attribute
func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	requirePostgres(t)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, description string, price float64, quantity int) bool {
			ctx := context.Background()

			session, err := testSessions.OpenSession(ctx)
			if err != nil {
				t.Logf("FAIL: Failed to open session: %v", err)
				return false
			}
			defer session.Close()

			product := &domain.Product{
				Name:        name + " " + uuid.New().String(),
				Description: &description,
				Price:       price,
				Quantity:    quantity,
			}

			if err := session.Products().Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}
			if err := session.Commit(); err != nil {
				t.Logf("FAIL: Failed to commit: %v", err)
				return false
			}

			retrieved, err := session.Products().FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Name != product.Name {
				t.Logf("FAIL: Name mismatch. Expected %s, got %s", product.Name, retrieved.Name)
				return false
			}

			if retrieved.Description == nil || *retrieved.Description != description {
				t.Logf("FAIL: Description mismatch. Expected %s, got %v", description, retrieved.Description)
				return false
			}

			if math.Abs(retrieved.Price-product.Price) > 1e-9 {
				t.Logf("FAIL: Price mismatch. Expected %f, got %f", product.Price, retrieved.Price)
				return false
			}

			if retrieved.Quantity != product.Quantity {
				t.Logf("FAIL: Quantity mismatch. Expected %d, got %d", product.Quantity, retrieved.Quantity)
				return false
			}

			return true
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`),
		gen.RegexMatch(`[A-Za-z0-9 .,!?]{0,200}`),
		gen.Float64Range(0, 9999.99),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: ids handed out by storage are never reused
func TestProperty_CreatedIDsAreFresh(t *testing.T) {
	requirePostgres(t)

	properties := gopter.NewProperties(nil)
	seen := map[int64]bool{}

	properties.Property("every created product receives an unused id", prop.ForAll(
		func(quantity int) bool {
			ctx := context.Background()

			session, err := testSessions.OpenSession(ctx)
			if err != nil {
				return false
			}
			defer session.Close()

			product := &domain.Product{Name: "Fresh " + uuid.New().String(), Price: 1, Quantity: quantity}
			if err := session.Products().Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}
			if err := session.Commit(); err != nil {
				return false
			}

			if seen[product.ID] {
				t.Logf("FAIL: id %d handed out twice", product.ID)
				return false
			}
			seen[product.ID] = true
			return true
		},
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: a deleted product can no longer be retrieved
func TestProperty_ProductDeletionRemovesFromStore(t *testing.T) {
	requirePostgres(t)

	properties := gopter.NewProperties(nil)

	properties.Property("deleting a product makes it not retrievable", prop.ForAll(
		func(price float64) bool {
			ctx := context.Background()

			session, err := testSessions.OpenSession(ctx)
			if err != nil {
				return false
			}
			defer session.Close()

			product := &domain.Product{Name: "Doomed " + uuid.New().String(), Price: price, Quantity: 1}
			if err := session.Products().Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			if _, err := session.Products().Delete(ctx, product.ID); err != nil {
				t.Logf("FAIL: Failed to delete product: %v", err)
				return false
			}
			if err := session.Commit(); err != nil {
				return false
			}

			_, err = session.Products().FindByID(ctx, product.ID)
			if err != ErrProductNotFound {
				t.Logf("FAIL: Expected ErrProductNotFound, got %v", err)
				return false
			}

			return true
		},
		gen.Float64Range(0, 9999.99),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
