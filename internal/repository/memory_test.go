package repository

import (
	"context"
	"math"
	"testing"

	"inventory-api/internal/database"
	"inventory-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryStore_WritesVisibleAfterCommit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	writer, err := store.OpenSession(ctx)
	require.NoError(t, err)
	defer writer.Close()

	product := &domain.Product{Name: "Laptop", Price: 999.99, Quantity: 10}
	require.NoError(t, writer.Products().Create(ctx, product))
	assert.Equal(t, int64(1), product.ID)

	reader, err := store.OpenSession(ctx)
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.Products().FindByID(ctx, product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, writer.Commit())

	found, err := reader.Products().FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product, found)
}

func TestMemoryStore_CloseDiscardsWrites(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session, err := store.OpenSession(ctx)
	require.NoError(t, err)
	require.NoError(t, session.Products().Create(ctx, &domain.Product{Name: "Laptop"}))
	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	_, err = session.Products().FindByID(ctx, 1)
	assert.ErrorIs(t, err, database.ErrSessionClosed)

	next, err := store.OpenSession(ctx)
	require.NoError(t, err)
	defer next.Close()

	count, err := next.Products().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryStore_UniqueNames(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	session, err := store.OpenSession(ctx)
	require.NoError(t, err)
	defer session.Close()

	laptop := &domain.Product{Name: "Laptop"}
	phone := &domain.Product{Name: "Smartphone"}
	require.NoError(t, session.Products().Create(ctx, laptop))
	require.NoError(t, session.Products().Create(ctx, phone))

	assert.ErrorIs(t, session.Products().Create(ctx, &domain.Product{Name: "Laptop"}), ErrProductAlreadyExists)

	phone.Name = "Laptop"
	assert.ErrorIs(t, session.Products().Update(ctx, phone), ErrProductAlreadyExists)

	laptop.Price = 10
	assert.NoError(t, session.Products().Update(ctx, laptop))
}

func TestMemoryStore_ListMatchesPostgresSemantics(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := Seed(ctx, store, zap.NewNop())
	require.NoError(t, err)

	session, err := store.OpenSession(ctx)
	require.NoError(t, err)
	defer session.Close()

	products, err := session.Products().List(ctx, ListParams{Search: "PHONE", Limit: 10})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Smartphone", products[0].Name)
	assert.Equal(t, "Headphones", products[1].Name)

	products, err = session.Products().List(ctx, ListParams{Offset: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, int64(3), products[0].ID)
	assert.Equal(t, int64(4), products[1].ID)

	products, err = session.Products().List(ctx, ListParams{Offset: 8, Limit: 2})
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)

	products, err = session.Products().List(ctx, ListParams{Offset: 1, Limit: math.MaxInt})
	require.NoError(t, err)
	assert.Len(t, products, 3)

	products, err = session.Products().List(ctx, ListParams{Offset: math.MaxInt, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestMemoryStore_ReturnedProductsAreCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := Seed(ctx, store, zap.NewNop())
	require.NoError(t, err)

	session, err := store.OpenSession(ctx)
	require.NoError(t, err)
	defer session.Close()

	found, err := session.Products().FindByID(ctx, 1)
	require.NoError(t, err)
	*found.Description = "mutated"

	again, err := session.Products().FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "A high performance laptop", *again.Description)
}

func TestMemoryStore_Health(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := Seed(ctx, store, zap.NewNop())
	require.NoError(t, err)

	health := store.Health(ctx)
	assert.Equal(t, "up", health["status"])
	assert.Equal(t, "4", health["products"])
}
