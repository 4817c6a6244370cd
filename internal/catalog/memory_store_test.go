package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarpov/go_shop/internal/domain"
)

func newProduct(name, price string, stock int) *domain.Product {
	return &domain.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
}

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateProduct(ctx, newProduct("Mug", "10.00", 5))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	product, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Mug", product.Name)
	assert.Equal(t, 5, product.Stock)
	assert.False(t, product.CreatedAt.IsZero())
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.GetProduct(context.Background(), "product-999")

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateProduct(ctx, newProduct("Mug", "10.00", 5))
	require.NoError(t, err)

	updated := newProduct("Big Mug", "12.00", 3)
	updated.ID = id
	require.NoError(t, store.UpdateProduct(ctx, updated))

	product, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Big Mug", product.Name)
	assert.Equal(t, "12.00", product.Price.StringFixed(2))
}

func TestMemoryStore_UpdateMissing(t *testing.T) {
	store := NewMemoryStore()

	missing := newProduct("Ghost", "1.00", 0)
	missing.ID = "product-999"
	err := store.UpdateProduct(context.Background(), missing)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateProduct(ctx, newProduct("Mug", "10.00", 5))
	require.NoError(t, err)

	require.NoError(t, store.DeleteProduct(ctx, id))

	_, err = store.GetProduct(ctx, id)
	assert.ErrorIs(t, err, ErrProductNotFound)

	assert.ErrorIs(t, store.DeleteProduct(ctx, id), ErrProductNotFound)
}

func TestMemoryStore_DecrementStock(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateProduct(ctx, newProduct("Mug", "10.00", 5))
	require.NoError(t, err)

	require.NoError(t, store.DecrementStock(ctx, id, 2))

	product, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, product.Stock)
}

func TestMemoryStore_DecrementStockClampsAtZero(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	id, err := store.CreateProduct(ctx, newProduct("Mug", "10.00", 1))
	require.NoError(t, err)

	// Oversold: the count floors at zero, it never goes negative.
	require.NoError(t, store.DecrementStock(ctx, id, 5))

	product, err := store.GetProduct(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, product.Stock)
}

func TestMemoryStore_DecrementStockMissing(t *testing.T) {
	store := NewMemoryStore()

	err := store.DecrementStock(context.Background(), "product-999", 1)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_ListAndCount(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.CreateProduct(ctx, newProduct("Mug", "10.00", 5))
	require.NoError(t, err)
	_, err = store.CreateProduct(ctx, newProduct("Poster", "5.00", 3))
	require.NoError(t, err)

	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	count, err := store.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
