package catalog

import (
	"context"
	"errors"

	"github.com/akarpov/go_shop/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// Store defines the interface for catalog storage operations
type Store interface {
	// GetProduct returns the product with the given id
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// ListProducts returns all products
	ListProducts(ctx context.Context) ([]domain.Product, error)

	// CreateProduct inserts a new product and returns its assigned id
	CreateProduct(ctx context.Context, product *domain.Product) (string, error)

	// UpdateProduct replaces the mutable fields of an existing product
	UpdateProduct(ctx context.Context, product *domain.Product) error

	// DeleteProduct removes a product from the catalog
	DeleteProduct(ctx context.Context, id string) error

	// DecrementStock reduces the product's stock by quantity, clamped at zero.
	// Oversold concurrent orders are absorbed by the clamp, never failed.
	DecrementStock(ctx context.Context, id string, quantity int) error

	// CountProducts returns the catalog size (admin dashboard)
	CountProducts(ctx context.Context) (int64, error)
}
