package cart

import (
	"context"
	"errors"

	"github.com/akarpov/go_shop/internal/domain"
)

var ErrItemNotFound = errors.New("item not found in cart")

// Store keeps one cart per user. An absent cart reads as empty, so callers
// never need to distinguish "no cart yet" from "cart with no items".
type Store interface {
	Get(ctx context.Context, userID string) ([]domain.CartItem, error)
	AddItem(ctx context.Context, userID string, item domain.CartItem) error
	UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error
	RemoveItem(ctx context.Context, userID, productID string) error
	Clear(ctx context.Context, userID string) error
}
