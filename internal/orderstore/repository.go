package orderstore

import (
	"context"
	"errors"

	"github.com/akarpov/go_shop/internal/domain"
	"github.com/google/uuid"
)

var ErrOrderNotFound = errors.New("order not found")

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// TransitionFields carries the payment fields written together with a
// status transition. PaymentReference is only written when non-empty so a
// late transition never blanks a reference resolved by the other path.
type TransitionFields struct {
	PaymentStatus    string
	PaymentReference string
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByPaymentReference(ctx context.Context, ref string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error)

	// SetCheckoutSession records the gateway session id issued for the order.
	SetCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error

	// ConditionalTransition atomically moves the order from expected to next
	// and applies fields, returning whether the write was applied. This is
	// the only coordination primitive between the confirmation path and the
	// webhook path: at most one caller observes applied == true for a given
	// Pending order, so side effects run exactly once.
	ConditionalTransition(ctx context.Context, id uuid.UUID, expected, next domain.OrderStatus, fields TransitionFields) (bool, error)

	Close() error
}
