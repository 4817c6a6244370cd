package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "Pending"
	OrderStatusPaid     OrderStatus = "Paid"
	OrderStatusFailed   OrderStatus = "Failed"
	OrderStatusCanceled OrderStatus = "Canceled"
)

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed || s == OrderStatusCanceled
}

// CanTransitionTo reports whether the status change is legal.
// The only allowed transitions are Pending -> Paid|Failed|Canceled.
func CanTransitionTo(from, to OrderStatus) bool {
	return from == OrderStatusPending && to.IsTerminal()
}

// String representation (for logging)
func (s OrderStatus) String() string {
	return string(s)
}

// Order is the durable record of a checkout. Line items are price snapshots
// taken from the cart at creation time; later catalog price changes never
// affect an existing order.
type Order struct {
	ID                uuid.UUID       `json:"id"`
	UserID            string          `json:"user_id"`
	Items             []CartItem      `json:"items"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	Currency          string          `json:"currency"`
	Status            OrderStatus     `json:"status"`
	CheckoutSessionID string          `json:"checkout_session_id,omitempty"`
	PaymentReference  string          `json:"payment_reference,omitempty"`
	PaymentStatus     string          `json:"payment_status"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
