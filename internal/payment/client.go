package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrGatewayUnavailable covers network failures, timeouts and 5xx
	// responses from the gateway. Callers treat it as retryable.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	ErrSessionNotFound = errors.New("checkout session not found")
	ErrPaymentNotFound = errors.New("payment not found")
)

// CheckoutSession is a provider-hosted payment collection flow. The
// customer is redirected to URL and pays off-system; PaymentReference is
// the durable payment id the session resolves to once a charge exists.
type CheckoutSession struct {
	ID               string
	URL              string
	PaymentReference string
	PaymentStatus    string
}

// Payment is the gateway's record of a charge attempt.
type Payment struct {
	ID     string
	Status string
}

type CreateSessionRequest struct {
	Amount     decimal.Decimal
	Currency   string
	OrderID    string
	SuccessURL string
	CancelURL  string
}

// Client is the thin wrapper over the hosted-checkout provider's API.
type Client interface {
	CreateCheckoutSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
	GetPayment(ctx context.Context, paymentReference string) (*Payment, error)
}

// Succeeded reports whether a gateway status string means the money was
// captured. Sessions report "paid", payments report "succeeded".
func Succeeded(status string) bool {
	return status == "paid" || status == "succeeded"
}
