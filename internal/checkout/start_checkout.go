package checkout

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/akarpov/go_shop/internal/domain"
	"github.com/akarpov/go_shop/internal/payment"
	"github.com/google/uuid"
)

type CheckoutResult struct {
	OrderID     uuid.UUID
	RedirectURL string
}

// StartCheckout snapshots the user's cart into a pending order and asks
// the gateway for a hosted checkout session. The total is always computed
// from the snapshot, never taken from the client.
//
// If session creation fails the order stays Pending; the customer can
// retry checkout and the abandoned order is simply never completed.
func (s *Service) StartCheckout(ctx context.Context, userID string) (*CheckoutResult, error) {
	items, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	total := domain.CartTotal(items)
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}

	order := &domain.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Items:         items,
		TotalAmount:   total,
		Currency:      s.cfg.Currency,
		Status:        domain.OrderStatusPending,
		PaymentStatus: "pending",
		CreatedAt:     time.Now(),
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CreateSessionRequest{
		Amount:   total,
		Currency: s.cfg.Currency,
		OrderID:  order.ID.String(),
		// The provider substitutes the session id placeholder on redirect.
		SuccessURL: fmt.Sprintf("%s/order/success?session_id={CHECKOUT_SESSION_ID}&order_id=%s", s.cfg.BaseURL, order.ID),
		CancelURL:  fmt.Sprintf("%s/order/checkout", s.cfg.BaseURL),
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session for order %s: %w", order.ID, err)
	}

	// Best effort: the pull path can still resolve the payment through the
	// session id carried on the success redirect.
	if err := s.orders.SetCheckoutSession(ctx, order.ID, session.ID); err != nil {
		log.Printf("failed to store session id for order %s: %v", order.ID, err)
	}

	return &CheckoutResult{
		OrderID:     order.ID,
		RedirectURL: session.URL,
	}, nil
}
