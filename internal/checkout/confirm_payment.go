package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/akarpov/go_shop/internal/domain"
	"github.com/akarpov/go_shop/internal/orderstore"
	"github.com/akarpov/go_shop/internal/payment"
	"github.com/akarpov/go_shop/internal/publisher"
	"github.com/google/uuid"
)

type ConfirmResult struct {
	OrderID   uuid.UUID
	Completed bool
}

// ConfirmPayment is the pull completion path, invoked when the browser
// returns from the hosted checkout. A gateway that cannot be reached, or
// that reports the payment still in flight, yields Completed == false with
// no error: the customer may simply reload the success page later.
func (s *Service) ConfirmPayment(ctx context.Context, orderID uuid.UUID, sessionID string) (*ConfirmResult, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderstore.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}

	// Already completed by the webhook path or an earlier confirmation.
	// No gateway round trip, no second stock decrement.
	if order.Status == domain.OrderStatusPaid {
		return &ConfirmResult{OrderID: orderID, Completed: true}, nil
	}

	ref := order.PaymentReference
	var gatewayStatus string

	switch {
	case sessionID != "":
		session, err := s.gateway.GetCheckoutSession(ctx, sessionID)
		if err != nil {
			log.Printf("confirm: gateway session lookup failed for order %s: %v", orderID, err)
			return &ConfirmResult{OrderID: orderID}, nil
		}
		ref = session.PaymentReference
		gatewayStatus = session.PaymentStatus
	case ref != "":
		p, err := s.gateway.GetPayment(ctx, ref)
		if err != nil {
			log.Printf("confirm: gateway payment lookup failed for order %s: %v", orderID, err)
			return &ConfirmResult{OrderID: orderID}, nil
		}
		gatewayStatus = p.Status
	default:
		// No session id on the redirect and no reference stored yet;
		// nothing to ask the gateway about.
		return &ConfirmResult{OrderID: orderID}, nil
	}

	if !payment.Succeeded(gatewayStatus) {
		return &ConfirmResult{OrderID: orderID}, nil
	}

	completed, err := s.completePaid(ctx, order, ref)
	if err != nil {
		return nil, err
	}
	return &ConfirmResult{OrderID: orderID, Completed: completed}, nil
}

// completePaid performs the single Pending -> Paid transition and, only if
// this caller won it, the paid side effects. The conditional transition is
// the sole guard against the confirmation/webhook race.
func (s *Service) completePaid(ctx context.Context, order *domain.Order, ref string) (bool, error) {
	applied, err := s.orders.ConditionalTransition(ctx, order.ID,
		domain.OrderStatusPending, domain.OrderStatusPaid,
		orderstore.TransitionFields{PaymentStatus: "succeeded", PaymentReference: ref})
	if err != nil {
		return false, fmt.Errorf("failed to mark order %s paid: %w", order.ID, err)
	}

	if applied {
		s.applyPaidSideEffects(ctx, order)
		return true, nil
	}

	// Lost the race or the order already reached a terminal state. Report
	// success only if the other path landed on Paid.
	current, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return false, fmt.Errorf("failed to re-read order %s: %w", order.ID, err)
	}
	return current.Status == domain.OrderStatusPaid, nil
}

// applyPaidSideEffects runs exactly once per order, on the caller that won
// the conditional transition. Stock decrements are clamped at zero and are
// not atomic as a set; a partial failure is logged and self-heals toward
// zero rather than un-paying a captured payment.
func (s *Service) applyPaidSideEffects(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		if err := s.catalog.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			log.Printf("failed to decrement stock for product %s on order %s: %v",
				item.ProductID, order.ID, err)
		}
	}

	if err := s.carts.Clear(ctx, order.UserID); err != nil {
		log.Printf("failed to clear cart for user %s after order %s: %v", order.UserID, order.ID, err)
	}

	s.publishOrderEvent(order, publisher.EventOrderPaid)
}
