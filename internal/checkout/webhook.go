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

// HandleWebhookEvent is the push completion path. The gateway delivers
// events at least once and possibly out of order; every branch below is
// safe to run twice for the same event. A returned error tells the HTTP
// layer to answer non-2xx so the provider retries the delivery.
func (s *Service) HandleWebhookEvent(ctx context.Context, rawPayload []byte, sigHeader string) error {
	event, err := payment.VerifyEvent(rawPayload, sigHeader, s.cfg.WebhookSecret)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			log.Printf("rejected webhook with invalid signature: %v", err)
		}
		return err
	}

	switch event.Kind {
	case payment.EventPaymentSucceeded:
		return s.handlePaymentSucceeded(ctx, event)
	case payment.EventPaymentFailed:
		return s.handlePaymentTerminal(ctx, event, domain.OrderStatusFailed, "failed", publisher.EventOrderFailed)
	case payment.EventPaymentCanceled:
		return s.handlePaymentTerminal(ctx, event, domain.OrderStatusCanceled, "canceled", publisher.EventOrderCanceled)
	default:
		log.Printf("ignoring webhook event %s of unhandled kind", event.ID)
		return nil
	}
}

// findOrderForEvent locates the order an event refers to: first by the
// stored payment reference, then by the order id echoed back in the event
// metadata. The fallback matters because the reference is only persisted
// once a completion path has resolved it, and the webhook often arrives
// first. A nil, nil return means no matching order: the event is a no-op.
func (s *Service) findOrderForEvent(ctx context.Context, event *payment.Event) (*domain.Order, error) {
	if event.PaymentReference != "" {
		order, err := s.orders.GetByPaymentReference(ctx, event.PaymentReference)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, orderstore.ErrOrderNotFound) {
			return nil, fmt.Errorf("failed to look up order by payment reference: %w", err)
		}
	}

	if event.OrderID != "" {
		orderID, err := uuid.Parse(event.OrderID)
		if err != nil {
			log.Printf("webhook event %s carries malformed order id %q", event.ID, event.OrderID)
			return nil, nil
		}
		order, err := s.orders.GetByID(ctx, orderID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, orderstore.ErrOrderNotFound) {
			return nil, fmt.Errorf("failed to look up order by id: %w", err)
		}
	}

	return nil, nil
}

func (s *Service) handlePaymentSucceeded(ctx context.Context, event *payment.Event) error {
	order, err := s.findOrderForEvent(ctx, event)
	if err != nil {
		return err
	}
	if order == nil {
		log.Printf("webhook event %s matches no order, ignoring", event.ID)
		return nil
	}

	// Duplicate delivery, or the confirmation path already won.
	if order.Status == domain.OrderStatusPaid {
		return nil
	}

	if _, err := s.completePaid(ctx, order, event.PaymentReference); err != nil {
		return err
	}
	return nil
}

func (s *Service) handlePaymentTerminal(ctx context.Context, event *payment.Event, next domain.OrderStatus, paymentStatus, eventType string) error {
	order, err := s.findOrderForEvent(ctx, event)
	if err != nil {
		return err
	}
	if order == nil {
		log.Printf("webhook event %s matches no order, ignoring", event.ID)
		return nil
	}

	applied, err := s.orders.ConditionalTransition(ctx, order.ID,
		domain.OrderStatusPending, next,
		orderstore.TransitionFields{PaymentStatus: paymentStatus, PaymentReference: event.PaymentReference})
	if err != nil {
		if errors.Is(err, orderstore.ErrOrderNotFound) {
			return nil
		}
		return fmt.Errorf("failed to mark order %s %s: %w", order.ID, next, err)
	}

	// applied == false covers both duplicate terminal events and a late
	// failure arriving after a confirmed success; Paid is never downgraded.
	if applied {
		s.publishOrderEvent(order, eventType)
	}
	return nil
}
