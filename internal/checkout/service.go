package checkout

import (
	"context"
	"log"
	"time"

	"github.com/akarpov/go_shop/internal/cart"
	"github.com/akarpov/go_shop/internal/catalog"
	"github.com/akarpov/go_shop/internal/domain"
	"github.com/akarpov/go_shop/internal/orderstore"
	"github.com/akarpov/go_shop/internal/payment"
	"github.com/akarpov/go_shop/internal/publisher"
)

type Config struct {
	// BaseURL is this storefront's public URL, used to build the
	// success/cancel redirect targets handed to the gateway.
	BaseURL string
	// Currency for all orders; multi-currency is out of scope.
	Currency string
	// WebhookSecret is the shared signing secret for gateway events.
	WebhookSecret string
}

// Service owns the order lifecycle: it snapshots carts into pending
// orders, hands off to the hosted gateway, and reconciles the terminal
// state from whichever completion signal arrives first.
type Service struct {
	orders  orderstore.OrderRepository
	catalog catalog.Store
	carts   cart.Store
	gateway payment.Client
	pub     publisher.Publisher
	cfg     Config
}

func NewService(orders orderstore.OrderRepository, catalog catalog.Store, carts cart.Store, gateway payment.Client, cfg Config) *Service {
	return &Service{
		orders:  orders,
		catalog: catalog,
		carts:   carts,
		gateway: gateway,
		cfg:     cfg,
	}
}

// SetPublisher enables order lifecycle events. Without one the service
// runs fine, it just publishes nothing.
func (s *Service) SetPublisher(pub publisher.Publisher) {
	s.pub = pub
}

func (s *Service) publishOrderEvent(order *domain.Order, eventType string) {
	if s.pub == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		event := publisher.OrderEvent{
			Type:        eventType,
			OrderID:     order.ID.String(),
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount.String(),
			Currency:    order.Currency,
			OccurredAt:  time.Now(),
		}
		if err := s.pub.Publish(ctx, event); err != nil {
			log.Printf("failed to publish %s event for order %s: %v", eventType, order.ID, err)
		}
	}()
}
