package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/akarpov/go_shop/internal/domain"
	"github.com/akarpov/go_shop/internal/orderstore"
	"github.com/google/uuid"
)

// ListOrders returns the user's order history, newest first.
func (s *Service) ListOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder loads a single order, enforcing ownership unless admin is set.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID, userID string, admin bool) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderstore.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if !admin && order.UserID != userID {
		return nil, ErrOrderForbidden
	}
	return order, nil
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalOrders   int64 `json:"total_orders"`
	PendingOrders int64 `json:"pending_orders"`
	PaidOrders    int64 `json:"paid_orders"`
	TotalProducts int64 `json:"total_products"`
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	total, err := s.orders.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	pending, err := s.orders.CountByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}
	paid, err := s.orders.CountByStatus(ctx, domain.OrderStatusPaid)
	if err != nil {
		return nil, fmt.Errorf("failed to count paid orders: %w", err)
	}
	products, err := s.catalog.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	return &Stats{
		TotalOrders:   total,
		PendingOrders: pending,
		PaidOrders:    paid,
		TotalProducts: products,
	}, nil
}
