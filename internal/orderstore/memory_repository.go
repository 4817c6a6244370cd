package orderstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/akarpov/go_shop/internal/domain"
	"github.com/google/uuid"
)

// MemoryRepository implements OrderRepository with in-memory storage. Used
// when no postgres credentials are configured and in tests. The mutex gives
// ConditionalTransition the same at-most-one-winner guarantee the SQL
// implementation gets from its conditional UPDATE.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders: make(map[uuid.UUID]*domain.Order),
	}
}

func (r *MemoryRepository) Create(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *order
	now := time.Now()
	copied.CreatedAt = now
	copied.UpdatedAt = now
	copied.Items = append([]domain.CartItem(nil), order.Items...)
	r.orders[order.ID] = &copied
	return nil
}

func (r *MemoryRepository) get(id uuid.UUID) (*domain.Order, bool) {
	order, exists := r.orders[id]
	if !exists {
		return nil, false
	}
	copied := *order
	copied.Items = append([]domain.CartItem(nil), order.Items...)
	return &copied, true
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, exists := r.get(id)
	if !exists {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (r *MemoryRepository) GetByPaymentReference(_ context.Context, ref string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, order := range r.orders {
		if order.PaymentReference != "" && order.PaymentReference == ref {
			copied, _ := r.get(id)
			return copied, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []*domain.Order
	for id, order := range r.orders {
		if order.UserID == userID {
			copied, _ := r.get(id)
			orders = append(orders, copied)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (r *MemoryRepository) CountAll(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.orders)), nil
}

func (r *MemoryRepository) CountByStatus(_ context.Context, status domain.OrderStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, order := range r.orders {
		if order.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRepository) SetCheckoutSession(_ context.Context, id uuid.UUID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[id]
	if !exists {
		return ErrOrderNotFound
	}
	order.CheckoutSessionID = sessionID
	order.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) ConditionalTransition(_ context.Context, id uuid.UUID, expected, next domain.OrderStatus, fields TransitionFields) (bool, error) {
	if !domain.CanTransitionTo(expected, next) {
		return false, fmt.Errorf("illegal transition %s -> %s", expected, next)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order, exists := r.orders[id]
	if !exists {
		return false, ErrOrderNotFound
	}
	if order.Status != expected {
		return false, nil
	}

	order.Status = next
	order.PaymentStatus = fields.PaymentStatus
	if fields.PaymentReference != "" {
		order.PaymentReference = fields.PaymentReference
	}
	order.UpdatedAt = time.Now()
	return true, nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
