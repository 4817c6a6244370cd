package cart

import (
	"context"
	"sync"

	"github.com/akarpov/go_shop/internal/domain"
)

// MemoryStore implements Store with in-memory storage. Used when no redis
// address is configured and in tests.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string][]domain.CartItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		carts: make(map[string][]domain.CartItem),
	}
}

func (s *MemoryStore) Get(_ context.Context, userID string) ([]domain.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.carts[userID]
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryStore) AddItem(_ context.Context, userID string, item domain.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			return nil
		}
	}
	s.carts[userID] = append(items, item)
	return nil
}

func (s *MemoryStore) UpdateQuantity(_ context.Context, userID, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			s.carts[userID] = append(items[:i], items[i+1:]...)
		} else {
			items[i].Quantity = quantity
		}
		return nil
	}
	return ErrItemNotFound
}

func (s *MemoryStore) RemoveItem(_ context.Context, userID, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i := range items {
		if items[i].ProductID == productID {
			s.carts[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return ErrItemNotFound
}

func (s *MemoryStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, userID)
	return nil
}
