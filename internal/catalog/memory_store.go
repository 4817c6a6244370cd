package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/akarpov/go_shop/internal/domain"
)

// MemoryStore implements Store with in-memory storage. Used when no mongo
// URI is configured and in tests.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
	nextID   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*domain.Product),
	}
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	copied := *product
	return &copied, nil
}

func (s *MemoryStore) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(s.products))
	for _, product := range s.products {
		result = append(result, *product)
	}
	return result, nil
}

func (s *MemoryStore) CreateProduct(_ context.Context, product *domain.Product) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := time.Now()

	copied := *product
	copied.ID = fmt.Sprintf("product-%d", s.nextID)
	copied.CreatedAt = now
	copied.UpdatedAt = now

	s.products[copied.ID] = &copied
	return copied.ID, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.products[product.ID]
	if !exists {
		return ErrProductNotFound
	}

	copied := *product
	copied.CreatedAt = existing.CreatedAt
	copied.UpdatedAt = time.Now()
	s.products[product.ID] = &copied
	return nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[id]; !exists {
		return ErrProductNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *MemoryStore) DecrementStock(_ context.Context, id string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, exists := s.products[id]
	if !exists {
		return ErrProductNotFound
	}

	product.Stock -= quantity
	if product.Stock < 0 {
		product.Stock = 0
	}
	product.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) CountProducts(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.products)), nil
}
