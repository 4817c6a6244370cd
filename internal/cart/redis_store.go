package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/akarpov/go_shop/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStore holds carts as JSON documents keyed by user. Carts are
// abandoned often, so every write refreshes a TTL instead of keeping
// them forever.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    30 * 24 * time.Hour,
	}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

func (s *RedisStore) Get(ctx context.Context, userID string) ([]domain.CartItem, error) {
	data, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}
	return items, nil
}

func (s *RedisStore) save(ctx context.Context, userID string, items []domain.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(userID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func (s *RedisStore) AddItem(ctx context.Context, userID string, item domain.CartItem) error {
	items, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	merged := false
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}

	return s.save(ctx, userID, items)
}

func (s *RedisStore) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) error {
	items, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	for i := range items {
		if items[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			items = append(items[:i], items[i+1:]...)
		} else {
			items[i].Quantity = quantity
		}
		return s.save(ctx, userID, items)
	}

	return ErrItemNotFound
}

func (s *RedisStore) RemoveItem(ctx context.Context, userID, productID string) error {
	items, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	filtered := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			filtered = append(filtered, item)
		}
	}
	if len(filtered) == len(items) {
		return ErrItemNotFound
	}

	return s.save(ctx, userID, filtered)
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
