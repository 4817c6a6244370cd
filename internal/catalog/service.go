package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/akarpov/go_shop/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const productCacheTTL = time.Minute

// Service fronts the catalog store with an optional redis read-through
// cache for the hot product-lookup path.
type Service struct {
	store       Store
	redisClient *redis.Client
	sfg         singleflight.Group // Prevents cache stampede
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) SetRedisClient(client *redis.Client) {
	s.redisClient = client
}

func productCacheKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if s.redisClient == nil {
		return s.store.GetProduct(ctx, id)
	}

	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		cached, err := s.redisClient.Get(ctx, productCacheKey(id)).Bytes()
		if err == nil {
			var product domain.Product
			if err := json.Unmarshal(cached, &product); err == nil {
				return &product, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("product cache get error: %v", err) // log cache error but continue
		}

		product, errGet := s.store.GetProduct(ctx, id)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			setCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if data, err := json.Marshal(product); err == nil {
				if errSet := s.redisClient.Set(setCtx, productCacheKey(id), data, productCacheTTL).Err(); errSet != nil {
					log.Printf("product cache set error: %v", errSet)
				}
			}
		}()

		return product, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Product), nil
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, product *domain.Product) (string, error) {
	return s.store.CreateProduct(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, product *domain.Product) error {
	if err := s.store.UpdateProduct(ctx, product); err != nil {
		return err
	}
	s.invalidateCache(product.ID)
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(id)
	return nil
}

func (s *Service) DecrementStock(ctx context.Context, id string, quantity int) error {
	if err := s.store.DecrementStock(ctx, id, quantity); err != nil {
		return err
	}
	s.invalidateCache(id)
	return nil
}

func (s *Service) CountProducts(ctx context.Context) (int64, error) {
	return s.store.CountProducts(ctx)
}

func (s *Service) invalidateCache(id string) {
	if s.redisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.redisClient.Del(ctx, productCacheKey(id)).Err(); err != nil {
		log.Printf("product cache invalidate error: %v", err)
	}
}
