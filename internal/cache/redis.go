// Package cache keeps the active catalog listings in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/venusseo127/dentalApp/config"
	"github.com/venusseo127/dentalApp/types"
)

const (
	dentistsKey = "dental:catalog:dentists"
	servicesKey = "dental:catalog:services"

	defaultTTL = 5 * time.Minute
)

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// CatalogCache stores the active dentist and service listings as JSON.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

func (c *CatalogCache) Dentists(ctx context.Context) ([]types.Dentist, bool, error) {
	var dentists []types.Dentist
	ok, err := c.get(ctx, dentistsKey, &dentists)
	return dentists, ok, err
}

func (c *CatalogCache) SetDentists(ctx context.Context, dentists []types.Dentist) error {
	return c.set(ctx, dentistsKey, dentists)
}

func (c *CatalogCache) Services(ctx context.Context) ([]types.Service, bool, error) {
	var services []types.Service
	ok, err := c.get(ctx, servicesKey, &services)
	return services, ok, err
}

func (c *CatalogCache) SetServices(ctx context.Context, services []types.Service) error {
	return c.set(ctx, servicesKey, services)
}

// Invalidate drops both listings.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, dentistsKey, servicesKey).Err()
}

func (c *CatalogCache) get(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (c *CatalogCache) set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}
