package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/config"
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "payments:idem"

type RedisResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisResponseCache(client *redis.Client, ttl time.Duration) *RedisResponseCache {
	return &RedisResponseCache{client: client, ttl: ttl}
}

// Connect opens the client and pings it once.
func Connect(ctx context.Context, cfg config.RedisCache) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return client, nil
}

func cacheKey(tenantID, scope, key string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, tenantID, scope, domain.HashParts(key))
}

func (c *RedisResponseCache) Get(ctx context.Context, tenantID, scope, key string) (*domain.CachedResponse, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(tenantID, scope, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var resp domain.CachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false, fmt.Errorf("decode cached response: %w", err)
	}
	return &resp, true, nil
}

func (c *RedisResponseCache) Set(ctx context.Context, tenantID, scope, key string, resp *domain.CachedResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(tenantID, scope, key), raw, c.ttl).Err()
}

func (c *RedisResponseCache) Delete(ctx context.Context, tenantID, scope, key string) error {
	return c.client.Del(ctx, cacheKey(tenantID, scope, key)).Err()
}

// NopResponseCache always misses.
type NopResponseCache struct{}

func (NopResponseCache) Get(context.Context, string, string, string) (*domain.CachedResponse, bool, error) {
	return nil, false, nil
}

func (NopResponseCache) Set(context.Context, string, string, string, *domain.CachedResponse) error {
	return nil
}

func (NopResponseCache) Delete(context.Context, string, string, string) error { return nil }
