package embeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares resolved embeds between replicas. Redis enforces the TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// DialRedis parses a redis:// URL and verifies the server is reachable.
func DialRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

type storedFull struct {
	Shortcode    string `json:"shortcode"`
	HTML         string `json:"html"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (Full, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Full{}, false, nil
	}
	if err != nil {
		return Full{}, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	var stored storedFull
	if err := json.Unmarshal(raw, &stored); err != nil {
		return Full{}, false, fmt.Errorf("decode cached embed %s: %w", key, err)
	}

	return Full(stored), true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value Full, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	raw, err := json.Marshal(storedFull(value))
	if err != nil {
		return fmt.Errorf("encode embed %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete implements Cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
