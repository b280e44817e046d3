package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaehoon-dev/commerce-api/internal/domain"
)

// RedisCache implements domain.ResponseCache using Redis. Keys are stored
// under the "cache:" prefix so application data and cache entries never
// collide.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new cache instance.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(key string) string {
	return "cache:" + key
}

// Get returns the cached payload for key, or domain.ErrNotFound on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, cacheKey(key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return val, nil
}

// Set stores a payload with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, cacheKey(key), value, ttl).Err()
}

// Delete removes a single entry immediately.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, cacheKey(key)).Err()
}

// DeletePrefix removes every entry whose key starts with prefix. Used on
// catalog mutations to drop stale listings.
func (c *RedisCache) DeletePrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, cacheKey(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
