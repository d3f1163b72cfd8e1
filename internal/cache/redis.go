// Package cache provides the Redis-backed query result cache.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeebo/blake3"
)

const queryKeyPrefix = "finder:query:"

// RedisCache provides caching via Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache.
func NewRedisCache(url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Get retrieves a value from cache. Returns empty string if key not found.
func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

// Set stores a value in cache with TTL.
func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

// Delete removes a value from cache.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// DeletePattern removes all keys matching pattern and reports how many
// were removed.
func (c *RedisCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	removed := 0
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, iter.Err()
}

// PurgeQueries drops cached results. With an empty fingerprint every
// engine version is purged.
func (c *RedisCache) PurgeQueries(ctx context.Context, fingerprint string) (int, error) {
	return c.DeletePattern(ctx, QueryPattern(fingerprint))
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// QueryCacheKey generates a cache key for a search query against one
// engine version. Only surrounding space is ignored: results echo the
// query text, so queries differing in case get separate entries.
func QueryCacheKey(fingerprint, query string) string {
	h := blake3.Sum256([]byte(strings.TrimSpace(query)))
	return fmt.Sprintf("%s%s:%x", queryKeyPrefix, fingerprint, h[:8])
}

// QueryPattern matches every query key for fingerprint, or all query keys
// when fingerprint is empty.
func QueryPattern(fingerprint string) string {
	if fingerprint == "" {
		return queryKeyPrefix + "*"
	}
	return queryKeyPrefix + fingerprint + ":*"
}
