package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides JSON caching under a key prefix
// ⭐ SSOT: cache helpers live here only
type Cache struct {
	client *Client
	prefix string
}

// NewCache creates a new cache helper
func NewCache(client *Client, prefix string) *Cache {
	return &Cache{
		client: client,
		prefix: prefix,
	}
}

func (c *Cache) key(key string) string {
	return fmt.Sprintf("%s:cache:%s", c.prefix, key)
}

// Get retrieves a cached value. Missing keys report found=false.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.client.Enabled() {
		return false, nil
	}

	data, err := c.client.Redis().Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache unmarshal failed: %w", err)
	}

	return true, nil
}

// Set stores a value in cache with TTL
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !c.client.Enabled() {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}

	return c.client.Redis().Set(ctx, c.key(key), data, ttl).Err()
}

// Delete removes a cached value
func (c *Cache) Delete(ctx context.Context, key string) error {
	if !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.key(key)).Err()
}

// DeletePattern removes every key matching a glob below the cache prefix
// and returns how many were removed
func (c *Cache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	if !c.client.Enabled() {
		return 0, nil
	}

	rdb := c.client.Redis()
	iter := rdb.Scan(ctx, 0, c.key(pattern), 200).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("cache scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	if err := rdb.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("cache delete %s: %w", pattern, err)
	}
	return len(keys), nil
}

// GetOrSet retrieves from cache or calls fn to populate it.
// Cache failures fall through to fn.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, fn func() (interface{}, error)) error {
	if found, err := c.Get(ctx, key, dest); err == nil && found {
		return nil
	}

	value, err := fn()
	if err != nil {
		return err
	}

	_ = c.Set(ctx, key, value, ttl)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return json.Unmarshal(data, dest)
}

// Predefined TTLs
const (
	TTLShort  = 1 * time.Minute
	TTLMedium = 10 * time.Minute
	TTLLong   = 1 * time.Hour
)

// SectorReportPattern matches every cached report of a sector
func SectorReportPattern(sectorID string) string {
	return fmt.Sprintf("report:%s:*", sectorID)
}

// ReportKey builds a report cache key scoped to a sector
func ReportKey(sectorID, kind, query string) string {
	return fmt.Sprintf("report:%s:%s:%s", sectorID, kind, query)
}
