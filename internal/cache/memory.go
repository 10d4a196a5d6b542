package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps encoded values in a go-cache instance
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates an in-process cache; expired items are purged every cleanupInterval
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *MemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := m.c.Get(key)
	if !ok {
		return false, nil
	}
	b, ok := raw.([]byte)
	if !ok {
		return false, fmt.Errorf("cache entry %q has unexpected type %T", key, raw)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache entry %q: %w", key, err)
	}
	return true, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %q: %w", key, err)
	}
	m.c.Set(key, b, ttl)
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

// Close empties the cache
func (m *MemoryCache) Close() error {
	m.c.Flush()
	return nil
}
