// Package cache stores JSON encoded values with a TTL in process memory or Redis.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a TTL key/value cache of JSON encodable values
type Cache interface {
	// Get decodes the value at key into dest; found is false on a miss
	Get(ctx context.Context, key string, dest interface{}) (found bool, err error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key joins a prefix and parameters into a cache key: Key("analytics", 7) = "analytics:7"
func Key(prefix string, params ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range params {
		b.WriteByte(':')
		fmt.Fprintf(&b, "%v", p)
	}
	return b.String()
}
