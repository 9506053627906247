package cache

import (
	"context"
	"time"
)

// Cache is a TTL key-value cache. T is the cached value type.
type Cache[T any] interface {
	// Get returns ErrCacheMiss if the key does not exist or has expired
	Get(ctx context.Context, key string) (T, error)
	Set(ctx context.Context, key string, value T, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
	Health(ctx context.Context) error
}

// GetWithFetch is a cache-aside helper.
// On a miss it calls fetch, stores the result and returns it. A failed Set is ignored.
func GetWithFetch[T any](
	ctx context.Context,
	c Cache[T],
	key string,
	ttl time.Duration,
	fetch func(ctx context.Context, key string) (T, error),
) (T, error) {
	if value, err := c.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := fetch(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}

	_ = c.Set(ctx, key, value, ttl)
	return value, nil
}
