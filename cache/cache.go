// Package cache provides expiring caches for osu! API responses.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-json-experiment/json"

	"github.com/zephyrtronium/bathbot/metrics"
)

// ErrMiss is returned when a key is not in the cache.
var ErrMiss = errors.New("cache miss")

// Cache is a byte-oriented cache with expiring entries.
type Cache interface {
	// Get returns the value of a key. It returns ErrMiss if the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set sets the value of a key, expiring it after ttl.
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	// Delete removes a key. It is not an error to delete an absent key.
	Delete(ctx context.Context, key string) error
	// Close releases the cache's resources.
	Close() error
}

// Fetch gets a value from the cache, or computes it with get and stores it
// for ttl. Cache failures are logged and otherwise treated as misses.
// lookups may be nil.
func Fetch[T any](ctx context.Context, c Cache, lookups metrics.Observer, key string, ttl time.Duration, get func(context.Context) (T, error)) (T, error) {
	b, err := c.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(b, &v); err == nil {
			observe(lookups, "hit")
			return v, nil
		} else {
			slog.WarnContext(ctx, "discarding undecodable cache entry", slog.String("key", key), slog.Any("err", err))
		}
	case !errors.Is(err, ErrMiss):
		slog.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.Any("err", err))
	}
	observe(lookups, "miss")
	v, err := get(ctx)
	if err != nil {
		return v, err
	}
	b, err = json.Marshal(v)
	if err != nil {
		return v, fmt.Errorf("couldn't encode %s for cache: %w", key, err)
	}
	if err := c.Set(ctx, key, b, ttl); err != nil {
		slog.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.Any("err", err))
	}
	return v, nil
}

func observe(o metrics.Observer, result string) {
	if o != nil {
		o.Observe(1, result)
	}
}
