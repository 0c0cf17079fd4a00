// Package rediscache implements a cache in Redis.
package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zephyrtronium/bathbot/cache"
)

// Cache is a cache backed by a Redis client.
type Cache struct {
	rdb    *redis.Client
	prefix string
}

var _ cache.Cache = (*Cache)(nil)

// Open connects to the Redis server at a redis:// URL.
// Keys are namespaced by prefix.
func Open(ctx context.Context, u, prefix string) (*Cache, error) {
	opts, err := redis.ParseURL(u)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("couldn't ping redis: %w", err)
	}
	return New(rdb, prefix), nil
}

// New creates a cache using an existing client.
func New(rdb *redis.Client, prefix string) *Cache {
	return &Cache{rdb: rdb, prefix: prefix}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrMiss
		}
		return nil, fmt.Errorf("couldn't get %s from redis: %w", key, err)
	}
	return b, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, c.prefix+key, val, ttl).Err(); err != nil {
		return fmt.Errorf("couldn't set %s in redis: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.rdb.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("couldn't delete %s from redis: %w", key, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.rdb.Close()
}
