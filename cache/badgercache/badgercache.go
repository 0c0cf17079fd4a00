// Package badgercache implements a cache in a Badger database.
package badgercache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/zephyrtronium/bathbot/cache"
)

// Cache is a cache backed by a Badger database.
type Cache struct {
	db *badger.DB
}

var _ cache.Cache = (*Cache)(nil)

// Open opens a Badger database in dir, or in memory if dir is empty.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("couldn't open badger db: %w", err)
	}
	return New(db), nil
}

// New creates a cache using an open database.
func New(db *badger.DB) *Cache {
	return &Cache{db: db}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	var b []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		b, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, cache.ErrMiss
		}
		return nil, fmt.Errorf("couldn't get %s from badger: %w", key, err)
	}
	return b, nil
}

func (c *Cache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	e := badger.NewEntry([]byte(key), val)
	if ttl > 0 {
		e = e.WithTTL(ttl)
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("couldn't set %s in badger: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("couldn't delete %s from badger: %w", key, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
