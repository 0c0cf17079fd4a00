package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zephyrtronium/bathbot/cache"
)

// mapCache is a cache in a map.
type mapCache struct {
	m    map[string][]byte
	fail error
}

func (c *mapCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.fail != nil {
		return nil, c.fail
	}
	b, ok := c.m[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return b, nil
}

func (c *mapCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if c.fail != nil {
		return c.fail
	}
	c.m[key] = val
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.m, key)
	return nil
}

func (c *mapCache) Close() error { return nil }

// counter is a metrics.Observer counting by first label.
type counter struct {
	n map[string]int
}

func (c *counter) Observe(val float64, labels ...string) { c.n[labels[0]] += int(val) }
func (c *counter) Describe(chan<- *prometheus.Desc)      {}
func (c *counter) Collect(chan<- prometheus.Metric)      {}

func TestFetchMetrics(t *testing.T) {
	ctx := context.Background()
	c := &mapCache{m: make(map[string][]byte)}
	lookups := &counter{n: make(map[string]int)}
	get := func(context.Context) (int, error) { return 7, nil }
	for range 3 {
		v, err := cache.Fetch(ctx, c, lookups, "k", time.Minute, get)
		if err != nil || v != 7 {
			t.Fatalf("wrong fetch: want 7, got %d (%v)", v, err)
		}
	}
	if lookups.n["hit"] != 2 || lookups.n["miss"] != 1 {
		t.Errorf("wrong lookups: %v", lookups.n)
	}
}

func TestFetchBroken(t *testing.T) {
	ctx := context.Background()
	c := &mapCache{m: make(map[string][]byte), fail: errors.New("down")}
	calls := 0
	get := func(context.Context) (string, error) { calls++; return "bocchi", nil }
	for range 2 {
		v, err := cache.Fetch(ctx, c, nil, "k", time.Minute, get)
		if err != nil || v != "bocchi" {
			t.Fatalf("broken cache should fall through: got %q (%v)", v, err)
		}
	}
	if calls != 2 {
		t.Errorf("wrong number of computations: want 2, got %d", calls)
	}
}

func TestFetchCorrupt(t *testing.T) {
	ctx := context.Background()
	c := &mapCache{m: map[string][]byte{"k": []byte("{not json")}}
	v, err := cache.Fetch(ctx, c, nil, "k", time.Minute, func(context.Context) (int, error) { return 3, nil })
	if err != nil || v != 3 {
		t.Fatalf("corrupt entry should be recomputed: got %d (%v)", v, err)
	}
	if string(c.m["k"]) != "3" {
		t.Errorf("corrupt entry not replaced: %q", c.m["k"])
	}
}
