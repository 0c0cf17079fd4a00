// Package cachetest provides integration testing facilities for caches.
package cachetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/bathbot/cache"
)

// Test runs the integration test suite against caches produced by new.
// Each cache must be empty.
//
// If a cache cannot be created without error, new should call t.Fatal.
func Test(ctx context.Context, t *testing.T, new func(context.Context) cache.Cache) {
	t.Run("getset", testGetSet(ctx, new(ctx)))
	t.Run("delete", testDelete(ctx, new(ctx)))
	t.Run("expire", testExpire(ctx, new(ctx)))
	t.Run("fetch", testFetch(ctx, new(ctx)))
}

func testGetSet(ctx context.Context, c cache.Cache) func(t *testing.T) {
	return func(t *testing.T) {
		t.Cleanup(func() { c.Close() })
		if _, err := c.Get(ctx, "bocchi"); !errors.Is(err, cache.ErrMiss) {
			t.Errorf("get before set should miss, got %v", err)
		}
		if err := c.Set(ctx, "bocchi", []byte("guitar"), time.Minute); err != nil {
			t.Fatalf("couldn't set: %v", err)
		}
		got, err := c.Get(ctx, "bocchi")
		if err != nil {
			t.Fatalf("couldn't get: %v", err)
		}
		if diff := cmp.Diff([]byte("guitar"), got); diff != "" {
			t.Errorf("wrong value (-want +got):\n%s", diff)
		}
		if err := c.Set(ctx, "bocchi", []byte("lead guitar"), time.Minute); err != nil {
			t.Fatalf("couldn't overwrite: %v", err)
		}
		got, err = c.Get(ctx, "bocchi")
		if err != nil {
			t.Fatalf("couldn't get: %v", err)
		}
		if diff := cmp.Diff([]byte("lead guitar"), got); diff != "" {
			t.Errorf("wrong value after overwrite (-want +got):\n%s", diff)
		}
	}
}

func testDelete(ctx context.Context, c cache.Cache) func(t *testing.T) {
	return func(t *testing.T) {
		t.Cleanup(func() { c.Close() })
		if err := c.Set(ctx, "ryou", []byte("bass"), time.Minute); err != nil {
			t.Fatalf("couldn't set: %v", err)
		}
		if err := c.Delete(ctx, "ryou"); err != nil {
			t.Fatalf("couldn't delete: %v", err)
		}
		if _, err := c.Get(ctx, "ryou"); !errors.Is(err, cache.ErrMiss) {
			t.Errorf("get after delete should miss, got %v", err)
		}
		if err := c.Delete(ctx, "ryou"); err != nil {
			t.Errorf("deleting an absent key should succeed, got %v", err)
		}
	}
}

func testExpire(ctx context.Context, c cache.Cache) func(t *testing.T) {
	return func(t *testing.T) {
		t.Cleanup(func() { c.Close() })
		if testing.Short() {
			t.Skip("expiry waits for wall time")
		}
		if err := c.Set(ctx, "nijika", []byte("drums"), time.Second); err != nil {
			t.Fatalf("couldn't set: %v", err)
		}
		time.Sleep(2100 * time.Millisecond)
		if _, err := c.Get(ctx, "nijika"); !errors.Is(err, cache.ErrMiss) {
			t.Errorf("get after expiry should miss, got %v", err)
		}
	}
}

type member struct {
	Name string `json:"name"`
	Part string `json:"part"`
}

func testFetch(ctx context.Context, c cache.Cache) func(t *testing.T) {
	return func(t *testing.T) {
		t.Cleanup(func() { c.Close() })
		calls := 0
		get := func(context.Context) (member, error) {
			calls++
			return member{Name: "kita", Part: "vocals"}, nil
		}
		for i := range 3 {
			got, err := cache.Fetch(ctx, c, nil, "kita", time.Minute, get)
			if err != nil {
				t.Fatalf("fetch %d failed: %v", i, err)
			}
			if diff := cmp.Diff(member{Name: "kita", Part: "vocals"}, got); diff != "" {
				t.Errorf("fetch %d: wrong value (-want +got):\n%s", i, diff)
			}
		}
		if calls != 1 {
			t.Errorf("wrong number of computations: want 1, got %d", calls)
		}
		bad := errors.New("no")
		_, err := cache.Fetch(ctx, c, nil, "seika", time.Minute, func(context.Context) (member, error) { return member{}, bad })
		if !errors.Is(err, bad) {
			t.Errorf("fetch should return the computation's error, got %v", err)
		}
		if _, err := c.Get(ctx, "seika"); !errors.Is(err, cache.ErrMiss) {
			t.Errorf("failed computation should not be cached, got %v", err)
		}
	}
}
