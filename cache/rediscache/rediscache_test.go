package rediscache_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/zephyrtronium/bathbot/cache"
	"github.com/zephyrtronium/bathbot/cache/cachetest"
	"github.com/zephyrtronium/bathbot/cache/rediscache"
)

func TestIntegrated(t *testing.T) {
	u := os.Getenv("BATHBOT_TEST_REDIS")
	if u == "" {
		t.Skip("BATHBOT_TEST_REDIS not set")
	}
	run := time.Now().UnixNano()
	n := 0
	cachetest.Test(context.Background(), t, func(ctx context.Context) cache.Cache {
		n++
		c, err := rediscache.Open(ctx, u, fmt.Sprintf("bathbot-test-%d-%d:", run, n))
		if err != nil {
			t.Fatal(err)
		}
		return c
	})
}
