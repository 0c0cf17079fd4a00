package badgercache_test

import (
	"context"
	"testing"

	"github.com/zephyrtronium/bathbot/cache"
	"github.com/zephyrtronium/bathbot/cache/badgercache"
	"github.com/zephyrtronium/bathbot/cache/cachetest"
)

func TestIntegrated(t *testing.T) {
	cachetest.Test(context.Background(), t, func(ctx context.Context) cache.Cache {
		c, err := badgercache.Open("")
		if err != nil {
			t.Fatal(err)
		}
		return c
	})
}
