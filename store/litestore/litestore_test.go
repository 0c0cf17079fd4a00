package litestore_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zephyrtronium/bathbot/store"
	"github.com/zephyrtronium/bathbot/store/litestore"
	"github.com/zephyrtronium/bathbot/store/storetest"
)

var dbcount atomic.Int64

func TestIntegrated(t *testing.T) {
	storetest.Test(context.Background(), t, func(ctx context.Context) store.Store {
		k := dbcount.Add(1)
		db, err := sqlitex.NewPool(fmt.Sprintf("file:litestore-%d.db?mode=memory&cache=shared", k), sqlitex.PoolOptions{Flags: sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenMemory | sqlite.OpenSharedCache | sqlite.OpenURI})
		if err != nil {
			t.Fatalf("couldn't open db: %v", err)
		}
		if err := litestore.Init(ctx, db); err != nil {
			t.Fatalf("couldn't init db: %v", err)
		}
		return litestore.New(db)
	})
}

func TestInitTwice(t *testing.T) {
	ctx := context.Background()
	k := dbcount.Add(1)
	conn, err := sqlite.OpenConn(fmt.Sprintf("file:litestore-%d.db?mode=memory&cache=shared", k), sqlite.OpenReadWrite|sqlite.OpenCreate|sqlite.OpenMemory|sqlite.OpenSharedCache|sqlite.OpenURI)
	if err != nil {
		t.Fatalf("couldn't open db: %v", err)
	}
	defer conn.Close()
	if err := litestore.Init(ctx, conn); err != nil {
		t.Fatalf("couldn't init db: %v", err)
	}
	if err := litestore.Init(ctx, conn); err != nil {
		t.Errorf("second init failed: %v", err)
	}
}
