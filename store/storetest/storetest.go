// Package storetest provides integration testing facilities for stores.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/bathbot/bgtag"
	"github.com/zephyrtronium/bathbot/store"
)

// Test runs the integration test suite against stores produced by new.
// Each store must be empty.
//
// If a store cannot be created without error, new should call t.Fatal.
func Test(ctx context.Context, t *testing.T, new func(context.Context) store.Store) {
	t.Run("links", testLinks(ctx, new(ctx)))
	t.Run("prefixes", testPrefixes(ctx, new(ctx)))
	t.Run("higherlower", testHigherLower(ctx, new(ctx)))
	t.Run("bgtags", testBgTags(ctx, new(ctx)))
	t.Run("skins", testSkins(ctx, new(ctx)))
}

func testLinks(ctx context.Context, s store.Store) func(t *testing.T) {
	return func(t *testing.T) {
		t.Cleanup(func() { s.Close() })
		if _, err := s.LinkedOsu(ctx, "bocchi"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("link before linking should be not found, got %v", err)
		}
		if err := s.Link(ctx, "bocchi", 2); err != nil {
			t.Fatalf("couldn't link: %v", err)
		}
		if err := s.Link(ctx, "ryou", 3); err != nil {
			t.Fatalf("couldn't link: %v", err)
		}
		if id, err := s.LinkedOsu(ctx, "bocchi"); err != nil || id != 2 {
			t.Errorf("wrong link: want 2, got %d (%v)", id, err)
		}
		if err := s.Link(ctx, "bocchi", 4); err != nil {
			t.Fatalf("couldn't relink: %v", err)
		}
		if id, err := s.LinkedOsu(ctx, "bocchi"); err != nil || id != 4 {
			t.Errorf("wrong link after relinking: want 4, got %d (%v)", id, err)
		}
		if err := s.Unlink(ctx, "bocchi"); err != nil {
			t.Fatalf("couldn't unlink: %v", err)
		}
		if _, err := s.LinkedOsu(ctx, "bocchi"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("link after unlinking should be not found, got %v", err)
		}
		if err := s.Unlink(ctx, "bocchi"); err != nil {
			t.Errorf("unlinking twice should succeed, got %v", err)
		}
		if id, err := s.LinkedOsu(ctx, "ryou"); err != nil || id != 3 {
			t.Errorf("unlinking affected another user: want 3, got %d (%v)", id, err)
		}
	}
}

func testPrefixes(ctx context.Context, s store.Store) func(t *testing.T) {
	return func(t *testing.T) {
		t.Cleanup(func() { s.Close() })
		if _, err := s.GuildPrefixes(ctx, "kessoku"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("prefixes before setting should be not found, got %v", err)
		}
		want := []string{"<", "!!", "bath "}
		if err := s.SetGuildPrefixes(ctx, "kessoku", want); err != nil {
			t.Fatalf("couldn't set prefixes: %v", err)
		}
		got, err := s.GuildPrefixes(ctx, "kessoku")
		if err != nil {
			t.Fatalf("couldn't get prefixes: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("wrong prefixes (-want +got):\n%s", diff)
		}
		want = []string{"?"}
		if err := s.SetGuildPrefixes(ctx, "kessoku", want); err != nil {
			t.Fatalf("couldn't replace prefixes: %v", err)
		}
		got, err = s.GuildPrefixes(ctx, "kessoku")
		if err != nil {
			t.Fatalf("couldn't get prefixes: %v", err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("wrong prefixes after replacing (-want +got):\n%s", diff)
		}
		if err := s.SetGuildPrefixes(ctx, "kessoku", nil); err != nil {
			t.Fatalf("couldn't reset prefixes: %v", err)
		}
		if _, err := s.GuildPrefixes(ctx, "kessoku"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("prefixes after reset should be not found, got %v", err)
		}
	}
}

func testHigherLower(ctx context.Context, s store.Store) func(t *testing.T) {
	return func(t *testing.T) {
		t.Cleanup(func() { s.Close() })
		steps := []struct {
			user  string
			game  string
			score int
			isnew bool
			best  int
		}{
			{"bocchi", "pp", 0, false, 0},
			{"bocchi", "pp", 3, true, 3},
			{"bocchi", "pp", 2, false, 3},
			{"bocchi", "pp", 3, false, 3},
			{"bocchi", "pp", 7, true, 7},
			{"bocchi", "score", 1, true, 1},
			{"nijika", "pp", 5, true, 5},
		}
		for i, c := range steps {
			isnew, err := s.RecordHigherLower(ctx, c.user, c.game, c.score)
			if err != nil {
				t.Fatalf("step %d: couldn't record: %v", i, err)
			}
			if isnew != c.isnew {
				t.Errorf("step %d: wrong new highscore: want %t, got %t", i, c.isnew, isnew)
			}
			best, err := s.HigherLowerHighscore(ctx, c.user, c.game)
			if err != nil {
				t.Fatalf("step %d: couldn't get highscore: %v", i, err)
			}
			if best != c.best {
				t.Errorf("step %d: wrong highscore: want %d, got %d", i, c.best, best)
			}
		}
		if best, err := s.HigherLowerHighscore(ctx, "bocchi", "pp"); err != nil || best != 7 {
			t.Errorf("other user or game affected highscore: want 7, got %d (%v)", best, err)
		}
	}
}

func testBgTags(ctx context.Context, s store.Store) func(t *testing.T) {
	return func(t *testing.T) {
		t.Cleanup(func() { s.Close() })
		n, err := s.AddBgMapsets(ctx, []int64{30, 10, 20, 10})
		if err != nil {
			t.Fatalf("couldn't add mapsets: %v", err)
		}
		if n != 3 {
			t.Errorf("wrong number of mapsets added: want 3, got %d", n)
		}
		n, err = s.AddBgMapsets(ctx, []int64{20, 40})
		if err != nil {
			t.Fatalf("couldn't add more mapsets: %v", err)
		}
		if n != 1 {
			t.Errorf("wrong number of new mapsets: want 1, got %d", n)
		}
		got, err := s.UntaggedBgMapsets(ctx, 3)
		if err != nil {
			t.Fatalf("couldn't list untagged: %v", err)
		}
		if diff := cmp.Diff([]int64{10, 20, 30}, got); diff != "" {
			t.Errorf("wrong untagged mapsets (-want +got):\n%s", diff)
		}
		if tags, err := s.BgMapsetTags(ctx, 10); err != nil || tags != 0 {
			t.Errorf("new mapset should be untagged, got %v (%v)", tags, err)
		}
		if err := s.SetBgMapsetTags(ctx, 10, bgtag.Farm|bgtag.Weeb); err != nil {
			t.Fatalf("couldn't set tags: %v", err)
		}
		if err := s.SetBgMapsetTags(ctx, 30, bgtag.Farm); err != nil {
			t.Fatalf("couldn't set tags: %v", err)
		}
		if err := s.SetBgMapsetTags(ctx, 40, 0); err != nil {
			t.Fatalf("couldn't set empty tags: %v", err)
		}
		if tags, err := s.BgMapsetTags(ctx, 10); err != nil || tags != bgtag.Farm|bgtag.Weeb {
			t.Errorf("wrong tags: want %v, got %v (%v)", bgtag.Farm|bgtag.Weeb, tags, err)
		}
		got, err = s.UntaggedBgMapsets(ctx, 10)
		if err != nil {
			t.Fatalf("couldn't list untagged: %v", err)
		}
		if diff := cmp.Diff([]int64{20}, got); diff != "" {
			t.Errorf("wrong untagged mapsets after tagging (-want +got):\n%s", diff)
		}
		got, err = s.BgMapsetsTagged(ctx, bgtag.Farm, 0)
		if err != nil {
			t.Fatalf("couldn't list tagged: %v", err)
		}
		if diff := cmp.Diff([]int64{10, 30}, got); diff != "" {
			t.Errorf("wrong farm mapsets (-want +got):\n%s", diff)
		}
		got, err = s.BgMapsetsTagged(ctx, bgtag.Farm, bgtag.Weeb)
		if err != nil {
			t.Fatalf("couldn't list tagged: %v", err)
		}
		if diff := cmp.Diff([]int64{30}, got); diff != "" {
			t.Errorf("wrong farm non-weeb mapsets (-want +got):\n%s", diff)
		}
		if _, err := s.BgMapsetTags(ctx, 50); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("tags of missing mapset should be not found, got %v", err)
		}
		if err := s.SetBgMapsetTags(ctx, 50, bgtag.Old); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("tagging missing mapset should be not found, got %v", err)
		}
	}
}

func testSkins(ctx context.Context, s store.Store) func(t *testing.T) {
	return func(t *testing.T) {
		t.Cleanup(func() { s.Close() })
		if _, err := s.SkinURL(ctx, "kita"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("skin before setting should be not found, got %v", err)
		}
		const u = "https://osu.ppy.sh/community/forums/topics/1"
		if err := s.SetSkinURL(ctx, "kita", u); err != nil {
			t.Fatalf("couldn't set skin: %v", err)
		}
		if got, err := s.SkinURL(ctx, "kita"); err != nil || got != u {
			t.Errorf("wrong skin: want %q, got %q (%v)", u, got, err)
		}
		if err := s.SetSkinURL(ctx, "kita", ""); err != nil {
			t.Fatalf("couldn't remove skin: %v", err)
		}
		if _, err := s.SkinURL(ctx, "kita"); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("skin after removing should be not found, got %v", err)
		}
	}
}
