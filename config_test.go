package main_test

import (
	"context"
	_ "embed"
	"strings"
	"testing"

	main "github.com/zephyrtronium/bathbot"
)

//go:embed example.toml
var exampleToml string

func eqcase[T comparable](t *testing.T, name string, val T, eq T) {
	t.Helper()
	if val != eq {
		t.Errorf("wrong %s: want %#v, got %#v", name, eq, val)
	}
}

func TestExampleConfig(t *testing.T) {
	t.Setenv("HOME", "/home/bocchi")
	t.Setenv("CREDENTIALS_DIRECTORY", "/run/credentials/bathbot")
	cfg, md, err := main.Load(context.Background(), strings.NewReader(exampleToml))
	if err != nil {
		t.Fatalf("failed to load example.toml: %v", err)
	}

	eqcase(t, "Owner.ID", cfg.Owner.ID, `110372734118174720`)
	eqcase(t, "Discord.TokenFile", cfg.Discord.TokenFile, `/run/credentials/bathbot/discord_token`)
	eqcase(t, "len(Discord.Prefixes)", len(cfg.Discord.Prefixes), 2)
	eqcase(t, "Discord.Prefixes[0]", cfg.Discord.Prefixes[0], `<`)
	eqcase(t, "Discord.Prefixes[1]", cfg.Discord.Prefixes[1], `!!`)
	eqcase(t, "Discord.Guild", cfg.Discord.Guild, ``)
	eqcase(t, "Osu.CID", cfg.Osu.CID, `12345`)
	eqcase(t, "Osu.SecretFile", cfg.Osu.SecretFile, `/run/credentials/bathbot/osu_client_secret`)
	eqcase(t, "Osu.Rate.Every", cfg.Osu.Rate.Every, 1.0)
	eqcase(t, "Osu.Rate.Num", cfg.Osu.Rate.Num, 10)
	eqcase(t, "DB.Postgres", cfg.DB.Postgres, ``)
	eqcase(t, "DB.SQLite", cfg.DB.SQLite, `file:/home/bocchi/bathbot/bathbot.db`)
	eqcase(t, "Cache.Redis", cfg.Cache.Redis, ``)
	eqcase(t, "Cache.Prefix", cfg.Cache.Prefix, `bathbot:`)
	eqcase(t, "Cache.Badger", cfg.Cache.Badger, `memory`)
	eqcase(t, "Active.TTL", cfg.Active.TTL, 60.0)
	eqcase(t, "HTTP.Listen", cfg.HTTP.Listen, `:4959`)
	if u := md.Undecoded(); len(u) != 0 {
		t.Errorf("example has unknown keys: %v", u)
	}
	if md.IsDefined("db", "postgres") {
		t.Errorf("example should leave postgres commented out")
	}
}
