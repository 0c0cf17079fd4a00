package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/zephyrtronium/bathbot/auth"
	"github.com/zephyrtronium/bathbot/cache"
	"github.com/zephyrtronium/bathbot/cache/badgercache"
	"github.com/zephyrtronium/bathbot/cache/rediscache"
	"github.com/zephyrtronium/bathbot/metrics"
	"github.com/zephyrtronium/bathbot/osu"
	"github.com/zephyrtronium/bathbot/store"
	"github.com/zephyrtronium/bathbot/store/litestore"
	"github.com/zephyrtronium/bathbot/store/pgstore"
)

// Load loads Bathbot from a TOML configuration.
func Load(ctx context.Context, r io.Reader) (*Config, *toml.MetaData, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	if u := md.Undecoded(); len(u) != 0 {
		slog.WarnContext(ctx, "unknown config keys", slog.Any("keys", u))
	}
	expandcfg(&cfg, os.Getenv)
	return &cfg, &md, nil
}

// loadStore opens the configured database.
func loadStore(ctx context.Context, cfg DBCfg) (store.Store, error) {
	switch {
	case cfg.Postgres != "" && cfg.SQLite != "":
		return nil, fmt.Errorf("multiple databases requested; use exactly one")
	case cfg.Postgres != "":
		slog.DebugContext(ctx, "using postgres")
		s, err := pgstore.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("couldn't open postgres store: %w", err)
		}
		return s, nil
	case cfg.SQLite != "":
		slog.DebugContext(ctx, "using sqlite", slog.String("path", cfg.SQLite))
		s, err := litestore.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, fmt.Errorf("couldn't open sqlite store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("no database requested; use exactly one")
	}
}

// loadCache opens the configured cache.
func loadCache(ctx context.Context, cfg CacheCfg) (cache.Cache, error) {
	switch {
	case cfg.Redis != "" && cfg.Badger != "":
		return nil, fmt.Errorf("multiple caches requested; use exactly one")
	case cfg.Redis != "":
		slog.DebugContext(ctx, "using redis cache", slog.String("prefix", cfg.Prefix))
		c, err := rediscache.Open(ctx, cfg.Redis, cfg.Prefix)
		if err != nil {
			return nil, fmt.Errorf("couldn't open redis cache: %w", err)
		}
		return c, nil
	case cfg.Badger != "":
		dir := cfg.Badger
		if strings.EqualFold(dir, "memory") {
			dir = ""
		}
		slog.DebugContext(ctx, "using badger cache", slog.String("dir", dir))
		c, err := badgercache.Open(dir)
		if err != nil {
			return nil, fmt.Errorf("couldn't open badger cache: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("no cache requested; use exactly one")
	}
}

// loadOsu creates the osu! API client.
func loadOsu(cfg OsuCfg, met *metrics.Metrics) (*osu.Client, error) {
	secret, err := os.ReadFile(cfg.SecretFile)
	if err != nil {
		return nil, fmt.Errorf("couldn't read osu! client secret: %w", err)
	}
	client := &http.Client{Timeout: 30 * time.Second}
	occ := oauth2.Config{
		ClientID:     cfg.CID,
		ClientSecret: strings.TrimSpace(string(secret)),
		Endpoint:     auth.OsuEndpoint,
		Scopes:       []string{"public"},
	}
	var lim *rate.Limiter
	if cfg.Rate.Num > 0 {
		lim = rate.NewLimiter(rate.Every(fseconds(cfg.Rate.Every)), cfg.Rate.Num)
	}
	return &osu.Client{
		HTTP:    client,
		Tokens:  auth.ClientCredentialsFlow(occ, client),
		Rate:    lim,
		Latency: met.OsuLatency,
	}, nil
}

func fseconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Config is the marshaled structure of Bathbot's configuration.
type Config struct {
	// Owner is the table of metadata about the owner.
	Owner Owner `toml:"owner"`
	// Discord is the configuration for connecting to Discord.
	Discord DiscordCfg `toml:"discord"`
	// Osu is the configuration for the osu! API.
	Osu OsuCfg `toml:"osu"`
	// DB is the table of database connection strings.
	DB DBCfg `toml:"db"`
	// Cache is the table of cache connection strings.
	Cache CacheCfg `toml:"cache"`
	// Active is the configuration for active messages.
	Active ActiveCfg `toml:"active"`
	// HTTP is the configuration for the HTTP API.
	HTTP HTTP `toml:"http"`
}

// Owner is metadata about the bot owner.
type Owner struct {
	// ID is the owner's Discord user ID.
	ID string `toml:"id"`
}

// DiscordCfg is the configuration for the Discord session.
type DiscordCfg struct {
	// TokenFile is the path to a file containing the bot token.
	TokenFile string `toml:"token"`
	// Prefixes is the default command prefixes for messages.
	Prefixes []string `toml:"prefixes"`
	// Guild is a guild ID to which to register slash commands instead of
	// registering them globally.
	Guild string `toml:"guild"`
}

// OsuCfg is the configuration for the osu! API client.
type OsuCfg struct {
	// CID is the client ID.
	CID string `toml:"cid"`
	// SecretFile is the path to a file containing the client secret.
	SecretFile string `toml:"secret"`
	// Rate is the global rate limit for API requests.
	Rate Rate `toml:"rate"`
}

// DBCfg is the configuration of the database. Exactly one field must be set.
type DBCfg struct {
	Postgres string `toml:"postgres"`
	SQLite   string `toml:"sqlite"`
}

// CacheCfg is the configuration of the cache. Exactly one of Redis and Badger
// must be set.
type CacheCfg struct {
	// Redis is a Redis URL.
	Redis string `toml:"redis"`
	// Prefix is prepended to Redis keys.
	Prefix string `toml:"prefix"`
	// Badger is a directory for a Badger database, or "memory" to keep the
	// cache in memory.
	Badger string `toml:"badger"`
}

// ActiveCfg is the configuration of active messages.
type ActiveCfg struct {
	// TTL is the time in seconds that paged messages stay active after their
	// last interaction.
	TTL float64 `toml:"ttl"`
}

// HTTP is the configuration for the HTTP API.
type HTTP struct {
	// Listen is the address on which to serve.
	Listen string `toml:"listen"`
}

// Rate is a rate limit configuration.
type Rate struct {
	Every float64 `toml:"every"`
	Num   int     `toml:"num"`
}

func expandcfg(cfg *Config, expand func(s string) string) {
	fields := []*string{
		&cfg.Owner.ID,
		&cfg.Discord.TokenFile,
		&cfg.Discord.Guild,
		&cfg.Osu.CID,
		&cfg.Osu.SecretFile,
		&cfg.DB.Postgres,
		&cfg.DB.SQLite,
		&cfg.Cache.Redis,
		&cfg.Cache.Prefix,
		&cfg.Cache.Badger,
		&cfg.HTTP.Listen,
	}
	for _, f := range fields {
		*f = os.Expand(*f, expand)
	}
}
