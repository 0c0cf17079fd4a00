package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/zephyrtronium/bathbot/active"
	"github.com/zephyrtronium/bathbot/cache"
	"github.com/zephyrtronium/bathbot/metrics"
	"github.com/zephyrtronium/bathbot/osu"
	"github.com/zephyrtronium/bathbot/pagination"
	"github.com/zephyrtronium/bathbot/store"
)

// Osu is the osu! API as used by commands. *osu.Client implements it.
type Osu interface {
	UserByID(ctx context.Context, id int64, mode osu.Mode) (*osu.User, error)
	UserByName(ctx context.Context, name string, mode osu.Mode) (*osu.User, error)
	UserScores(ctx context.Context, id int64, kind osu.ScoreKind, mode osu.Mode, limit, offset int) ([]osu.Score, error)
	BeatmapScores(ctx context.Context, id int64, mode osu.Mode) ([]osu.Score, error)
	Beatmap(ctx context.Context, id int64) (*osu.Beatmap, error)
	Beatmapset(ctx context.Context, id int64) (*osu.Beatmapset, error)
	Ranking(ctx context.Context, mode osu.Mode, country string, page int) (*osu.Rankings, error)
	Rooms(ctx context.Context, category string, limit int) ([]osu.Room, error)
	RoomLeaderboard(ctx context.Context, room int64) ([]osu.RoomScore, error)
}

var _ Osu = (*osu.Client)(nil)

// Robot is the bot state as is visible to commands.
type Robot struct {
	Log     *slog.Logger
	Osu     Osu
	Store   store.Store
	Cache   cache.Cache
	Active  *active.Registry
	Metrics *metrics.Metrics
	// Owner is the Discord user ID of the bot's owner.
	Owner string
	// Prefixes is the default command prefixes.
	Prefixes []string
	// Started is the time the bot started.
	Started time.Time
	// PageTTL is how long paged messages stay active. Zero means the
	// pagination default.
	PageTTL time.Duration
}

// paged creates a paged message with the configured time to live.
func (robo *Robot) paged(owner string, pages pagination.Pages, content pagination.Content) *pagination.Message {
	msg := pagination.NewMessage(owner, pages, content)
	if robo.PageTTL > 0 {
		msg.WithTTL(robo.PageTTL)
	}
	return msg
}
