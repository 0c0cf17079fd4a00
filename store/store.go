// Package store defines persistent storage for Bathbot.
package store

import (
	"context"
	"errors"

	"github.com/zephyrtronium/bathbot/bgtag"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistent state of the bot.
//
// Discord snowflakes are passed as strings throughout.
type Store interface {
	// LinkedOsu returns the osu! user ID linked to a Discord user.
	// It returns ErrNotFound if the user has no link.
	LinkedOsu(ctx context.Context, discord string) (int64, error)
	// Link links a Discord user to an osu! user, replacing any existing link.
	Link(ctx context.Context, discord string, osu int64) error
	// Unlink removes a Discord user's link. It is not an error to unlink a
	// user who has no link.
	Unlink(ctx context.Context, discord string) error

	// GuildPrefixes returns the command prefixes of a guild.
	// It returns ErrNotFound if the guild uses the default prefixes.
	GuildPrefixes(ctx context.Context, guild string) ([]string, error)
	// SetGuildPrefixes sets a guild's command prefixes.
	// An empty list restores the defaults.
	SetGuildPrefixes(ctx context.Context, guild string, prefixes []string) error

	// HigherLowerHighscore returns a user's best streak in a higher/lower
	// game variant. Users with no recorded score have a highscore of zero.
	HigherLowerHighscore(ctx context.Context, discord, game string) (int, error)
	// RecordHigherLower records a streak, reporting whether it beat the
	// user's previous highscore.
	RecordHigherLower(ctx context.Context, discord, game string, score int) (bool, error)

	// AddBgMapsets adds untagged mapsets to the background game pool,
	// returning the number which were not already present.
	AddBgMapsets(ctx context.Context, ids []int64) (int, error)
	// UntaggedBgMapsets lists up to limit mapsets whose tags have not yet
	// been reviewed, in ascending order.
	UntaggedBgMapsets(ctx context.Context, limit int) ([]int64, error)
	// BgMapsetTags returns the tags of a mapset in the pool.
	// It returns ErrNotFound if the mapset is not in the pool.
	BgMapsetTags(ctx context.Context, id int64) (bgtag.Tags, error)
	// SetBgMapsetTags sets the tags of a mapset and marks it reviewed.
	// It returns ErrNotFound if the mapset is not in the pool.
	SetBgMapsetTags(ctx context.Context, id int64, tags bgtag.Tags) error
	// BgMapsetsTagged lists mapsets that have every tag in tags and none in
	// exclude.
	BgMapsetsTagged(ctx context.Context, tags, exclude bgtag.Tags) ([]int64, error)

	// SkinURL returns a user's skin URL.
	// It returns ErrNotFound if the user has not set one.
	SkinURL(ctx context.Context, discord string) (string, error)
	// SetSkinURL sets a user's skin URL. An empty URL removes it.
	SetSkinURL(ctx context.Context, discord, url string) error

	// Close closes the store.
	Close() error
}
