// Package pgstore implements the bot's storage in PostgreSQL.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/zephyrtronium/bathbot/bgtag"
	"github.com/zephyrtronium/bathbot/store"
)

// Store is a store backed by a PostgreSQL database.
type Store struct {
	db *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

//go:embed schema.sql
var schemaSQL string

// Open connects to a database and initializes it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse postgres dsn: %w", err)
	}
	db, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't connect to postgres: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("couldn't ping postgres: %w", err)
	}
	if err := Init(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

// New creates a store using an existing pool.
// The database should already be initialized with [Init].
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Init creates the tables the store uses if they do not exist.
func Init(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("couldn't initialize postgres schema: %w", err)
	}
	return nil
}

// LinkedOsu returns the osu! user ID linked to a Discord user.
func (s *Store) LinkedOsu(ctx context.Context, discord string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `SELECT osu_id FROM osu_links WHERE discord_id = $1`, discord).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, store.ErrNotFound
		}
		return 0, fmt.Errorf("couldn't get osu! link for %s: %w", discord, err)
	}
	return id, nil
}

// Link links a Discord user to an osu! user.
func (s *Store) Link(ctx context.Context, discord string, osu int64) error {
	const q = `INSERT INTO osu_links (discord_id, osu_id) VALUES ($1, $2)
		ON CONFLICT (discord_id) DO UPDATE SET osu_id = EXCLUDED.osu_id`
	if _, err := s.db.Exec(ctx, q, discord, osu); err != nil {
		return fmt.Errorf("couldn't link %s to osu! user %d: %w", discord, osu, err)
	}
	return nil
}

// Unlink removes a Discord user's osu! link.
func (s *Store) Unlink(ctx context.Context, discord string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM osu_links WHERE discord_id = $1`, discord); err != nil {
		return fmt.Errorf("couldn't unlink %s: %w", discord, err)
	}
	return nil
}

// GuildPrefixes returns the command prefixes of a guild.
func (s *Store) GuildPrefixes(ctx context.Context, guild string) ([]string, error) {
	var p []string
	err := s.db.QueryRow(ctx, `SELECT prefixes FROM guild_prefixes WHERE guild_id = $1`, guild).Scan(&p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("couldn't get prefixes for guild %s: %w", guild, err)
	}
	return p, nil
}

// SetGuildPrefixes sets a guild's command prefixes.
func (s *Store) SetGuildPrefixes(ctx context.Context, guild string, prefixes []string) error {
	if len(prefixes) == 0 {
		if _, err := s.db.Exec(ctx, `DELETE FROM guild_prefixes WHERE guild_id = $1`, guild); err != nil {
			return fmt.Errorf("couldn't reset prefixes for guild %s: %w", guild, err)
		}
		return nil
	}
	const q = `INSERT INTO guild_prefixes (guild_id, prefixes) VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET prefixes = EXCLUDED.prefixes`
	if _, err := s.db.Exec(ctx, q, guild, prefixes); err != nil {
		return fmt.Errorf("couldn't set prefixes for guild %s: %w", guild, err)
	}
	return nil
}

// HigherLowerHighscore returns a user's best higher/lower streak.
func (s *Store) HigherLowerHighscore(ctx context.Context, discord, game string) (int, error) {
	var n int
	const q = `SELECT highscore FROM higherlower_scores WHERE discord_id = $1 AND game = $2`
	err := s.db.QueryRow(ctx, q, discord, game).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("couldn't get %s highscore for %s: %w", game, discord, err)
	}
	return n, nil
}

// RecordHigherLower records a streak if it beats the user's highscore.
func (s *Store) RecordHigherLower(ctx context.Context, discord, game string, score int) (bool, error) {
	if score <= 0 {
		return false, nil
	}
	const q = `INSERT INTO higherlower_scores (discord_id, game, highscore) VALUES ($1, $2, $3)
		ON CONFLICT (discord_id, game) DO UPDATE SET highscore = EXCLUDED.highscore
		WHERE higherlower_scores.highscore < EXCLUDED.highscore`
	tag, err := s.db.Exec(ctx, q, discord, game, score)
	if err != nil {
		return false, fmt.Errorf("couldn't record %s score for %s: %w", game, discord, err)
	}
	return tag.RowsAffected() != 0, nil
}

// AddBgMapsets adds mapsets to the background game pool.
func (s *Store) AddBgMapsets(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const q = `INSERT INTO bg_mapsets (mapset_id) SELECT DISTINCT unnest($1::BIGINT[])
		ON CONFLICT (mapset_id) DO NOTHING`
	tag, err := s.db.Exec(ctx, q, ids)
	if err != nil {
		return 0, fmt.Errorf("couldn't add %d background mapsets: %w", len(ids), err)
	}
	return int(tag.RowsAffected()), nil
}

// UntaggedBgMapsets lists mapsets whose tags have not been reviewed.
func (s *Store) UntaggedBgMapsets(ctx context.Context, limit int) ([]int64, error) {
	const q = `SELECT mapset_id FROM bg_mapsets WHERE NOT tagged ORDER BY mapset_id LIMIT $1`
	return s.ids(ctx, q, limit)
}

// BgMapsetTags returns the tags of a mapset.
func (s *Store) BgMapsetTags(ctx context.Context, id int64) (bgtag.Tags, error) {
	var t int64
	err := s.db.QueryRow(ctx, `SELECT tags FROM bg_mapsets WHERE mapset_id = $1`, id).Scan(&t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, store.ErrNotFound
		}
		return 0, fmt.Errorf("couldn't get tags of mapset %d: %w", id, err)
	}
	return bgtag.Tags(t), nil
}

// SetBgMapsetTags sets the tags of a mapset and marks it reviewed.
func (s *Store) SetBgMapsetTags(ctx context.Context, id int64, tags bgtag.Tags) error {
	const q = `UPDATE bg_mapsets SET tags = $2, tagged = TRUE WHERE mapset_id = $1`
	tag, err := s.db.Exec(ctx, q, id, int64(tags))
	if err != nil {
		return fmt.Errorf("couldn't set tags of mapset %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// BgMapsetsTagged lists mapsets with all of tags and none of exclude.
func (s *Store) BgMapsetsTagged(ctx context.Context, tags, exclude bgtag.Tags) ([]int64, error) {
	const q = `SELECT mapset_id FROM bg_mapsets WHERE tagged AND tags & $1 = $1 AND tags & $2 = 0 ORDER BY mapset_id`
	return s.ids(ctx, q, int64(tags), int64(exclude))
}

func (s *Store) ids(ctx context.Context, q string, args ...any) ([]int64, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("couldn't query mapsets: %w", err)
	}
	r, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("couldn't scan mapsets: %w", err)
	}
	return r, nil
}

// SkinURL returns a user's skin URL.
func (s *Store) SkinURL(ctx context.Context, discord string) (string, error) {
	var u string
	err := s.db.QueryRow(ctx, `SELECT url FROM skins WHERE discord_id = $1`, discord).Scan(&u)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", fmt.Errorf("couldn't get skin of %s: %w", discord, err)
	}
	return u, nil
}

// SetSkinURL sets or removes a user's skin URL.
func (s *Store) SetSkinURL(ctx context.Context, discord, url string) error {
	if url == "" {
		if _, err := s.db.Exec(ctx, `DELETE FROM skins WHERE discord_id = $1`, discord); err != nil {
			return fmt.Errorf("couldn't remove skin of %s: %w", discord, err)
		}
		return nil
	}
	const q = `INSERT INTO skins (discord_id, url) VALUES ($1, $2)
		ON CONFLICT (discord_id) DO UPDATE SET url = EXCLUDED.url`
	if _, err := s.db.Exec(ctx, q, discord, url); err != nil {
		return fmt.Errorf("couldn't set skin of %s: %w", discord, err)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}
