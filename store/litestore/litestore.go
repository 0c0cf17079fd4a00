// Package litestore implements the bot's storage in SQLite.
package litestore

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/go-json-experiment/json"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zephyrtronium/bathbot/bgtag"
	"github.com/zephyrtronium/bathbot/store"
)

// Store is a store backed by an SQLite database.
type Store struct {
	db *sqlitex.Pool
}

var _ store.Store = (*Store)(nil)

//go:embed schema.sql
var schemaSQL string

// Open opens a database at dsn and initializes it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlitex.NewPool(dsn, sqlitex.PoolOptions{PrepareConn: RecommendedPrep})
	if err != nil {
		return nil, fmt.Errorf("couldn't open sqlite db: %w", err)
	}
	if err := Init(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

// New creates a store using an existing pool.
// The database should already be initialized with [Init].
func New(db *sqlitex.Pool) *Store {
	return &Store{db: db}
}

// Init creates the tables the store uses if they do not exist.
func Init[DB *sqlite.Conn | *sqlitex.Pool](ctx context.Context, db DB) error {
	var conn *sqlite.Conn
	switch db := any(db).(type) {
	case *sqlite.Conn:
		conn = db
	case *sqlitex.Pool:
		var err error
		conn, err = db.Take(ctx)
		defer db.Put(conn)
		if err != nil {
			return fmt.Errorf("couldn't get connection to initialize store: %w", err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schemaSQL, nil); err != nil {
		return fmt.Errorf("couldn't initialize sqlite schema: %w", err)
	}
	return nil
}

// RecommendedPrep is an [sqlitex.ConnPrepareFunc] that sets options
// recommended for a store.
func RecommendedPrep(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		s, _, err := conn.PrepareTransient(p)
		if err != nil {
			// The pool retries the prep func on every connection, so an
			// error here would repeat forever.
			panic(fmt.Errorf("couldn't set %s: %w", p, err))
		}
		if err := allsteps(s); err != nil {
			return fmt.Errorf("couldn't run %s: %w", p, err)
		}
		if err := s.Finalize(); err != nil {
			panic(fmt.Errorf("couldn't finalize statement for %s: %w", p, err))
		}
	}
	return nil
}

func allsteps(s *sqlite.Stmt) error {
	for {
		ok, err := s.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// exec runs a statement on a connection from the pool.
func (s *Store) exec(ctx context.Context, what, q string, opts *sqlitex.ExecOptions) (*sqlite.Conn, func(), error) {
	conn, err := s.db.Take(ctx)
	if err != nil {
		return nil, func() {}, fmt.Errorf("couldn't get connection to %s: %w", what, err)
	}
	put := func() { s.db.Put(conn) }
	if err := sqlitex.Execute(conn, q, opts); err != nil {
		return conn, put, fmt.Errorf("couldn't %s: %w", what, err)
	}
	return conn, put, nil
}

// LinkedOsu returns the osu! user ID linked to a Discord user.
func (s *Store) LinkedOsu(ctx context.Context, discord string) (int64, error) {
	var id int64
	found := false
	opts := sqlitex.ExecOptions{
		Args: []any{discord},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			id, found = stmt.ColumnInt64(0), true
			return nil
		},
	}
	_, put, err := s.exec(ctx, "get osu! link", `SELECT osu_id FROM osu_links WHERE discord_id = ?`, &opts)
	defer put()
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, store.ErrNotFound
	}
	return id, nil
}

// Link links a Discord user to an osu! user.
func (s *Store) Link(ctx context.Context, discord string, osu int64) error {
	const q = `INSERT INTO osu_links (discord_id, osu_id) VALUES (?, ?)
		ON CONFLICT (discord_id) DO UPDATE SET osu_id = excluded.osu_id`
	_, put, err := s.exec(ctx, "link osu! user", q, &sqlitex.ExecOptions{Args: []any{discord, osu}})
	put()
	return err
}

// Unlink removes a Discord user's osu! link.
func (s *Store) Unlink(ctx context.Context, discord string) error {
	_, put, err := s.exec(ctx, "unlink osu! user", `DELETE FROM osu_links WHERE discord_id = ?`, &sqlitex.ExecOptions{Args: []any{discord}})
	put()
	return err
}

// GuildPrefixes returns the command prefixes of a guild.
func (s *Store) GuildPrefixes(ctx context.Context, guild string) ([]string, error) {
	var raw string
	found := false
	opts := sqlitex.ExecOptions{
		Args: []any{guild},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			raw, found = stmt.ColumnText(0), true
			return nil
		},
	}
	_, put, err := s.exec(ctx, "get guild prefixes", `SELECT prefixes FROM guild_prefixes WHERE guild_id = ?`, &opts)
	defer put()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrNotFound
	}
	var p []string
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("couldn't decode prefixes of guild %s: %w", guild, err)
	}
	return p, nil
}

// SetGuildPrefixes sets a guild's command prefixes.
func (s *Store) SetGuildPrefixes(ctx context.Context, guild string, prefixes []string) error {
	if len(prefixes) == 0 {
		_, put, err := s.exec(ctx, "reset guild prefixes", `DELETE FROM guild_prefixes WHERE guild_id = ?`, &sqlitex.ExecOptions{Args: []any{guild}})
		put()
		return err
	}
	b, err := json.Marshal(prefixes)
	if err != nil {
		return fmt.Errorf("couldn't encode prefixes: %w", err)
	}
	const q = `INSERT INTO guild_prefixes (guild_id, prefixes) VALUES (?, ?)
		ON CONFLICT (guild_id) DO UPDATE SET prefixes = excluded.prefixes`
	_, put, err := s.exec(ctx, "set guild prefixes", q, &sqlitex.ExecOptions{Args: []any{guild, string(b)}})
	put()
	return err
}

// HigherLowerHighscore returns a user's best higher/lower streak.
func (s *Store) HigherLowerHighscore(ctx context.Context, discord, game string) (int, error) {
	var n int
	opts := sqlitex.ExecOptions{
		Args: []any{discord, game},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			n = stmt.ColumnInt(0)
			return nil
		},
	}
	const q = `SELECT highscore FROM higherlower_scores WHERE discord_id = ? AND game = ?`
	_, put, err := s.exec(ctx, "get higher/lower highscore", q, &opts)
	put()
	return n, err
}

// RecordHigherLower records a streak if it beats the user's highscore.
func (s *Store) RecordHigherLower(ctx context.Context, discord, game string, score int) (bool, error) {
	if score <= 0 {
		return false, nil
	}
	const q = `INSERT INTO higherlower_scores (discord_id, game, highscore) VALUES (?, ?, ?)
		ON CONFLICT (discord_id, game) DO UPDATE SET highscore = excluded.highscore
		WHERE highscore < excluded.highscore`
	conn, put, err := s.exec(ctx, "record higher/lower score", q, &sqlitex.ExecOptions{Args: []any{discord, game, score}})
	defer put()
	if err != nil {
		return false, err
	}
	return conn.Changes() != 0, nil
}

// AddBgMapsets adds mapsets to the background game pool.
func (s *Store) AddBgMapsets(ctx context.Context, ids []int64) (n int, err error) {
	if len(ids) == 0 {
		return 0, nil
	}
	conn, err := s.db.Take(ctx)
	defer s.db.Put(conn)
	if err != nil {
		return 0, fmt.Errorf("couldn't get connection to add background mapsets: %w", err)
	}
	defer sqlitex.Transaction(conn)(&err)
	for _, id := range ids {
		err := sqlitex.Execute(conn, `INSERT INTO bg_mapsets (mapset_id) VALUES (?) ON CONFLICT DO NOTHING`, &sqlitex.ExecOptions{Args: []any{id}})
		if err != nil {
			return 0, fmt.Errorf("couldn't add background mapset %d: %w", id, err)
		}
		n += conn.Changes()
	}
	return n, nil
}

// UntaggedBgMapsets lists mapsets whose tags have not been reviewed.
func (s *Store) UntaggedBgMapsets(ctx context.Context, limit int) ([]int64, error) {
	const q = `SELECT mapset_id FROM bg_mapsets WHERE NOT tagged ORDER BY mapset_id LIMIT ?`
	return s.ids(ctx, q, limit)
}

// BgMapsetTags returns the tags of a mapset.
func (s *Store) BgMapsetTags(ctx context.Context, id int64) (bgtag.Tags, error) {
	var t int64
	found := false
	opts := sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			t, found = stmt.ColumnInt64(0), true
			return nil
		},
	}
	_, put, err := s.exec(ctx, "get mapset tags", `SELECT tags FROM bg_mapsets WHERE mapset_id = ?`, &opts)
	defer put()
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, store.ErrNotFound
	}
	return bgtag.Tags(t), nil
}

// SetBgMapsetTags sets the tags of a mapset and marks it reviewed.
func (s *Store) SetBgMapsetTags(ctx context.Context, id int64, tags bgtag.Tags) error {
	const q = `UPDATE bg_mapsets SET tags = ?, tagged = 1 WHERE mapset_id = ?`
	conn, put, err := s.exec(ctx, "set mapset tags", q, &sqlitex.ExecOptions{Args: []any{int64(tags), id}})
	defer put()
	if err != nil {
		return err
	}
	if conn.Changes() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// BgMapsetsTagged lists mapsets with all of tags and none of exclude.
func (s *Store) BgMapsetsTagged(ctx context.Context, tags, exclude bgtag.Tags) ([]int64, error) {
	const q = `SELECT mapset_id FROM bg_mapsets WHERE tagged AND tags & ?1 = ?1 AND tags & ?2 = 0 ORDER BY mapset_id`
	return s.ids(ctx, q, int64(tags), int64(exclude))
}

func (s *Store) ids(ctx context.Context, q string, args ...any) ([]int64, error) {
	var r []int64
	opts := sqlitex.ExecOptions{
		Args: args,
		ResultFunc: func(stmt *sqlite.Stmt) error {
			r = append(r, stmt.ColumnInt64(0))
			return nil
		},
	}
	_, put, err := s.exec(ctx, "list mapsets", q, &opts)
	put()
	return r, err
}

// SkinURL returns a user's skin URL.
func (s *Store) SkinURL(ctx context.Context, discord string) (string, error) {
	var u string
	found := false
	opts := sqlitex.ExecOptions{
		Args: []any{discord},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			u, found = stmt.ColumnText(0), true
			return nil
		},
	}
	_, put, err := s.exec(ctx, "get skin", `SELECT url FROM skins WHERE discord_id = ?`, &opts)
	defer put()
	if err != nil {
		return "", err
	}
	if !found {
		return "", store.ErrNotFound
	}
	return u, nil
}

// SetSkinURL sets or removes a user's skin URL.
func (s *Store) SetSkinURL(ctx context.Context, discord, url string) error {
	if url == "" {
		_, put, err := s.exec(ctx, "remove skin", `DELETE FROM skins WHERE discord_id = ?`, &sqlitex.ExecOptions{Args: []any{discord}})
		put()
		return err
	}
	const q = `INSERT INTO skins (discord_id, url) VALUES (?, ?)
		ON CONFLICT (discord_id) DO UPDATE SET url = excluded.url`
	_, put, err := s.exec(ctx, "set skin", q, &sqlitex.ExecOptions{Args: []any{discord, url}})
	put()
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
