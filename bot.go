package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/bathbot/active"
	"github.com/zephyrtronium/bathbot/command"
	"github.com/zephyrtronium/bathbot/metrics"
)

// Bot is the running bot: a Discord session serving commands.
type Bot struct {
	robo    *command.Robot
	session *discordgo.Session
	met     *metrics.Metrics
	// guild is the guild to which to register slash commands, or empty to
	// register them globally.
	guild string
}

// newBot connects to the configured services. The Discord session is
// created but not opened.
func newBot(ctx context.Context, cfg *Config, met *metrics.Metrics) (*Bot, error) {
	session, err := newSession(cfg.Discord.TokenFile)
	if err != nil {
		return nil, err
	}
	api, err := loadOsu(cfg.Osu, met)
	if err != nil {
		return nil, err
	}
	st, err := loadStore(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	c, err := loadCache(ctx, cfg.Cache)
	if err != nil {
		st.Close()
		return nil, err
	}
	prefixes := cfg.Discord.Prefixes
	if len(prefixes) == 0 {
		prefixes = []string{"<"}
	}
	b := &Bot{
		robo: &command.Robot{
			Log:      slog.Default(),
			Osu:      api,
			Store:    st,
			Cache:    c,
			Active:   active.New(session, slog.Default(), met),
			Metrics:  met,
			Owner:    cfg.Owner.ID,
			Prefixes: prefixes,
			Started:  time.Now(),
			PageTTL:  fseconds(cfg.Active.TTL),
		},
		session: session,
		met:     met,
		guild:   cfg.Discord.Guild,
	}
	b.handle(ctx)
	return b, nil
}

// Run connects to Discord and serves the HTTP API until ctx is canceled.
// Active messages are expired and every connection is closed before Run
// returns.
func (b *Bot) Run(ctx context.Context, listen string) error {
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return b.api(ctx, listen, http.NewServeMux(), b.met.Collectors())
	})
	group.Go(func() error {
		if err := b.session.Open(); err != nil {
			return fmt.Errorf("couldn't connect to Discord: %w", err)
		}
		<-ctx.Done()
		return nil
	})
	err := group.Wait()
	return errors.Join(err, b.shutdown())
}

func (b *Bot) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Expire active messages while the session can still edit them.
	b.robo.Active.Shutdown(ctx)
	var errs []error
	if err := b.session.Close(); err != nil {
		errs = append(errs, fmt.Errorf("couldn't close Discord session: %w", err))
	}
	if err := b.robo.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("couldn't close store: %w", err))
	}
	if err := b.robo.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("couldn't close cache: %w", err))
	}
	slog.InfoContext(ctx, "shut down", slog.Int("errors", len(errs)))
	return errors.Join(errs...)
}

// ready reports whether the Discord session is connected.
func (b *Bot) ready() bool {
	b.session.RLock()
	defer b.session.RUnlock()
	return b.session.DataReady
}
