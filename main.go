package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/zephyrtronium/bathbot/command"
	"github.com/zephyrtronium/bathbot/metrics"
)

var app = cli.Command{
	Name:  "bathbot",
	Usage: "osu! Discord bot",

	Flags: []cli.Flag{
		&flagConfig,
		&flagLog,
		&flagLogFormat,
	},
	Commands: []*cli.Command{
		{
			Name:   "register",
			Usage:  "Replace the bot's slash commands and exit",
			Action: cliRegister,
		},
		{
			Name:   "init",
			Usage:  "Create the database schema and exit",
			Action: cliInit,
		},
		{
			Name:      "bgadd",
			Usage:     "Add mapsets to the background game pool",
			ArgsUsage: "mapset...",
			Action:    cliBgAdd,
		},
	},
	Action: cliRun,

	Authors: []any{
		"Branden J Brown  @zephyrtronium",
	},
	Copyright: "Copyright 2024 Branden J Brown",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := app.Run(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
	}
}

// config loads the configuration named by the --config flag.
func config(ctx context.Context, cmd *cli.Command) (*Config, error) {
	r, err := os.Open(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer r.Close()
	cfg, _, err := Load(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("couldn't load config: %w", err)
	}
	return cfg, nil
}

func cliRun(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, err := config(ctx, cmd)
	if err != nil {
		return err
	}
	b, err := newBot(ctx, cfg, newMetrics())
	if err != nil {
		return err
	}
	return b.Run(ctx, cfg.HTTP.Listen)
}

func cliRegister(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, err := config(ctx, cmd)
	if err != nil {
		return err
	}
	session, err := newSession(cfg.Discord.TokenFile)
	if err != nil {
		return err
	}
	return register(ctx, session, cfg.Discord.Guild)
}

func cliInit(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, err := config(ctx, cmd)
	if err != nil {
		return err
	}
	// Opening a store creates its schema.
	st, err := loadStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "database initialized")
	return st.Close()
}

func cliBgAdd(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	ids, bad := command.ParseMapsets(strings.Join(cmd.Args().Slice(), " "))
	if len(bad) != 0 {
		return fmt.Errorf("not mapsets: %s", strings.Join(bad, ", "))
	}
	if len(ids) == 0 {
		return errors.New("no mapsets to add")
	}
	cfg, err := config(ctx, cmd)
	if err != nil {
		return err
	}
	st, err := loadStore(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer st.Close()
	n, err := st.AddBgMapsets(ctx, ids)
	if err != nil {
		return fmt.Errorf("couldn't add mapsets: %w", err)
	}
	slog.InfoContext(ctx, "added mapsets", slog.Int("given", len(ids)), slog.Int("added", n))
	return nil
}

var (
	flagConfig = cli.StringFlag{
		Name:       "config",
		Required:   true,
		Usage:      "TOML config file",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			i, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !i.Mode().IsRegular() {
				return errors.New("config must be a regular file")
			}
			return nil
		},
	}

	flagLog = cli.StringFlag{
		Name:       "log",
		Usage:      "Logging level, one of debug, info, warn, error",
		Value:      "info",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			var l slog.Level
			return l.UnmarshalText([]byte(s))
		},
	}

	flagLogFormat = cli.StringFlag{
		Name:       "log-format",
		Usage:      "Logging format, either text or json",
		Value:      "text",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "text", "json":
				return nil
			default:
				return errors.New("unknown logging format")
			}
		},
	}
)

func loggerFromFlags(cmd *cli.Command) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cmd.String("log"))); err != nil {
		panic(err)
	}
	var h slog.Handler
	switch strings.ToLower(cmd.String("log-format")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	case "json":
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	}
	return slog.New(h)
}

// metrics configuration
func newMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		CommandCount: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "bathbot",
					Subsystem: "commands",
					Name:      "invocations",
					Help:      "Number of command invocations by command and by slash or prefix.",
				},
				[]string{"command", "kind"},
			),
		),
		CommandLatency: metrics.NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10},
					Namespace: "bathbot",
					Subsystem: "commands",
					Name:      "latency",
					Help:      "How long commands take to handle in seconds",
				},
				[]string{"command"},
			),
		),
		ActiveMessages: metrics.NewPromGauge(
			prometheus.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "bathbot",
					Subsystem: "active",
					Name:      "messages",
					Help:      "Number of live active messages.",
				},
			),
		),
		ActiveEvents: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "bathbot",
					Subsystem: "active",
					Name:      "events",
					Help:      "Number of active message events by message kind and event.",
				},
				[]string{"kind", "event"},
			),
		),
		OsuLatency: metrics.NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10},
					Namespace: "bathbot",
					Subsystem: "osu",
					Name:      "latency",
					Help:      "How long osu! API requests take in seconds",
				},
				[]string{"endpoint"},
			),
		),
		CacheLookups: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "bathbot",
					Subsystem: "cache",
					Name:      "lookups",
					Help:      "Number of cache lookups by result.",
				},
				[]string{"result"},
			),
		),
	}
}
