package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/zephyrtronium/bathbot/active"
	"github.com/zephyrtronium/bathbot/command"
)

// newSession creates a Discord session with the token read from a file.
func newSession(tokenFile string) (*discordgo.Session, error) {
	token, err := os.ReadFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("couldn't read Discord token: %w", err)
	}
	session, err := discordgo.New("Bot " + strings.TrimSpace(string(token)))
	if err != nil {
		return nil, fmt.Errorf("couldn't create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent
	return session, nil
}

// handle registers the session's event handlers.
func (b *Bot) handle(ctx context.Context) {
	b.session.AddHandler(func(s *discordgo.Session, ev *discordgo.Ready) {
		slog.InfoContext(ctx, "connected to Discord",
			slog.String("user", ev.User.Username),
			slog.String("id", ev.User.ID),
			slog.Int("guilds", len(ev.Guilds)),
		)
	})
	b.session.AddHandler(func(s *discordgo.Session, ev *discordgo.InteractionCreate) {
		b.interaction(ctx, ev.Interaction)
	})
	b.session.AddHandler(func(s *discordgo.Session, ev *discordgo.MessageCreate) {
		b.message(ctx, s, ev.Message)
	})
}

func (b *Bot) interaction(ctx context.Context, i *discordgo.Interaction) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		fn := slashCommands[name]
		if fn == nil {
			slog.WarnContext(ctx, "unknown slash command", slog.String("name", name))
			return
		}
		call := command.FromInteraction(b.session, i, nil)
		call.Log = invocationLog(name, "slash", call)
		b.invoke(ctx, name, "slash", fn, call)
	case discordgo.InteractionMessageComponent, discordgo.InteractionModalSubmit:
		err := b.robo.Active.Handle(ctx, i)
		switch {
		case err == nil: // do nothing
		case errors.Is(err, active.ErrNotActive):
			slog.DebugContext(ctx, "interaction on inactive message", slog.String("interaction", i.ID))
		default:
			slog.ErrorContext(ctx, "couldn't handle interaction", slog.String("interaction", i.ID), slog.Any("err", err))
		}
	}
}

func (b *Bot) message(ctx context.Context, s *discordgo.Session, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	prefixes, err := command.GuildPrefixes(ctx, b.robo, m.GuildID)
	if err != nil {
		slog.ErrorContext(ctx, "couldn't get prefixes", slog.String("guild", m.GuildID), slog.Any("err", err))
		prefixes = b.robo.Prefixes
	}
	var me string
	if s.State != nil && s.State.User != nil {
		me = s.State.User.ID
	}
	text, ok := parsePrefix(prefixes, me, m.Content)
	if !ok {
		return
	}
	c, args := findPrefix(prefixAny, text)
	if c == nil {
		return
	}
	call := command.FromMessage(s, m, args, nil)
	call.Log = invocationLog(c.name, "prefix", call)
	if m.GuildID != "" && s.State != nil {
		// Message members don't carry permissions, so compute them.
		if p, err := s.State.UserChannelPermissions(m.Author.ID, m.ChannelID); err == nil {
			call.Permissions = p
		}
	}
	b.invoke(ctx, c.name, "prefix", c.fn, call)
}

func invocationLog(name, kind string, call *command.Invocation) *slog.Logger {
	return slog.With(
		slog.String("trace", uuid.NewString()),
		slog.String("command", name),
		slog.String("kind", kind),
		slog.String("user", call.User),
		slog.String("guild", call.Guild),
	)
}

func (b *Bot) invoke(ctx context.Context, name, kind string, fn command.Func, call *command.Invocation) {
	call.Log.InfoContext(ctx, "command", slog.Any("args", call.Args))
	b.met.CommandCount.Observe(1, name, kind)
	start := time.Now()
	fn(ctx, b.robo, call)
	d := time.Since(start)
	b.met.CommandLatency.Observe(d.Seconds(), name)
	call.Log.DebugContext(ctx, "command done", slog.Duration("took", d))
}

// register replaces the application's slash commands.
func register(ctx context.Context, session *discordgo.Session, guild string) error {
	app, err := session.Application("@me")
	if err != nil {
		return fmt.Errorf("couldn't get application: %w", err)
	}
	cmds, err := session.ApplicationCommandBulkOverwrite(app.ID, guild, applicationCommands, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("couldn't update slash commands: %w", err)
	}
	slog.InfoContext(ctx, "registered slash commands", slog.String("app", app.ID), slog.String("guild", guild), slog.Int("count", len(cmds)))
	return nil
}

// slashCommands maps application command names to their handlers.
var slashCommands = map[string]command.Func{
	"link":           command.Link,
	"unlink":         command.Unlink,
	"profile":        command.Profile,
	"top":            command.Top,
	"leaderboard":    command.Leaderboard,
	"ranking":        command.Ranking,
	"higherlower":    command.HigherLower,
	"dailychallenge": command.DailyChallenge,
	"bgtags":         command.BgTags,
	"skin":           command.Skin,
	"prefix":         command.Prefix,
	"info":           command.Info,
}

var modeChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "osu!", Value: "osu"},
	{Name: "osu!taiko", Value: "taiko"},
	{Name: "osu!catch", Value: "fruits"},
	{Name: "osu!mania", Value: "mania"},
}

func modeOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "mode",
		Description: "Game mode",
		Choices:     modeChoices,
	}
}

func userOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "user",
		Description: "osu! username or a mention of someone with a linked account",
	}
}

var applicationCommands = []*discordgo.ApplicationCommand{
	{
		Name:        "link",
		Description: "Link your osu! account",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "user",
				Description: "Your osu! username",
				Required:    true,
			},
		},
	},
	{
		Name:        "unlink",
		Description: "Unlink your osu! account",
	},
	{
		Name:        "profile",
		Description: "Show an osu! profile",
		Options:     []*discordgo.ApplicationCommandOption{userOption(), modeOption()},
	},
	{
		Name:        "top",
		Description: "List a user's best, recent, or first place scores",
		Options: []*discordgo.ApplicationCommandOption{
			userOption(),
			modeOption(),
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "kind",
				Description: "Which scores to list",
				Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "Best", Value: "best"},
					{Name: "Recent", Value: "recent"},
					{Name: "First places", Value: "firsts"},
				},
			},
		},
	},
	{
		Name:        "leaderboard",
		Description: "Show a beatmap's leaderboard",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "map",
				Description: "Beatmap ID or link",
				Required:    true,
			},
			modeOption(),
		},
	},
	{
		Name:        "ranking",
		Description: "Show the performance rankings",
		Options: []*discordgo.ApplicationCommandOption{
			modeOption(),
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "country",
				Description: "Country name or code",
			},
		},
	},
	{
		Name:        "higherlower",
		Description: "Play higher or lower with top plays",
		Options:     []*discordgo.ApplicationCommandOption{modeOption()},
	},
	{
		Name:        "dailychallenge",
		Description: "Show the daily challenges",
	},
	{
		Name:        "bgtags",
		Description: "Manage background game tags",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "edit",
				Description: "Tag untagged mapsets",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Add mapsets to the background pool",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "mapsets",
						Description: "Mapset IDs or links",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "count",
				Description: "Count tagged mapsets",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "tags",
						Description: "Tags the mapsets must have",
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "exclude",
						Description: "Tags the mapsets must not have",
					},
				},
			},
		},
	},
	{
		Name:        "skin",
		Description: "Show or set skins",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "show",
				Description: "Show someone's skin",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Whose skin to show",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Set your skin",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "url",
						Description: "Link to your skin",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Remove your skin",
			},
		},
	},
	{
		Name:        "prefix",
		Description: "Show or set this server's command prefixes",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "prefixes",
				Description: `New prefixes separated by spaces, or "default"`,
			},
		},
	},
	{
		Name:        "info",
		Description: "Show bot status",
	},
}
