package command

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/zephyrtronium/bathbot/cache"
	"github.com/zephyrtronium/bathbot/format"
	"github.com/zephyrtronium/bathbot/store"
)

const (
	// maxPrefixes is the number of prefixes a guild may have.
	maxPrefixes = 5
	// maxPrefixLen is the length in runes of the longest allowed prefix.
	maxPrefixLen = 10
	// prefixTTL is how long guild prefixes are cached.
	prefixTTL = 10 * time.Minute
)

// GuildPrefixes returns the command prefixes of a guild, falling back to the
// defaults.
func GuildPrefixes(ctx context.Context, robo *Robot, guild string) ([]string, error) {
	if guild == "" {
		return robo.Prefixes, nil
	}
	p, err := cache.Fetch(ctx, robo.Cache, robo.Metrics.CacheLookups, prefixKey(guild), prefixTTL, func(ctx context.Context) ([]string, error) {
		p, err := robo.Store.GuildPrefixes(ctx, guild)
		if errors.Is(err, store.ErrNotFound) {
			// Cache the absence as an empty list.
			return []string{}, nil
		}
		return p, err
	})
	if err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return robo.Prefixes, nil
	}
	return p, nil
}

func prefixKey(guild string) string { return "prefixes:" + guild }

// Prefix shows or sets the guild's command prefixes. Setting requires the
// Manage Server permission.
//   - prefixes: New prefixes separated by spaces, or "default".
func Prefix(ctx context.Context, robo *Robot, call *Invocation) {
	if call.Guild == "" {
		call.Reply(ctx, "Prefixes can only be set in servers.")
		return
	}
	arg := strings.TrimSpace(call.Args["prefixes"])
	if arg == "" {
		p, err := GuildPrefixes(ctx, robo, call.Guild)
		if err != nil {
			call.Fail(ctx, "couldn't get prefixes", err)
			return
		}
		call.Reply(ctx, "Prefixes here: "+quotePrefixes(p))
		return
	}
	if call.Permissions&discordgo.PermissionManageGuild == 0 && call.User != robo.Owner {
		call.Private(ctx, "You need the Manage Server permission to change prefixes.")
		return
	}
	var p []string
	if !strings.EqualFold(arg, "default") {
		p = strings.Fields(arg)
		if len(p) > maxPrefixes {
			call.Private(ctx, "A server can have at most 5 prefixes.")
			return
		}
		for _, v := range p {
			if utf8.RuneCountInString(v) > maxPrefixLen {
				call.Private(ctx, "Prefixes can be at most 10 characters long.")
				return
			}
		}
	}
	if err := robo.Store.SetGuildPrefixes(ctx, call.Guild, p); err != nil {
		call.Fail(ctx, "couldn't set prefixes", err)
		return
	}
	if err := robo.Cache.Delete(ctx, prefixKey(call.Guild)); err != nil {
		call.Log.WarnContext(ctx, "couldn't clear cached prefixes", "err", err)
	}
	if len(p) == 0 {
		p = robo.Prefixes
	}
	call.Reply(ctx, "Prefixes here are now "+quotePrefixes(p))
}

func quotePrefixes(p []string) string {
	q := make([]string, len(p))
	for i, v := range p {
		q[i] = "`" + strings.ReplaceAll(format.Escape(v), "`", "'") + "`"
	}
	return strings.Join(q, " ")
}
