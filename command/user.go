package command

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zephyrtronium/bathbot/cache"
	"github.com/zephyrtronium/bathbot/osu"
	"github.com/zephyrtronium/bathbot/store"
)

// errNoLink is returned when a command needs a linked account that does not
// exist.
var errNoLink = errors.New("no linked osu! account")

// errBadMode is returned for a mode argument that names no mode.
var errBadMode = errors.New("unknown mode")

var mention = regexp.MustCompile(`^<@!?(\d+)>$`)

// userTTL is how long user profiles are cached.
const userTTL = 5 * time.Minute

// mode parses the "mode" argument. An empty mode means the user's default.
func mode(call *Invocation) (osu.Mode, error) {
	s := call.Args["mode"]
	if s == "" {
		return "", nil
	}
	m, ok := osu.ParseMode(s)
	if !ok {
		return "", errBadMode
	}
	return m, nil
}

// target resolves the osu! user a command is about. The "user" argument may
// be an osu! username or a mention of a Discord user with a linked account.
// Without it, the invoker's linked account is used.
func target(ctx context.Context, robo *Robot, call *Invocation, m osu.Mode) (*osu.User, error) {
	name := strings.TrimSpace(call.Args["user"])
	discord := call.User
	if sub := mention.FindStringSubmatch(name); sub != nil {
		discord, name = sub[1], ""
	}
	if name != "" {
		key := "user:" + string(m) + ":name:" + strings.ToLower(name)
		return cache.Fetch(ctx, robo.Cache, robo.Metrics.CacheLookups, key, userTTL, func(ctx context.Context) (*osu.User, error) {
			return robo.Osu.UserByName(ctx, name, m)
		})
	}
	id, err := robo.Store.LinkedOsu(ctx, discord)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errNoLink
		}
		return nil, err
	}
	return userByID(ctx, robo, id, m)
}

func userByID(ctx context.Context, robo *Robot, id int64, m osu.Mode) (*osu.User, error) {
	key := "user:" + string(m) + ":id:" + strconv.FormatInt(id, 10)
	return cache.Fetch(ctx, robo.Cache, robo.Metrics.CacheLookups, key, userTTL, func(ctx context.Context) (*osu.User, error) {
		return robo.Osu.UserByID(ctx, id, m)
	})
}

// userFailed responds to an error resolving a user.
func userFailed(ctx context.Context, call *Invocation, err error) {
	switch {
	case errors.Is(err, errNoLink):
		call.Private(ctx, "No linked osu! account. Use `/link` with your osu! username first, or name a user.")
	case errors.Is(err, errBadMode):
		call.Private(ctx, "I don't know that mode. Try osu, taiko, catch, or mania.")
	case errors.Is(err, osu.ErrNotFound):
		call.Private(ctx, "I couldn't find that osu! user.")
	default:
		call.Fail(ctx, "couldn't get user", err)
	}
}
