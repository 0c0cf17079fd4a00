package command

import (
	"context"
	"log/slog"

	"github.com/zephyrtronium/bathbot/higherlower"
	"github.com/zephyrtronium/bathbot/osu"
)

// HigherLower starts a game of guessing whether the next top play is worth
// more or less pp than the previous one.
//   - mode: Game mode. Defaults to osu!.
func HigherLower(ctx context.Context, robo *Robot, call *Invocation) {
	m, err := mode(call)
	if err != nil {
		userFailed(ctx, call, err)
		return
	}
	if m == "" {
		m = osu.Osu
	}
	if err := call.Defer(ctx, false); err != nil {
		call.Fail(ctx, "couldn't defer higherlower", err)
		return
	}
	src := &higherlower.ScoreSource{API: robo.Osu, Mode: m}
	g, err := higherlower.New(ctx, src)
	if err != nil {
		call.Fail(ctx, "couldn't start higherlower", err)
		return
	}
	msg, err := higherlower.NewMessage(ctx, call.Log.With(slog.String("kind", "higherlower")), g, robo.Store, call.User)
	if err != nil {
		call.Fail(ctx, "couldn't start higherlower", err)
		return
	}
	call.Begin(ctx, robo, "higherlower", msg)
}
