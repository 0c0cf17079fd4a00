package command

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/zephyrtronium/bathbot/format"
	"github.com/zephyrtronium/bathbot/osu"
	"github.com/zephyrtronium/bathbot/store"
)

// Link links the invoker's Discord account to an osu! account.
//   - user: osu! username.
func Link(ctx context.Context, robo *Robot, call *Invocation) {
	name := strings.TrimSpace(call.Args["user"])
	if name == "" {
		call.Private(ctx, "Tell me your osu! username to link it.")
		return
	}
	if err := call.Defer(ctx, true); err != nil {
		call.Fail(ctx, "couldn't defer link", err)
		return
	}
	u, err := robo.Osu.UserByName(ctx, name, "")
	if err != nil {
		if errors.Is(err, osu.ErrNotFound) {
			call.Private(ctx, "I couldn't find an osu! user named "+format.Escape(name)+".")
			return
		}
		call.Fail(ctx, "couldn't look up user to link", err)
		return
	}
	if err := robo.Store.Link(ctx, call.User, u.ID); err != nil {
		call.Fail(ctx, "couldn't link", err)
		return
	}
	call.Log.InfoContext(ctx, "linked", slog.Int64("osu", u.ID), slog.String("name", u.Username))
	call.Private(ctx, "Linked you to **"+format.Escape(u.Username)+"**.")
}

// Unlink removes the invoker's linked osu! account.
func Unlink(ctx context.Context, robo *Robot, call *Invocation) {
	if _, err := robo.Store.LinkedOsu(ctx, call.User); err != nil {
		// Report a missing link, but still try to unlink on other errors.
		if errors.Is(err, store.ErrNotFound) {
			call.Private(ctx, "You don't have a linked osu! account.")
			return
		}
	}
	if err := robo.Store.Unlink(ctx, call.User); err != nil {
		call.Fail(ctx, "couldn't unlink", err)
		return
	}
	call.Log.InfoContext(ctx, "unlinked")
	call.Private(ctx, "Unlinked your osu! account.")
}
