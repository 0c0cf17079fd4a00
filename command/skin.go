package command

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/zephyrtronium/bathbot/skin"
	"github.com/zephyrtronium/bathbot/store"
)

var snowflake = regexp.MustCompile(`^\d+$`)

// Skin shows, sets, or removes a user's skin link.
//   - sub: show, set, or remove. Defaults to show.
//   - url: For set, the skin link.
//   - user: For show, a Discord mention or user ID. Defaults to the invoker.
func Skin(ctx context.Context, robo *Robot, call *Invocation) {
	switch call.Args["sub"] {
	case "", "show":
		who := call.User
		arg := strings.TrimSpace(call.Args["user"])
		if sub := mention.FindStringSubmatch(arg); sub != nil {
			who = sub[1]
		} else if snowflake.MatchString(arg) {
			// User options of slash commands give bare IDs.
			who = arg
		}
		u, err := robo.Store.SkinURL(ctx, who)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				call.Reply(ctx, "<@"+who+"> hasn't set a skin.")
				return
			}
			call.Fail(ctx, "couldn't get skin", err)
			return
		}
		call.Reply(ctx, "<@"+who+">'s skin: "+u)
	case "set":
		u, err := skin.Validate(call.Args["url"])
		if err != nil {
			call.Private(ctx, skinProblem(err))
			return
		}
		if err := robo.Store.SetSkinURL(ctx, call.User, u); err != nil {
			call.Fail(ctx, "couldn't set skin", err)
			return
		}
		call.Private(ctx, "Set your skin to "+u)
	case "remove":
		if err := robo.Store.SetSkinURL(ctx, call.User, ""); err != nil {
			call.Fail(ctx, "couldn't remove skin", err)
			return
		}
		call.Private(ctx, "Removed your skin.")
	default:
		call.Private(ctx, "I can show, set, or remove skins.")
	}
}

func skinProblem(err error) string {
	switch {
	case errors.Is(err, skin.ErrTooLong):
		return "That link is too long."
	case errors.Is(err, skin.ErrScheme):
		return "Skin links must start with http:// or https://."
	case errors.Is(err, skin.ErrHost):
		return "I only accept skins hosted on osu!, skin sites, or common file hosts."
	default:
		return "That isn't a link."
	}
}
