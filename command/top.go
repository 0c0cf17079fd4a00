package command

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/zephyrtronium/bathbot/active"
	"github.com/zephyrtronium/bathbot/format"
	"github.com/zephyrtronium/bathbot/osu"
	"github.com/zephyrtronium/bathbot/pagination"
)

// topPerPage is the number of scores on each page of a top list.
const topPerPage = 5

// Top pages through a user's best, recent, or first-place scores.
//   - user: osu! username or Discord mention. Defaults to the invoker's link.
//   - mode: Game mode. Defaults to the user's main mode.
//   - kind: best, recent, or firsts. Defaults to best.
func Top(ctx context.Context, robo *Robot, call *Invocation) {
	m, err := mode(call)
	if err != nil {
		userFailed(ctx, call, err)
		return
	}
	kind := osu.Best
	switch strings.ToLower(call.Args["kind"]) {
	case "", "best", "top":
	case "recent", "rs":
		kind = osu.Recent
	case "firsts", "first", "1s":
		kind = osu.Firsts
	default:
		call.Private(ctx, "I can list best, recent, or firsts scores.")
		return
	}
	if err := call.Defer(ctx, false); err != nil {
		call.Fail(ctx, "couldn't defer top", err)
		return
	}
	u, err := target(ctx, robo, call, m)
	if err != nil {
		userFailed(ctx, call, err)
		return
	}
	if m == "" {
		m = u.PlayMode
	}
	scores, err := robo.Osu.UserScores(ctx, u.ID, kind, m, 100, 0)
	if err != nil {
		call.Fail(ctx, "couldn't get scores", err)
		return
	}
	if len(scores) == 0 {
		call.Reply(ctx, format.Escape(u.Username)+" has no "+string(kind)+" scores in "+m.Name()+".")
		return
	}
	title := topTitle(kind) + " of " + u.Username + " • " + m.Name()
	content := scoreList(title, u.AvatarURL, scores, true)
	msg := robo.paged(call.User, pagination.New(topPerPage, len(scores)), content)
	call.Begin(ctx, robo, "top", msg)
}

func topTitle(kind osu.ScoreKind) string {
	switch kind {
	case osu.Recent:
		return "Recent scores"
	case osu.Firsts:
		return "First places"
	default:
		return "Top plays"
	}
}

// scoreList renders pages of a list of scores. withMap selects whether each
// line names the map or the player.
func scoreList(title, thumbnail string, scores []osu.Score, withMap bool) pagination.ContentFunc {
	return func(ctx context.Context, pages *pagination.Pages) (*active.Page, error) {
		lo, hi := pages.Bounds()
		lines := make([]string, 0, hi-lo)
		for i := lo; i < hi; i++ {
			lines = append(lines, format.ScoreLine(i+1, &scores[i], withMap))
		}
		e := &discordgo.MessageEmbed{
			Title:       format.Truncate(title, titleLimit),
			Description: format.Truncate(strings.Join(lines, "\n"), descriptionLimit),
			Color:       accent,
			Footer:      &discordgo.MessageEmbedFooter{Text: pages.Footer() + " • " + strconv.Itoa(len(scores)) + " scores"},
		}
		if thumbnail != "" {
			e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumbnail}
		}
		return &active.Page{Embeds: []*discordgo.MessageEmbed{e}}, nil
	}
}

// Embed length limits.
const (
	titleLimit       = 256
	descriptionLimit = 4096
)
