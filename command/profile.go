package command

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/bathbot/active"
	"github.com/zephyrtronium/bathbot/country"
	"github.com/zephyrtronium/bathbot/format"
	"github.com/zephyrtronium/bathbot/osu"
)

// Profile shows a user's statistics with their best and most recent plays.
//   - user: osu! username or Discord mention. Defaults to the invoker's link.
//   - mode: Game mode. Defaults to the user's main mode.
func Profile(ctx context.Context, robo *Robot, call *Invocation) {
	m, err := mode(call)
	if err != nil {
		userFailed(ctx, call, err)
		return
	}
	if err := call.Defer(ctx, false); err != nil {
		call.Fail(ctx, "couldn't defer profile", err)
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
	var best, recent []osu.Score
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		best, err = robo.Osu.UserScores(gctx, u.ID, osu.Best, m, 3, 0)
		return err
	})
	group.Go(func() error {
		var err error
		recent, err = robo.Osu.UserScores(gctx, u.ID, osu.Recent, m, 1, 0)
		return err
	})
	if err := group.Wait(); err != nil {
		call.Fail(ctx, "couldn't get profile scores", err)
		return
	}
	call.Send(ctx, &active.Page{Embeds: []*discordgo.MessageEmbed{profileEmbed(u, m, best, recent)}})
}

func profileEmbed(u *osu.User, m osu.Mode, best, recent []osu.Score) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Author: &discordgo.MessageEmbedAuthor{
			Name: u.Username + " • " + m.Name(),
			URL:  "https://osu.ppy.sh/users/" + strconv.FormatInt(u.ID, 10) + "/" + string(m),
		},
		Thumbnail: &discordgo.MessageEmbedThumbnail{URL: u.AvatarURL},
		Footer:    &discordgo.MessageEmbedFooter{Text: "Joined"},
		Timestamp: u.JoinDate.Format(time.RFC3339),
		Color:     accent,
	}
	st := u.Statistics
	if st == nil {
		e.Description = "No statistics in " + m.Name() + "."
		return e
	}
	var sb strings.Builder
	sb.WriteString("**" + format.PP(st.PP) + "** • " + format.Rank(st.GlobalRank))
	if u.CountryCode != "" {
		sb.WriteString(" • " + country.Flag(u.CountryCode) + " " + format.Rank(st.CountryRank))
	}
	sb.WriteString("\nAccuracy " + strconv.FormatFloat(st.HitAccuracy, 'f', 2, 64) + "%")
	sb.WriteString(" • Level " + strconv.Itoa(st.Level.Current) + "." + pad2(st.Level.Progress))
	sb.WriteString("\nPlaycount " + format.Int(st.PlayCount) + " • Playtime " + strconv.FormatInt(st.PlayTime/3600, 10) + "h")
	sb.WriteString("\nMax combo " + format.Int(st.MaximumCombo) + " • Ranked score " + format.Int(st.RankedScore))
	g := st.GradeCounts
	sb.WriteString("\nSS+ " + strconv.Itoa(g.SSH) + " • SS " + strconv.Itoa(g.SS) + " • S+ " + strconv.Itoa(g.SH) + " • S " + strconv.Itoa(g.S) + " • A " + strconv.Itoa(g.A))
	e.Description = sb.String()
	if len(best) != 0 {
		lines := make([]string, len(best))
		for i := range best {
			lines[i] = format.ScoreLine(i+1, &best[i], true)
		}
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Top plays", Value: format.Truncate(strings.Join(lines, "\n"), fieldLimit)})
	}
	if len(recent) != 0 {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{Name: "Most recent", Value: format.Truncate(format.ScoreLine(1, &recent[0], true), fieldLimit)})
	}
	return e
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// accent is the color of informational embeds.
const accent = 0xff66aa

// fieldLimit is the maximum length of an embed field value.
const fieldLimit = 1024
