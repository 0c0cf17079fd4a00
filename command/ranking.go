package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zephyrtronium/bathbot/active"
	"github.com/zephyrtronium/bathbot/cache"
	"github.com/zephyrtronium/bathbot/country"
	"github.com/zephyrtronium/bathbot/format"
	"github.com/zephyrtronium/bathbot/osu"
	"github.com/zephyrtronium/bathbot/pagination"
)

// rankingPerPage is the number of players on each displayed page of the
// rankings. The API serves osu.RankingPageSize players at a time.
const rankingPerPage = 20

// maxRanked is the deepest the API lets the rankings go.
const maxRanked = 200 * osu.RankingPageSize

// rankingTTL is how long ranking pages are cached.
const rankingTTL = 10 * time.Minute

// Ranking pages through the performance rankings, fetching from the API only
// the pages that are viewed.
//   - mode: Game mode. Defaults to osu!.
//   - country: Country code or name. Defaults to global.
func Ranking(ctx context.Context, robo *Robot, call *Invocation) {
	m, err := mode(call)
	if err != nil {
		userFailed(ctx, call, err)
		return
	}
	if m == "" {
		m = osu.Osu
	}
	var cc string
	if s := call.Args["country"]; s != "" {
		var ok bool
		cc, ok = country.Code(s)
		if !ok {
			call.Private(ctx, "I don't know the country "+format.Escape(s)+".")
			return
		}
	}
	if err := call.Defer(ctx, false); err != nil {
		call.Fail(ctx, "couldn't defer ranking", err)
		return
	}
	r := &rankingContent{robo: robo, mode: m, country: cc, pages: make(map[int][]osu.UserStatistics)}
	first, err := r.page(ctx, 1)
	if err != nil {
		call.Fail(ctx, "couldn't get ranking", err)
		return
	}
	if len(first.Ranking) == 0 {
		call.Reply(ctx, "Nobody is ranked there.")
		return
	}
	total := min(max(first.Total, len(first.Ranking)), maxRanked)
	msg := robo.paged(call.User, pagination.New(rankingPerPage, total), r)
	call.Begin(ctx, robo, "ranking", msg)
}

// rankingContent renders the rankings a page at a time.
type rankingContent struct {
	robo    *Robot
	mode    osu.Mode
	country string
	// pages holds the API pages fetched so far.
	pages map[int][]osu.UserStatistics
}

func (r *rankingContent) page(ctx context.Context, n int) (*osu.Rankings, error) {
	key := "ranking:" + string(r.mode) + ":" + r.country + ":" + strconv.Itoa(n)
	rk, err := cache.Fetch(ctx, r.robo.Cache, r.robo.Metrics.CacheLookups, key, rankingTTL, func(ctx context.Context) (*osu.Rankings, error) {
		return r.robo.Osu.Ranking(ctx, r.mode, r.country, n)
	})
	if err != nil {
		return nil, err
	}
	r.pages[n] = rk.Ranking
	return rk, nil
}

// Render shows the players on the current page, fetching the API pages
// holding them as needed.
func (r *rankingContent) Render(ctx context.Context, pages *pagination.Pages) (*active.Page, error) {
	lo, hi := pages.Bounds()
	lines := make([]string, 0, hi-lo)
	for i := lo; i < hi; i++ {
		n, k := i/osu.RankingPageSize+1, i%osu.RankingPageSize
		players, ok := r.pages[n]
		if !ok {
			if _, err := r.page(ctx, n); err != nil {
				return nil, fmt.Errorf("couldn't get ranking page %d: %w", n, err)
			}
			players = r.pages[n]
		}
		if k >= len(players) {
			// The rankings shrank since the total was known.
			break
		}
		lines = append(lines, rankingLine(i+1, &players[k], r.country == ""))
	}
	title := r.mode.Name() + " performance ranking"
	if r.country != "" {
		title = country.Flag(r.country) + " " + country.Name(r.country) + " " + title
	}
	e := &discordgo.MessageEmbed{
		Title:       title,
		Description: format.Truncate(strings.Join(lines, "\n"), descriptionLimit),
		Color:       accent,
		Footer:      &discordgo.MessageEmbedFooter{Text: pages.Footer()},
	}
	return &active.Page{Embeds: []*discordgo.MessageEmbed{e}}, nil
}

func rankingLine(rank int, st *osu.UserStatistics, flag bool) string {
	var sb strings.Builder
	sb.WriteString("**#" + format.Int(int64(rank)) + "** ")
	if st.User != nil {
		if flag {
			sb.WriteString(country.Flag(st.User.CountryCode) + " ")
		}
		sb.WriteString(format.Escape(st.User.Username))
	}
	sb.WriteString(" • " + format.PP(st.PP) + " • " + format.Acc(st.HitAccuracy/100))
	return sb.String()
}
