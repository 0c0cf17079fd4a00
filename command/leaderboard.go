package command

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/zephyrtronium/bathbot/cache"
	"github.com/zephyrtronium/bathbot/format"
	"github.com/zephyrtronium/bathbot/osu"
	"github.com/zephyrtronium/bathbot/pagination"
)

// leaderboardPerPage is the number of scores on each page of a leaderboard.
const leaderboardPerPage = 10

// leaderboardTTL is how long beatmap leaderboards are cached.
const leaderboardTTL = 5 * time.Minute

// Leaderboard pages through the global leaderboard of a beatmap.
//   - map: Beatmap ID or URL.
//   - mode: Game mode for converts. Defaults to the map's mode.
func Leaderboard(ctx context.Context, robo *Robot, call *Invocation) {
	id, ok := osu.ParseBeatmapID(call.Args["map"])
	if !ok {
		call.Private(ctx, "Give me a beatmap ID or link.")
		return
	}
	m, err := mode(call)
	if err != nil {
		userFailed(ctx, call, err)
		return
	}
	if err := call.Defer(ctx, false); err != nil {
		call.Fail(ctx, "couldn't defer leaderboard", err)
		return
	}
	b, err := robo.Osu.Beatmap(ctx, id)
	if err != nil {
		if errors.Is(err, osu.ErrNotFound) {
			call.Reply(ctx, "I couldn't find that beatmap.")
			return
		}
		call.Fail(ctx, "couldn't get beatmap", err)
		return
	}
	key := "leaderboard:" + string(m) + ":" + strconv.FormatInt(id, 10)
	scores, err := cache.Fetch(ctx, robo.Cache, robo.Metrics.CacheLookups, key, leaderboardTTL, func(ctx context.Context) ([]osu.Score, error) {
		return robo.Osu.BeatmapScores(ctx, id, m)
	})
	if err != nil {
		call.Fail(ctx, "couldn't get leaderboard", err)
		return
	}
	if len(scores) == 0 {
		call.Reply(ctx, "Nobody has a score on "+format.MapName(b, nil)+" yet.")
		return
	}
	thumb := ""
	if b.Beatmapset != nil {
		thumb = b.Beatmapset.Covers.List
	}
	content := scoreList("Leaderboard of "+format.MapName(b, nil), thumb, scores, false)
	msg := robo.paged(call.User, pagination.New(leaderboardPerPage, len(scores)), content)
	call.Begin(ctx, robo, "leaderboard", msg)
}
