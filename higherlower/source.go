package higherlower

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"gitlab.com/zephyrtronium/pick"

	"github.com/zephyrtronium/bathbot/format"
	"github.com/zephyrtronium/bathbot/osu"
)

// Osu is the part of the osu! API a ScoreSource uses.
type Osu interface {
	Ranking(ctx context.Context, mode osu.Mode, country string, page int) (*osu.Rankings, error)
	UserScores(ctx context.Context, id int64, kind osu.ScoreKind, mode osu.Mode, limit, offset int) ([]osu.Score, error)
}

// rankingPages weights the ranking pages from which players are drawn.
// Earlier pages hold players with more recognizable scores.
var rankingPages = pick.New([]pick.Case[int]{
	{E: 1, W: 20},
	{E: 2, W: 15},
	{E: 3, W: 10},
	{E: 4, W: 8},
	{E: 5, W: 6},
	{E: 6, W: 4},
	{E: 7, W: 3},
	{E: 8, W: 2},
	{E: 9, W: 1},
	{E: 10, W: 1},
})

// ScoreSource draws top plays of top-ranked players and compares their pp.
type ScoreSource struct {
	API  Osu
	Mode osu.Mode
	// Rand is the source of randomness. If nil, the global source is used.
	Rand *rand.Rand
}

var _ Source = (*ScoreSource)(nil)

// Name names the variant by its mode.
func (s *ScoreSource) Name() string {
	if s.Mode == "" {
		return "pp-" + string(osu.Osu)
	}
	return "pp-" + string(s.Mode)
}

func (s *ScoreSource) u32() uint32 {
	if s.Rand == nil {
		return rand.Uint32()
	}
	return s.Rand.Uint32()
}

func (s *ScoreSource) intn(n int) int {
	if s.Rand == nil {
		return rand.IntN(n)
	}
	return s.Rand.IntN(n)
}

// Next draws a weighted random top play.
func (s *ScoreSource) Next(ctx context.Context) (*Entry, error) {
	page := rankingPages.Pick(s.u32())
	r, err := s.API.Ranking(ctx, s.Mode, "", page)
	if err != nil {
		return nil, err
	}
	if len(r.Ranking) == 0 {
		return nil, fmt.Errorf("ranking page %d is empty", page)
	}
	st := r.Ranking[s.intn(len(r.Ranking))]
	if st.User == nil {
		return nil, fmt.Errorf("ranking page %d has an entry without a user", page)
	}
	scores, err := s.API.UserScores(ctx, st.User.ID, osu.Best, s.Mode, 100, 0)
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("user %d has no top plays", st.User.ID)
	}
	// Favor higher plays, but keep every play possible.
	cases := make([]pick.Case[int], len(scores))
	for i := range scores {
		cases[i] = pick.Case[int]{E: i, W: len(scores) - i + 10}
	}
	sc := &scores[pick.New(cases).Pick(s.u32())]
	e := &Entry{
		Title:  format.Escape(st.User.Username),
		Detail: format.MapName(sc.Beatmap, sc.Beatmapset) + " " + osu.Mods(sc.Mods),
		Key:    strconv.FormatInt(sc.ID, 10),
		Value:  sc.PP,
	}
	if sc.Beatmapset != nil {
		e.Image = sc.Beatmapset.Covers.Cover2x
	}
	return e, nil
}

// Format formats pp.
func (s *ScoreSource) Format(v float64) string {
	return format.PP(v)
}
