package osu

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ScoreKind is a kind of user score list.
type ScoreKind string

const (
	Best   ScoreKind = "best"
	Recent ScoreKind = "recent"
	Firsts ScoreKind = "firsts"
)

// UserByID gets a user's profile in a mode. If mode is empty, the user's
// default mode is used.
func (c *Client) UserByID(ctx context.Context, id int64, mode Mode) (*User, error) {
	var u User
	ep := "users/" + itoa(id)
	if mode != "" {
		ep += "/" + string(mode)
	}
	if err := reqjson(ctx, c, "user", c.apiurl(ep, url.Values{"key": {"id"}}), &u); err != nil {
		return nil, fmt.Errorf("couldn't get user %d: %w", id, err)
	}
	return &u, nil
}

// UserByName gets a user's profile in a mode by username.
func (c *Client) UserByName(ctx context.Context, name string, mode Mode) (*User, error) {
	var u User
	ep := "users/" + url.PathEscape(name)
	if mode != "" {
		ep += "/" + string(mode)
	}
	if err := reqjson(ctx, c, "user", c.apiurl(ep, url.Values{"key": {"username"}}), &u); err != nil {
		return nil, fmt.Errorf("couldn't get user %q: %w", name, err)
	}
	return &u, nil
}

// UserScores gets a user's scores of a given kind.
func (c *Client) UserScores(ctx context.Context, id int64, kind ScoreKind, mode Mode, limit, offset int) ([]Score, error) {
	v := url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	if mode != "" {
		v.Set("mode", string(mode))
	}
	if kind == Recent {
		v.Set("include_fails", "1")
	}
	s := make([]Score, 0, limit)
	u := c.apiurl("users/"+itoa(id)+"/scores/"+string(kind), v)
	if err := reqjson(ctx, c, "user_scores", u, &s); err != nil {
		return nil, fmt.Errorf("couldn't get %s scores of user %d: %w", kind, id, err)
	}
	return s, nil
}

// BeatmapScores gets the top scores on a beatmap.
func (c *Client) BeatmapScores(ctx context.Context, id int64, mode Mode) ([]Score, error) {
	v := url.Values{"limit": {"100"}}
	if mode != "" {
		v.Set("mode", string(mode))
	}
	var r struct {
		Scores []Score `json:"scores"`
	}
	if err := reqjson(ctx, c, "beatmap_scores", c.apiurl("beatmaps/"+itoa(id)+"/scores", v), &r); err != nil {
		return nil, fmt.Errorf("couldn't get scores on beatmap %d: %w", id, err)
	}
	return r.Scores, nil
}

// Beatmap gets a beatmap along with its mapset.
func (c *Client) Beatmap(ctx context.Context, id int64) (*Beatmap, error) {
	var b Beatmap
	if err := reqjson(ctx, c, "beatmap", c.apiurl("beatmaps/"+itoa(id), nil), &b); err != nil {
		return nil, fmt.Errorf("couldn't get beatmap %d: %w", id, err)
	}
	return &b, nil
}

// Beatmapset gets a beatmapset along with its beatmaps.
func (c *Client) Beatmapset(ctx context.Context, id int64) (*Beatmapset, error) {
	var b Beatmapset
	if err := reqjson(ctx, c, "beatmapset", c.apiurl("beatmapsets/"+itoa(id), nil), &b); err != nil {
		return nil, fmt.Errorf("couldn't get beatmapset %d: %w", id, err)
	}
	return &b, nil
}

// Ranking gets a page of the performance rankings, optionally within a
// country. Pages start at 1 and hold 50 users each.
func (c *Client) Ranking(ctx context.Context, mode Mode, country string, page int) (*Rankings, error) {
	if mode == "" {
		mode = Osu
	}
	v := url.Values{"cursor[page]": {strconv.Itoa(page)}}
	if country != "" {
		v.Set("country", country)
	}
	var r Rankings
	if err := reqjson(ctx, c, "ranking", c.apiurl("rankings/"+string(mode)+"/performance", v), &r); err != nil {
		return nil, fmt.Errorf("couldn't get %s ranking page %d: %w", mode, page, err)
	}
	return &r, nil
}

// RankingPageSize is the number of users on each page of the rankings.
const RankingPageSize = 50

// Rooms lists rooms of a category, such as "daily_challenge", including ended
// ones.
func (c *Client) Rooms(ctx context.Context, category string, limit int) ([]Room, error) {
	v := url.Values{
		"mode":     {"all"},
		"category": {category},
		"limit":    {strconv.Itoa(limit)},
		"sort":     {"ended"},
	}
	var r []Room
	if err := reqjson(ctx, c, "rooms", c.apiurl("rooms", v), &r); err != nil {
		return nil, fmt.Errorf("couldn't list %s rooms: %w", category, err)
	}
	return r, nil
}

// RoomLeaderboard gets the leaderboard of a room.
func (c *Client) RoomLeaderboard(ctx context.Context, room int64) ([]RoomScore, error) {
	var r struct {
		Leaderboard []RoomScore `json:"leaderboard"`
	}
	if err := reqjson(ctx, c, "room_leaderboard", c.apiurl("rooms/"+itoa(room)+"/leaderboard", nil), &r); err != nil {
		return nil, fmt.Errorf("couldn't get leaderboard of room %d: %w", room, err)
	}
	return r.Leaderboard, nil
}
