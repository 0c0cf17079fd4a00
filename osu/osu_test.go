package osu

import (
	"context"
	"embed"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"

	"github.com/zephyrtronium/bathbot/auth"
)

type reqspy struct {
	// got is the requests the round tripper received.
	got []*http.Request
	// respond is the responses the round tripper returns in order.
	respond []*http.Response
}

func (r *reqspy) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(r.got) >= len(r.respond) {
		return nil, errors.New("too many requests")
	}
	r.got = append(r.got, req)
	return r.respond[len(r.got)-1], nil
}

//go:embed testdata/*.json
var jsonFiles embed.FS

// apiresp creates a reqspy responding with the given testdata document.
func apiresp(status int, file string) *reqspy {
	f, err := jsonFiles.Open(path.Join("testdata/", file))
	if err != nil {
		panic(err)
	}
	return &reqspy{
		respond: []*http.Response{
			{
				StatusCode: status,
				Body:       f,
			},
		},
	}
}

// brokenBody fails to read and records whether it was closed.
type brokenBody struct {
	closed bool
}

func (b *brokenBody) Read(p []byte) (int, error) { return 0, errors.New("connection reset") }

func (b *brokenBody) Close() error {
	b.closed = true
	return nil
}

func textresp(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func testClient(spy *reqspy) *Client {
	return &Client{
		HTTP:   &http.Client{Transport: spy},
		Tokens: auth.Static{Tok: &oauth2.Token{AccessToken: "bocchi", TokenType: "Bearer"}},
	}
}

// refresher is a token source which counts refreshes.
type refresher struct {
	tok       *oauth2.Token
	refreshes int
}

func (r *refresher) Token(ctx context.Context) (*oauth2.Token, error) { return r.tok, nil }

func (r *refresher) Refresh(ctx context.Context, old *oauth2.Token) (*oauth2.Token, error) {
	r.refreshes++
	r.tok = &oauth2.Token{AccessToken: "kita", TokenType: "Bearer"}
	return r.tok, nil
}

func TestReqJSON(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		spy := &reqspy{respond: []*http.Response{textresp(200, `{"id":1}`)}}
		cl := testClient(spy)
		var u struct {
			ID int `json:"id"`
		}
		if err := reqjson(context.Background(), cl, "test", "https://bocchi.rocks/", &u); err != nil {
			t.Error(err)
		}
		if u.ID != 1 {
			t.Errorf("wrong result: want 1, got %d", u.ID)
		}
		if len(spy.got) != 1 {
			t.Fatalf("wrong number of requests: %d", len(spy.got))
		}
		if got := spy.got[0].Header.Get("Authorization"); got != "Bearer bocchi" {
			t.Errorf("wrong authorization header: %q", got)
		}
	})
	t.Run("refresh", func(t *testing.T) {
		spy := &reqspy{respond: []*http.Response{
			textresp(401, `{"authentication":"basic"}`),
			textresp(200, `{"id":2}`),
		}}
		tokens := &refresher{tok: &oauth2.Token{AccessToken: "bocchi", TokenType: "Bearer"}}
		cl := &Client{HTTP: &http.Client{Transport: spy}, Tokens: tokens}
		var u struct {
			ID int `json:"id"`
		}
		if err := reqjson(context.Background(), cl, "test", "https://bocchi.rocks/", &u); err != nil {
			t.Error(err)
		}
		if u.ID != 2 || tokens.refreshes != 1 {
			t.Errorf("wrong result after refresh: id %d, refreshes %d", u.ID, tokens.refreshes)
		}
		if got := spy.got[1].Header.Get("Authorization"); got != "Bearer kita" {
			t.Errorf("retry didn't use refreshed token: %q", got)
		}
	})
	t.Run("unauthorized", func(t *testing.T) {
		spy := &reqspy{respond: []*http.Response{textresp(401, `{}`)}}
		cl := testClient(spy)
		var u struct{}
		err := reqjson(context.Background(), cl, "test", "https://bocchi.rocks/", &u)
		if err == nil {
			t.Error("no error from unrefreshable token")
		}
	})
	t.Run("not-found", func(t *testing.T) {
		spy := &reqspy{respond: []*http.Response{textresp(404, `{"error":null}`)}}
		cl := testClient(spy)
		var u struct{}
		err := reqjson(context.Background(), cl, "test", "https://bocchi.rocks/", &u)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("wrong error: want ErrNotFound, got %v", err)
		}
	})
	t.Run("server-error", func(t *testing.T) {
		spy := &reqspy{respond: []*http.Response{textresp(503, `bad gateway`)}}
		cl := testClient(spy)
		var u struct{}
		err := reqjson(context.Background(), cl, "test", "https://bocchi.rocks/", &u)
		if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrNeedRefresh) {
			t.Errorf("wrong error: %v", err)
		}
	})
	t.Run("read-error", func(t *testing.T) {
		body := new(brokenBody)
		spy := &reqspy{respond: []*http.Response{{StatusCode: 200, Status: "200 OK", Body: body}}}
		cl := testClient(spy)
		var u struct{}
		err := reqjson(context.Background(), cl, "test", "https://bocchi.rocks/", &u)
		if err == nil {
			t.Error("no error from broken body")
		}
		if !body.closed {
			t.Error("broken body was not closed")
		}
	})
}

func TestUser(t *testing.T) {
	spy := apiresp(200, "user.json")
	cl := testClient(spy)
	u, err := cl.UserByName(context.Background(), "peppy", Osu)
	if err != nil {
		t.Fatal(err)
	}
	want := &User{
		ID:          2,
		Username:    "peppy",
		CountryCode: "AU",
		AvatarURL:   "https://a.ppy.sh/2?1537409912.png",
		CoverURL:    "https://assets.ppy.sh/user-profile-covers/2/baba245ef60834b769694178f8f6d4f6166c5188c740de084656ad2b80f1eea7.jpeg",
		JoinDate:    time.Date(2007, 8, 28, 3, 9, 12, 0, time.UTC),
		PlayMode:    Osu,
		IsSupporter: true,
		Statistics: &UserStatistics{
			PP:           1032.44,
			GlobalRank:   412815,
			CountryRank:  9281,
			HitAccuracy:  94.0305,
			PlayCount:    6843,
			PlayTime:     508311,
			RankedScore:  1015935470,
			TotalScore:   4581463542,
			MaximumCombo: 1225,
			Level:        Level{Current: 65, Progress: 43},
			GradeCounts:  GradeCounts{SS: 4, S: 139, A: 362},
		},
	}
	opts := cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })
	if diff := cmp.Diff(want, u, opts); diff != "" {
		t.Errorf("wrong result (-want +got):\n%s", diff)
	}
	got := spy.got[0].URL
	if got.Path != "/api/v2/users/peppy/osu" || got.Query().Get("key") != "username" {
		t.Errorf("wrong request URL: %v", got)
	}
}

func TestUserScores(t *testing.T) {
	spy := apiresp(200, "scores_best.json")
	cl := testClient(spy)
	s, err := cl.UserScores(context.Background(), 7562902, Best, Osu, 100, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 2 {
		t.Fatalf("wrong number of scores: want 2, got %d", len(s))
	}
	if s[0].PP != 727.134 || Mods(s[0].Mods) != "+HDDT" || s[0].Beatmapset.Title != "Blue Zenith" {
		t.Errorf("wrong first score: %+v", s[0])
	}
	if s[0].Beatmapset.Covers.Cover2x == "" {
		t.Errorf("missing cover@2x")
	}
	if s[1].PP != 0 || Mods(s[1].Mods) != "NM" || s[1].Rank != "X" {
		t.Errorf("wrong second score: %+v", s[1])
	}
	q := spy.got[0].URL.Query()
	if q.Get("limit") != "100" || q.Get("mode") != "osu" {
		t.Errorf("wrong query: %v", q)
	}
}

func TestBeatmapScores(t *testing.T) {
	spy := apiresp(200, "beatmap_scores.json")
	cl := testClient(spy)
	s, err := cl.BeatmapScores(context.Background(), 2857127, "")
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(s))
	for i, v := range s {
		names[i] = v.User.Username
	}
	if diff := cmp.Diff([]string{"mrekk", "WhiteCat"}, names); diff != "" {
		t.Errorf("wrong users (-want +got):\n%s", diff)
	}
	if spy.got[0].URL.Path != "/api/v2/beatmaps/2857127/scores" {
		t.Errorf("wrong path: %s", spy.got[0].URL.Path)
	}
}

func TestRanking(t *testing.T) {
	spy := apiresp(200, "ranking.json")
	cl := testClient(spy)
	r, err := cl.Ranking(context.Background(), "", "AU", 1)
	if err != nil {
		t.Fatal(err)
	}
	if r.Total != 10000 || r.Cursor == nil || r.Cursor.Page != 2 || len(r.Ranking) != 2 {
		t.Fatalf("wrong rankings: %+v", r)
	}
	if r.Ranking[0].User.Username != "mrekk" || r.Ranking[1].PP != 29000.25 {
		t.Errorf("wrong entries: %+v", r.Ranking)
	}
	u := spy.got[0].URL
	if u.Path != "/api/v2/rankings/osu/performance" || u.Query().Get("country") != "AU" || u.Query().Get("cursor[page]") != "1" {
		t.Errorf("wrong request URL: %v", u)
	}
}

func TestRooms(t *testing.T) {
	spy := apiresp(200, "rooms.json")
	cl := testClient(spy)
	r, err := cl.Rooms(context.Background(), "daily_challenge", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(r) != 2 {
		t.Fatalf("wrong number of rooms: %d", len(r))
	}
	if it := r[0].Item(); it == nil || it.Beatmap.Beatmapset.Title != "Blue Zenith" || it.RequiredMods[0].Acronym != "HD" {
		t.Errorf("wrong current item: %+v", it)
	}
	if it := r[1].Item(); it == nil || it.BeatmapID != 129891 {
		t.Errorf("wrong playlist item: %+v", it)
	}
	if !r[1].StartsAt.Equal(time.Date(2024, 10, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("wrong start: %v", r[1].StartsAt)
	}
}

func TestRoomLeaderboard(t *testing.T) {
	spy := apiresp(200, "room_leaderboard.json")
	cl := testClient(spy)
	r, err := cl.RoomLeaderboard(context.Background(), 1300001)
	if err != nil {
		t.Fatal(err)
	}
	if len(r) != 2 || r[0].TotalScore != 1045000 || r[1].User.Username != "WhiteCat" {
		t.Errorf("wrong leaderboard: %+v", r)
	}
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"osu", Osu, true},
		{"STD", Osu, true},
		{"taiko", Taiko, true},
		{"ctb", Catch, true},
		{"catch", Catch, true},
		{"fruits", Catch, true},
		{" mania ", Mania, true},
		{"3", Mania, true},
		{"drums", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := ParseMode(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseMode(%q): want %q %t, got %q %t", c.in, c.want, c.ok, got, ok)
		}
	}
}

func TestParseBeatmapID(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"2857127", 2857127, true},
		{"https://osu.ppy.sh/beatmapsets/1380717#osu/2857127", 2857127, true},
		{"https://osu.ppy.sh/beatmapsets/1380717/#mania/2857127", 2857127, true},
		{"<https://osu.ppy.sh/beatmaps/2857127>", 2857127, true},
		{"osu.ppy.sh/b/129891", 129891, true},
		{"https://old.ppy.sh/b/129891?m=0", 129891, true},
		{"https://osu.ppy.sh/beatmapsets/1380717", 0, false},
		{"https://example.com/b/1", 0, false},
		{"-4", 0, false},
		{"blue zenith", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseBeatmapID(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseBeatmapID(%q): want %d %t, got %d %t", c.in, c.want, c.ok, got, ok)
		}
	}
}

func TestParseMapsetID(t *testing.T) {
	cases := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1380717", 1380717, true},
		{"https://osu.ppy.sh/beatmapsets/1380717", 1380717, true},
		{"https://osu.ppy.sh/beatmapsets/1380717#osu/2857127", 1380717, true},
		{"<osu.ppy.sh/s/39804>", 39804, true},
		{"https://osu.ppy.sh/beatmaps/2857127", 0, false},
		{"0", 0, false},
		{"kessoku", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseMapsetID(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseMapsetID(%q): want %d %t, got %d %t", c.in, c.want, c.ok, got, ok)
		}
	}
}
