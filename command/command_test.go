package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-cmp/cmp"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/zephyrtronium/bathbot/active"
	"github.com/zephyrtronium/bathbot/bgtag"
	"github.com/zephyrtronium/bathbot/cache/badgercache"
	"github.com/zephyrtronium/bathbot/metrics"
	"github.com/zephyrtronium/bathbot/osu"
	"github.com/zephyrtronium/bathbot/pagination"
	"github.com/zephyrtronium/bathbot/store/litestore"
)

type spyDiscord struct {
	mu        sync.Mutex
	responses []*discordgo.InteractionResponse
	sent      []*discordgo.MessageSend
	edits     []*discordgo.WebhookEdit
	followups []*discordgo.WebhookParams
	deleted   int
	next      int
}

func (s *spyDiscord) InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, opts ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, resp)
	return nil
}

func (s *spyDiscord) InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edits = append(s.edits, edit)
	s.next++
	return &discordgo.Message{ID: strconv.Itoa(s.next), ChannelID: i.ChannelID}, nil
}

func (s *spyDiscord) ChannelMessageSendComplex(channel string, m *discordgo.MessageSend, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	s.next++
	return &discordgo.Message{ID: strconv.Itoa(s.next), ChannelID: channel}, nil
}

func (s *spyDiscord) ChannelMessageEditComplex(m *discordgo.MessageEdit, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (s *spyDiscord) InteractionResponseDelete(i *discordgo.Interaction, opts ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted++
	return nil
}

func (s *spyDiscord) FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, opts ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.followups = append(s.followups, data)
	s.next++
	return &discordgo.Message{ID: strconv.Itoa(s.next), ChannelID: i.ChannelID}, nil
}

// said returns the content of the last sent message.
func (s *spyDiscord) said() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return ""
	}
	return s.sent[len(s.sent)-1].Content
}

func (s *spyDiscord) lastSent() *discordgo.MessageSend {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return nil
	}
	return s.sent[len(s.sent)-1]
}

type fakeOsu struct {
	mu     sync.Mutex
	users  map[string]*osu.User
	scores map[int64][]osu.Score
	// rankings is the full ranking list, served a page at a time.
	rankings []osu.UserStatistics
	rooms    []osu.Room
	boards   map[int64][]osu.RoomScore
	calls    map[string]int
}

func (f *fakeOsu) count(what string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[what]++
}

func (f *fakeOsu) called(what string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[what]
}

func (f *fakeOsu) UserByID(ctx context.Context, id int64, mode osu.Mode) (*osu.User, error) {
	f.count("user")
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, osu.ErrNotFound
}

func (f *fakeOsu) UserByName(ctx context.Context, name string, mode osu.Mode) (*osu.User, error) {
	f.count("user")
	u := f.users[strings.ToLower(name)]
	if u == nil {
		return nil, osu.ErrNotFound
	}
	return u, nil
}

func (f *fakeOsu) UserScores(ctx context.Context, id int64, kind osu.ScoreKind, mode osu.Mode, limit, offset int) ([]osu.Score, error) {
	f.count("scores")
	return f.scores[id], nil
}

func (f *fakeOsu) BeatmapScores(ctx context.Context, id int64, mode osu.Mode) ([]osu.Score, error) {
	return nil, osu.ErrNotFound
}

func (f *fakeOsu) Beatmap(ctx context.Context, id int64) (*osu.Beatmap, error) {
	return nil, osu.ErrNotFound
}

func (f *fakeOsu) Beatmapset(ctx context.Context, id int64) (*osu.Beatmapset, error) {
	return nil, osu.ErrNotFound
}

func (f *fakeOsu) Ranking(ctx context.Context, mode osu.Mode, country string, page int) (*osu.Rankings, error) {
	f.count("ranking:" + strconv.Itoa(page))
	lo := min((page-1)*osu.RankingPageSize, len(f.rankings))
	hi := min(lo+osu.RankingPageSize, len(f.rankings))
	return &osu.Rankings{Ranking: f.rankings[lo:hi], Total: len(f.rankings)}, nil
}

func (f *fakeOsu) Rooms(ctx context.Context, category string, limit int) ([]osu.Room, error) {
	return f.rooms, nil
}

func (f *fakeOsu) RoomLeaderboard(ctx context.Context, room int64) ([]osu.RoomScore, error) {
	f.count("board:" + strconv.FormatInt(room, 10))
	return f.boards[room], nil
}

var dbcount atomic.Int64

func testRobot(t *testing.T, api *fakeOsu) (*Robot, *spyDiscord) {
	t.Helper()
	ctx := context.Background()
	k := dbcount.Add(1)
	db, err := sqlitex.NewPool(fmt.Sprintf("file:command-%d.db?mode=memory&cache=shared", k), sqlitex.PoolOptions{Flags: sqlite.OpenReadWrite | sqlite.OpenCreate | sqlite.OpenMemory | sqlite.OpenSharedCache | sqlite.OpenURI})
	if err != nil {
		t.Fatalf("couldn't open db: %v", err)
	}
	if err := litestore.Init(ctx, db); err != nil {
		t.Fatalf("couldn't init db: %v", err)
	}
	st := litestore.New(db)
	c, err := badgercache.Open("")
	if err != nil {
		t.Fatalf("couldn't open cache: %v", err)
	}
	dg := new(spyDiscord)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	robo := &Robot{
		Log:      log,
		Osu:      api,
		Store:    st,
		Cache:    c,
		Active:   active.New(dg, log, metrics.Nop()),
		Metrics:  metrics.Nop(),
		Owner:    "owner",
		Prefixes: []string{"<"},
		Started:  time.Now(),
	}
	t.Cleanup(func() {
		robo.Active.Shutdown(ctx)
		st.Close()
		c.Close()
	})
	return robo, dg
}

// say invokes a command as a prefixed message from user.
func say(robo *Robot, dg *spyDiscord, f Func, user string, args map[string]string) *Invocation {
	m := discordgo.Message{
		ID:        "msg",
		ChannelID: "chan",
		GuildID:   "guild",
		Author:    &discordgo.User{ID: user},
	}
	if args == nil {
		args = map[string]string{}
	}
	call := FromMessage(dg, &m, args, robo.Log)
	f(context.Background(), robo, call)
	return call
}

func TestPrivateAfterDefer(t *testing.T) {
	cases := []struct {
		name string
		// deferAs is the visibility of the deferral, or nil to not defer.
		deferAs *bool
		// reply sends a public reply before the private one.
		reply bool
		// deleted is the number of deleted responses.
		deleted int
		// followups is the number of ephemeral followups.
		followups int
		// edits is the number of edited responses.
		edits int
	}{
		{name: "public", deferAs: new(bool), deleted: 1, followups: 1},
		{name: "ephemeral", deferAs: ptr(true), edits: 1},
		{name: "answered", deferAs: new(bool), reply: true, edits: 1, followups: 1},
		{name: "immediate"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := context.Background()
			dg := new(spyDiscord)
			i := discordgo.Interaction{
				Type:      discordgo.InteractionApplicationCommand,
				ChannelID: "kessoku",
				User:      &discordgo.User{ID: "bocchi"},
				Data:      discordgo.ApplicationCommandInteractionData{Name: "top"},
			}
			call := FromInteraction(dg, &i, slog.New(slog.NewTextHandler(io.Discard, nil)))
			if c.deferAs != nil {
				if err := call.Defer(ctx, *c.deferAs); err != nil {
					t.Fatalf("couldn't defer: %v", err)
				}
			}
			if c.reply {
				call.Reply(ctx, "public")
			}
			call.Fail(ctx, "test", errors.New("oops"))
			dg.mu.Lock()
			defer dg.mu.Unlock()
			if dg.deleted != c.deleted {
				t.Errorf("wrong number of deleted responses: want %d, got %d", c.deleted, dg.deleted)
			}
			if len(dg.followups) != c.followups {
				t.Errorf("wrong number of followups: want %d, got %d", c.followups, len(dg.followups))
			}
			for _, f := range dg.followups {
				if f.Flags&discordgo.MessageFlagsEphemeral == 0 {
					t.Errorf("followup %q is not ephemeral", f.Content)
				}
			}
			if len(dg.edits) != c.edits {
				t.Errorf("wrong number of edits: want %d, got %d", c.edits, len(dg.edits))
			}
			if c.deferAs == nil {
				// The failure is the first response.
				if len(dg.responses) != 1 {
					t.Fatalf("wrong number of responses: want 1, got %d", len(dg.responses))
				}
				if dg.responses[0].Data.Flags&discordgo.MessageFlagsEphemeral == 0 {
					t.Errorf("immediate failure is not ephemeral")
				}
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestFromInteraction(t *testing.T) {
	i := discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "guild",
		ChannelID: "chan",
		Member: &discordgo.Member{
			User:        &discordgo.User{ID: "bocchi"},
			Permissions: discordgo.PermissionManageGuild,
		},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "bgtags",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{
					Type: discordgo.ApplicationCommandOptionSubCommand,
					Name: "count",
					Options: []*discordgo.ApplicationCommandInteractionDataOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "tags", Value: "farm"},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "limit", Value: float64(3)},
					},
				},
			},
		},
	}
	call := FromInteraction(new(spyDiscord), &i, slog.New(slog.NewTextHandler(io.Discard, nil)))
	want := map[string]string{"sub": "count", "tags": "farm", "limit": "3"}
	if diff := cmp.Diff(want, call.Args); diff != "" {
		t.Errorf("wrong args (-want +got):\n%s", diff)
	}
	if call.User != "bocchi" || call.Guild != "guild" || call.Channel != "chan" {
		t.Errorf("wrong invocation location: user %q guild %q channel %q", call.User, call.Guild, call.Channel)
	}
	if call.Permissions != discordgo.PermissionManageGuild {
		t.Errorf("wrong permissions: want %d, got %d", discordgo.PermissionManageGuild, call.Permissions)
	}
}

func TestParseMapsets(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ids  []int64
		bad  []string
	}{
		{"empty", "", nil, nil},
		{"ids", "1 2,3", []int64{1, 2, 3}, nil},
		{"urls", "https://osu.ppy.sh/beatmapsets/39804#osu/129891, https://osu.ppy.sh/s/41823", []int64{39804, 41823}, nil},
		{"bad", "1 bocchi 2", []int64{1, 2}, []string{"bocchi"}},
		{"newlines", "1\n2\t3", []int64{1, 2, 3}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ids, bad := ParseMapsets(c.in)
			if diff := cmp.Diff(c.ids, ids); diff != "" {
				t.Errorf("wrong ids (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(c.bad, bad); diff != "" {
				t.Errorf("wrong bad fields (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLink(t *testing.T) {
	ctx := context.Background()
	api := &fakeOsu{users: map[string]*osu.User{"bocchi": {ID: 2, Username: "Bocchi"}}}
	robo, dg := testRobot(t, api)
	say(robo, dg, Link, "discord-bocchi", map[string]string{"user": "nobody"})
	if !strings.Contains(dg.said(), "couldn't find") {
		t.Errorf("linking a missing user should say so, got %q", dg.said())
	}
	say(robo, dg, Link, "discord-bocchi", map[string]string{"user": "BOCCHI"})
	if id, err := robo.Store.LinkedOsu(ctx, "discord-bocchi"); err != nil || id != 2 {
		t.Errorf("wrong link: want 2, got %d (%v)", id, err)
	}
	if !strings.Contains(dg.said(), "Bocchi") {
		t.Errorf("link should name the user, got %q", dg.said())
	}
	say(robo, dg, Unlink, "discord-bocchi", nil)
	if _, err := robo.Store.LinkedOsu(ctx, "discord-bocchi"); err == nil {
		t.Errorf("still linked after unlink")
	}
	say(robo, dg, Unlink, "discord-bocchi", nil)
	if !strings.Contains(dg.said(), "don't have") {
		t.Errorf("unlinking twice should say there is no link, got %q", dg.said())
	}
}

func TestTarget(t *testing.T) {
	ctx := context.Background()
	api := &fakeOsu{users: map[string]*osu.User{
		"bocchi": {ID: 2, Username: "Bocchi"},
		"ryou":   {ID: 3, Username: "Ryou"},
	}}
	robo, dg := testRobot(t, api)
	if err := robo.Store.Link(ctx, "discord-ryou", 3); err != nil {
		t.Fatalf("couldn't link: %v", err)
	}
	cases := []struct {
		name string
		user string
		arg  string
		want int64
		err  error
	}{
		{"name", "discord-bocchi", "bocchi", 2, nil},
		{"self", "discord-ryou", "", 3, nil},
		{"unlinked", "discord-bocchi", "", 0, errNoLink},
		{"missing", "discord-bocchi", "nijika", 0, osu.ErrNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := discordgo.Message{ChannelID: "chan", Author: &discordgo.User{ID: c.user}}
			call := FromMessage(dg, &m, map[string]string{"user": c.arg}, robo.Log)
			u, err := target(ctx, robo, call, osu.Osu)
			if !errors.Is(err, c.err) {
				t.Fatalf("wrong error: want %v, got %v", c.err, err)
			}
			if c.err != nil {
				return
			}
			if u.ID != c.want {
				t.Errorf("wrong user: want %d, got %d", c.want, u.ID)
			}
		})
	}
}

func TestMentionTarget(t *testing.T) {
	ctx := context.Background()
	api := &fakeOsu{users: map[string]*osu.User{"ryou": {ID: 3, Username: "Ryou"}}}
	robo, dg := testRobot(t, api)
	if err := robo.Store.Link(ctx, "12345", 3); err != nil {
		t.Fatalf("couldn't link: %v", err)
	}
	for _, arg := range []string{"<@12345>", "<@!12345>"} {
		m := discordgo.Message{ChannelID: "chan", Author: &discordgo.User{ID: "someone"}}
		call := FromMessage(dg, &m, map[string]string{"user": arg}, robo.Log)
		u, err := target(ctx, robo, call, osu.Osu)
		if err != nil {
			t.Fatalf("couldn't resolve %s: %v", arg, err)
		}
		if u.ID != 3 {
			t.Errorf("wrong user for %s: want 3, got %d", arg, u.ID)
		}
	}
	if n := api.called("user"); n != 1 {
		t.Errorf("user should be fetched once and cached, got %d fetches", n)
	}
}

func TestTop(t *testing.T) {
	scores := make([]osu.Score, 7)
	for i := range scores {
		scores[i] = osu.Score{
			ID:      int64(i + 1),
			PP:      float64(700 - i),
			Rank:    "S",
			Beatmap: &osu.Beatmap{Version: "Insane"},
			Beatmapset: &osu.Beatmapset{
				Artist: "Kessoku Band",
				Title:  "Seishun Complex",
			},
		}
	}
	api := &fakeOsu{
		users:  map[string]*osu.User{"bocchi": {ID: 2, Username: "Bocchi", PlayMode: osu.Osu}},
		scores: map[int64][]osu.Score{2: scores},
	}
	robo, dg := testRobot(t, api)
	say(robo, dg, Top, "discord-bocchi", map[string]string{"user": "bocchi"})
	m := dg.lastSent()
	if m == nil || len(m.Embeds) != 1 {
		t.Fatalf("top should send one embed, got %#v", m)
	}
	e := m.Embeds[0]
	if !strings.HasPrefix(e.Title, "Top plays of Bocchi") {
		t.Errorf("wrong title %q", e.Title)
	}
	if got := strings.Count(e.Description, "\n**"); got != topPerPage-1 {
		t.Errorf("wrong number of scores on the first page: want %d, got %d lines in %q", topPerPage, got+1, e.Description)
	}
	if len(m.Components) == 0 {
		t.Errorf("two pages of scores should have buttons")
	}
	if n := robo.Active.Len(); n != 1 {
		t.Errorf("wrong number of active messages: want 1, got %d", n)
	}

	say(robo, dg, Top, "discord-bocchi", map[string]string{"user": "bocchi", "kind": "sideways"})
	if !strings.Contains(dg.said(), "best, recent, or firsts") {
		t.Errorf("bad kind should list kinds, got %q", dg.said())
	}
}

func TestDailyMessage(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 7, 25, 0, 0, 0, 0, time.UTC)
	rooms := []osu.Room{
		{ID: 1, Name: "Daily challenge 1", StartsAt: day, EndsAt: day.Add(24 * time.Hour)},
		{ID: 3, Name: "Daily challenge 3", StartsAt: day.Add(48 * time.Hour), EndsAt: day.Add(72 * time.Hour)},
		{ID: 2, Name: "Daily challenge 2", StartsAt: day.Add(24 * time.Hour), EndsAt: day.Add(48 * time.Hour)},
	}
	board := make([]osu.RoomScore, 12)
	for i := range board {
		board[i] = osu.RoomScore{UserID: int64(100 + i), TotalScore: int64(1000 - i), Accuracy: 0.9, User: &osu.User{Username: "player" + strconv.Itoa(i)}}
	}
	api := &fakeOsu{boards: map[int64][]osu.RoomScore{3: board}}
	d := newDailyMessage(api, "bocchi", 111, rooms)
	steps := []struct {
		id     string
		action active.Action
		title  string
	}{
		{"", active.Update, "Daily challenge 3"},
		{dcNewer, active.Ignore, "Daily challenge 3"},
		{dcOlder, active.Update, "Daily challenge 2"},
		{dcOlder, active.Update, "Daily challenge 1"},
		{dcOlder, active.Ignore, "Daily challenge 1"},
		{dcToday, active.Update, "Daily challenge 3"},
	}
	for i, s := range steps {
		if s.id != "" {
			res, err := d.Component(ctx, &active.Event{User: "bocchi", CustomID: s.id})
			if err != nil {
				t.Fatalf("step %d: component failed: %v", i, err)
			}
			if res.Action != s.action {
				t.Errorf("step %d: wrong action: want %v, got %v", i, s.action, res.Action)
			}
		}
		p, err := d.Build(ctx)
		if err != nil {
			t.Fatalf("step %d: build failed: %v", i, err)
		}
		if got := p.Embeds[0].Title; got != s.title {
			t.Errorf("step %d: wrong title: want %q, got %q", i, s.title, got)
		}
	}
	if n := api.called("board:3"); n != 1 {
		t.Errorf("leaderboard should be fetched once, got %d", n)
	}
	p, err := d.Build(ctx)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	desc := p.Embeds[0].Description
	if !strings.Contains(desc, "__**12.** player11") {
		t.Errorf("own rank below the top should be shown and highlighted, got %q", desc)
	}
	if strings.Contains(desc, "player10") {
		t.Errorf("ranks between the top and the owner should be hidden, got %q", desc)
	}
}

func TestRankingContent(t *testing.T) {
	ctx := context.Background()
	players := make([]osu.UserStatistics, 120)
	for i := range players {
		players[i] = osu.UserStatistics{PP: float64(20000 - i), HitAccuracy: 99, User: &osu.User{Username: "p" + strconv.Itoa(i+1), CountryCode: "JP"}}
	}
	api := &fakeOsu{rankings: players}
	robo, _ := testRobot(t, api)
	r := &rankingContent{robo: robo, mode: osu.Osu, pages: make(map[int][]osu.UserStatistics)}
	pages := pagination.New(rankingPerPage, len(players))
	cases := []struct {
		page  int
		first string
		calls map[int]int
	}{
		{1, "p1", map[int]int{1: 1}},
		{2, "p21", map[int]int{1: 1}},
		{3, "p41", map[int]int{1: 1, 2: 1}},
		{6, "p101", map[int]int{1: 1, 2: 1, 3: 1}},
		{1, "p1", map[int]int{1: 1, 2: 1, 3: 1}},
	}
	for _, c := range cases {
		pages.SetPage(c.page)
		p, err := r.Render(ctx, &pages)
		if err != nil {
			t.Fatalf("page %d: render failed: %v", c.page, err)
		}
		first, _, _ := strings.Cut(p.Embeds[0].Description, "\n")
		if !strings.Contains(first, " "+c.first+" • ") {
			t.Errorf("page %d: wrong first player in %q, want %s", c.page, first, c.first)
		}
		for n, want := range c.calls {
			if got := api.called("ranking:" + strconv.Itoa(n)); got != want {
				t.Errorf("page %d: api page %d fetched %d times, want %d", c.page, n, got, want)
			}
		}
	}
}

func TestSkin(t *testing.T) {
	robo, dg := testRobot(t, new(fakeOsu))
	say(robo, dg, Skin, "1001", nil)
	if !strings.Contains(dg.said(), "hasn't set a skin") {
		t.Errorf("missing skin should say so, got %q", dg.said())
	}
	say(robo, dg, Skin, "1001", map[string]string{"sub": "set", "url": "https://evil.example/skin.osk"})
	if !strings.Contains(dg.said(), "only accept") {
		t.Errorf("bad host should be rejected, got %q", dg.said())
	}
	say(robo, dg, Skin, "1001", map[string]string{"sub": "set", "url": "ftp://osu.ppy.sh/skin.osk"})
	if !strings.Contains(dg.said(), "http") {
		t.Errorf("bad scheme should be rejected, got %q", dg.said())
	}
	const u = "https://osu.ppy.sh/community/forums/topics/1"
	say(robo, dg, Skin, "1001", map[string]string{"sub": "set", "url": " " + u + " "})
	say(robo, dg, Skin, "1002", map[string]string{"user": "<@1001>"})
	if !strings.Contains(dg.said(), u) {
		t.Errorf("skin should be shown to others, got %q", dg.said())
	}
	say(robo, dg, Skin, "1002", map[string]string{"user": "1001"})
	if !strings.Contains(dg.said(), u) {
		t.Errorf("skin should be shown by user ID, got %q", dg.said())
	}
	say(robo, dg, Skin, "1001", map[string]string{"sub": "remove"})
	say(robo, dg, Skin, "1001", map[string]string{"sub": "show"})
	if !strings.Contains(dg.said(), "hasn't set a skin") {
		t.Errorf("removed skin should be gone, got %q", dg.said())
	}
}

func TestPrefix(t *testing.T) {
	ctx := context.Background()
	robo, dg := testRobot(t, new(fakeOsu))
	prefixes := func() []string {
		t.Helper()
		p, err := GuildPrefixes(ctx, robo, "guild")
		if err != nil {
			t.Fatalf("couldn't get prefixes: %v", err)
		}
		return p
	}
	if diff := cmp.Diff([]string{"<"}, prefixes()); diff != "" {
		t.Errorf("wrong default prefixes (-want +got):\n%s", diff)
	}
	say(robo, dg, Prefix, "bocchi", map[string]string{"prefixes": "! ?"})
	if !strings.Contains(dg.said(), "Manage Server") {
		t.Errorf("setting without permission should be denied, got %q", dg.said())
	}
	if diff := cmp.Diff([]string{"<"}, prefixes()); diff != "" {
		t.Errorf("denied set changed prefixes (-want +got):\n%s", diff)
	}

	setBy := func(args map[string]string) {
		m := discordgo.Message{
			ChannelID: "chan",
			GuildID:   "guild",
			Author:    &discordgo.User{ID: "nijika"},
			Member:    &discordgo.Member{Permissions: discordgo.PermissionManageGuild},
		}
		Prefix(ctx, robo, FromMessage(dg, &m, args, robo.Log))
	}
	setBy(map[string]string{"prefixes": "! ?"})
	if diff := cmp.Diff([]string{"!", "?"}, prefixes()); diff != "" {
		t.Errorf("wrong prefixes after set (-want +got):\n%s", diff)
	}
	setBy(map[string]string{"prefixes": "a b c d e f"})
	if !strings.Contains(dg.said(), "at most 5") {
		t.Errorf("too many prefixes should be rejected, got %q", dg.said())
	}
	setBy(map[string]string{"prefixes": "waytoolongprefix"})
	if !strings.Contains(dg.said(), "10 characters") {
		t.Errorf("long prefix should be rejected, got %q", dg.said())
	}
	setBy(map[string]string{"prefixes": "default"})
	if diff := cmp.Diff([]string{"<"}, prefixes()); diff != "" {
		t.Errorf("wrong prefixes after reset (-want +got):\n%s", diff)
	}

	m := discordgo.Message{ChannelID: "dm", Author: &discordgo.User{ID: "bocchi"}}
	Prefix(ctx, robo, FromMessage(dg, &m, map[string]string{}, robo.Log))
	if !strings.Contains(dg.said(), "only") {
		t.Errorf("prefixes in DMs should be refused, got %q", dg.said())
	}
}

func TestBgTagsOwner(t *testing.T) {
	ctx := context.Background()
	robo, dg := testRobot(t, new(fakeOsu))
	say(robo, dg, BgTags, "bocchi", map[string]string{"sub": "add", "mapsets": "1 2"})
	if !strings.Contains(dg.said(), "Only the bot owner") {
		t.Errorf("non-owner should be refused, got %q", dg.said())
	}
	say(robo, dg, BgTags, "owner", map[string]string{"sub": "add", "mapsets": "1 2 https://osu.ppy.sh/beatmapsets/3"})
	if !strings.Contains(dg.said(), "Added 3 new mapsets of 3") {
		t.Errorf("wrong add response %q", dg.said())
	}
	if err := robo.Store.SetBgMapsetTags(ctx, 1, bgtag.Farm); err != nil {
		t.Fatalf("couldn't tag: %v", err)
	}
	say(robo, dg, BgTags, "owner", map[string]string{"sub": "count", "tags": "farm"})
	if !strings.HasPrefix(dg.said(), "1 tagged mapsets with farm") {
		t.Errorf("wrong count response %q", dg.said())
	}
}

func TestInfo(t *testing.T) {
	robo, _ := testRobot(t, new(fakeOsu))
	robo.Started = time.Now().Add(-time.Hour)
	p := infoPage(robo, time.Now())
	if len(p.Embeds) != 1 {
		t.Fatalf("info should have one embed, got %d", len(p.Embeds))
	}
	var started string
	for _, f := range p.Embeds[0].Fields {
		if f.Name == "Started" {
			started = f.Value
		}
	}
	if started != "1 hour ago" {
		t.Errorf("wrong start time %q", started)
	}
}
