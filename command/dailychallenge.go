package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/bathbot/active"
	"github.com/zephyrtronium/bathbot/format"
	"github.com/zephyrtronium/bathbot/osu"
	"github.com/zephyrtronium/bathbot/store"
)

// Daily challenge component custom IDs.
const (
	dcOlder = "dc_older"
	dcNewer = "dc_newer"
	dcToday = "dc_today"
)

const (
	// dcRooms is the number of past daily challenges to navigate.
	dcRooms = 50
	// dcShown is the number of leaderboard entries shown per day.
	dcShown = 10
	// dcTTL is how long a daily challenge message stays active.
	dcTTL = 2 * time.Minute
)

// DailyChallenge shows the daily challenges with buttons to move between days.
func DailyChallenge(ctx context.Context, robo *Robot, call *Invocation) {
	if err := call.Defer(ctx, false); err != nil {
		call.Fail(ctx, "couldn't defer daily challenge", err)
		return
	}
	var rooms []osu.Room
	var self int64
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		rooms, err = robo.Osu.Rooms(gctx, "daily_challenge", dcRooms)
		return err
	})
	group.Go(func() error {
		id, err := robo.Store.LinkedOsu(gctx, call.User)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		self = id
		return nil
	})
	if err := group.Wait(); err != nil {
		call.Fail(ctx, "couldn't get daily challenges", err)
		return
	}
	if len(rooms) == 0 {
		call.Reply(ctx, "There are no daily challenges right now.")
		return
	}
	call.Begin(ctx, robo, "dailychallenge", newDailyMessage(robo.Osu, call.User, self, rooms))
}

// dailyMessage is an active message navigating between daily challenges.
type dailyMessage struct {
	api   Osu
	owner string
	// self is the owner's linked osu! user ID, or zero.
	self  int64
	rooms []osu.Room
	// cur is the index of the shown room. Zero is the newest.
	cur    int
	boards map[int64][]osu.RoomScore
}

func newDailyMessage(api Osu, owner string, self int64, rooms []osu.Room) *dailyMessage {
	rooms = slices.Clone(rooms)
	slices.SortFunc(rooms, func(a, b osu.Room) int { return b.StartsAt.Compare(a.StartsAt) })
	return &dailyMessage{
		api:    api,
		owner:  owner,
		self:   self,
		rooms:  rooms,
		boards: make(map[int64][]osu.RoomScore),
	}
}

func (d *dailyMessage) Build(ctx context.Context) (*active.Page, error) {
	room := &d.rooms[d.cur]
	board, ok := d.boards[room.ID]
	if !ok {
		var err error
		board, err = d.api.RoomLeaderboard(ctx, room.ID)
		if err != nil {
			return nil, fmt.Errorf("couldn't get daily challenge leaderboard: %w", err)
		}
		d.boards[room.ID] = board
	}
	e := &discordgo.MessageEmbed{
		Title:  format.Truncate(room.Name, titleLimit),
		URL:    "https://osu.ppy.sh/multiplayer/rooms/" + strconv.FormatInt(room.ID, 10),
		Color:  accent,
		Footer: &discordgo.MessageEmbedFooter{Text: "Day " + strconv.Itoa(len(d.rooms)-d.cur) + " of " + strconv.Itoa(len(d.rooms)) + " shown"},
	}
	var sb strings.Builder
	if it := room.Item(); it != nil && it.Beatmap != nil {
		sb.WriteString(format.MapName(it.Beatmap, nil))
		mods := make([]string, len(it.RequiredMods))
		for i, m := range it.RequiredMods {
			mods[i] = m.Acronym
		}
		sb.WriteString(" " + osu.Mods(mods))
		fmt.Fprintf(&sb, "\n%.2f★ • %s", it.Beatmap.DifficultyRating, format.Length(it.Beatmap.TotalLength))
		if s := it.Beatmap.Beatmapset; s != nil {
			e.Image = &discordgo.MessageEmbedImage{URL: s.Covers.Cover2x}
		}
	}
	sb.WriteString("\n" + format.Timestamp(room.StartsAt, format.LongDate))
	if room.EndsAt.After(time.Now()) {
		sb.WriteString(" • ends " + format.Timestamp(room.EndsAt, format.Relative))
	}
	sb.WriteString(" • " + format.Int(int64(room.ParticipantCount)) + " players\n")
	for i := range min(len(board), dcShown) {
		sb.WriteString("\n" + dailyLine(i+1, &board[i], board[i].UserID == d.self))
	}
	if d.self != 0 {
		for i := dcShown; i < len(board); i++ {
			if board[i].UserID == d.self {
				sb.WriteString("\n…\n" + dailyLine(i+1, &board[i], true))
				break
			}
		}
	}
	e.Description = format.Truncate(sb.String(), descriptionLimit)
	p := active.Page{
		Embeds: []*discordgo.MessageEmbed{e},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Older", Style: discordgo.SecondaryButton, CustomID: dcOlder, Disabled: d.cur == len(d.rooms)-1},
				discordgo.Button{Label: "Latest", Style: discordgo.PrimaryButton, CustomID: dcToday, Disabled: d.cur == 0},
				discordgo.Button{Label: "Newer", Style: discordgo.SecondaryButton, CustomID: dcNewer, Disabled: d.cur == 0},
			}},
		},
	}
	return &p, nil
}

func dailyLine(place int, s *osu.RoomScore, self bool) string {
	name := "?"
	if s.User != nil {
		name = format.Escape(s.User.Username)
	}
	line := fmt.Sprintf("**%d.** %s • %s • %s", place, name, format.Int(s.TotalScore), format.Acc(s.Accuracy))
	if self {
		line = "__" + line + "__"
	}
	return line
}

func (d *dailyMessage) Component(ctx context.Context, ev *active.Event) (active.Result, error) {
	old := d.cur
	switch ev.CustomID {
	case dcOlder:
		d.cur = min(d.cur+1, len(d.rooms)-1)
	case dcNewer:
		d.cur = max(d.cur-1, 0)
	case dcToday:
		d.cur = 0
	}
	if d.cur == old {
		return active.Ignored(), nil
	}
	return active.Updated(), nil
}

func (d *dailyMessage) Modal(ctx context.Context, ev *active.Event) (active.Result, error) {
	return active.Ignored(), nil
}

func (d *dailyMessage) Expire(ctx context.Context) (*active.Page, error) { return nil, nil }
func (d *dailyMessage) Owner() string                                    { return d.owner }
func (d *dailyMessage) TTL() time.Duration                               { return dcTTL }
