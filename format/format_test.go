package format

import (
	"testing"
	"time"

	"github.com/zephyrtronium/bathbot/osu"
)

func TestNumbers(t *testing.T) {
	cases := []struct {
		name string
		got  string
		want string
	}{
		{"int", Int(1234567), "1,234,567"},
		{"small", Int(12), "12"},
		{"float", Float(1234.5, 2), "1,234.50"},
		{"pp", PP(727.27), "727.27pp"},
		{"bigpp", PP(1001), "1,001.00pp"},
		{"acc", Acc(0.98766), "98.77%"},
		{"perfect", Acc(1), "100.00%"},
		{"rank", Rank(4321), "#4,321"},
		{"unranked", Rank(0), "-"},
		{"length", Length(95), "1:35"},
		{"long", Length(3725), "1:02:05"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("%s: want %q, got %q", c.name, c.want, c.got)
		}
	}
}

func TestTimestamp(t *testing.T) {
	tm := time.Unix(1700000000, 0)
	if got := Timestamp(tm, Relative); got != "<t:1700000000:R>" {
		t.Errorf("wrong relative timestamp: %q", got)
	}
	if got := Timestamp(tm, LongDate); got != "<t:1700000000:D>" {
		t.Errorf("wrong date timestamp: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"bocchi", 10, "bocchi"},
		{"bocchi", 6, "bocchi"},
		{"bocchi", 4, "boc…"},
		{"ぼっち・ざ・ろっく", 4, "ぼっち…"},
		{"bocchi", 0, ""},
	}
	for _, c := range cases {
		if got := Truncate(c.in, c.n); got != c.want {
			t.Errorf("Truncate(%q, %d): want %q, got %q", c.in, c.n, c.want, got)
		}
	}
}

func TestEscape(t *testing.T) {
	if got := Escape("_bocchi*"); got != `\_bocchi\*` {
		t.Errorf("wrong escape: %q", got)
	}
}

func TestMapName(t *testing.T) {
	s := &osu.Beatmapset{Artist: "Kessoku Band", Title: "Guitar, Loneliness and Blue Planet"}
	b := &osu.Beatmap{Version: "Insane", Beatmapset: s}
	if got := MapName(b, nil); got != "Kessoku Band - Guitar, Loneliness and Blue Planet [Insane]" {
		t.Errorf("wrong map name: %q", got)
	}
	if got := MapName(nil, s); got != "Kessoku Band - Guitar, Loneliness and Blue Planet" {
		t.Errorf("wrong mapset name: %q", got)
	}
}

func TestScoreLine(t *testing.T) {
	s := &osu.Score{
		Accuracy:   0.9912,
		Mods:       []string{"HD", "DT"},
		Score:      1234567,
		MaxCombo:   727,
		PP:         512.3,
		Rank:       "SH",
		CreatedAt:  time.Unix(1700000000, 0),
		Statistics: osu.ScoreStatistics{CountMiss: 1},
		User:       &osu.User{Username: "bocchi"},
		Beatmap:    &osu.Beatmap{Version: "Extra"},
		Beatmapset: &osu.Beatmapset{Artist: "A", Title: "B"},
	}
	want := "**3.** A - B [Extra] +HDDT\nS+ • **512.30pp** • 99.12% • 1,234,567 • x727 • 1❌ • <t:1700000000:R>"
	if got := ScoreLine(3, s, true); got != want {
		t.Errorf("wrong line with map:\nwant %q\ngot  %q", want, got)
	}
	want = "**1.** bocchi +HDDT\nS+ • **512.30pp** • 99.12% • 1,234,567 • x727 • 1❌ • <t:1700000000:R>"
	if got := ScoreLine(1, s, false); got != want {
		t.Errorf("wrong line with user:\nwant %q\ngot  %q", want, got)
	}
}
