// Package format renders osu! data for Discord messages.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zephyrtronium/bathbot/osu"
)

var printer = message.NewPrinter(language.English)

// Int formats an integer with digit grouping.
func Int(n int64) string {
	return printer.Sprintf("%d", n)
}

// Float formats a float with digit grouping and fixed precision.
func Float(f float64, prec int) string {
	return printer.Sprintf("%."+strconv.Itoa(prec)+"f", f)
}

// PP formats a performance point value.
func PP(pp float64) string {
	return Float(pp, 2) + "pp"
}

// Acc formats accuracy given as a fraction in [0, 1].
func Acc(acc float64) string {
	return strconv.FormatFloat(acc*100, 'f', 2, 64) + "%"
}

// Rank formats a global or country rank, or "-" for no rank.
func Rank(r int64) string {
	if r <= 0 {
		return "-"
	}
	return "#" + Int(r)
}

// Timestamp styles understood by Discord.
const (
	Relative  = 'R'
	ShortDate = 'd'
	LongDate  = 'D'
	ShortTime = 't'
	DateTime  = 'f'
)

// Timestamp formats a time as a Discord timestamp which each client renders
// in its own time zone.
func Timestamp(t time.Time, style byte) string {
	return fmt.Sprintf("<t:%d:%c>", t.Unix(), style)
}

// Length formats a duration in seconds as m:ss, or h:mm:ss if it is long.
func Length(seconds int) string {
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Truncate shortens s to at most n runes, ending it with an ellipsis if it
// was cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

// Escape escapes Discord markdown in user-provided text such as usernames.
func Escape(s string) string {
	return mdEscaper.Replace(s)
}

var mdEscaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	"`", "\\`",
	`~`, `\~`,
	`|`, `\|`,
	`>`, `\>`,
)

// MapName formats a beatmap as "Artist - Title [Version]".
func MapName(b *osu.Beatmap, s *osu.Beatmapset) string {
	if s == nil && b != nil {
		s = b.Beatmapset
	}
	var sb strings.Builder
	if s != nil {
		sb.WriteString(Escape(s.Artist))
		sb.WriteString(" - ")
		sb.WriteString(Escape(s.Title))
	}
	if b != nil {
		if sb.Len() != 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('[')
		sb.WriteString(Escape(b.Version))
		sb.WriteByte(']')
	}
	return sb.String()
}

// ScoreLine formats a score in a list. i is its 1-based position.
// The map name is included when withMap is true.
func ScoreLine(i int, s *osu.Score, withMap bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%d.** ", i)
	if withMap {
		sb.WriteString(MapName(s.Beatmap, s.Beatmapset))
		sb.WriteByte(' ')
	} else if s.User != nil {
		sb.WriteString(Escape(s.User.Username))
		sb.WriteByte(' ')
	}
	sb.WriteString(osu.Mods(s.Mods))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s • **%s** • %s • %s • x%d • %d❌ • %s",
		Grade(s.Rank), PP(s.PP), Acc(s.Accuracy), Int(s.Score), s.MaxCombo, s.Statistics.CountMiss, Timestamp(s.CreatedAt, Relative))
	return sb.String()
}

// Grade formats a letter grade as used by the osu! API.
func Grade(rank string) string {
	switch rank {
	case "XH":
		return "SS+"
	case "X":
		return "SS"
	case "SH":
		return "S+"
	case "F":
		return "Fail"
	default:
		return rank
	}
}
