package command

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dustin/go-humanize"

	"github.com/zephyrtronium/bathbot/active"
)

// Info shows the bot's status.
func Info(ctx context.Context, robo *Robot, call *Invocation) {
	call.Send(ctx, infoPage(robo, time.Now()))
}

func infoPage(robo *Robot, now time.Time) *active.Page {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	kinds := robo.Active.Kinds()
	var live strings.Builder
	fmt.Fprintf(&live, "%d", robo.Active.Len())
	for _, k := range slices.Sorted(maps.Keys(kinds)) {
		fmt.Fprintf(&live, "\n%s: %d", k, kinds[k])
	}
	e := discordgo.MessageEmbed{
		Title: "Bathbot",
		Color: accent,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Started", Value: humanize.RelTime(robo.Started, now, "ago", "from now"), Inline: true},
			{Name: "Memory", Value: humanize.Bytes(mem.Alloc), Inline: true},
			{Name: "Goroutines", Value: humanize.Comma(int64(runtime.NumGoroutine())), Inline: true},
			{Name: "Active messages", Value: live.String(), Inline: true},
			{Name: "Owner", Value: "<@" + robo.Owner + ">", Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: runtime.Version()},
	}
	return &active.Page{Embeds: []*discordgo.MessageEmbed{&e}}
}
