package main

import (
	"cmp"
	"regexp"
	"slices"
	"strings"

	"github.com/zephyrtronium/bathbot/command"
)

// parsePrefix removes a command prefix from a message. A mention of the bot
// user me always works as a prefix. Longer prefixes win over shorter ones.
func parsePrefix(prefixes []string, me, text string) (string, bool) {
	text = strings.TrimSpace(text)
	if me != "" {
		for _, m := range []string{"<@" + me + ">", "<@!" + me + ">"} {
			if rest, ok := strings.CutPrefix(text, m); ok {
				rest = strings.TrimSpace(rest)
				return rest, rest != ""
			}
		}
	}
	p := slices.Clone(prefixes)
	slices.SortFunc(p, func(a, b string) int { return cmp.Compare(len(b), len(a)) })
	for _, v := range p {
		if v == "" || len(text) < len(v) {
			continue
		}
		if strings.EqualFold(text[:len(v)], v) {
			rest := strings.TrimSpace(text[len(v):])
			return rest, rest != ""
		}
	}
	return "", false
}

type prefixCommand struct {
	parse *regexp.Regexp
	fn    command.Func
	name  string
}

func findPrefix(cmds []prefixCommand, text string) (*prefixCommand, map[string]string) {
	for i := range cmds {
		c := &cmds[i]
		u := c.parse.FindStringSubmatch(text)
		switch len(u) {
		case 0:
			continue
		case 1:
			return c, map[string]string{}
		default:
			m := make(map[string]string, len(u)-1)
			s := c.parse.SubexpNames()
			for k, v := range u[1:] {
				if s[k+1] != "" {
					m[s[k+1]] = strings.TrimSpace(v)
				}
			}
			return c, m
		}
	}
	return nil, nil
}

// modes matches a game mode suffix on a command name.
const modes = `(?<mode>osu|std|taiko|ctb|catch|fruits|mania)?`

var prefixAny = []prefixCommand{
	{
		parse: regexp.MustCompile(`(?i)^link\s+(?<user>.+)$`),
		fn:    command.Link,
		name:  "link",
	},
	{
		parse: regexp.MustCompile(`(?i)^unlink$`),
		fn:    command.Unlink,
		name:  "unlink",
	},
	{
		parse: regexp.MustCompile(`(?i)^(?:profile|p)` + modes + `(?:\s+(?<user>.+))?$`),
		fn:    command.Profile,
		name:  "profile",
	},
	{
		parse: regexp.MustCompile(`(?i)^(?<kind>top|best|recent|rs|firsts|1s)` + modes + `(?:\s+(?<user>.+))?$`),
		fn:    command.Top,
		name:  "top",
	},
	{
		parse: regexp.MustCompile(`(?i)^(?:leaderboard|lb)\s+(?<map>\S+)$`),
		fn:    command.Leaderboard,
		name:  "leaderboard",
	},
	{
		parse: regexp.MustCompile(`(?i)^(?:ranking|rankings|rank)` + modes + `(?:\s+(?<country>.+))?$`),
		fn:    command.Ranking,
		name:  "ranking",
	},
	{
		parse: regexp.MustCompile(`(?i)^(?:higherlower|hl)` + modes + `$`),
		fn:    command.HigherLower,
		name:  "higherlower",
	},
	{
		parse: regexp.MustCompile(`(?i)^(?:dailychallenge|daily|dc)$`),
		fn:    command.DailyChallenge,
		name:  "dailychallenge",
	},
	{
		parse: regexp.MustCompile(`(?i)^bgtags\s+(?<sub>add)\s+(?<mapsets>.+)$`),
		fn:    command.BgTags,
		name:  "bgtags",
	},
	{
		parse: regexp.MustCompile(`(?i)^bgtags\s+(?<sub>count)(?:\s+(?<tags>[^-]*?))?(?:\s+-\s*(?<exclude>.+))?$`),
		fn:    command.BgTags,
		name:  "bgtags",
	},
	{
		parse: regexp.MustCompile(`(?i)^bgtags(?:\s+(?<sub>edit))?$`),
		fn:    command.BgTags,
		name:  "bgtags",
	},
	{
		parse: regexp.MustCompile(`(?i)^skin\s+(?<sub>set)\s+(?<url>\S+)$`),
		fn:    command.Skin,
		name:  "skin",
	},
	{
		parse: regexp.MustCompile(`(?i)^skin\s+(?<sub>remove)$`),
		fn:    command.Skin,
		name:  "skin",
	},
	{
		parse: regexp.MustCompile(`(?i)^skin(?:\s+(?<user><@!?\d+>))?$`),
		fn:    command.Skin,
		name:  "skin",
	},
	{
		parse: regexp.MustCompile(`(?i)^prefix(?:es)?(?:\s+(?<prefixes>.+))?$`),
		fn:    command.Prefix,
		name:  "prefix",
	},
	{
		parse: regexp.MustCompile(`(?i)^(?:info|about)$`),
		fn:    command.Info,
		name:  "info",
	},
}
