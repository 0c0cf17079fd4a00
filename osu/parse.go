package osu

import (
	"regexp"
	"strconv"
	"strings"
)

var beatmapURL = regexp.MustCompile(`(?i)^(?:https?://)?(?:osu|old)\.ppy\.sh/(?:b/(?<id>\d+)|beatmaps/(?<id2>\d+)|beatmapsets/\d+/?#(?:osu|taiko|fruits|mania)/(?<id3>\d+))`)

// ParseBeatmapID parses a beatmap ID or a beatmap URL.
func ParseBeatmapID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		if id <= 0 {
			return 0, false
		}
		return id, true
	}
	m := beatmapURL.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	for _, v := range m[1:] {
		if v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			return id, err == nil
		}
	}
	return 0, false
}

// Mods formats legacy mod acronyms, e.g. "+HDDT", or "NM" for no mods.
func Mods(mods []string) string {
	if len(mods) == 0 {
		return "NM"
	}
	return "+" + strings.Join(mods, "")
}

var mapsetURL = regexp.MustCompile(`(?i)^(?:https?://)?(?:osu|old)\.ppy\.sh/(?:s|beatmapsets)/(\d+)`)

// ParseMapsetID parses a beatmapset ID or a beatmapset URL.
func ParseMapsetID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		if id <= 0 {
			return 0, false
		}
		return id, true
	}
	m := mapsetURL.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	return id, err == nil
}
