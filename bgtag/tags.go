// Package bgtag describes background-game mapset tags.
package bgtag

import (
	"fmt"
	"math/bits"
	"strings"
)

// Tags is a set of mapset tags.
type Tags uint32

const (
	Farm Tags = 1 << iota
	Streams
	Alternate
	Old
	Meme
	HardName
	Easy
	Hard
	Tech
	Weeb
	BlueSky
	English
	Kpop

	// All is every tag.
	All = Farm | Streams | Alternate | Old | Meme | HardName | Easy | Hard | Tech | Weeb | BlueSky | English | Kpop
)

var names = [...]string{
	"farm",
	"streams",
	"alternate",
	"old",
	"meme",
	"hardname",
	"easy",
	"hard",
	"tech",
	"weeb",
	"bluesky",
	"english",
	"kpop",
}

var descriptions = [...]string{
	"Commonly farmed for pp",
	"Stream-heavy",
	"Needs alternating",
	"Ranked before 2015",
	"Meme song or map",
	"Title hard to guess",
	"Low star rating",
	"High star rating",
	"Technical patterns",
	"Anime or Japanese media",
	"Blue sky backgrounds",
	"English lyrics",
	"K-pop",
}

// Parse parses a single tag name. Matching ignores case and spaces.
func Parse(s string) (Tags, error) {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for i, n := range names {
		if s == n {
			return 1 << i, nil
		}
	}
	return 0, fmt.Errorf("unknown tag %q", s)
}

// ParseList parses tag names separated by commas, spaces, or plus signs.
func ParseList(s string) (Tags, error) {
	var t Tags
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '+' })
	for _, v := range f {
		u, err := Parse(v)
		if err != nil {
			return 0, err
		}
		t |= u
	}
	return t, nil
}

// Has reports whether t contains every tag in u.
func (t Tags) Has(u Tags) bool { return t&u == u }

// With returns t with u added.
func (t Tags) With(u Tags) Tags { return t | u }

// Without returns t with u removed.
func (t Tags) Without(u Tags) Tags { return t &^ u }

// Len returns the number of tags in t.
func (t Tags) Len() int { return bits.OnesCount32(uint32(t & All)) }

// List returns each single tag in t in order.
func (t Tags) List() []Tags {
	r := make([]Tags, 0, t.Len())
	for i := range names {
		if u := Tags(1) << i; t.Has(u) {
			r = append(r, u)
		}
	}
	return r
}

// Name returns the name of a single tag.
func (t Tags) Name() string {
	if t.Len() != 1 {
		return t.String()
	}
	return names[bits.TrailingZeros32(uint32(t))]
}

// Description describes a single tag.
func (t Tags) Description() string {
	if t.Len() != 1 {
		return ""
	}
	return descriptions[bits.TrailingZeros32(uint32(t))]
}

// String formats the tags as names joined by commas, or "untagged".
func (t Tags) String() string {
	if t&All == 0 {
		return "untagged"
	}
	var b strings.Builder
	for i, u := range t.List() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(names[bits.TrailingZeros32(uint32(u))])
	}
	return b.String()
}
