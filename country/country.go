// Package country looks up ISO 3166-1 alpha-2 country codes.
package country

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// aliases are common names which differ from the English display names.
var aliases = map[string]string{
	"usa":            "US",
	"america":        "US",
	"uk":             "GB",
	"britain":        "GB",
	"great britain":  "GB",
	"england":        "GB",
	"korea":          "KR",
	"south korea":    "KR",
	"czech republic": "CZ",
	"russia":         "RU",
	"holland":        "NL",
	"uae":            "AE",
}

var byName = sync.OnceValue(func() map[string]string {
	m := make(map[string]string, 300)
	namer := display.English.Regions()
	var b [2]byte
	for b[0] = 'A'; b[0] <= 'Z'; b[0]++ {
		for b[1] = 'A'; b[1] <= 'Z'; b[1]++ {
			r, err := language.ParseRegion(string(b[:]))
			if err != nil || !r.IsCountry() {
				continue
			}
			if n := namer.Name(r); n != "" {
				m[strings.ToLower(n)] = string(b[:])
			}
		}
	}
	for k, v := range aliases {
		m[k] = v
	}
	return m
})

// Code returns the alpha-2 code of a country given its code or English name.
func Code(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if c, ok := aliases[strings.ToLower(s)]; ok {
		return c, true
	}
	if len(s) == 2 {
		c := strings.ToUpper(s)
		if r, err := language.ParseRegion(c); err == nil && r.IsCountry() {
			return c, true
		}
	}
	c, ok := byName()[strings.ToLower(s)]
	return c, ok
}

// Name returns the English name of a country code, or the code itself if it
// is unknown.
func Name(code string) string {
	r, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	n := display.English.Regions().Name(r)
	if n == "" {
		return code
	}
	return n
}

// Flag returns the flag emoji of a country code, or the empty string if the
// code is not two letters.
func Flag(code string) string {
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(code) {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1f1e6 + c - 'A')
	}
	return b.String()
}
