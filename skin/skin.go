// Package skin validates links to osu! skins.
package skin

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrNotURL  = errors.New("not a url")
	ErrScheme  = errors.New("skin urls must use http or https")
	ErrHost    = errors.New("skin urls must point to a known skin host")
	ErrTooLong = errors.New("skin url is too long")
)

// MaxLen is the maximum length of a skin URL.
const MaxLen = 256

// hosts are the sites allowed to host skins. Subdomains of each are allowed.
var hosts = []string{
	"osu.ppy.sh",
	"skins.osuck.net",
	"osuskins.net",
	"drive.google.com",
	"docs.google.com",
	"dropbox.com",
	"mega.nz",
	"mediafire.com",
	"github.com",
	"gofile.io",
	"onedrive.live.com",
	"1drv.ms",
	"catbox.moe",
	"imgur.com",
	"youtube.com",
	"youtu.be",
}

// Validate checks that s is a link to a skin on a known host. Surrounding
// whitespace and angle brackets, which Discord uses to suppress embeds, are
// removed. The returned string is the cleaned URL.
func Validate(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "<"), ">")
	if len(s) > MaxLen {
		return "", ErrTooLong
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", ErrNotURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https": // do nothing
	default:
		return "", ErrScheme
	}
	if !allowed(u.Hostname()) {
		return "", ErrHost
	}
	return s, nil
}

func allowed(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	for _, h := range hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
