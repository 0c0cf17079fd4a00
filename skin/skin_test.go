package skin

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		err  error
	}{
		{
			name: "plain",
			in:   "https://osu.ppy.sh/community/forums/topics/1",
			want: "https://osu.ppy.sh/community/forums/topics/1",
		},
		{
			name: "suppressed",
			in:   " <https://www.dropbox.com/s/abc/skin.osk> ",
			want: "https://www.dropbox.com/s/abc/skin.osk",
		},
		{
			name: "http",
			in:   "http://mega.nz/file/x",
			want: "http://mega.nz/file/x",
		},
		{
			name: "subdomain",
			in:   "https://user.github.com/skin",
			want: "https://user.github.com/skin",
		},
		{
			name: "lookalike",
			in:   "https://evilgithub.com/skin",
			err:  ErrHost,
		},
		{
			name: "unknown",
			in:   "https://example.com/skin.osk",
			err:  ErrHost,
		},
		{
			name: "ftp",
			in:   "ftp://mega.nz/skin.osk",
			err:  ErrScheme,
		},
		{
			name: "words",
			in:   "my skin",
			err:  ErrNotURL,
		},
		{
			name: "long",
			in:   "https://mega.nz/" + strings.Repeat("a", MaxLen),
			err:  ErrTooLong,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Validate(c.in)
			if !errors.Is(err, c.err) {
				t.Errorf("wrong error: want %v, got %v", c.err, err)
			}
			if got != c.want {
				t.Errorf("wrong url: want %q, got %q", c.want, got)
			}
		})
	}
}
