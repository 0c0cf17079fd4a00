package bgtag

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Tags
		err  bool
	}{
		{"farm", Farm, false},
		{"FARM", Farm, false},
		{"Blue Sky", BlueSky, false},
		{" kpop ", Kpop, false},
		{"hardname", HardName, false},
		{"jpop", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if got != c.want || (err != nil) != c.err {
			t.Errorf("Parse(%q): want %v (err %t), got %v (%v)", c.in, c.want, c.err, got, err)
		}
	}
}

func TestParseList(t *testing.T) {
	cases := []struct {
		in   string
		want Tags
		err  bool
	}{
		{"", 0, false},
		{"farm,streams", Farm | Streams, false},
		{"farm + weeb old", Farm | Weeb | Old, false},
		{"farm,farm", Farm, false},
		{"farm,bocchi", 0, true},
	}
	for _, c := range cases {
		got, err := ParseList(c.in)
		if got != c.want || (err != nil) != c.err {
			t.Errorf("ParseList(%q): want %v (err %t), got %v (%v)", c.in, c.want, c.err, got, err)
		}
	}
}

func TestSet(t *testing.T) {
	v := Farm.With(Tech).With(Easy)
	if !v.Has(Farm|Tech) || v.Has(Hard) {
		t.Errorf("wrong membership in %v", v)
	}
	if v.Len() != 3 {
		t.Errorf("wrong length: want 3, got %d", v.Len())
	}
	v = v.Without(Farm)
	if diff := cmp.Diff([]Tags{Easy, Tech}, v.List()); diff != "" {
		t.Errorf("wrong list (-want +got):\n%s", diff)
	}
	if got := v.String(); got != "easy, tech" {
		t.Errorf("wrong string: %q", got)
	}
	if got := Tags(0).String(); got != "untagged" {
		t.Errorf("wrong empty string: %q", got)
	}
	if got := Kpop.Name(); got != "kpop" {
		t.Errorf("wrong name: %q", got)
	}
	if Weeb.Description() == "" || (Farm | Weeb).Description() != "" {
		t.Errorf("wrong descriptions")
	}
	if All.Len() != len(names) {
		t.Errorf("All has %d tags but there are %d names", All.Len(), len(names))
	}
}
