package command

import (
	"context"
	"strconv"
	"strings"

	"github.com/zephyrtronium/bathbot/bgtag"
	"github.com/zephyrtronium/bathbot/osu"
)

// BgTags manages the tags of background game mapsets. Only the owner may use
// it.
//   - sub: edit, add, or count.
//   - mapsets: For add, mapset IDs or URLs separated by spaces or commas.
//   - tags: For count, tags which mapsets must have.
//   - exclude: For count, tags which mapsets must not have.
func BgTags(ctx context.Context, robo *Robot, call *Invocation) {
	if call.User != robo.Owner {
		call.Private(ctx, "Only the bot owner can manage background tags.")
		return
	}
	switch call.Args["sub"] {
	case "", "edit":
		bgEdit(ctx, robo, call)
	case "add":
		bgAdd(ctx, robo, call)
	case "count":
		bgCount(ctx, robo, call)
	default:
		call.Private(ctx, "I can edit, add, or count background mapsets.")
	}
}

func bgEdit(ctx context.Context, robo *Robot, call *Invocation) {
	if err := call.Defer(ctx, false); err != nil {
		call.Fail(ctx, "couldn't defer bgtags", err)
		return
	}
	e, err := bgtag.NewEditor(ctx, robo.Store, robo.Osu, call.User)
	if err != nil {
		call.Fail(ctx, "couldn't start tag editor", err)
		return
	}
	if e.Done() {
		call.Reply(ctx, "Every background mapset is already tagged.")
		return
	}
	call.Begin(ctx, robo, "bgtags", e)
}

func bgAdd(ctx context.Context, robo *Robot, call *Invocation) {
	ids, bad := ParseMapsets(call.Args["mapsets"])
	if len(bad) != 0 {
		call.Private(ctx, "These aren't mapsets: "+strings.Join(bad, ", "))
		return
	}
	if len(ids) == 0 {
		call.Private(ctx, "Give me some mapset IDs or links to add.")
		return
	}
	n, err := robo.Store.AddBgMapsets(ctx, ids)
	if err != nil {
		call.Fail(ctx, "couldn't add mapsets", err)
		return
	}
	call.Private(ctx, "Added "+strconv.Itoa(n)+" new mapsets of "+strconv.Itoa(len(ids))+".")
}

func bgCount(ctx context.Context, robo *Robot, call *Invocation) {
	tags, err := bgtag.ParseList(call.Args["tags"])
	if err != nil {
		call.Private(ctx, "I don't know that tag: "+err.Error())
		return
	}
	exclude, err := bgtag.ParseList(call.Args["exclude"])
	if err != nil {
		call.Private(ctx, "I don't know that tag: "+err.Error())
		return
	}
	ids, err := robo.Store.BgMapsetsTagged(ctx, tags, exclude)
	if err != nil {
		call.Fail(ctx, "couldn't count mapsets", err)
		return
	}
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(ids)) + " tagged mapsets")
	if tags != 0 {
		sb.WriteString(" with " + tags.String())
	}
	if exclude != 0 {
		sb.WriteString(" without " + exclude.String())
	}
	sb.WriteByte('.')
	call.Private(ctx, sb.String())
}

// ParseMapsets parses mapset IDs and mapset URLs separated by spaces or
// commas. It returns the IDs and the fields which were neither.
func ParseMapsets(s string) (ids []int64, bad []string) {
	f := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\n' || r == '\t' })
	for _, v := range f {
		id, ok := osu.ParseMapsetID(v)
		if !ok {
			bad = append(bad, v)
			continue
		}
		ids = append(ids, id)
	}
	return ids, bad
}
