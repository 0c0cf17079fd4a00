package bgtag

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/zephyrtronium/bathbot/active"
	"github.com/zephyrtronium/bathbot/osu"
)

// Component custom IDs of the tag editor.
const (
	Select = "bg_tags"
	Save   = "bg_save"
	Skip   = "bg_skip"
	Stop   = "bg_stop"
)

// EditorTTL is how long the tag editor waits for input.
const EditorTTL = 5 * time.Minute

// batch is the number of untagged mapsets fetched at a time.
const batch = 20

// Pool is the storage of background game mapsets.
type Pool interface {
	UntaggedBgMapsets(ctx context.Context, limit int) ([]int64, error)
	BgMapsetTags(ctx context.Context, id int64) (Tags, error)
	SetBgMapsetTags(ctx context.Context, id int64, tags Tags) error
}

// Mapsets looks up mapset details.
type Mapsets interface {
	Beatmapset(ctx context.Context, id int64) (*osu.Beatmapset, error)
}

// Editor is an active message for reviewing the tags of untagged mapsets.
type Editor struct {
	pool    Pool
	mapsets Mapsets
	owner   string

	queue   []int64
	skipped []int64
	cur     *osu.Beatmapset
	tags    Tags
	tagged  int
	// final is the closing text once the editor finishes.
	final string
}

// NewEditor creates a tag editor and loads its first mapset.
// If there is nothing to tag, the editor is finished from the start.
func NewEditor(ctx context.Context, pool Pool, mapsets Mapsets, owner string) (*Editor, error) {
	e := &Editor{pool: pool, mapsets: mapsets, owner: owner}
	if err := e.advance(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// advance moves to the next untagged mapset which was not skipped.
// Mapsets which no longer exist on osu! are skipped.
func (e *Editor) advance(ctx context.Context) error {
	for {
		if len(e.queue) == 0 {
			ids, err := e.pool.UntaggedBgMapsets(ctx, len(e.skipped)+batch)
			if err != nil {
				return fmt.Errorf("couldn't list untagged mapsets: %w", err)
			}
			e.queue = slices.DeleteFunc(ids, func(id int64) bool { return slices.Contains(e.skipped, id) })
			if len(e.queue) == 0 {
				e.cur, e.tags = nil, 0
				e.final = "No untagged mapsets left. Tagged " + strconv.Itoa(e.tagged) + " this session."
				return nil
			}
		}
		id := e.queue[0]
		e.queue = e.queue[1:]
		s, err := e.mapsets.Beatmapset(ctx, id)
		if errors.Is(err, osu.ErrNotFound) {
			e.skipped = append(e.skipped, id)
			continue
		}
		if err != nil {
			return fmt.Errorf("couldn't get mapset %d: %w", id, err)
		}
		t, err := e.pool.BgMapsetTags(ctx, id)
		if err != nil {
			return fmt.Errorf("couldn't get tags of mapset %d: %w", id, err)
		}
		e.cur, e.tags = s, t
		return nil
	}
}

// Build shows the current mapset with its tags and the editing components.
func (e *Editor) Build(ctx context.Context) (*active.Page, error) {
	if e.cur == nil {
		return &active.Page{Content: e.final}, nil
	}
	s := e.cur
	em := &discordgo.MessageEmbed{
		Title:       s.Artist + " - " + s.Title,
		URL:         "https://osu.ppy.sh/beatmapsets/" + strconv.FormatInt(s.ID, 10),
		Description: "Mapped by " + s.Creator,
		Image:       &discordgo.MessageEmbedImage{URL: s.Covers.Cover2x},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Tags", Value: e.tags.String()},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "Tagged this session: " + strconv.Itoa(e.tagged)},
	}
	opts := make([]discordgo.SelectMenuOption, 0, len(names))
	for _, t := range All.List() {
		opts = append(opts, discordgo.SelectMenuOption{
			Label:       t.Name(),
			Value:       t.Name(),
			Description: t.Description(),
			Default:     e.tags.Has(t),
		})
	}
	zero := 0
	p := active.Page{
		Embeds: []*discordgo.MessageEmbed{em},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    Select,
					Placeholder: "Choose tags",
					MinValues:   &zero,
					MaxValues:   len(opts),
					Options:     opts,
				},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Save & next", Style: discordgo.SuccessButton, CustomID: Save},
				discordgo.Button{Label: "Skip", Style: discordgo.SecondaryButton, CustomID: Skip},
				discordgo.Button{Label: "Stop", Style: discordgo.DangerButton, CustomID: Stop},
			}},
		},
	}
	return &p, nil
}

// Component handles tag selection and navigation.
func (e *Editor) Component(ctx context.Context, ev *active.Event) (active.Result, error) {
	if e.cur == nil {
		return active.Ignored().Finished(), nil
	}
	switch ev.CustomID {
	case Select:
		var t Tags
		for _, v := range ev.Values {
			u, err := Parse(v)
			if err != nil {
				return active.Replied("I don't know the tag " + strconv.Quote(v) + "."), nil
			}
			t |= u
		}
		e.tags = t
		return active.Updated(), nil
	case Save:
		if err := e.pool.SetBgMapsetTags(ctx, e.cur.ID, e.tags); err != nil {
			return active.Result{}, fmt.Errorf("couldn't save tags of mapset %d: %w", e.cur.ID, err)
		}
		e.tagged++
		if err := e.advance(ctx); err != nil {
			return active.Result{}, err
		}
		return active.Updated(), nil
	case Skip:
		e.skipped = append(e.skipped, e.cur.ID)
		if err := e.advance(ctx); err != nil {
			return active.Result{}, err
		}
		return active.Updated(), nil
	case Stop:
		e.cur = nil
		e.final = "Stopped tagging. Tagged " + strconv.Itoa(e.tagged) + " this session."
		return active.Updated().Finished(), nil
	default:
		return active.Ignored(), nil
	}
}

// Modal ignores modals; the editor has none.
func (e *Editor) Modal(ctx context.Context, ev *active.Event) (active.Result, error) {
	return active.Ignored(), nil
}

// Expire leaves the message as it is without its components.
func (e *Editor) Expire(ctx context.Context) (*active.Page, error) { return nil, nil }

func (e *Editor) Owner() string { return e.owner }

func (e *Editor) TTL() time.Duration { return EditorTTL }

// Done reports whether the editor has nothing left to edit.
func (e *Editor) Done() bool { return e.cur == nil }
