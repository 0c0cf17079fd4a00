// Package pagination pages through bounded lists inside active messages.
package pagination

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/zephyrtronium/bathbot/active"
)

// Custom IDs of the pagination components.
const (
	Start  = "pagination_start"
	Back   = "pagination_back"
	Custom = "pagination_custom"
	Step   = "pagination_step"
	End    = "pagination_end"

	// Input is the custom ID of the page number text input.
	Input = "page_input"
)

// ErrBadPage is the error returned for page numbers that are not in range.
var ErrBadPage = errors.New("page number out of range")

// Pages is a position within a list.
type Pages struct {
	index   int
	perPage int
	total   int
}

// New creates pages over total items with perPage items on each page.
// Panics if perPage is not positive.
func New(perPage, total int) Pages {
	if perPage <= 0 {
		panic(fmt.Errorf("pagination: page size %d must be positive", perPage))
	}
	return Pages{perPage: perPage, total: max(total, 0)}
}

// Index returns the index of the first item on the current page.
func (p *Pages) Index() int { return p.index }

// PerPage returns the number of items on each page.
func (p *Pages) PerPage() int { return p.perPage }

// Total returns the number of items.
func (p *Pages) Total() int { return p.total }

// SetTotal changes the number of items, keeping the index in range.
func (p *Pages) SetTotal(total int) {
	p.total = max(total, 0)
	p.Set(p.index)
}

// Page returns the 1-based number of the current page.
func (p *Pages) Page() int { return p.index/p.perPage + 1 }

// Count returns the number of pages. There is always at least one.
func (p *Pages) Count() int { return max((p.total+p.perPage-1)/p.perPage, 1) }

// last returns the index of the first item on the last page.
func (p *Pages) last() int { return (p.Count() - 1) * p.perPage }

// Bounds returns the range of item indices on the current page.
func (p *Pages) Bounds() (lo, hi int) {
	return p.index, min(p.index+p.perPage, p.total)
}

// Set moves to the page containing index i, clamped to the list.
func (p *Pages) Set(i int) {
	i = max(min(i, p.last()), 0)
	p.index = i - i%p.perPage
}

// SetPage moves to the 1-based page n, clamped to the list.
func (p *Pages) SetPage(n int) {
	p.Set((n - 1) * p.perPage)
}

// Apply moves according to a pagination component's custom ID.
// It reports whether the ID was a movement.
func (p *Pages) Apply(id string) bool {
	switch id {
	case Start:
		p.Set(0)
	case Back:
		p.Set(p.index - p.perPage)
	case Step:
		p.Set(p.index + p.perPage)
	case End:
		p.Set(p.last())
	default:
		return false
	}
	return true
}

// ApplyModal moves to the page entered in the page number modal.
func (p *Pages) ApplyModal(inputs map[string]string) error {
	s := strings.TrimSpace(inputs[Input])
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%q is not a page number: %w", s, ErrBadPage)
	}
	if n < 1 || n > p.Count() {
		return fmt.Errorf("page %d of %d: %w", n, p.Count(), ErrBadPage)
	}
	p.SetPage(n)
	return nil
}

// Components returns the navigation buttons for the current page,
// or nil if there is only one page.
func (p *Pages) Components() []discordgo.MessageComponent {
	if p.Count() <= 1 {
		return nil
	}
	first, last := p.index == 0, p.index >= p.last()
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "⏮", Style: discordgo.SecondaryButton, CustomID: Start, Disabled: first},
				discordgo.Button{Label: "◀", Style: discordgo.SecondaryButton, CustomID: Back, Disabled: first},
				discordgo.Button{Label: "*", Style: discordgo.SecondaryButton, CustomID: Custom},
				discordgo.Button{Label: "▶", Style: discordgo.SecondaryButton, CustomID: Step, Disabled: last},
				discordgo.Button{Label: "⏭", Style: discordgo.SecondaryButton, CustomID: End, Disabled: last},
			},
		},
	}
}

// Modal returns the modal asking for a page number.
func (p *Pages) Modal() *active.Modal {
	return &active.Modal{
		CustomID: Custom,
		Title:    "Jump to a page",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    Input,
						Label:       "Page number",
						Style:       discordgo.TextInputShort,
						Placeholder: fmt.Sprintf("Number between 1 and %d", p.Count()),
						Required:    true,
						MinLength:   1,
						MaxLength:   len(strconv.Itoa(p.Count())),
					},
				},
			},
		},
	}
}

// Footer describes the current page.
func (p *Pages) Footer() string {
	return fmt.Sprintf("Page %d/%d", p.Page(), p.Count())
}
