package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zephyrtronium/bathbot/active"
)

// TTL is the default time a paginated message stays active.
const TTL = time.Minute

// Content renders one page of a list.
type Content interface {
	// Render renders the current page. It may change the pages' total, for
	// example once it learns how many items exist.
	Render(ctx context.Context, pages *Pages) (*active.Page, error)
}

// ContentFunc adapts a function to a Content.
type ContentFunc func(ctx context.Context, pages *Pages) (*active.Page, error)

// Render calls f.
func (f ContentFunc) Render(ctx context.Context, pages *Pages) (*active.Page, error) {
	return f(ctx, pages)
}

// Message is an active message paging through content.
type Message struct {
	pages   Pages
	content Content
	owner   string
	ttl     time.Duration
}

// NewMessage creates a paginated message owned by the given user.
func NewMessage(owner string, pages Pages, content Content) *Message {
	return &Message{
		pages:   pages,
		content: content,
		owner:   owner,
		ttl:     TTL,
	}
}

// WithTTL sets the message's time to live.
func (m *Message) WithTTL(ttl time.Duration) *Message {
	m.ttl = ttl
	return m
}

// Pages returns the message's current position.
func (m *Message) Pages() *Pages { return &m.pages }

// Build renders the current page followed by the navigation buttons.
func (m *Message) Build(ctx context.Context) (*active.Page, error) {
	p, err := m.content.Render(ctx, &m.pages)
	if err != nil {
		return nil, fmt.Errorf("couldn't render page %d: %w", m.pages.Page(), err)
	}
	p.Components = append(p.Components, m.pages.Components()...)
	return p, nil
}

// Component handles the navigation buttons.
func (m *Message) Component(ctx context.Context, ev *active.Event) (active.Result, error) {
	if ev.CustomID == Custom {
		return active.Showing(m.pages.Modal()), nil
	}
	old := m.pages.Index()
	if !m.pages.Apply(ev.CustomID) || m.pages.Index() == old {
		return active.Ignored(), nil
	}
	return active.Updated(), nil
}

// Modal handles the page number modal.
func (m *Message) Modal(ctx context.Context, ev *active.Event) (active.Result, error) {
	if ev.CustomID != Custom {
		return active.Ignored(), nil
	}
	if err := m.pages.ApplyModal(ev.Inputs); err != nil {
		if errors.Is(err, ErrBadPage) {
			return active.Replied(fmt.Sprintf("The page number must be between 1 and %d.", m.pages.Count())), nil
		}
		return active.Result{}, err
	}
	return active.Updated(), nil
}

// Expire leaves the last page in place without buttons.
func (m *Message) Expire(ctx context.Context) (*active.Page, error) { return nil, nil }

func (m *Message) Owner() string      { return m.owner }
func (m *Message) TTL() time.Duration { return m.ttl }
