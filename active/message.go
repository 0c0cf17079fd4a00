// Package active tracks interactive Discord messages.
//
// An active message is a message whose buttons, select menus, and modals are
// handled by a live [Message] value for a bounded time after the last
// interaction. The [Registry] owns every active message by its Discord message
// ID, serializes events per message, and removes the components of messages
// whose time runs out.
package active

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Message is the behavior of one kind of active message.
//
// A Registry never calls the methods of a single Message concurrently, so
// implementations need no synchronization of their own.
type Message interface {
	// Build renders the message's current state.
	Build(ctx context.Context) (*Page, error)
	// Component handles a button press or select menu choice.
	Component(ctx context.Context, ev *Event) (Result, error)
	// Modal handles a submitted modal.
	Modal(ctx context.Context, ev *Event) (Result, error)
	// Expire renders the message's final state once it times out.
	// A nil page means the message keeps its content and loses its components.
	Expire(ctx context.Context) (*Page, error)
	// Owner returns the ID of the only user allowed to interact with the
	// message, or the empty string if anyone may.
	Owner() string
	// TTL is how long the message stays active after its last event.
	// Zero or negative means the message stays active until shutdown.
	TTL() time.Duration
}

// Page is the renderable content of a message.
type Page struct {
	Content    string
	Embeds     []*discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

// Event is a component or modal interaction on an active message.
type Event struct {
	// Interaction is the interaction which produced the event.
	Interaction *discordgo.Interaction
	// User is the ID of the interacting user.
	User string
	// CustomID is the custom ID of the component or modal.
	CustomID string
	// Values is the selected values of a select menu.
	Values []string
	// Inputs is the modal's text inputs by custom ID.
	Inputs map[string]string
}

// Action is the kind of response to an event.
type Action uint8

const (
	// Ignore acknowledges the event without changing the message.
	Ignore Action = iota
	// Update rebuilds the message and edits it in place.
	Update
	// ShowModal opens a modal for the interacting user.
	ShowModal
	// Reply sends an ephemeral message to the interacting user.
	Reply
)

func (a Action) String() string {
	switch a {
	case Ignore:
		return "ignore"
	case Update:
		return "update"
	case ShowModal:
		return "modal"
	case Reply:
		return "reply"
	default:
		return "Action(?)"
	}
}

// Modal is a modal form to show in response to a component.
type Modal struct {
	CustomID   string
	Title      string
	Components []discordgo.MessageComponent
}

// Result is the outcome of handling an event.
type Result struct {
	Action Action
	// Modal is the modal to show when Action is ShowModal.
	Modal *Modal
	// Text is the reply when Action is Reply.
	Text string
	// Done ends the message's activity once the response is sent.
	Done bool
}

// Ignored returns a result which acknowledges an event and does nothing else.
func Ignored() Result { return Result{Action: Ignore} }

// Updated returns a result which rebuilds the message.
func Updated() Result { return Result{Action: Update} }

// Replied returns a result which sends an ephemeral reply.
func Replied(text string) Result { return Result{Action: Reply, Text: text} }

// Showing returns a result which opens a modal.
func Showing(m *Modal) Result { return Result{Action: ShowModal, Modal: m} }

// Finished returns r with Done set.
func (r Result) Finished() Result {
	r.Done = true
	return r
}

// Inputs collects the text inputs of a modal submission by custom ID.
func Inputs(data *discordgo.ModalSubmitInteractionData) map[string]string {
	m := make(map[string]string)
	var walk func([]discordgo.MessageComponent)
	walk = func(cs []discordgo.MessageComponent) {
		for _, c := range cs {
			switch c := c.(type) {
			case *discordgo.ActionsRow:
				walk(c.Components)
			case discordgo.ActionsRow:
				walk(c.Components)
			case *discordgo.TextInput:
				m[c.CustomID] = c.Value
			case discordgo.TextInput:
				m[c.CustomID] = c.Value
			}
		}
	}
	walk(data.Components)
	return m
}

// hasComponents reports whether a page has anything to interact with.
func (p *Page) hasComponents() bool {
	return p != nil && len(p.Components) != 0
}
