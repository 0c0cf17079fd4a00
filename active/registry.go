package active

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/bathbot/metrics"
	"github.com/zephyrtronium/bathbot/syncmap"
)

// ErrNotActive is the error returned by [Registry.Handle] when the interaction
// is on a message that is not active.
var ErrNotActive = errors.New("message is not active")

const (
	expiredText = "This message is no longer active."
	failedText  = "Something went wrong. Try again. Sorry!"
)

// Registry owns the active messages.
type Registry struct {
	dg   Discord
	log  *slog.Logger
	met  *metrics.Metrics
	msgs *syncmap.Map[string, *entry]

	// mu guards closed and orders registration against Shutdown.
	mu     sync.Mutex
	closed bool
}

type entry struct {
	mu       sync.Mutex
	id       string
	channel  string
	kind     string
	msg      Message
	timer    *time.Timer
	deadline time.Time
	// done is set once the message is removed from the registry.
	done bool
}

func sameEntry(a, b *entry) bool { return a == b }

// New creates a registry which manages messages through dg.
// If met is nil, no metrics are recorded.
func New(dg Discord, log *slog.Logger, met *metrics.Metrics) *Registry {
	if met == nil {
		met = metrics.Nop()
	}
	return &Registry{
		dg:   dg,
		log:  log,
		met:  met,
		msgs: syncmap.New[string, *entry](),
	}
}

// Begin builds and sends the first page of msg and registers the sent message
// as active. If the first page has no components, the message is sent but not
// registered.
//
// The context of Begin is used for Discord requests made when the message
// times out, but its cancellation is not.
func (r *Registry) Begin(ctx context.Context, origin Origin, kind string, msg Message) error {
	p, err := msg.Build(ctx)
	if err != nil {
		return fmt.Errorf("couldn't build %s message: %w", kind, err)
	}
	sent, err := origin.Send(ctx, r.dg, p)
	if err != nil {
		return fmt.Errorf("couldn't send %s message: %w", kind, err)
	}
	if !p.hasComponents() {
		r.log.DebugContext(ctx, "message has nothing to activate", slog.String("kind", kind), slog.String("message", sent.ID))
		return nil
	}
	e := &entry{
		id:      sent.ID,
		channel: sent.ChannelID,
		kind:    kind,
		msg:     msg,
	}
	// Hold the entry while it is published so that events arriving right away
	// wait for the timer to exist.
	e.mu.Lock()
	defer e.mu.Unlock()
	r.mu.Lock()
	closed := r.closed
	if !closed {
		if _, dup := r.msgs.LoadOrStore(e.id, e); dup {
			r.mu.Unlock()
			return fmt.Errorf("message %s is already active", e.id)
		}
	}
	r.mu.Unlock()
	r.met.ActiveMessages.Observe(1)
	r.met.ActiveEvents.Observe(1, kind, "begin")
	if closed {
		r.expireLocked(context.WithoutCancel(ctx), e, "shutdown")
		return nil
	}
	r.log.InfoContext(ctx, "active message",
		slog.String("kind", kind),
		slog.String("message", e.id),
		slog.String("owner", msg.Owner()),
		slog.Duration("ttl", msg.TTL()),
	)
	r.touchLocked(context.WithoutCancel(ctx), e)
	return nil
}

// Handle dispatches a component or modal interaction to the active message it
// belongs to and responds to it. Interactions on messages which are not active
// receive an ephemeral notice and ErrNotActive.
func (r *Registry) Handle(ctx context.Context, i *discordgo.Interaction) error {
	ev := Event{Interaction: i, User: userID(i)}
	var event string
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		d := i.MessageComponentData()
		ev.CustomID, ev.Values = d.CustomID, d.Values
		event = "component"
	case discordgo.InteractionModalSubmit:
		d := i.ModalSubmitData()
		ev.CustomID, ev.Inputs = d.CustomID, Inputs(&d)
		event = "modal"
	default:
		return fmt.Errorf("interaction type %v is not a message event", i.Type)
	}
	if i.Message == nil {
		return fmt.Errorf("%s interaction %s has no message", event, i.ID)
	}
	log := r.log.With(slog.String("message", i.Message.ID), slog.String("user", ev.User), slog.String("custom_id", ev.CustomID))
	e, ok := r.msgs.Load(i.Message.ID)
	if !ok {
		log.DebugContext(ctx, "event on inactive message")
		return errors.Join(ErrNotActive, r.reply(ctx, i, expiredText))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		// Timed out while we waited for the lock.
		return errors.Join(ErrNotActive, r.reply(ctx, i, expiredText))
	}
	log = log.With(slog.String("kind", e.kind))
	if owner := e.msg.Owner(); owner != "" && owner != ev.User {
		log.InfoContext(ctx, "event from non-owner", slog.String("owner", owner))
		r.met.ActiveEvents.Observe(1, e.kind, "denied")
		return r.reply(ctx, i, fmt.Sprintf("Only <@%s> can use this.", owner))
	}

	var res Result
	var err error
	switch event {
	case "component":
		res, err = e.msg.Component(ctx, &ev)
	case "modal":
		res, err = e.msg.Modal(ctx, &ev)
	}
	r.met.ActiveEvents.Observe(1, e.kind, event)
	r.touchLocked(ctx, e)
	if err != nil {
		log.ErrorContext(ctx, "event failed", slog.String("event", event), slog.Any("err", err))
		return r.reply(ctx, i, failedText)
	}
	log.DebugContext(ctx, "event", slog.String("event", event), slog.String("action", res.Action.String()), slog.Bool("done", res.Done))
	done, err := r.respondLocked(ctx, e, i, res)
	if res.Done || done {
		r.removeLocked(e, "done")
	}
	if err != nil {
		return fmt.Errorf("couldn't respond to %s event: %w", event, err)
	}
	return nil
}

// respondLocked sends the response for a result. The returned bool reports
// whether the rebuilt message has nothing left to interact with.
func (r *Registry) respondLocked(ctx context.Context, e *entry, i *discordgo.Interaction, res Result) (bool, error) {
	var resp discordgo.InteractionResponse
	var empty bool
	switch res.Action {
	case Ignore:
		resp.Type = discordgo.InteractionResponseDeferredMessageUpdate
	case Update:
		p, err := e.msg.Build(ctx)
		if err != nil {
			r.log.ErrorContext(ctx, "rebuild failed", slog.String("kind", e.kind), slog.String("message", e.id), slog.Any("err", err))
			return false, r.reply(ctx, i, failedText)
		}
		empty = !p.hasComponents()
		comps := nonil(p.Components)
		if res.Done {
			// Nothing will handle the components once the message is done.
			comps = []discordgo.MessageComponent{}
		}
		resp.Type = discordgo.InteractionResponseUpdateMessage
		resp.Data = &discordgo.InteractionResponseData{
			Content:    p.Content,
			Embeds:     nonil(p.Embeds),
			Components: comps,
		}
	case ShowModal:
		if res.Modal == nil {
			return false, fmt.Errorf("no modal to show")
		}
		resp.Type = discordgo.InteractionResponseModal
		resp.Data = &discordgo.InteractionResponseData{
			CustomID:   res.Modal.CustomID,
			Title:      res.Modal.Title,
			Components: res.Modal.Components,
		}
	case Reply:
		return false, r.reply(ctx, i, res.Text)
	default:
		return false, fmt.Errorf("unknown action %v", res.Action)
	}
	return empty, r.dg.InteractionRespond(i, &resp, discordgo.WithContext(ctx))
}

// touchLocked pushes back the entry's deadline, starting its timer if needed.
func (r *Registry) touchLocked(ctx context.Context, e *entry) {
	ttl := e.msg.TTL()
	if ttl <= 0 {
		return
	}
	e.deadline = time.Now().Add(ttl)
	if e.timer == nil {
		e.timer = time.AfterFunc(ttl, func() { r.timeout(ctx, e) })
		return
	}
	e.timer.Reset(ttl)
}

func (r *Registry) timeout(ctx context.Context, e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.done {
		return
	}
	// An event may have pushed the deadline back while the timer fired.
	if d := time.Until(e.deadline); d > 0 {
		e.timer.Reset(d)
		return
	}
	r.expireLocked(ctx, e, "timeout")
}

// expireLocked removes the entry and edits its message to its final state.
func (r *Registry) expireLocked(ctx context.Context, e *entry, why string) {
	r.removeLocked(e, why)
	log := r.log.With(slog.String("kind", e.kind), slog.String("message", e.id), slog.String("why", why))
	comps := []discordgo.MessageComponent{}
	edit := discordgo.MessageEdit{
		ID:         e.id,
		Channel:    e.channel,
		Components: &comps,
	}
	p, err := e.msg.Expire(ctx)
	if err != nil {
		log.ErrorContext(ctx, "couldn't render expired message", slog.Any("err", err))
		p = nil
	}
	if p != nil {
		embeds := nonil(p.Embeds)
		comps = nonil(p.Components)
		edit.Content, edit.Embeds = &p.Content, &embeds
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := r.dg.ChannelMessageEditComplex(&edit, discordgo.WithContext(ctx)); err != nil {
		log.WarnContext(ctx, "couldn't edit expired message", slog.Any("err", err))
		return
	}
	log.InfoContext(ctx, "message expired")
}

func (r *Registry) removeLocked(e *entry, why string) {
	if e.done {
		return
	}
	e.done = true
	if e.timer != nil {
		e.timer.Stop()
	}
	r.msgs.CompareAndDelete(e.id, e, sameEntry)
	r.met.ActiveMessages.Observe(-1)
	r.met.ActiveEvents.Observe(1, e.kind, why)
}

// Len returns the number of active messages.
func (r *Registry) Len() int {
	return r.msgs.Len()
}

// Kinds counts the active messages by kind.
func (r *Registry) Kinds() map[string]int {
	m := make(map[string]int)
	for _, e := range r.msgs.All() {
		m[e.kind]++
	}
	return m
}

// Shutdown expires every active message. Messages begun afterward expire
// immediately.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	r.closed = true
	all := r.msgs.Drain()
	r.mu.Unlock()
	r.log.InfoContext(ctx, "expiring active messages", slog.Int("count", len(all)))
	var group errgroup.Group
	group.SetLimit(8)
	for _, e := range all {
		group.Go(func() error {
			e.mu.Lock()
			defer e.mu.Unlock()
			if !e.done {
				r.expireLocked(ctx, e, "shutdown")
			}
			return nil
		})
	}
	group.Wait()
}

func (r *Registry) reply(ctx context.Context, i *discordgo.Interaction, text string) error {
	resp := discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         text,
			Flags:           discordgo.MessageFlagsEphemeral,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	}
	return r.dg.InteractionRespond(i, &resp, discordgo.WithContext(ctx))
}

// userID gets the ID of the user who created an interaction.
func userID(i *discordgo.Interaction) string {
	switch {
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User.ID
	case i.User != nil:
		return i.User.ID
	default:
		return ""
	}
}

func nonil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
