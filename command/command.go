package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/zephyrtronium/bathbot/active"
)

// Invocation is a command invocation, either from a slash command or from a
// prefixed message. An Invocation and its fields must not be retained by any
// command.
type Invocation struct {
	// Interaction is the application command interaction which triggered the
	// invocation, or nil if it came from a message.
	Interaction *discordgo.Interaction
	// Message is the message which triggered the invocation, or nil if it came
	// from an application command.
	Message *discordgo.Message
	// Args is the parsed arguments to the command.
	Args map[string]string
	// User is the ID of the invoking user.
	User string
	// Guild is the ID of the guild where the invocation occurred, or the
	// empty string in direct messages.
	Guild string
	// Channel is the ID of the channel where the invocation occurred.
	Channel string
	// Permissions is the invoking member's permissions in the channel when
	// known.
	Permissions int64
	// Log is a logger carrying the invocation's trace.
	Log *slog.Logger

	dg       active.Discord
	deferred bool
	// private is whether the deferred response is ephemeral.
	private bool
	// answered is whether the response has content beyond the deferral.
	answered bool
}

// Func executes a command.
type Func func(ctx context.Context, robo *Robot, call *Invocation)

// FromInteraction creates an invocation from an application command.
// Options of subcommands are flattened into Args, and the subcommand's name
// is recorded as the "sub" argument.
func FromInteraction(dg active.Discord, i *discordgo.Interaction, log *slog.Logger) *Invocation {
	call := Invocation{
		Interaction: i,
		Args:        make(map[string]string),
		Guild:       i.GuildID,
		Channel:     i.ChannelID,
		Log:         log,
		dg:          dg,
	}
	switch {
	case i.Member != nil && i.Member.User != nil:
		call.User = i.Member.User.ID
		call.Permissions = i.Member.Permissions
	case i.User != nil:
		call.User = i.User.ID
	}
	if i.Type == discordgo.InteractionApplicationCommand {
		flatten(call.Args, i.ApplicationCommandData().Options)
	}
	return &call
}

func flatten(args map[string]string, opts []*discordgo.ApplicationCommandInteractionDataOption) {
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
			args["sub"] = o.Name
			flatten(args, o.Options)
		default:
			args[o.Name] = fmt.Sprint(o.Value)
		}
	}
}

// FromMessage creates an invocation from a prefixed message.
func FromMessage(dg active.Discord, m *discordgo.Message, args map[string]string, log *slog.Logger) *Invocation {
	call := Invocation{
		Message: m,
		Args:    args,
		Guild:   m.GuildID,
		Channel: m.ChannelID,
		Log:     log,
		dg:      dg,
	}
	if m.Author != nil {
		call.User = m.Author.ID
	}
	if m.Member != nil {
		call.Permissions = m.Member.Permissions
	}
	return &call
}

// Defer acknowledges a slash command so that it may take longer than
// Discord's three-second limit to respond. It does nothing for messages.
func (call *Invocation) Defer(ctx context.Context, ephemeral bool) error {
	if call.Interaction == nil || call.deferred {
		return nil
	}
	resp := discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	if err := call.dg.InteractionRespond(call.Interaction, &resp, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("couldn't defer interaction: %w", err)
	}
	call.deferred = true
	call.private = ephemeral
	return nil
}

// Reply sends a plain text response.
func (call *Invocation) Reply(ctx context.Context, text string) {
	call.respond(ctx, text, false)
}

// Private sends a plain text response visible only to the invoker where
// possible.
func (call *Invocation) Private(ctx context.Context, text string) {
	call.respond(ctx, text, true)
}

// Fail logs err and tells the invoker that something went wrong.
func (call *Invocation) Fail(ctx context.Context, what string, err error) {
	call.Log.ErrorContext(ctx, what, slog.Any("err", err))
	call.Private(ctx, "Something went wrong. Try again. Sorry!")
}

func (call *Invocation) respond(ctx context.Context, text string, ephemeral bool) {
	var err error
	none := &discordgo.MessageAllowedMentions{}
	switch {
	case call.Interaction == nil:
		m := discordgo.MessageSend{
			Content:         text,
			Reference:       call.Message.Reference(),
			AllowedMentions: none,
		}
		_, err = call.dg.ChannelMessageSendComplex(call.Channel, &m, discordgo.WithContext(ctx))
	case call.deferred && ephemeral && !call.private:
		// The deferred response is public. Replace an empty one with an
		// ephemeral followup.
		if !call.answered {
			if err := call.dg.InteractionResponseDelete(call.Interaction, discordgo.WithContext(ctx)); err != nil {
				call.Log.WarnContext(ctx, "couldn't delete deferred response", slog.Any("err", err))
			}
		}
		w := discordgo.WebhookParams{Content: text, AllowedMentions: none, Flags: discordgo.MessageFlagsEphemeral}
		_, err = call.dg.FollowupMessageCreate(call.Interaction, false, &w, discordgo.WithContext(ctx))
	case call.deferred:
		empty := []discordgo.MessageComponent{}
		embeds := []*discordgo.MessageEmbed{}
		edit := discordgo.WebhookEdit{Content: &text, Components: &empty, Embeds: &embeds, AllowedMentions: none}
		_, err = call.dg.InteractionResponseEdit(call.Interaction, &edit, discordgo.WithContext(ctx))
	default:
		resp := discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{Content: text, AllowedMentions: none},
		}
		if ephemeral {
			resp.Data.Flags = discordgo.MessageFlagsEphemeral
		}
		err = call.dg.InteractionRespond(call.Interaction, &resp, discordgo.WithContext(ctx))
		if err == nil {
			call.deferred, call.private = true, ephemeral
		}
	}
	if err != nil {
		call.Log.ErrorContext(ctx, "couldn't respond", slog.Any("err", err))
		return
	}
	call.answered = true
}

// Origin returns where the invocation's response goes.
// Slash commands must be deferred before the origin is used.
func (call *Invocation) Origin() active.Origin {
	if call.Interaction != nil {
		return active.InteractionOrigin{Interaction: call.Interaction}
	}
	return active.ChannelOrigin{Channel: call.Channel, Reference: call.Message.Reference()}
}

// Send sends a static page as the response.
func (call *Invocation) Send(ctx context.Context, p *active.Page) {
	if err := call.Defer(ctx, false); err != nil {
		call.Log.ErrorContext(ctx, "couldn't send page", slog.Any("err", err))
		return
	}
	if _, err := call.Origin().Send(ctx, call.dg, p); err != nil {
		call.Log.ErrorContext(ctx, "couldn't send page", slog.Any("err", err))
		return
	}
	call.answered = true
}

// Begin starts an active message as the response.
func (call *Invocation) Begin(ctx context.Context, robo *Robot, kind string, msg active.Message) {
	if err := call.Defer(ctx, false); err != nil {
		call.Log.ErrorContext(ctx, "couldn't start active message", slog.String("kind", kind), slog.Any("err", err))
		return
	}
	if err := robo.Active.Begin(ctx, call.Origin(), kind, msg); err != nil {
		call.Fail(ctx, "couldn't start active message", err)
		return
	}
	call.answered = true
}
