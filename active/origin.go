package active

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Discord is the subset of a Discord session used by active messages.
// *discordgo.Session implements it.
type Discord interface {
	InteractionRespond(i *discordgo.Interaction, resp *discordgo.InteractionResponse, opts ...discordgo.RequestOption) error
	InteractionResponseEdit(i *discordgo.Interaction, edit *discordgo.WebhookEdit, opts ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channel string, m *discordgo.MessageSend, opts ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, opts ...discordgo.RequestOption) (*discordgo.Message, error)
	InteractionResponseDelete(i *discordgo.Interaction, opts ...discordgo.RequestOption) error
	FollowupMessageCreate(i *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, opts ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Origin sends the first page of an active message.
type Origin interface {
	Send(ctx context.Context, dg Discord, p *Page) (*discordgo.Message, error)
}

// InteractionOrigin sends a page by editing the deferred response to an
// application command interaction.
type InteractionOrigin struct {
	Interaction *discordgo.Interaction
}

// Send edits the interaction's original response to show p.
func (o InteractionOrigin) Send(ctx context.Context, dg Discord, p *Page) (*discordgo.Message, error) {
	edit := discordgo.WebhookEdit{
		Content:    &p.Content,
		Embeds:     &p.Embeds,
		Components: &p.Components,
	}
	return dg.InteractionResponseEdit(o.Interaction, &edit, discordgo.WithContext(ctx))
}

// ChannelOrigin sends a page as a new message in a channel.
type ChannelOrigin struct {
	Channel string
	// Reference is the message to reply to, if any.
	Reference *discordgo.MessageReference
}

// Send sends p to the channel.
func (o ChannelOrigin) Send(ctx context.Context, dg Discord, p *Page) (*discordgo.Message, error) {
	m := discordgo.MessageSend{
		Content:         p.Content,
		Embeds:          p.Embeds,
		Components:      p.Components,
		Reference:       o.Reference,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	return dg.ChannelMessageSendComplex(o.Channel, &m, discordgo.WithContext(ctx))
}
