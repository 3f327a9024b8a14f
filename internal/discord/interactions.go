package discord

import (
	"context"
	"sync"

	"server-warden/internal/command"

	"github.com/bwmarrin/discordgo"
)

// responder answers one interaction through the session. It implements
// command.Responder so commands never touch the session directly.
type responder struct {
	ctx context.Context
	s   *discordgo.Session
	i   *discordgo.Interaction

	mu        sync.Mutex
	responded bool
}

var _ command.Responder = (*responder)(nil)

func newResponder(ctx context.Context, s *discordgo.Session, i *discordgo.Interaction) *responder {
	return &responder{ctx: ctx, s: s, i: i}
}

func flags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

// Respond sends a plain message response to the interaction.
func (r *responder) Respond(content string, ephemeral bool) error {
	return r.respond(&discordgo.InteractionResponseData{Content: content, Flags: flags(ephemeral)})
}

// RespondEmbed sends an embed response to the interaction.
func (r *responder) RespondEmbed(embed *discordgo.MessageEmbed, ephemeral bool) error {
	return r.respond(&discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  flags(ephemeral),
	})
}

func (r *responder) respond(data *discordgo.InteractionResponseData) error {
	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}, discordgo.WithContext(r.ctx))
	if err == nil {
		r.mu.Lock()
		r.responded = true
		r.mu.Unlock()
	}
	return err
}

// FollowupEmbed sends an embed followup message.
func (r *responder) FollowupEmbed(embed *discordgo.MessageEmbed, ephemeral bool) error {
	_, err := r.s.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  flags(ephemeral),
	}, discordgo.WithContext(r.ctx))
	return err
}

func (r *responder) Responded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.responded
}
