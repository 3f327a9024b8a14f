package discord

import (
	"context"
	"fmt"

	"server-warden/internal/access"
	"server-warden/internal/afk"
	"server-warden/internal/counting"
	"server-warden/internal/gateway"
	"server-warden/internal/sticky"

	"github.com/rs/zerolog"
)

// Pipeline runs every inbound guild message through the feature engines in
// a fixed order: counting, AFK (return, then mentions), sticky. The sticky
// repost goes last so it stays the newest message in the channel.
type Pipeline struct {
	gate     *access.Gate
	counting *counting.Engine
	afk      *afk.Engine
	sticky   *sticky.Engine
	log      zerolog.Logger
}

func NewPipeline(gate *access.Gate, c *counting.Engine, a *afk.Engine, s *sticky.Engine, logger zerolog.Logger) *Pipeline {
	return &Pipeline{gate: gate, counting: c, afk: a, sticky: s, log: logger}
}

// HandleMessage processes one message to completion. Messages from bots,
// direct messages and messages from blocked users or guilds are dropped
// without a reply.
func (p *Pipeline) HandleMessage(ctx context.Context, msg gateway.Message) {
	if msg.AuthorBot || msg.GuildID == "" {
		return
	}
	if !p.gate.Allowed(msg.AuthorID, msg.GuildID) {
		p.log.Debug().Str("guild", msg.GuildID).Str("user", msg.AuthorID).Msg("dropped message from blocked origin")
		return
	}

	p.step(msg, "counting", func() { p.counting.HandleMessage(ctx, msg) })
	p.step(msg, "afk", func() { p.afk.HandleMessage(ctx, msg) })
	p.step(msg, "sticky", func() { p.sticky.HandleMessage(ctx, msg) })
}

// step keeps a panicking engine from taking the later ones down with it.
func (p *Pipeline) step(msg gateway.Message, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().
				Err(fmt.Errorf("panic: %v", r)).
				Str("step", name).
				Str("channel", msg.ChannelID).
				Str("message", msg.ID).
				Msg("message handler panicked")
		}
	}()
	fn()
}
