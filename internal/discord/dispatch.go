package discord

import (
	"context"
	"fmt"
	"runtime/debug"

	"server-warden/internal/apperr"
	"server-warden/internal/command"
	"server-warden/pkg/cmd"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Dispatcher routes slash command interactions to registered commands and
// turns their errors into replies.
type Dispatcher struct {
	registry *cmd.Registry
	services *command.Services
	log      zerolog.Logger
}

func NewDispatcher(registry *cmd.Registry, services *command.Services, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, services: services, log: logger}
}

// Dispatch runs the command named by i. Coded errors are shown with their
// own message, anything else with the generic failure notice.
func (d *Dispatcher) Dispatch(ctx context.Context, i *discordgo.InteractionCreate, reply command.Responder) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.CommandType != discordgo.ChatApplicationCommand {
		return
	}

	sc := &command.SlashInteractionContext{Event: i, Reply: reply, Services: d.services}
	c := d.registry.Get(data.Name)
	if c == nil {
		d.log.Warn().Str("command", data.Name).Msg("unknown command")
		d.reply(sc, fmt.Errorf("unknown command %q", data.Name))
		return
	}

	if err := d.run(ctx, c, sc); err != nil {
		d.reply(sc, err)
	}
}

func (d *Dispatcher) run(ctx context.Context, c cmd.Command, sc *command.SlashInteractionContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in /%s: %v", c.Name(), r)
			d.log.Error().Str("stack", string(debug.Stack())).Err(err).Msg("command panicked")
		}
	}()
	return command.Invoke(ctx, c, sc)
}

func (d *Dispatcher) reply(sc *command.SlashInteractionContext, err error) {
	msg, ok := apperr.UserMessage(err)
	if !ok {
		d.log.Error().Err(err).
			Str("guild", sc.GuildID()).
			Str("user", sc.UserID()).
			Msg("command failed")
		msg = command.GenericFailure
	}
	if rerr := sc.Fail(msg); rerr != nil {
		d.log.Warn().Err(rerr).Msg("failed to send error reply")
	}
}
