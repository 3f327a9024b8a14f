package middleware

import (
	"context"
	"time"

	"server-warden/internal/apperr"
	"server-warden/internal/command"
	"server-warden/pkg/cmd"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// WithCommandLogger logs every slash invocation after it ran.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			v, ok := inv.Data.(*command.SlashInteractionContext)
			if !ok {
				return err
			}
			logger := log.Logger
			if v.Services != nil {
				logger = v.Services.Log
			}

			var ev *zerolog.Event
			switch {
			case err == nil:
				ev = logger.Info()
			case apperr.CodeOf(err) == apperr.CodeUnknown:
				ev = logger.Error().Err(err)
			default:
				ev = logger.Info().Str("outcome", string(apperr.CodeOf(err)))
			}
			ev.Str("command", c.Name()).
				Str("route", v.Route().Path()).
				Str("guild", v.GuildID()).
				Str("channel", v.ChannelID()).
				Str("user", v.UserID()).
				Dur("took", time.Since(start)).
				Msg("command executed")
			return err
		})
	}
}
