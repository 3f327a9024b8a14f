package middleware

import (
	"context"
	"errors"

	"server-warden/internal/apperr"
	"server-warden/internal/command"
	"server-warden/pkg/cmd"
)

// WithAccessCheck answers blocked users and guilds with a private plain-text
// denial instead of running the command.
func WithAccessCheck() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			v, ok := inv.Data.(*command.SlashInteractionContext)
			if !ok || v.Services == nil || v.Services.Gate == nil {
				return c.Run(ctx, inv)
			}
			err := v.Services.Gate.Check(v.UserID(), v.GuildID())
			if err == nil {
				return c.Run(ctx, inv)
			}
			var ae *apperr.Error
			if errors.As(err, &ae) {
				return v.Reply.Respond(ae.Message, true)
			}
			return err
		})
	}
}
