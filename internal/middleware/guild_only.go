package middleware

import (
	"context"

	"server-warden/internal/command"
	"server-warden/pkg/cmd"
)

// GuildOnlyMessage answers commands used outside a server.
const GuildOnlyMessage = "❌ Commands only work in servers."

// WithGuildOnly rejects invocations that do not come from a guild.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if v, ok := inv.Data.(*command.SlashInteractionContext); ok && v.GuildID() == "" {
				return v.Fail(GuildOnlyMessage)
			}
			return c.Run(ctx, inv)
		})
	}
}
