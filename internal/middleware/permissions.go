package middleware

import (
	"context"
	"fmt"
	"strings"

	"server-warden/internal/command"
	"server-warden/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionKickMembers:     "Kick Members",
	discordgo.PermissionBanMembers:      "Ban Members",
	discordgo.PermissionAdministrator:   "Administrator",
	discordgo.PermissionManageChannels:  "Manage Channels",
	discordgo.PermissionManageGuild:     "Manage Server",
	discordgo.PermissionAddReactions:    "Add Reactions",
	discordgo.PermissionViewChannel:     "View Channel",
	discordgo.PermissionSendMessages:    "Send Messages",
	discordgo.PermissionManageMessages:  "Manage Messages",
	discordgo.PermissionEmbedLinks:      "Embed Links",
	discordgo.PermissionChangeNickname:  "Change Nickname",
	discordgo.PermissionManageNicknames: "Manage Nicknames",
	discordgo.PermissionManageRoles:     "Manage Roles",
	discordgo.PermissionModerateMembers: "Moderate Members",
}

// WithUserPermissionCheck requires the invoking member to hold at least one
// of the command's permissions. Commands implementing
// command.SubcommandPermissions set them per subcommand group or
// subcommand. Administrators always pass.
func WithUserPermissionCheck() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			v, ok := inv.Data.(*command.SlashInteractionContext)
			if !ok || v.Event == nil || v.Event.Member == nil {
				return c.Run(ctx, inv)
			}

			required := requiredPermissions(cmd.Root(c), v.Route())
			if len(required) == 0 {
				return c.Run(ctx, inv)
			}

			perms := v.Event.Member.Permissions
			if perms&discordgo.PermissionAdministrator != 0 {
				return c.Run(ctx, inv)
			}
			for _, p := range required {
				if perms&p != 0 {
					return c.Run(ctx, inv)
				}
			}
			return v.Fail(MissingPermissionMessage(required))
		})
	}
}

func requiredPermissions(root cmd.Command, route command.Route) []int64 {
	if sp, ok := root.(command.SubcommandPermissions); ok {
		perms := sp.SubcommandPermissions()
		if p, ok := perms[route.Group]; ok && route.Group != "" {
			return p
		}
		if p, ok := perms[route.Subcommand]; ok && route.Subcommand != "" {
			return p
		}
	}
	if meta, ok := root.(command.DiscordMeta); ok {
		return meta.UserPermissions()
	}
	return nil
}

// MissingPermissionMessage names the permissions a member lacks.
func MissingPermissionMessage(required []int64) string {
	names := make([]string, 0, len(required))
	for _, p := range required {
		name := PermissionNames[p]
		if name == "" {
			name = fmt.Sprintf("0x%x", p)
		}
		names = append(names, name)
	}
	if len(names) == 1 {
		return fmt.Sprintf("❌ You need the \"%s\" permission to use this command.", names[0])
	}
	return fmt.Sprintf("❌ You need one of these permissions to use this command: \"%s\".", strings.Join(names, "\", \""))
}
