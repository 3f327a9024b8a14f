package blacklist

import (
	"context"
	"fmt"
	"strings"

	"server-warden/internal/apperr"
	"server-warden/internal/command"
	"server-warden/internal/middleware"

	"github.com/bwmarrin/discordgo"
)

type BlacklistCommand struct{}

func (c *BlacklistCommand) Name() string             { return "blacklist" }
func (c *BlacklistCommand) Description() string      { return "Manage blacklisted users and servers" }
func (c *BlacklistCommand) Category() string         { return "🚫 Blacklist Commands (Owner Only)" }
func (c *BlacklistCommand) UserPermissions() []int64 { return []int64{} }

func (c *BlacklistCommand) SlashDefinition() *discordgo.ApplicationCommand {
	userTarget := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "user",
			Description: "User to target",
		},
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "userid",
			Description: "User ID to target",
		},
	}
	serverTarget := []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "serverid",
			Description: "Server ID to target",
			Required:    true,
		},
	}

	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "user",
				Description: "Manage blacklisted users",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "add", Description: "Add a user to the blacklist", Options: userTarget},
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "remove", Description: "Remove a user from the blacklist", Options: userTarget},
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "List blacklisted users"},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "server",
				Description: "Manage blacklisted servers",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "add", Description: "Add a server to the blacklist", Options: serverTarget},
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "remove", Description: "Remove a server from the blacklist", Options: serverTarget},
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "List blacklisted servers"},
				},
			},
		},
	}
}

func (c *BlacklistCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	gate := sc.Services.Gate
	actor := sc.UserID()
	if err := gate.RequireOwner(actor); err != nil {
		return err
	}

	route := sc.Route()
	switch route.Path() {
	case "user add":
		target := userTarget(route)
		if err := gate.BlockUser(actor, target); err != nil {
			return err
		}
		return sc.Succeed(fmt.Sprintf("✅ User <@%s> has been blacklisted.", target), true)

	case "user remove":
		target := userTarget(route)
		if err := gate.UnblockUser(actor, target); err != nil {
			return err
		}
		return sc.Succeed(fmt.Sprintf("✅ User <@%s> has been removed from blacklist.", target), true)

	case "user list":
		return sc.Embed(&discordgo.MessageEmbed{
			Title:       "Blacklisted Users",
			Description: listOrEmpty(gate.BlockedUsers(), "<@%[1]s> (%[1]s)", "No blacklisted users."),
			Color:       sc.SuccessColor(),
		}, true)

	case "server add":
		target := route.String("serverid")
		if err := gate.BlockGuild(actor, target); err != nil {
			return err
		}
		return sc.Succeed(fmt.Sprintf("✅ Server `%s` has been blacklisted.", target), true)

	case "server remove":
		target := route.String("serverid")
		if err := gate.UnblockGuild(actor, target); err != nil {
			return err
		}
		return sc.Succeed(fmt.Sprintf("✅ Server `%s` has been removed from blacklist.", target), true)

	case "server list":
		return sc.Embed(&discordgo.MessageEmbed{
			Title:       "Blacklisted Servers",
			Description: listOrEmpty(gate.BlockedGuilds(), "`%s`", "No blacklisted servers."),
			Color:       sc.SuccessColor(),
		}, true)
	}

	return apperr.New(apperr.CodeValidation, "❌ Unknown subcommand.")
}

// userTarget prefers the picked user over a typed id.
func userTarget(r command.Route) string {
	if id := r.ID("user"); id != "" {
		return id
	}
	return r.String("userid")
}

func listOrEmpty(ids []string, format, empty string) string {
	if len(ids) == 0 {
		return empty
	}
	lines := make([]string, len(ids))
	for i, id := range ids {
		lines[i] = fmt.Sprintf(format, id)
	}
	return strings.Join(lines, "\n")
}

func init() {
	command.RegisterCommand(
		&BlacklistCommand{},
		middleware.WithCommandLogger(),
		middleware.WithUserPermissionCheck(),
		middleware.WithAccessCheck(),
		middleware.WithGuildOnly(),
	)
}
