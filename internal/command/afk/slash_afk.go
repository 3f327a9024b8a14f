package afk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"server-warden/internal/apperr"
	"server-warden/internal/command"
	"server-warden/internal/middleware"

	"github.com/bwmarrin/discordgo"
)

type AfkCommand struct{}

func (c *AfkCommand) Name() string             { return "afk" }
func (c *AfkCommand) Description() string      { return "Set or list AFK status" }
func (c *AfkCommand) Category() string         { return "😴 AFK Commands" }
func (c *AfkCommand) UserPermissions() []int64 { return []int64{} }

func (c *AfkCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "set",
				Description: "Set your AFK status",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why you are away",
				}},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List AFK users in this server",
			},
		},
	}
}

func (c *AfkCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	route := sc.Route()
	switch route.Subcommand {
	case "set":
		return c.set(ctx, sc, route.String("reason"))
	case "list":
		return c.list(ctx, sc)
	}
	return apperr.New(apperr.CodeValidation, "❌ Unknown subcommand.")
}

func (c *AfkCommand) set(ctx context.Context, sc *command.SlashInteractionContext, reason string) error {
	reason, err := sc.Services.Afk.Set(ctx, sc.GuildID(), sc.Event.Member, reason)
	if err != nil {
		return err
	}
	if err := sc.Succeed("✅ Your AFK has been set up successfully", true); err != nil {
		return err
	}
	return sc.Succeed(fmt.Sprintf("<@%s> is now AFK! **Reason:** %s", sc.UserID(), reason), false)
}

func (c *AfkCommand) list(ctx context.Context, sc *command.SlashInteractionContext) error {
	entries, err := sc.Services.Afk.List(sc.GuildID())
	if err != nil {
		return err
	}

	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = fmt.Sprintf("<@%s> - **Reason:** %s", e.UserID, e.Reason)
	}

	name := sc.GuildID()
	if g, err := sc.Services.Gateway.Guild(ctx, sc.GuildID()); err == nil && g.Name != "" {
		name = g.Name
	}

	return sc.Embed(&discordgo.MessageEmbed{
		Title:       "😴・AFK users - " + name,
		Description: strings.Join(lines, "\n"),
		Color:       sc.SuccessColor(),
		Timestamp:   time.Now().Format(time.RFC3339),
	}, false)
}

func init() {
	command.RegisterCommand(
		&AfkCommand{},
		middleware.WithCommandLogger(),
		middleware.WithUserPermissionCheck(),
		middleware.WithAccessCheck(),
		middleware.WithGuildOnly(),
	)
}
