package channel

import (
	"context"
	"fmt"
	"strings"

	"server-warden/internal/apperr"
	"server-warden/internal/command"
	"server-warden/internal/middleware"

	"github.com/bwmarrin/discordgo"
)

type ChannelCommand struct{}

func (c *ChannelCommand) Name() string             { return "channel" }
func (c *ChannelCommand) Description() string      { return "Configure counting and sticky messages" }
func (c *ChannelCommand) Category() string         { return "⚙️ Channel Commands" }
func (c *ChannelCommand) UserPermissions() []int64 { return []int64{} }

func (c *ChannelCommand) SubcommandPermissions() map[string][]int64 {
	return map[string][]int64{
		"counting": {discordgo.PermissionManageChannels},
		"stick":    {discordgo.PermissionManageMessages},
	}
}

// GroupCategory splits the help listing by feature.
func (c *ChannelCommand) GroupCategory(group string) string {
	switch group {
	case "counting":
		return "🔢 Counting Commands"
	case "stick":
		return "📌 Sticky Message Commands"
	}
	return c.Category()
}

func (c *ChannelCommand) SlashDefinition() *discordgo.ApplicationCommand {
	channelOpt := func(desc string) []*discordgo.ApplicationCommandOption {
		return []*discordgo.ApplicationCommandOption{{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  desc,
			Required:     true,
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		}}
	}

	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "counting",
				Description: "Manage counting channels",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "set", Description: "Set a counting channel", Options: channelOpt("Channel to count in")},
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "remove", Description: "Remove a counting channel", Options: channelOpt("Channel to stop counting in")},
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "status", Description: "Show the current count", Options: channelOpt("Counting channel")},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "stick",
				Description: "Manage the sticky message of this channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "setup",
						Description: "Set up a sticky message in this channel",
						Options: []*discordgo.ApplicationCommandOption{{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "message",
							Description: "Message to keep at the bottom",
							Required:    true,
						}},
					},
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "stop", Description: "Stop the sticky message"},
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "start", Description: "Restart a stopped sticky message"},
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "remove", Description: "Remove the sticky message"},
					{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "get", Description: "List sticky messages in this server"},
				},
			},
		},
	}
}

func (c *ChannelCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	route := sc.Route()
	switch route.Group {
	case "counting":
		return c.runCounting(sc, route)
	case "stick":
		return c.runStick(ctx, sc, route)
	}
	return apperr.New(apperr.CodeValidation, "❌ Unknown subcommand.")
}

func (c *ChannelCommand) runCounting(sc *command.SlashInteractionContext, route command.Route) error {
	engine := sc.Services.Counting
	ch := route.ID("channel")
	if ch == "" {
		return apperr.New(apperr.CodeValidation, "❌ Please provide a channel.")
	}

	switch route.Subcommand {
	case "set":
		engine.Set(ch)
		return sc.Succeed(fmt.Sprintf("✅ <#%s> has been set as a counting channel.\n\n"+
			"Users will take turns counting starting from 1. "+
			"Each user must wait for another user to count before counting again.", ch), false)

	case "remove":
		if err := engine.Remove(ch); err != nil {
			return err
		}
		return sc.Succeed(fmt.Sprintf("✅ <#%s> has been removed from counting channels.", ch), false)

	case "status":
		st, err := engine.Status(ch)
		if err != nil {
			return err
		}
		last := "None"
		if st.LastUser != "" {
			last = "<@" + st.LastUser + ">"
		}
		return sc.Embed(&discordgo.MessageEmbed{
			Title: "Counting Status",
			Description: fmt.Sprintf("**Channel:** <#%s>\n**Current Count:** %d\n**Last User:** %s\n**Next Number:** %d",
				ch, st.Count, last, st.Next),
			Color: sc.InfoColor(),
		}, true)
	}
	return apperr.New(apperr.CodeValidation, "❌ Unknown subcommand.")
}

func (c *ChannelCommand) runStick(ctx context.Context, sc *command.SlashInteractionContext, route command.Route) error {
	engine := sc.Services.Sticky
	ch := sc.ChannelID()

	switch route.Subcommand {
	case "setup":
		if err := engine.Setup(ctx, sc.GuildID(), ch, route.String("message")); err != nil {
			return err
		}
		return sc.Succeed("✅ Sticky message has been set up successfully!", true)

	case "stop":
		if err := engine.Stop(ch); err != nil {
			return err
		}
		return sc.Succeed("✅ Sticky message has been stopped.", true)

	case "start":
		if err := engine.Start(ctx, ch); err != nil {
			return err
		}
		return sc.Succeed("✅ Sticky message has been restarted.", true)

	case "remove":
		if err := engine.Remove(ctx, ch); err != nil {
			return err
		}
		return sc.Succeed("✅ Sticky message has been removed.", true)

	case "get":
		entries := engine.List(ctx, sc.GuildID())
		desc := "No sticky messages found in this server."
		if len(entries) > 0 {
			blocks := make([]string, len(entries))
			for i, e := range entries {
				blocks[i] = fmt.Sprintf("<#%s> - %s\n`%s`", e.ChannelID, e.Status(), e.Preview)
			}
			desc = strings.Join(blocks, "\n\n")
		}
		return sc.Embed(&discordgo.MessageEmbed{
			Title:       "Sticky Messages in Server",
			Description: desc,
			Color:       sc.SuccessColor(),
		}, true)
	}
	return apperr.New(apperr.CodeValidation, "❌ Unknown subcommand.")
}

// The last middleware runs first: guild, then block lists, then permissions.
func init() {
	command.RegisterCommand(
		&ChannelCommand{},
		middleware.WithCommandLogger(),
		middleware.WithUserPermissionCheck(),
		middleware.WithAccessCheck(),
		middleware.WithGuildOnly(),
	)
}
