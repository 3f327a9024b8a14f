package core

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"server-warden/internal/apperr"
	"server-warden/internal/command"
	"server-warden/internal/middleware"

	"github.com/bwmarrin/discordgo"
)

type BotCommand struct{}

func (c *BotCommand) Name() string             { return "bot" }
func (c *BotCommand) Description() string      { return "Bot information and feedback" }
func (c *BotCommand) Category() string         { return "🤖 Bot Commands" }
func (c *BotCommand) UserPermissions() []int64 { return []int64{} }

func (c *BotCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "info", Description: "Bot information"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "help", Description: "This help menu"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "uptime", Description: "Bot uptime"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "ping", Description: "Bot latency"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "feedback",
				Description: "Send feedback",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message",
					Description: "Your feedback",
					Required:    true,
				}},
			},
		},
	}
}

func (c *BotCommand) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	route := sc.Route()
	switch route.Subcommand {
	case "info":
		return c.info(sc)
	case "help":
		return sc.Embed(&discordgo.MessageEmbed{
			Title:       "Bot Help",
			Description: "Available commands:",
			Color:       sc.SuccessColor(),
			Fields:      buildHelpFields(sc.Services.Registry),
		}, false)
	case "uptime":
		return sc.Embed(&discordgo.MessageEmbed{
			Title:       "Bot Uptime",
			Description: FormatUptime(time.Since(sc.Services.Started)),
			Color:       sc.SuccessColor(),
		}, false)
	case "ping":
		return c.ping(sc)
	case "feedback":
		return c.feedback(ctx, sc, route.String("message"))
	}
	return apperr.New(apperr.CodeValidation, "❌ Unknown subcommand.")
}

func (c *BotCommand) info(sc *command.SlashInteractionContext) error {
	name, thumb := "unknown", ""
	guilds, users := 0, 0
	if st := sc.Services.State; st != nil {
		st.RLock()
		if st.User != nil {
			name = st.User.Username
			thumb = st.User.AvatarURL("")
		}
		guilds = len(st.Guilds)
		for _, g := range st.Guilds {
			users += g.MemberCount
		}
		st.RUnlock()
	}

	return sc.Embed(&discordgo.MessageEmbed{
		Title: "Bot Information",
		Color: sc.SuccessColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Bot Name", Value: name, Inline: true},
			{Name: "Servers", Value: fmt.Sprint(guilds), Inline: true},
			{Name: "Users", Value: fmt.Sprint(users), Inline: true},
			{Name: "Ping", Value: fmt.Sprintf("%dms", heartbeat(sc).Milliseconds()), Inline: true},
			{Name: "Go", Value: runtime.Version(), Inline: true},
			{Name: "discordgo", Value: discordgo.VERSION, Inline: true},
		},
		Thumbnail: thumbnail(thumb),
		Timestamp: time.Now().Format(time.RFC3339),
	}, false)
}

func (c *BotCommand) ping(sc *command.SlashInteractionContext) error {
	var api time.Duration
	if created, err := discordgo.SnowflakeTimestamp(sc.Event.ID); err == nil {
		api = time.Since(created)
	}
	return sc.Embed(&discordgo.MessageEmbed{
		Title: "Bot Latency",
		Color: sc.SuccessColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "WebSocket Ping", Value: fmt.Sprintf("%dms", heartbeat(sc).Milliseconds()), Inline: true},
			{Name: "API Latency", Value: fmt.Sprintf("%dms", api.Milliseconds()), Inline: true},
		},
	}, false)
}

func (c *BotCommand) feedback(ctx context.Context, sc *command.SlashInteractionContext, text string) error {
	svc := sc.Services
	if text == "" {
		return apperr.New(apperr.CodeValidation, "❌ Please provide a feedback message.")
	}
	if svc.Config.FeedbackChannelID == "" {
		return apperr.New(apperr.CodeValidation, "❌ Feedback channel not configured.")
	}
	if svc.Feedback != nil {
		if ok, wait := svc.Feedback.Allow(sc.UserID()); !ok {
			return apperr.New(apperr.CodeValidation,
				fmt.Sprintf("❌ Please wait %s before sending more feedback.", wait.Round(time.Second)))
		}
	}

	user := sc.User()
	server := sc.GuildID()
	if g, err := svc.Gateway.Guild(ctx, sc.GuildID()); err == nil && g.Name != "" {
		server = fmt.Sprintf("%s (%s)", g.Name, g.ID)
	}

	_, err := svc.Gateway.SendEmbed(ctx, svc.Config.FeedbackChannelID, &discordgo.MessageEmbed{
		Title: "New Feedback",
		Color: sc.InfoColor(),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", userTag(user), user.ID)},
			{Name: "Server", Value: server},
			{Name: "Message", Value: text},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return apperr.Wrap(apperr.CodeTransient, "❌ Failed to send feedback.", err)
	}
	return sc.Succeed("✅ Feedback sent successfully!", true)
}

// FormatUptime renders d as "1d 2h 3m 4s".
func FormatUptime(d time.Duration) string {
	s := int64(d / time.Second)
	return fmt.Sprintf("%dd %dh %dm %ds", s/86400, s/3600%24, s/60%60, s%60)
}

// userTag is the legacy name#discriminator, or the bare username for
// migrated accounts.
func userTag(u *discordgo.User) string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.String()
}

func heartbeat(sc *command.SlashInteractionContext) time.Duration {
	if sc.Services.Latency == nil {
		return 0
	}
	return sc.Services.Latency()
}

func thumbnail(url string) *discordgo.MessageEmbedThumbnail {
	if url == "" {
		return nil
	}
	return &discordgo.MessageEmbedThumbnail{URL: url}
}

func init() {
	command.RegisterCommand(
		&BotCommand{},
		middleware.WithCommandLogger(),
		middleware.WithUserPermissionCheck(),
		middleware.WithAccessCheck(),
		middleware.WithGuildOnly(),
	)
}
