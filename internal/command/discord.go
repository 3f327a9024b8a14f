package command

import (
	"context"
	"time"

	"server-warden/internal/access"
	"server-warden/internal/afk"
	"server-warden/internal/config"
	"server-warden/internal/counting"
	"server-warden/internal/gateway"
	"server-warden/internal/sticky"
	"server-warden/internal/storage"
	"server-warden/pkg/cmd"
	"server-warden/pkg/cooldown"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Services is everything a command may touch. The bot builds one at startup
// and hands it to every invocation.
type Services struct {
	Config   *config.Config
	Store    *storage.Storage
	Gate     *access.Gate
	Counting *counting.Engine
	Sticky   *sticky.Engine
	Afk      *afk.Engine
	Gateway  gateway.Gateway
	Feedback *cooldown.Cooldown
	Registry *cmd.Registry
	// State is the session cache; nil outside a live session.
	State   *discordgo.State
	Started time.Time
	// Latency reports the gateway heartbeat round trip.
	Latency func() time.Duration
	Log     zerolog.Logger
}

// Responder answers one interaction. The first Respond* acknowledges it;
// later replies go out as followups.
type Responder interface {
	Respond(content string, ephemeral bool) error
	RespondEmbed(embed *discordgo.MessageEmbed, ephemeral bool) error
	FollowupEmbed(embed *discordgo.MessageEmbed, ephemeral bool) error
	Responded() bool
}

// SlashInteractionContext is what a slash command receives.
type SlashInteractionContext struct {
	Event    *discordgo.InteractionCreate
	Reply    Responder
	Services *Services
}

// SlashProvider is implemented by commands registered as slash commands.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// DiscordMeta lets middleware read a command's metadata through wrappers.
type DiscordMeta interface {
	Category() string
	UserPermissions() []int64
}

// SubcommandPermissions is implemented by commands whose subcommand groups
// need different member permissions. Keys are group or subcommand names.
type SubcommandPermissions interface {
	SubcommandPermissions() map[string][]int64
}

// GroupCategorizer is implemented by commands whose subcommand groups belong
// to different help sections.
type GroupCategorizer interface {
	GroupCategory(group string) string
}

// DiscordCommand is what individual slash commands implement.
type DiscordCommand interface {
	Name() string
	Description() string
	Category() string
	UserPermissions() []int64
	Run(ctx context.Context, sc *SlashInteractionContext) error
}

// DiscordAdapter lets a DiscordCommand live in the cmd registry.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string             { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string      { return a.Cmd.Description() }
func (a *DiscordAdapter) Category() string         { return a.Cmd.Category() }
func (a *DiscordAdapter) UserPermissions() []int64 { return a.Cmd.UserPermissions() }

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	sc, ok := inv.Data.(*SlashInteractionContext)
	if !ok {
		return nil
	}
	return a.Cmd.Run(ctx, sc)
}

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := a.Cmd.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

func (a *DiscordAdapter) SubcommandPermissions() map[string][]int64 {
	if sp, ok := a.Cmd.(SubcommandPermissions); ok {
		return sp.SubcommandPermissions()
	}
	return nil
}

func (a *DiscordAdapter) GroupCategory(group string) string {
	if gc, ok := a.Cmd.(GroupCategorizer); ok {
		return gc.GroupCategory(group)
	}
	return a.Cmd.Category()
}

// RegisterCommand adds discordCmd to the default registry wrapped in mws.
func RegisterCommand(discordCmd DiscordCommand, mws ...cmd.Middleware) {
	cmd.DefaultRegistry.Register(Wrap(discordCmd, mws...))
}

// Wrap adapts discordCmd and applies mws without registering it.
func Wrap(discordCmd DiscordCommand, mws ...cmd.Middleware) cmd.Command {
	return cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...)
}

// Invoke runs c with sc as the invocation payload.
func Invoke(ctx context.Context, c cmd.Command, sc *SlashInteractionContext) error {
	return c.Run(ctx, &cmd.Invocation{Name: c.Name(), Data: sc})
}
