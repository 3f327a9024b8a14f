package command

import (
	"server-warden/internal/config"

	"github.com/bwmarrin/discordgo"
)

// GenericFailure is shown when a command fails without a user-facing message.
const GenericFailure = "❌ An error occurred while executing the command."

var noConfig = &config.Config{}

func (sc *SlashInteractionContext) config() *config.Config {
	if sc.Services == nil || sc.Services.Config == nil {
		return noConfig
	}
	return sc.Services.Config
}

func (sc *SlashInteractionContext) SuccessColor() int { return sc.config().SuccessColor }
func (sc *SlashInteractionContext) ErrorColor() int   { return sc.config().ErrorColor }
func (sc *SlashInteractionContext) WarnColor() int    { return sc.config().WarnColor }
func (sc *SlashInteractionContext) InfoColor() int    { return sc.config().InfoColor }

// Embed sends embed as the response, or as a followup once the interaction
// has been answered.
func (sc *SlashInteractionContext) Embed(embed *discordgo.MessageEmbed, ephemeral bool) error {
	if sc.Reply.Responded() {
		return sc.Reply.FollowupEmbed(embed, ephemeral)
	}
	return sc.Reply.RespondEmbed(embed, ephemeral)
}

// Fail answers privately with msg in the error color.
func (sc *SlashInteractionContext) Fail(msg string) error {
	return sc.Embed(&discordgo.MessageEmbed{Description: msg, Color: sc.ErrorColor()}, true)
}

// Succeed answers with msg in the success color.
func (sc *SlashInteractionContext) Succeed(msg string, ephemeral bool) error {
	return sc.Embed(&discordgo.MessageEmbed{Description: msg, Color: sc.SuccessColor()}, ephemeral)
}
