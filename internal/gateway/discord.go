package gateway

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Discord implements Gateway over a discordgo session. Lookups consult the
// session state cache before falling back to REST.
type Discord struct {
	s *discordgo.Session
}

func NewDiscord(s *discordgo.Session) *Discord {
	return &Discord{s: s}
}

func (d *Discord) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	m, err := d.s.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (d *Discord) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (string, error) {
	m, err := d.s.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return m.ID, nil
}

func (d *Discord) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return d.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (d *Discord) React(ctx context.Context, channelID, messageID, emoji string) error {
	return d.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (d *Discord) SetNickname(ctx context.Context, guildID, userID, nick string) error {
	return d.s.GuildMemberNickname(guildID, userID, nick, discordgo.WithContext(ctx))
}

func (d *Discord) Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	if m, err := d.s.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	return d.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
}

func (d *Discord) User(ctx context.Context, userID string) (*discordgo.User, error) {
	return d.s.User(userID, discordgo.WithContext(ctx))
}

func (d *Discord) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	if g, err := d.s.State.Guild(guildID); err == nil {
		return g, nil
	}
	return d.s.Guild(guildID, discordgo.WithContext(ctx))
}

func (d *Discord) ChannelGuild(ctx context.Context, channelID string) (string, error) {
	if ch, err := d.s.State.Channel(channelID); err == nil {
		return ch.GuildID, nil
	}
	ch, err := d.s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return ch.GuildID, nil
}
