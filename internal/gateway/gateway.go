// Package gateway is the narrow slice of the chat platform the feature
// engines talk to. The discordgo-backed implementation lives here; tests use
// the recording fake in gatewaytest.
package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// Message is an inbound chat message reduced to what the engines read.
type Message struct {
	ID        string
	ChannelID string
	GuildID   string
	AuthorID  string
	AuthorBot bool
	Content   string
	// Mentions holds mentioned user ids in the order the platform reported them.
	Mentions []string
}

// FromDiscord converts a gateway MessageCreate payload.
func FromDiscord(m *discordgo.Message) Message {
	msg := Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		Content:   m.Content,
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorBot = m.Author.Bot
	}
	for _, u := range m.Mentions {
		if u != nil {
			msg.Mentions = append(msg.Mentions, u.ID)
		}
	}
	return msg
}

// Gateway is every outbound platform call the bot makes outside of
// interaction responses.
type Gateway interface {
	SendMessage(ctx context.Context, channelID, content string) (string, error)
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) (string, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	SetNickname(ctx context.Context, guildID, userID, nick string) error
	Member(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	User(ctx context.Context, userID string) (*discordgo.User, error)
	Guild(ctx context.Context, guildID string) (*discordgo.Guild, error)
	ChannelGuild(ctx context.Context, channelID string) (string, error)
}

// IsNotFound reports whether err means the target no longer exists.
func IsNotFound(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return errors.Is(err, ErrNotFound)
	}
	if rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownGuild,
			discordgo.ErrCodeUnknownMember,
			discordgo.ErrCodeUnknownMessage,
			discordgo.ErrCodeUnknownUser:
			return true
		}
	}
	return rest.Response != nil && rest.Response.StatusCode == http.StatusNotFound
}

// IsPermission reports whether err means the bot lacks access or permission.
func IsPermission(err error) bool {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) {
		return errors.Is(err, ErrForbidden)
	}
	if rest.Message != nil {
		switch rest.Message.Code {
		case discordgo.ErrCodeMissingAccess, discordgo.ErrCodeMissingPermissions:
			return true
		}
	}
	return rest.Response != nil && rest.Response.StatusCode == http.StatusForbidden
}

// Sentinels for implementations that are not backed by REST calls.
var (
	ErrNotFound  = errors.New("gateway: not found")
	ErrForbidden = errors.New("gateway: missing permissions")
)
