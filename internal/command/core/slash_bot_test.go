package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"server-warden/internal/apperr"
	"server-warden/internal/command"
	"server-warden/internal/command/commandtest"
	"server-warden/internal/gateway/gatewaytest"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sam = commandtest.Invocation{GuildID: "g1", ChannelID: "c1", UserID: "u1", Username: "sam"}

func run(t *testing.T, svc *command.Services, opts ...*commandtest.Option) (*commandtest.Recorder, error) {
	t.Helper()
	sc, rec := sam.Context(svc, "bot", opts...)
	return rec, (&BotCommand{}).Run(context.Background(), sc)
}

func TestFormatUptime(t *testing.T) {
	d := 26*time.Hour + 3*time.Minute + 4*time.Second + 900*time.Millisecond
	assert.Equal(t, "1d 2h 3m 4s", FormatUptime(d))
	assert.Equal(t, "0d 0h 0m 0s", FormatUptime(0))
}

func TestUptime(t *testing.T) {
	svc, _ := commandtest.NewServices(t)
	svc.Started = time.Now().Add(-90 * time.Second)

	rec, err := run(t, svc, commandtest.Sub("uptime"))
	require.NoError(t, err)
	assert.Equal(t, "Bot Uptime", rec.Last().Embed.Title)
	assert.Equal(t, "0d 0h 1m 30s", rec.Last().Text())
}

func TestPing(t *testing.T) {
	svc, _ := commandtest.NewServices(t)

	rec, err := run(t, svc, commandtest.Sub("ping"))
	require.NoError(t, err)
	fields := rec.Last().Embed.Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "WebSocket Ping", fields[0].Name)
	assert.Equal(t, "42ms", fields[0].Value)
	assert.Equal(t, "API Latency", fields[1].Name)
}

func TestInfoReadsState(t *testing.T) {
	svc, _ := commandtest.NewServices(t)
	st := discordgo.NewState()
	st.User = &discordgo.User{ID: "bot", Username: "warden"}
	require.NoError(t, st.GuildAdd(&discordgo.Guild{ID: "g1", MemberCount: 10}))
	require.NoError(t, st.GuildAdd(&discordgo.Guild{ID: "g2", MemberCount: 5}))
	svc.State = st

	rec, err := run(t, svc, commandtest.Sub("info"))
	require.NoError(t, err)
	embed := rec.Last().Embed
	assert.Equal(t, "Bot Information", embed.Title)
	assert.Equal(t, "warden", embed.Fields[0].Value)
	assert.Equal(t, "2", embed.Fields[1].Value)
	assert.Equal(t, "15", embed.Fields[2].Value)
	assert.NotNil(t, embed.Thumbnail)
}

type stub struct {
	name, category string
	def            *discordgo.ApplicationCommand
}

func (s *stub) Name() string             { return s.name }
func (s *stub) Description() string      { return s.def.Description }
func (s *stub) Category() string         { return s.category }
func (s *stub) UserPermissions() []int64 { return nil }
func (s *stub) SlashDefinition() *discordgo.ApplicationCommand {
	return s.def
}
func (s *stub) Run(context.Context, *command.SlashInteractionContext) error { return nil }

func TestHelpGroupsByCategory(t *testing.T) {
	svc, _ := commandtest.NewServices(t)
	svc.Registry.Register(command.Wrap(&BotCommand{}))
	svc.Registry.Register(command.Wrap(&stub{
		name:     "afk",
		category: "😴 AFK Commands",
		def: &discordgo.ApplicationCommand{Name: "afk", Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "set", Description: "Set yourself as AFK"},
		}},
	}))

	rec, err := run(t, svc, commandtest.Sub("help"))
	require.NoError(t, err)
	embed := rec.Last().Embed
	assert.Equal(t, "Bot Help", embed.Title)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "🤖 Bot Commands", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "`/bot feedback` - Send feedback")
	assert.Equal(t, "😴 AFK Commands", embed.Fields[1].Name)
	assert.Equal(t, "`/afk set` - Set yourself as AFK", embed.Fields[1].Value)
}

func TestFeedback(t *testing.T) {
	svc, gw := commandtest.NewServices(t)
	gw.AddGuild(&discordgo.Guild{ID: "g1", Name: "Lounge"})
	svc.Config.FeedbackChannelID = "fb"

	rec, err := run(t, svc, commandtest.Sub("feedback", commandtest.String("message", "great bot")))
	require.NoError(t, err)
	assert.Equal(t, "✅ Feedback sent successfully!", rec.Last().Text())
	assert.True(t, rec.Last().Ephemeral)

	sent := gw.Calls(gatewaytest.OpEmbed)
	require.Len(t, sent, 1)
	assert.Equal(t, "fb", sent[0].ChannelID)
	assert.Equal(t, "New Feedback", sent[0].Embed.Title)
	assert.Equal(t, "sam (u1)", sent[0].Embed.Fields[0].Value)
	assert.Equal(t, "Lounge (g1)", sent[0].Embed.Fields[1].Value)
	assert.Equal(t, "great bot", sent[0].Embed.Fields[2].Value)

	_, err = run(t, svc, commandtest.Sub("feedback", commandtest.String("message", "again")))
	require.ErrorIs(t, err, apperr.Validation)
	assert.Len(t, gw.Calls(gatewaytest.OpEmbed), 1)
}

func TestFeedbackNotConfigured(t *testing.T) {
	svc, _ := commandtest.NewServices(t)

	_, err := run(t, svc, commandtest.Sub("feedback", commandtest.String("message", "hi")))
	require.ErrorIs(t, err, apperr.Validation)
	msg, _ := apperr.UserMessage(err)
	assert.Equal(t, "❌ Feedback channel not configured.", msg)
}

func TestFeedbackSendFailure(t *testing.T) {
	svc, gw := commandtest.NewServices(t)
	svc.Config.FeedbackChannelID = "fb"
	gw.FailOn(gatewaytest.OpEmbed, errors.New("500"))

	_, err := run(t, svc, commandtest.Sub("feedback", commandtest.String("message", "hi")))
	require.ErrorIs(t, err, apperr.Transient)
	msg, _ := apperr.UserMessage(err)
	assert.Equal(t, "❌ Failed to send feedback.", msg)
}
