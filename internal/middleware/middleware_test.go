package middleware

import (
	"context"
	"errors"
	"testing"

	"server-warden/internal/access"
	"server-warden/internal/command"
	"server-warden/internal/command/commandtest"
	"server-warden/internal/config"
	"server-warden/internal/storage/storagetest"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probe struct {
	runs int
	err  error
}

func (p *probe) Name() string             { return "channel" }
func (p *probe) Description() string      { return "probe" }
func (p *probe) Category() string         { return "test" }
func (p *probe) UserPermissions() []int64 { return nil }
func (p *probe) SubcommandPermissions() map[string][]int64 {
	return map[string][]int64{
		"counting": {discordgo.PermissionManageChannels},
		"stick":    {discordgo.PermissionManageMessages},
	}
}
func (p *probe) Run(ctx context.Context, sc *command.SlashInteractionContext) error {
	p.runs++
	return p.err
}

func services(t *testing.T) *command.Services {
	t.Helper()
	store, _ := storagetest.New(t)
	return &command.Services{
		Config: &config.Config{ErrorColor: 7},
		Store:  store,
		Gate:   access.New(store, "owner"),
		Log:    zerolog.Nop(),
	}
}

var member = commandtest.Invocation{GuildID: "g1", ChannelID: "c1", UserID: "u1", Username: "sam"}

func TestGuildOnly(t *testing.T) {
	p := &probe{}
	c := command.Wrap(p, WithGuildOnly())
	dm := commandtest.Invocation{UserID: "u1"}

	sc, rec := dm.Context(services(t), "channel")
	require.NoError(t, command.Invoke(context.Background(), c, sc))

	assert.Zero(t, p.runs)
	assert.Equal(t, GuildOnlyMessage, rec.Last().Text())
	assert.True(t, rec.Last().Ephemeral)
	assert.Equal(t, 7, rec.Last().Embed.Color)
}

func TestAccessCheck(t *testing.T) {
	svc := services(t)
	p := &probe{}
	c := command.Wrap(p, WithAccessCheck())

	sc, rec := member.Context(svc, "channel")
	require.NoError(t, command.Invoke(context.Background(), c, sc))
	assert.Equal(t, 1, p.runs)
	assert.Empty(t, rec.Replies())

	svc.Store.BlockGuild("g1")
	sc, rec = member.Context(svc, "channel")
	require.NoError(t, command.Invoke(context.Background(), c, sc))
	assert.Equal(t, 1, p.runs)
	assert.Equal(t, access.GuildBlockedMessage, rec.Last().Content)
	assert.Nil(t, rec.Last().Embed)
	assert.True(t, rec.Last().Ephemeral)

	svc.Store.BlockUser("u1")
	sc, rec = member.Context(svc, "channel")
	require.NoError(t, command.Invoke(context.Background(), c, sc))
	assert.Equal(t, access.UserBlockedMessage, rec.Last().Text())
}

func TestPermissionPerSubcommandGroup(t *testing.T) {
	svc := services(t)
	p := &probe{}
	c := command.Wrap(p, WithUserPermissionCheck())

	mod := member
	mod.Permissions = discordgo.PermissionManageMessages

	sc, rec := mod.Context(svc, "channel", commandtest.Group("counting", commandtest.Sub("set")))
	require.NoError(t, command.Invoke(context.Background(), c, sc))
	assert.Zero(t, p.runs)
	assert.Equal(t, "❌ You need the \"Manage Channels\" permission to use this command.", rec.Last().Text())

	sc, _ = mod.Context(svc, "channel", commandtest.Group("stick", commandtest.Sub("stop")))
	require.NoError(t, command.Invoke(context.Background(), c, sc))
	assert.Equal(t, 1, p.runs)

	admin := member
	admin.Permissions = discordgo.PermissionAdministrator
	sc, _ = admin.Context(svc, "channel", commandtest.Group("counting", commandtest.Sub("set")))
	require.NoError(t, command.Invoke(context.Background(), c, sc))
	assert.Equal(t, 2, p.runs)
}

func TestMissingPermissionMessage(t *testing.T) {
	assert.Equal(t,
		"❌ You need one of these permissions to use this command: \"Manage Messages\", \"0x1\".",
		MissingPermissionMessage([]int64{discordgo.PermissionManageMessages, 1}))
}

func TestCommandLoggerPassesErrorThrough(t *testing.T) {
	boom := errors.New("boom")
	p := &probe{err: boom}
	c := command.Wrap(p, WithCommandLogger())

	sc, _ := member.Context(services(t), "channel")
	assert.ErrorIs(t, command.Invoke(context.Background(), c, sc), boom)
}
