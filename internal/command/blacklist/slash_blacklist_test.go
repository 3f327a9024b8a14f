package blacklist

import (
	"context"
	"testing"

	"server-warden/internal/access"
	"server-warden/internal/apperr"
	"server-warden/internal/command"
	"server-warden/internal/command/commandtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = commandtest.Invocation{GuildID: "g1", ChannelID: "c1", UserID: commandtest.OwnerID, Username: "owner"}
	stranger = commandtest.Invocation{GuildID: "g1", ChannelID: "c1", UserID: "u9", Username: "eve"}
)

func run(t *testing.T, inv commandtest.Invocation, svc *command.Services, opts ...*commandtest.Option) (*commandtest.Recorder, error) {
	t.Helper()
	sc, rec := inv.Context(svc, "blacklist", opts...)
	return rec, (&BlacklistCommand{}).Run(context.Background(), sc)
}

func TestOwnerOnly(t *testing.T) {
	svc, _ := commandtest.NewServices(t)

	_, err := run(t, stranger, svc, commandtest.Group("user", commandtest.Sub("list")))
	require.ErrorIs(t, err, apperr.Permission)
	msg, ok := apperr.UserMessage(err)
	assert.True(t, ok)
	assert.Equal(t, access.OwnerOnlyMessage, msg)
}

func TestUserAddRemoveList(t *testing.T) {
	svc, _ := commandtest.NewServices(t)

	rec, err := run(t, owner, svc, commandtest.Group("user", commandtest.Sub("add", commandtest.User("user", "u2"))))
	require.NoError(t, err)
	assert.Equal(t, "✅ User <@u2> has been blacklisted.", rec.Last().Text())
	assert.True(t, rec.Last().Ephemeral)
	assert.Equal(t, commandtest.SuccessColor, rec.Last().Embed.Color)

	_, err = run(t, owner, svc, commandtest.Group("user", commandtest.Sub("add", commandtest.String("userid", " u3 "))))
	require.NoError(t, err)
	assert.True(t, svc.Store.IsUserBlocked("u3"))

	rec, err = run(t, owner, svc, commandtest.Group("user", commandtest.Sub("list")))
	require.NoError(t, err)
	assert.Equal(t, "Blacklisted Users", rec.Last().Embed.Title)
	assert.Equal(t, "<@u2> (u2)\n<@u3> (u3)", rec.Last().Text())

	rec, err = run(t, owner, svc, commandtest.Group("user", commandtest.Sub("remove", commandtest.User("user", "u2"))))
	require.NoError(t, err)
	assert.Equal(t, "✅ User <@u2> has been removed from blacklist.", rec.Last().Text())
	assert.False(t, svc.Store.IsUserBlocked("u2"))
}

func TestUserAddNeedsTarget(t *testing.T) {
	svc, _ := commandtest.NewServices(t)

	_, err := run(t, owner, svc, commandtest.Group("user", commandtest.Sub("add")))
	require.ErrorIs(t, err, apperr.Validation)
	msg, _ := apperr.UserMessage(err)
	assert.Equal(t, "❌ Please provide either a user or user ID.", msg)
}

func TestServerAddRemoveList(t *testing.T) {
	svc, _ := commandtest.NewServices(t)

	rec, err := run(t, owner, svc, commandtest.Group("server", commandtest.Sub("list")))
	require.NoError(t, err)
	assert.Equal(t, "No blacklisted servers.", rec.Last().Text())

	rec, err = run(t, owner, svc, commandtest.Group("server", commandtest.Sub("add", commandtest.String("serverid", "g7"))))
	require.NoError(t, err)
	assert.Equal(t, "✅ Server `g7` has been blacklisted.", rec.Last().Text())

	rec, err = run(t, owner, svc, commandtest.Group("server", commandtest.Sub("list")))
	require.NoError(t, err)
	assert.Equal(t, "Blacklisted Servers", rec.Last().Embed.Title)
	assert.Equal(t, "`g7`", rec.Last().Text())

	rec, err = run(t, owner, svc, commandtest.Group("server", commandtest.Sub("remove", commandtest.String("serverid", "g7"))))
	require.NoError(t, err)
	assert.Equal(t, "✅ Server `g7` has been removed from blacklist.", rec.Last().Text())
	assert.Empty(t, svc.Store.BlockedGuilds())
}
