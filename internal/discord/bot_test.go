package discord

import (
	"testing"

	"server-warden/internal/config"
	"server-warden/internal/storage/storagetest"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGuildCreateKeepsBlockedGuild(t *testing.T) {
	store, _ := storagetest.New(t)
	store.BlockGuild("g1")
	b := &Bot{cfg: &config.Config{InitSlashCommands: false}, store: store, log: zerolog.Nop()}

	// No session: any platform call, such as leaving the guild, would panic.
	assert.NotPanics(t, func() {
		b.onGuildCreate(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "g1", Name: "blocked"}})
	})
	assert.True(t, store.IsGuildBlocked("g1"))
}
