package discord

import (
	"context"
	"testing"
	"time"

	"server-warden/internal/access"
	"server-warden/internal/afk"
	"server-warden/internal/counting"
	"server-warden/internal/gateway"
	"server-warden/internal/gateway/gatewaytest"
	"server-warden/internal/sticky"
	"server-warden/internal/storage"
	"server-warden/internal/storage/storagetest"
	"server-warden/pkg/jobmgr"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineHarness struct {
	p     *Pipeline
	store *storage.Storage
	gw    *gatewaytest.Fake
	count *counting.Engine
	stick *sticky.Engine
}

func newPipeline(t *testing.T) *pipelineHarness {
	t.Helper()
	store, _ := storagetest.New(t)
	gw := gatewaytest.New()
	jobs := jobmgr.NewManager(nil)
	t.Cleanup(func() {
		jobs.Close()
		jobs.Wait()
	})

	c := counting.New(store, gw, zerolog.Nop())
	s := sticky.New(store, gw, zerolog.Nop())
	a := afk.New(store, gw, jobs, afk.Options{NoticeTTL: time.Hour}, zerolog.Nop())
	return &pipelineHarness{
		p:     NewPipeline(access.New(store, "owner"), c, a, s, zerolog.Nop()),
		store: store,
		gw:    gw,
		count: c,
		stick: s,
	}
}

func msg(author, content string, mentions ...string) gateway.Message {
	return gateway.Message{ID: "m-" + content, ChannelID: "c1", GuildID: "g1", AuthorID: author, Content: content, Mentions: mentions}
}

func TestPipelineStickyRepostComesLast(t *testing.T) {
	h := newPipeline(t)
	ctx := context.Background()
	h.count.Set("c1")
	require.NoError(t, h.stick.Setup(ctx, "g1", "c1", "rules"))

	h.p.HandleMessage(ctx, msg("a", "1"))
	h.p.HandleMessage(ctx, msg("a", "2"))

	calls := h.gw.Calls(gatewaytest.OpReact, gatewaytest.OpSend, gatewaytest.OpEmbed)
	require.NotEmpty(t, calls)
	last := calls[len(calls)-1]
	assert.Equal(t, gatewaytest.OpSend, last.Op)
	assert.Equal(t, sticky.Format("rules"), last.Content)

	var resets int
	for _, c := range h.gw.Calls(gatewaytest.OpSend) {
		if c.Content != sticky.Format("rules") {
			resets++
		}
	}
	assert.Equal(t, 1, resets)
}

func TestPipelineAfkReturnBeforeMentions(t *testing.T) {
	h := newPipeline(t)
	h.store.PutAfk("a", storage.AfkRecord{GuildID: "g1", Reason: "lunch", OriginalNick: "a"})

	// The author mentions themself: the record is gone before mentions are read.
	h.p.HandleMessage(context.Background(), msg("a", "hi", "a"))

	embeds := h.gw.Calls(gatewaytest.OpEmbed)
	require.Len(t, embeds, 1)
	assert.Contains(t, embeds[0].Content, "Welcome back")
}

func TestPipelineDropsBlockedAndBots(t *testing.T) {
	h := newPipeline(t)
	h.count.Set("c1")

	h.store.BlockUser("bad")
	h.p.HandleMessage(context.Background(), msg("bad", "1"))

	h.store.BlockGuild("g2")
	other := msg("a", "1")
	other.GuildID = "g2"
	h.p.HandleMessage(context.Background(), other)

	bot := msg("b", "1")
	bot.AuthorBot = true
	h.p.HandleMessage(context.Background(), bot)

	dm := msg("a", "1")
	dm.GuildID = ""
	h.p.HandleMessage(context.Background(), dm)

	assert.Empty(t, h.gw.Calls())
	st, _ := h.store.Counting("c1")
	assert.Equal(t, storage.CountingState{}, st)
}
