package counting

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"server-warden/internal/apperr"
	"server-warden/internal/gateway"
	"server-warden/internal/gateway/gatewaytest"
	"server-warden/internal/storage"
	"server-warden/internal/storage/storagetest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const channel = "c1"

type harness struct {
	engine *Engine
	store  *storage.Storage
	path   string
	gw     *gatewaytest.Fake
	seq    int
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, path := storagetest.New(t)
	gw := gatewaytest.New()
	h := &harness{engine: New(store, gw, zerolog.Nop()), store: store, path: path, gw: gw}
	h.engine.Set(channel)
	return h
}

func (h *harness) post(author, content string) bool {
	h.seq++
	return h.engine.HandleMessage(context.Background(), gateway.Message{
		ID:        fmt.Sprintf("in-%d", h.seq),
		ChannelID: channel,
		GuildID:   "g1",
		AuthorID:  author,
		Content:   content,
	})
}

func (h *harness) reactions() []string {
	var out []string
	for _, c := range h.gw.Calls(gatewaytest.OpReact) {
		out = append(out, c.Content)
	}
	return out
}

func TestAlternatingAuthorsCount(t *testing.T) {
	h := newHarness(t)

	h.post("a", "1")
	h.post("b", "2")
	h.post("c", "3")

	st, ok := h.store.Counting(channel)
	require.True(t, ok)
	assert.Equal(t, storage.CountingState{Count: 3, LastUser: "c"}, st)
	assert.Equal(t, []string{ReactAccept, ReactAccept, ReactAccept}, h.reactions())
	assert.Empty(t, h.gw.Calls(gatewaytest.OpSend), "no reset message")

	reopened, ok := storagetest.Open(t, h.path).Counting(channel)
	require.True(t, ok)
	assert.Equal(t, st, reopened)
}

func TestSameAuthorTwiceResets(t *testing.T) {
	h := newHarness(t)

	h.post("a", "1")
	h.post("a", "2")

	st, _ := h.store.Counting(channel)
	assert.Equal(t, storage.CountingState{}, st)
	assert.Equal(t, []string{ReactAccept, ReactReject}, h.reactions())

	sends := h.gw.Calls(gatewaytest.OpSend)
	require.Len(t, sends, 1)
	assert.Equal(t, "❌ **Count reset!** <@a> ruined it at **1**. The next number is **1**.", sends[0].Content)
}

func TestNonNumericAlwaysResets(t *testing.T) {
	for _, content := range []string{"hello", "3.0", "+3", "03", "3 4", "", "４"} {
		t.Run(content, func(t *testing.T) {
			h := newHarness(t)
			h.post("a", "1")
			h.post("b", "2")

			h.post("c", content)

			st, _ := h.store.Counting(channel)
			assert.Equal(t, storage.CountingState{}, st)
		})
	}
}

func TestWrongNumberResetsAndAnnouncesReached(t *testing.T) {
	h := newHarness(t)
	h.post("a", "1")
	h.post("b", "2")
	h.post("c", "5")

	sends := h.gw.Calls(gatewaytest.OpSend)
	require.Len(t, sends, 1)
	assert.Contains(t, sends[0].Content, "ruined it at **2**")

	h.post("d", "1")
	st, _ := h.store.Counting(channel)
	assert.Equal(t, storage.CountingState{Count: 1, LastUser: "d"}, st)
}

func TestSurroundingWhitespaceAccepted(t *testing.T) {
	h := newHarness(t)
	h.post("a", "  1\n")
	st, _ := h.store.Counting(channel)
	assert.Equal(t, int64(1), st.Count)
}

func TestUnconfiguredChannelIgnored(t *testing.T) {
	h := newHarness(t)
	handled := h.engine.HandleMessage(context.Background(), gateway.Message{ChannelID: "other", AuthorID: "a", Content: "1"})
	assert.False(t, handled)
	assert.Empty(t, h.gw.Calls())
}

func TestReactionFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	h.gw.FailOn(gatewaytest.OpReact, errors.New("missing access"))

	h.post("a", "1")

	st, _ := h.store.Counting(channel)
	assert.Equal(t, storage.CountingState{Count: 1, LastUser: "a"}, st)
}

func TestRemoveAndStatus(t *testing.T) {
	h := newHarness(t)
	h.post("a", "1")

	status, err := h.engine.Status(channel)
	require.NoError(t, err)
	assert.Equal(t, Status{Count: 1, LastUser: "a", Next: 2}, status)

	require.NoError(t, h.engine.Remove(channel))
	assert.ErrorIs(t, h.engine.Remove(channel), apperr.NotFound)
	_, err = h.engine.Status(channel)
	assert.ErrorIs(t, err, apperr.NotFound)
}

func TestSetResetsExistingChannel(t *testing.T) {
	h := newHarness(t)
	h.post("a", "1")
	h.engine.Set(channel)

	st, ok := h.store.Counting(channel)
	require.True(t, ok)
	assert.Equal(t, storage.CountingState{}, st)
}

func TestParseCount(t *testing.T) {
	cases := map[string]struct {
		n  int64
		ok bool
	}{
		"1":                    {1, true},
		" 42 ":                 {42, true},
		"0":                    {0, true},
		"007":                  {0, false},
		"-1":                   {0, false},
		"1e3":                  {0, false},
		"99999999999999999999": {0, false},
	}
	for in, want := range cases {
		n, ok := ParseCount(in)
		assert.Equal(t, want.ok, ok, in)
		assert.Equal(t, want.n, n, in)
	}
}
