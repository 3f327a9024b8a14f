package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacyDataFile = `{
  "blacklistedUsers": ["111", "222"],
  "blacklistedServers": ["g9"],
  "countingChannels": [
    ["c1", {"count": 4, "lastUser": "111"}],
    ["c2", {"count": 0, "lastUser": null}]
  ],
  "stickyMessages": [
    ["c3", {"message": "read the rules", "messageId": "m1", "isActive": true}]
  ],
  "afkUsers": [
    ["333", {"guildId": "g1", "reason": "lunch", "originalNick": "Sam"}]
  ]
}`

func openFile(t *testing.T, path string) *Storage {
	t.Helper()
	backend, err := NewFileBackend(path, 2, zerolog.Nop())
	require.NoError(t, err)
	return New(context.Background(), backend, zerolog.Nop())
}

func fixture() *Snapshot {
	snap := NewSnapshot()
	snap.BlockedUsers["u1"] = struct{}{}
	snap.BlockedGuilds["g2"] = struct{}{}
	snap.CountingChannels["c1"] = CountingState{Count: 7, LastUser: "u5"}
	snap.CountingChannels["c2"] = CountingState{}
	snap.StickyMessages["c3"] = StickyState{Text: "hello", MessageID: "m9", Active: true, GuildID: "g1"}
	snap.StickyMessages["c4"] = StickyState{Text: "stopped", GuildID: "g1"}
	snap.AfkUsers["u7"] = AfkRecord{GuildID: "g1", Reason: "brb", OriginalNick: "Alex"}
	return snap
}

func TestLoadMissingStartsEmpty(t *testing.T) {
	s := openFile(t, filepath.Join(t.TempDir(), "data.json"))
	assert.Empty(t, cmp.Diff(NewSnapshot(), s.Snapshot()))
}

func TestLoadCorruptStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"countingChannels": [["c1"]]}`), 0o644))

	s := openFile(t, path)
	assert.Empty(t, cmp.Diff(NewSnapshot(), s.Snapshot()))
}

func TestLoadWarnsAboutInconsistentRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"countingChannels": [["c1", {"count": 4}]]}`), 0o644))

	var logs bytes.Buffer
	backend, err := NewFileBackend(path, 0, zerolog.Nop())
	require.NoError(t, err)
	s := New(context.Background(), backend, zerolog.New(&logs))

	st, ok := s.Counting("c1")
	require.True(t, ok)
	assert.Equal(t, int64(4), st.Count)
	assert.Contains(t, logs.String(), `"problem":"countingChannels[c1]: count 4 without last user"`)
}

func TestLoadLegacyDataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(legacyDataFile), 0o644))

	got := openFile(t, path).Snapshot()

	want := NewSnapshot()
	want.BlockedUsers["111"] = struct{}{}
	want.BlockedUsers["222"] = struct{}{}
	want.BlockedGuilds["g9"] = struct{}{}
	want.CountingChannels["c1"] = CountingState{Count: 4, LastUser: "111"}
	want.CountingChannels["c2"] = CountingState{}
	want.StickyMessages["c3"] = StickyState{Text: "read the rules", MessageID: "m1", Active: true}
	want.AfkUsers["333"] = AfkRecord{GuildID: "g1", Reason: "lunch", OriginalNick: "Sam"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("legacy snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend, err := NewFileBackend(filepath.Join(t.TempDir(), "data.json"), 0, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, backend.Save(ctx, fixture()))
	first, err := backend.Load(ctx)
	require.NoError(t, err)

	require.NoError(t, backend.Save(ctx, first))
	second, err := backend.Load(ctx)
	require.NoError(t, err)

	if diff := cmp.Diff(fixture(), second); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodingIsOrderIndependent(t *testing.T) {
	a, err := json.Marshal(fixture())
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(a, &decoded))
	b, err := json.Marshal(&decoded)
	require.NoError(t, err)

	assert.JSONEq(t, string(a), string(b))
}

func TestMutationsArePersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := openFile(t, path)

	assert.True(t, s.BlockUser("u1"))
	assert.False(t, s.BlockUser("u1"))
	s.PutCounting("c1", CountingState{Count: 2, LastUser: "u3"})
	s.PutSticky("c2", StickyState{Text: "pinned", MessageID: "m1", Active: true, GuildID: "g1"})
	s.PutAfk("u4", AfkRecord{GuildID: "g1", Reason: "Not specified", OriginalNick: "Kai"})

	reopened := openFile(t, path)
	assert.True(t, reopened.IsUserBlocked("u1"))
	st, ok := reopened.Counting("c1")
	require.True(t, ok)
	assert.Equal(t, CountingState{Count: 2, LastUser: "u3"}, st)
	_, ok = reopened.Sticky("c2")
	assert.True(t, ok)
	assert.Len(t, reopened.AfkInGuild("g1"), 1)

	assert.True(t, reopened.RemoveAfk("u4"))
	assert.False(t, reopened.RemoveAfk("u4"))
	assert.Empty(t, openFile(t, path).AfkInGuild("g1"))
}

func TestPutCountingKeepsInvariant(t *testing.T) {
	s := openFile(t, filepath.Join(t.TempDir(), "data.json"))
	s.PutCounting("c1", CountingState{Count: 0, LastUser: "u1"})

	st, ok := s.Counting("c1")
	require.True(t, ok)
	assert.Equal(t, CountingState{}, st)
}

type failingBackend struct {
	saves int
}

func (b *failingBackend) Load(context.Context) (*Snapshot, error) { return nil, ErrNoSnapshot }
func (b *failingBackend) Save(context.Context, *Snapshot) error {
	b.saves++
	return errors.New("disk full")
}
func (b *failingBackend) Close() error   { return nil }
func (b *failingBackend) String() string { return "failing" }

func TestSaveFailureKeepsMemoryState(t *testing.T) {
	backend := &failingBackend{}
	s := New(context.Background(), backend, zerolog.Nop())

	s.BlockGuild("g1")

	assert.Equal(t, 1, backend.saves)
	assert.True(t, s.IsGuildBlocked("g1"))
	assert.Error(t, s.Save(context.Background()))
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend, err := OpenBackend(ctx, BackendOptions{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "warden.db"),
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	_, err = backend.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, backend.Save(ctx, fixture()))
	snap := fixture()
	snap.AfkUsers["u8"] = AfkRecord{GuildID: "g2", Reason: "sleep", OriginalNick: "Lee"}
	require.NoError(t, backend.Save(ctx, snap))

	got, err := backend.Load(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("sqlite round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenBackendRejectsUnknownDriver(t *testing.T) {
	_, err := OpenBackend(context.Background(), BackendOptions{Driver: "mongo"})
	assert.Error(t, err)

	_, err = OpenBackend(context.Background(), BackendOptions{Driver: DriverPostgres})
	assert.Error(t, err)
}

func TestRebindAndRedact(t *testing.T) {
	pg := &SQLBackend{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &SQLBackend{driver: DriverSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))

	assert.Equal(t, "postgres://***@db:5432/warden", redact("postgres://bot:secret@db:5432/warden"))
	assert.Equal(t, "data/warden.db", redact("data/warden.db"))
}
