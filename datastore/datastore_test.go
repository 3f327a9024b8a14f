package datastore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doc struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestLoadMissingFile(t *testing.T) {
	ds, err := New(filepath.Join(t.TempDir(), "nested", "data.json"))
	require.NoError(t, err)

	var d doc
	assert.ErrorIs(t, ds.Load(&d), ErrNotExist)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	ds, err := New(path)
	require.NoError(t, err)

	require.NoError(t, ds.Save(doc{Name: "warden", Items: []string{"a", "b"}}))

	reopened, err := New(path)
	require.NoError(t, err)
	var got doc
	require.NoError(t, reopened.Load(&got))
	assert.Equal(t, doc{Name: "warden", Items: []string{"a", "b"}}, got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not survive a save")
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	ds, err := New(path)
	require.NoError(t, err)

	var d doc
	err = ds.Load(&d)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotExist)
}

func TestBackupsAreRotated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	cfg := DefaultConfig(path)
	cfg.BackupCount = 2
	ds, err := NewWithConfig(cfg)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, ds.Save(doc{Name: "v", Items: make([]string, i)}))
	}

	backups, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, backups, 2)
}

func TestUnchangedSaveIsSkipped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	ds, err := New(path)
	require.NoError(t, err)

	require.NoError(t, ds.Save(doc{Name: "same"}))
	require.NoError(t, ds.Save(doc{Name: "same"}))

	backups, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.Empty(t, backups, "identical content must not produce a backup")
}
