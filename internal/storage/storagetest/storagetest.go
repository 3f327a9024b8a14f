// Package storagetest opens throwaway file-backed storage for tests.
package storagetest

import (
	"context"
	"path/filepath"
	"testing"

	"server-warden/internal/storage"

	"github.com/rs/zerolog"
)

// New returns a Storage backed by data.json in a fresh temp dir, and the
// file path so tests can reopen it.
func New(t testing.TB) (*storage.Storage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	return Open(t, path), path
}

// Open loads the snapshot stored at path.
func Open(t testing.TB, path string) *storage.Storage {
	t.Helper()
	backend, err := storage.NewFileBackend(path, 0, zerolog.Nop())
	if err != nil {
		t.Fatalf("open file backend: %v", err)
	}
	s := storage.New(context.Background(), backend, zerolog.Nop())
	t.Cleanup(func() { s.Close() })
	return s
}
