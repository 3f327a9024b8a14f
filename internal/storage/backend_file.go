package storage

import (
	"context"
	"errors"

	"server-warden/datastore"

	"github.com/rs/zerolog"
)

// FileBackend keeps the snapshot in a JSON file.
type FileBackend struct {
	ds *datastore.DataStore
}

func NewFileBackend(path string, backups int, logger zerolog.Logger) (*FileBackend, error) {
	cfg := datastore.DefaultConfig(path)
	cfg.BackupCount = backups
	cfg.Logger = logger
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &FileBackend{ds: ds}, nil
}

func (b *FileBackend) Load(_ context.Context) (*Snapshot, error) {
	snap := NewSnapshot()
	if err := b.ds.Load(snap); err != nil {
		if errors.Is(err, datastore.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}
	return snap, nil
}

func (b *FileBackend) Save(_ context.Context, snap *Snapshot) error {
	return b.ds.Save(snap)
}

func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) String() string { return "file:" + b.ds.Path() }
