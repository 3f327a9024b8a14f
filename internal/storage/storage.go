// Package storage owns the bot's snapshot: the block lists, counting
// channels, sticky messages and AFK records. Every mutation writes the whole
// snapshot through a Backend before returning. A failed write is logged and
// the in-memory state stays authoritative until the next successful save.
package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const saveTimeout = 5 * time.Second

type Storage struct {
	mu      sync.Mutex
	snap    *Snapshot
	backend Backend
	log     zerolog.Logger
}

// New loads the snapshot from backend. Load never fails: a missing or
// unreadable snapshot is logged and replaced with empty defaults.
func New(ctx context.Context, backend Backend, logger zerolog.Logger) *Storage {
	s := &Storage{backend: backend, log: logger}
	s.snap = s.load(ctx)
	return s
}

func (s *Storage) load(ctx context.Context) *Snapshot {
	snap, err := s.backend.Load(ctx)
	switch {
	case errors.Is(err, ErrNoSnapshot):
		s.log.Info().Str("backend", s.backend.String()).Msg("no snapshot found, starting empty")
		return NewSnapshot()
	case err != nil:
		s.log.Error().Err(err).Str("backend", s.backend.String()).Msg("failed to load snapshot, starting empty")
		return NewSnapshot()
	}

	s.log.Info().
		Str("backend", s.backend.String()).
		Int("blocked_users", len(snap.BlockedUsers)).
		Int("blocked_guilds", len(snap.BlockedGuilds)).
		Int("counting", len(snap.CountingChannels)).
		Int("sticky", len(snap.StickyMessages)).
		Int("afk", len(snap.AfkUsers)).
		Msg("snapshot loaded")
	for _, p := range snap.Problems() {
		s.log.Warn().Str("backend", s.backend.String()).Str("problem", p).Msg("inconsistent snapshot record")
	}
	return snap
}

// Snapshot returns a deep copy of the current state.
func (s *Storage) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Save writes the current state and reports the outcome. Mutating accessors
// save on their own; Save is for callers that need to know it succeeded.
func (s *Storage) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Save(ctx, s.snap)
}

// Close releases the backend.
func (s *Storage) Close() error {
	return s.backend.Close()
}

// persistLocked writes the snapshot; the caller holds s.mu.
func (s *Storage) persistLocked() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := s.backend.Save(ctx, s.snap); err != nil {
		s.log.Error().Err(err).Str("backend", s.backend.String()).Msg("failed to save snapshot")
	}
}
