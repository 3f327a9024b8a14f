package storage

import (
	"encoding/json"
	"fmt"
	"sort"
)

// CountingState is the progress of one counting channel. LastUser is empty
// exactly when Count is zero.
type CountingState struct {
	Count    int64  `json:"count"`
	LastUser string `json:"lastUser,omitempty"`
}

// StickyState is the sticky configuration of one channel. MessageID is the
// id of the most recent successful post, or empty.
type StickyState struct {
	Text      string `json:"message"`
	MessageID string `json:"messageId,omitempty"`
	Active    bool   `json:"isActive"`
	GuildID   string `json:"guildId,omitempty"`
}

// AfkRecord is the away status of one user, pinned to the guild it was set in.
type AfkRecord struct {
	GuildID      string `json:"guildId"`
	Reason       string `json:"reason"`
	OriginalNick string `json:"originalNick"`
}

// Snapshot is the complete persisted state.
type Snapshot struct {
	BlockedUsers     map[string]struct{}
	BlockedGuilds    map[string]struct{}
	CountingChannels map[string]CountingState
	StickyMessages   map[string]StickyState
	AfkUsers         map[string]AfkRecord
}

// NewSnapshot returns an empty snapshot with every collection allocated.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		BlockedUsers:     map[string]struct{}{},
		BlockedGuilds:    map[string]struct{}{},
		CountingChannels: map[string]CountingState{},
		StickyMessages:   map[string]StickyState{},
		AfkUsers:         map[string]AfkRecord{},
	}
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	for k := range s.BlockedUsers {
		out.BlockedUsers[k] = struct{}{}
	}
	for k := range s.BlockedGuilds {
		out.BlockedGuilds[k] = struct{}{}
	}
	for k, v := range s.CountingChannels {
		out.CountingChannels[k] = v
	}
	for k, v := range s.StickyMessages {
		out.StickyMessages[k] = v
	}
	for k, v := range s.AfkUsers {
		out.AfkUsers[k] = v
	}
	return out
}

// normalize repairs records that violate the counting invariant, which can
// only come from hand-edited files.
func (s *Snapshot) normalize() {
	for ch, st := range s.CountingChannels {
		if st.Count <= 0 {
			s.CountingChannels[ch] = CountingState{}
		}
	}
}

// pair is a map entry serialized as a two-element JSON array.
type pair[V any] struct {
	Key   string
	Value V
}

func (p pair[V]) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{p.Key, p.Value})
}

func (p *pair[V]) UnmarshalJSON(b []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("expected [key, value] pair, got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return fmt.Errorf("pair key: %w", err)
	}
	if err := json.Unmarshal(raw[1], &p.Value); err != nil {
		return fmt.Errorf("pair value for %q: %w", p.Key, err)
	}
	return nil
}

type wireSnapshot struct {
	BlockedUsers     []string              `json:"blacklistedUsers"`
	BlockedGuilds    []string              `json:"blacklistedServers"`
	CountingChannels []pair[CountingState] `json:"countingChannels"`
	StickyMessages   []pair[StickyState]   `json:"stickyMessages"`
	AfkUsers         []pair[AfkRecord]     `json:"afkUsers"`
}

// MarshalJSON writes sets as id arrays and maps as [key, value] pair arrays,
// sorted by key so unchanged state serializes to identical bytes.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	w := wireSnapshot{
		BlockedUsers:     setToSlice(s.BlockedUsers),
		BlockedGuilds:    setToSlice(s.BlockedGuilds),
		CountingChannels: mapToPairs(s.CountingChannels),
		StickyMessages:   mapToPairs(s.StickyMessages),
		AfkUsers:         mapToPairs(s.AfkUsers),
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts the layout written by MarshalJSON. Missing fields
// decode as empty collections; duplicate keys keep the last value.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var w wireSnapshot
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*s = *NewSnapshot()
	for _, id := range w.BlockedUsers {
		s.BlockedUsers[id] = struct{}{}
	}
	for _, id := range w.BlockedGuilds {
		s.BlockedGuilds[id] = struct{}{}
	}
	for _, p := range w.CountingChannels {
		s.CountingChannels[p.Key] = p.Value
	}
	for _, p := range w.StickyMessages {
		s.StickyMessages[p.Key] = p.Value
	}
	for _, p := range w.AfkUsers {
		s.AfkUsers[p.Key] = p.Value
	}
	s.normalize()
	return nil
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func mapToPairs[V any](m map[string]V) []pair[V] {
	out := make([]pair[V], 0, len(m))
	for k, v := range m {
		out = append(out, pair[V]{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
