package storage

func (s *Storage) Sticky(channelID string) (StickyState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.snap.StickyMessages[channelID]
	return st, ok
}

func (s *Storage) PutSticky(channelID string, st StickyState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.StickyMessages[channelID] = st
	s.persistLocked()
}

func (s *Storage) RemoveSticky(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snap.StickyMessages[channelID]; !ok {
		return false
	}
	delete(s.snap.StickyMessages, channelID)
	s.persistLocked()
	return true
}

// Stickies returns a copy of every sticky keyed by channel id.
func (s *Storage) Stickies() map[string]StickyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]StickyState, len(s.snap.StickyMessages))
	for k, v := range s.snap.StickyMessages {
		out[k] = v
	}
	return out
}
