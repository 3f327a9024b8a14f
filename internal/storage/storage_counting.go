package storage

// Counting returns the state of a counting channel.
func (s *Storage) Counting(channelID string) (CountingState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.snap.CountingChannels[channelID]
	return st, ok
}

// PutCounting stores st for channelID, replacing any previous state.
func (s *Storage) PutCounting(channelID string, st CountingState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.Count <= 0 {
		st = CountingState{}
	}
	s.snap.CountingChannels[channelID] = st
	s.persistLocked()
}

// RemoveCounting deletes the channel and reports whether it was configured.
func (s *Storage) RemoveCounting(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snap.CountingChannels[channelID]; !ok {
		return false
	}
	delete(s.snap.CountingChannels, channelID)
	s.persistLocked()
	return true
}
