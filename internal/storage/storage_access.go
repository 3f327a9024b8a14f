package storage

func (s *Storage) IsUserBlocked(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.snap.BlockedUsers[userID]
	return ok
}

func (s *Storage) IsGuildBlocked(guildID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.snap.BlockedGuilds[guildID]
	return ok
}

// BlockUser adds userID to the block list and reports whether it was new.
func (s *Storage) BlockUser(userID string) bool {
	return s.addToSet(s.snap.BlockedUsers, userID)
}

// UnblockUser removes userID and reports whether it was present.
func (s *Storage) UnblockUser(userID string) bool {
	return s.removeFromSet(s.snap.BlockedUsers, userID)
}

func (s *Storage) BlockGuild(guildID string) bool {
	return s.addToSet(s.snap.BlockedGuilds, guildID)
}

func (s *Storage) UnblockGuild(guildID string) bool {
	return s.removeFromSet(s.snap.BlockedGuilds, guildID)
}

// BlockedUsers returns the blocked user ids, sorted.
func (s *Storage) BlockedUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setToSlice(s.snap.BlockedUsers)
}

// BlockedGuilds returns the blocked guild ids, sorted.
func (s *Storage) BlockedGuilds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return setToSlice(s.snap.BlockedGuilds)
}

func (s *Storage) addToSet(set map[string]struct{}, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := set[id]; ok {
		return false
	}
	set[id] = struct{}{}
	s.persistLocked()
	return true
}

func (s *Storage) removeFromSet(set map[string]struct{}, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := set[id]; !ok {
		return false
	}
	delete(set, id)
	s.persistLocked()
	return true
}
