package storage

func (s *Storage) Afk(userID string) (AfkRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.snap.AfkUsers[userID]
	return rec, ok
}

func (s *Storage) PutAfk(userID string, rec AfkRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.AfkUsers[userID] = rec
	s.persistLocked()
}

func (s *Storage) RemoveAfk(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.snap.AfkUsers[userID]; !ok {
		return false
	}
	delete(s.snap.AfkUsers, userID)
	s.persistLocked()
	return true
}

// AfkInGuild returns the AFK records pinned to guildID keyed by user id.
func (s *Storage) AfkInGuild(guildID string) map[string]AfkRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]AfkRecord)
	for user, rec := range s.snap.AfkUsers {
		if rec.GuildID == guildID {
			out[user] = rec
		}
	}
	return out
}
