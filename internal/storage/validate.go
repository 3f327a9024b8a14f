package storage

import (
	"fmt"
	"sort"
)

// Problems lists records a running bot would never write. The result is
// sorted; an empty result means the snapshot is consistent.
func (s *Snapshot) Problems() []string {
	var out []string
	for id := range s.BlockedUsers {
		if id == "" {
			out = append(out, "blacklistedUsers: empty user id")
		}
	}
	for id := range s.BlockedGuilds {
		if id == "" {
			out = append(out, "blacklistedServers: empty server id")
		}
	}
	for ch, st := range s.CountingChannels {
		switch {
		case st.Count < 0:
			out = append(out, fmt.Sprintf("countingChannels[%s]: negative count %d", ch, st.Count))
		case st.Count == 0 && st.LastUser != "":
			out = append(out, fmt.Sprintf("countingChannels[%s]: last user set at count 0", ch))
		case st.Count > 0 && st.LastUser == "":
			out = append(out, fmt.Sprintf("countingChannels[%s]: count %d without last user", ch, st.Count))
		}
	}
	for ch, st := range s.StickyMessages {
		if st.Text == "" {
			out = append(out, fmt.Sprintf("stickyMessages[%s]: empty message", ch))
		}
	}
	for user, rec := range s.AfkUsers {
		if rec.GuildID == "" {
			out = append(out, fmt.Sprintf("afkUsers[%s]: missing guild", user))
		}
	}
	sort.Strings(out)
	return out
}
