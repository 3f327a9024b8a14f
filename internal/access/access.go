// Package access decides whether a user or guild may use the bot at all and
// lets the owner edit the two block lists.
package access

import (
	"server-warden/internal/apperr"
	"server-warden/internal/storage"
)

// Denial texts shown to blocked invokers.
const (
	UserBlockedMessage  = "❌ You are blacklisted from using this bot."
	GuildBlockedMessage = "❌ This server is blacklisted from using this bot."
	OwnerOnlyMessage    = "❌ This command is only available to the bot owner."
)

type Gate struct {
	store   *storage.Storage
	ownerID string
}

func New(store *storage.Storage, ownerID string) *Gate {
	return &Gate{store: store, ownerID: ownerID}
}

// Check returns a Permission error carrying the denial text when userID or
// guildID is blocked. The user check wins when both are.
func (g *Gate) Check(userID, guildID string) error {
	if userID != "" && g.store.IsUserBlocked(userID) {
		return apperr.New(apperr.CodePermission, UserBlockedMessage)
	}
	if guildID != "" && g.store.IsGuildBlocked(guildID) {
		return apperr.New(apperr.CodePermission, GuildBlockedMessage)
	}
	return nil
}

// Allowed reports whether Check would pass. Used on the message path where
// denials are silent.
func (g *Gate) Allowed(userID, guildID string) bool {
	return g.Check(userID, guildID) == nil
}

func (g *Gate) IsOwner(userID string) bool {
	return g.ownerID != "" && userID == g.ownerID
}

// RequireOwner returns a Permission error unless actorID is the owner.
func (g *Gate) RequireOwner(actorID string) error {
	if !g.IsOwner(actorID) {
		return apperr.New(apperr.CodePermission, OwnerOnlyMessage)
	}
	return nil
}

// BlockUser adds userID to the user block list. The owner cannot be blocked.
func (g *Gate) BlockUser(actorID, userID string) error {
	if err := g.RequireOwner(actorID); err != nil {
		return err
	}
	if userID == "" {
		return apperr.New(apperr.CodeValidation, "❌ Please provide either a user or user ID.")
	}
	if g.IsOwner(userID) {
		return apperr.New(apperr.CodeValidation, "❌ The bot owner cannot be blacklisted.")
	}
	g.store.BlockUser(userID)
	return nil
}

func (g *Gate) UnblockUser(actorID, userID string) error {
	if err := g.RequireOwner(actorID); err != nil {
		return err
	}
	if userID == "" {
		return apperr.New(apperr.CodeValidation, "❌ Please provide either a user or user ID.")
	}
	g.store.UnblockUser(userID)
	return nil
}

func (g *Gate) BlockGuild(actorID, guildID string) error {
	if err := g.RequireOwner(actorID); err != nil {
		return err
	}
	if guildID == "" {
		return apperr.New(apperr.CodeValidation, "❌ Please provide a server ID.")
	}
	g.store.BlockGuild(guildID)
	return nil
}

func (g *Gate) UnblockGuild(actorID, guildID string) error {
	if err := g.RequireOwner(actorID); err != nil {
		return err
	}
	if guildID == "" {
		return apperr.New(apperr.CodeValidation, "❌ Please provide a server ID.")
	}
	g.store.UnblockGuild(guildID)
	return nil
}

func (g *Gate) BlockedUsers() []string  { return g.store.BlockedUsers() }
func (g *Gate) BlockedGuilds() []string { return g.store.BlockedGuilds() }
