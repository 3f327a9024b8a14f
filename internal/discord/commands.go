package discord

import (
	"context"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"server-warden/datastore"
	"server-warden/internal/command"
	"server-warden/pkg/cmd"

	"github.com/bwmarrin/discordgo"
)

// registerCommands syncs the guild's slash commands with the registry:
// obsolete ones are deleted, new or changed ones created.
func (b *Bot) registerCommands(ctx context.Context, guildID string) error {
	appID, err := b.appID(ctx)
	if err != nil {
		return err
	}

	remote, err := b.dg.ApplicationCommands(appID, guildID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("list commands: %w", err)
	}
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, c := range remote {
		remoteByName[c.Name] = c
	}

	local := buildCommandDefinitions(b.registry)
	cache := b.hashCache(guildID)
	hashes := loadCommandHashes(cache)

	b.deleteObsoleteCommands(ctx, appID, guildID, remoteByName, local, hashes)
	b.upsertChangedCommands(ctx, appID, guildID, local, remoteByName, hashes)

	if cache == nil {
		return nil
	}
	if err := cache.Save(hashes); err != nil {
		b.log.Warn().Err(err).Str("guild", guildID).Msg("failed to save command hashes")
	}
	return nil
}

// buildCommandDefinitions returns the slash definitions of every registered command.
func buildCommandDefinitions(r *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range r.GetAll() {
		if def := commandDefinition(c); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

func (b *Bot) deleteObsoleteCommands(ctx context.Context, appID, guildID string, remote map[string]*discordgo.ApplicationCommand, local []*discordgo.ApplicationCommand, hashes map[string]string) {
	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		localNames[d.Name] = struct{}{}
	}

	for name, rc := range remote {
		if _, exists := localNames[name]; exists {
			continue
		}
		b.log.Info().Str("guild", guildID).Str("command", name).Msg("deleting obsolete command")
		if err := b.dg.ApplicationCommandDelete(appID, guildID, rc.ID, discordgo.WithContext(ctx)); err != nil {
			b.log.Error().Err(err).Str("guild", guildID).Str("command", name).Msg("failed to delete command")
			continue
		}
		delete(hashes, name)
	}
}

// upsertChangedCommands creates commands whose hash differs from the cached
// one or that are missing remotely.
func (b *Bot) upsertChangedCommands(ctx context.Context, appID, guildID string, defs []*discordgo.ApplicationCommand, remote map[string]*discordgo.ApplicationCommand, hashes map[string]string) {
	var changed []*discordgo.ApplicationCommand
	for _, d := range defs {
		_, registered := remote[d.Name]
		if !registered || hashes[d.Name] != hashCommand(d) {
			changed = append(changed, d)
		}
	}
	if len(changed) == 0 {
		return
	}

	b.log.Info().Str("guild", guildID).Int("count", len(changed)).Msg("registering changed commands")
	for _, d := range changed {
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, d, discordgo.WithContext(ctx)); err != nil {
			b.log.Error().Err(err).Str("guild", guildID).Str("command", d.Name).Msg("failed to register command")
			continue
		}
		hashes[d.Name] = hashCommand(d)
		time.Sleep(25 * time.Millisecond)
	}
}

// commandDefinition extracts the slash definition from a registered command,
// walking through middleware wrappers.
func commandDefinition(c cmd.Command) *discordgo.ApplicationCommand {
	slash, ok := cmd.As[command.SlashProvider](c)
	if !ok {
		return nil
	}
	def := slash.SlashDefinition()
	if def == nil {
		return nil
	}
	if def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}

// appID returns the bot's application id, fetching it when State has none yet.
func (b *Bot) appID(ctx context.Context) (string, error) {
	if b.dg.State != nil && b.dg.State.User != nil && b.dg.State.User.ID != "" {
		return b.dg.State.User.ID, nil
	}
	u, err := b.dg.User("@me", discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("fetch bot user: %w", err)
	}
	return u.ID, nil
}

// --- Command hash cache ---

func (b *Bot) hashCache(guildID string) *datastore.DataStore {
	path := filepath.Join(b.commandCacheDir, guildID+".json")
	ds, err := datastore.NewWithConfig(&datastore.Config{FilePath: path, Logger: b.log})
	if err != nil {
		b.log.Warn().Err(err).Str("path", path).Msg("command hash cache unavailable")
		return nil
	}
	return ds
}

func loadCommandHashes(ds *datastore.DataStore) map[string]string {
	out := make(map[string]string)
	if ds == nil {
		return out
	}
	if err := ds.Load(&out); err != nil && !errors.Is(err, datastore.ErrNotExist) {
		return make(map[string]string)
	}
	return out
}

// --- Command hashing ---

// hashCommand returns a deterministic SHA-1 of a command's stable fields.
func hashCommand(c *discordgo.ApplicationCommand) string {
	stable := map[string]interface{}{
		"name":        c.Name,
		"description": c.Description,
		"type":        c.Type,
	}
	if c.DefaultMemberPermissions != nil {
		stable["permissions"] = *c.DefaultMemberPermissions
	}
	if len(c.Options) > 0 {
		stable["options"] = normalizeOptions(c.Options)
	}
	data, _ := json.Marshal(stable)
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func normalizeOptions(opts []*discordgo.ApplicationCommandOption) []map[string]interface{} {
	out := make([]map[string]interface{}, len(opts))
	for i, o := range opts {
		entry := map[string]interface{}{
			"name":        o.Name,
			"description": o.Description,
			"type":        o.Type,
			"required":    o.Required,
		}
		if len(o.ChannelTypes) > 0 {
			entry["channel_types"] = o.ChannelTypes
		}
		if len(o.Choices) > 0 {
			choices := make([]map[string]interface{}, len(o.Choices))
			for j, ch := range o.Choices {
				choices[j] = map[string]interface{}{"name": ch.Name, "value": ch.Value}
			}
			entry["choices"] = choices
		}
		if len(o.Options) > 0 {
			entry["options"] = normalizeOptions(o.Options)
		}
		out[i] = entry
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i]["name"].(string) < out[j]["name"].(string)
	})
	return out
}
