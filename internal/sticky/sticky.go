// Package sticky keeps a configured message at the bottom of a channel by
// reposting it after every new message.
package sticky

import (
	"context"
	"sort"
	"unicode/utf8"

	"server-warden/internal/apperr"
	"server-warden/internal/gateway"
	"server-warden/internal/storage"

	"github.com/rs/zerolog"
)

// Header prefixes every posted sticky.
const Header = "__**Stickied Message:**__\n"

// maxMessageLen is the platform's limit for one message.
const maxMessageLen = 2000

const previewLen = 50

var errNotFound = apperr.New(apperr.CodeNotFound, "❌ No sticky message found in this channel.")

type Engine struct {
	store *storage.Storage
	gw    gateway.Gateway
	log   zerolog.Logger
}

func New(store *storage.Storage, gw gateway.Gateway, logger zerolog.Logger) *Engine {
	return &Engine{store: store, gw: gw, log: logger.With().Str("component", "sticky").Logger()}
}

// Entry is one line of the guild listing.
type Entry struct {
	ChannelID string
	Preview   string
	Active    bool
}

// Status renders the entry state for listings.
func (e Entry) Status() string {
	if e.Active {
		return "🟢 Active"
	}
	return "🔴 Stopped"
}

// Format returns the text posted for a sticky.
func Format(text string) string { return Header + text }

// Setup posts text in channelID and makes it the channel's active sticky.
// A stopped sticky is replaced and its last post deleted.
func (e *Engine) Setup(ctx context.Context, guildID, channelID, text string) error {
	if text == "" {
		return apperr.New(apperr.CodeValidation, "❌ Sticky message text cannot be empty.")
	}
	if utf8.RuneCountInString(Format(text)) > maxMessageLen {
		return apperr.New(apperr.CodeValidation, "❌ Sticky message is too long.")
	}

	prev, exists := e.store.Sticky(channelID)
	if exists && prev.Active {
		return apperr.New(apperr.CodeConflict, "❌ A sticky message is already active in this channel. Stop or remove it first.")
	}

	id, err := e.gw.SendMessage(ctx, channelID, Format(text))
	if err != nil {
		return apperr.Wrap(apperr.CodeTransient, "❌ Failed to set up sticky message.", err)
	}

	e.store.PutSticky(channelID, storage.StickyState{Text: text, MessageID: id, Active: true, GuildID: guildID})

	if exists && prev.MessageID != "" {
		e.deleteBestEffort(ctx, channelID, prev.MessageID)
	}
	return nil
}

// Stop deactivates the channel's sticky. Stopping a stopped sticky succeeds.
func (e *Engine) Stop(channelID string) error {
	st, ok := e.store.Sticky(channelID)
	if !ok {
		return errNotFound
	}
	if !st.Active {
		return nil
	}
	st.Active = false
	e.store.PutSticky(channelID, st)
	return nil
}

// Start reposts a stopped sticky and reactivates it.
func (e *Engine) Start(ctx context.Context, channelID string) error {
	st, ok := e.store.Sticky(channelID)
	if !ok {
		return errNotFound
	}
	if st.Active {
		return apperr.New(apperr.CodeConflict, "❌ Sticky message is already active.")
	}

	id, err := e.gw.SendMessage(ctx, channelID, Format(st.Text))
	if err != nil {
		return apperr.Wrap(apperr.CodeTransient, "❌ Failed to restart sticky message.", err)
	}

	old := st.MessageID
	st.MessageID = id
	st.Active = true
	e.store.PutSticky(channelID, st)

	if old != "" {
		e.deleteBestEffort(ctx, channelID, old)
	}
	return nil
}

// Remove deletes the channel's sticky and, best effort, its last post.
func (e *Engine) Remove(ctx context.Context, channelID string) error {
	st, ok := e.store.Sticky(channelID)
	if !ok {
		return errNotFound
	}
	if st.MessageID != "" {
		e.deleteBestEffort(ctx, channelID, st.MessageID)
	}
	e.store.RemoveSticky(channelID)
	return nil
}

// List returns the stickies set up in guildID ordered by channel id.
// Stickies stored without a guild are resolved through the gateway.
func (e *Engine) List(ctx context.Context, guildID string) []Entry {
	var out []Entry
	for channelID, st := range e.store.Stickies() {
		owner := st.GuildID
		if owner == "" {
			g, err := e.gw.ChannelGuild(ctx, channelID)
			if err != nil {
				e.log.Debug().Err(err).Str("channel", channelID).Msg("cannot resolve sticky guild")
				continue
			}
			owner = g
		}
		if owner != guildID {
			continue
		}
		out = append(out, Entry{ChannelID: channelID, Preview: preview(st.Text), Active: st.Active})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out
}

// HandleMessage reposts the active sticky of msg's channel so it stays last.
// It reports whether the channel has an active sticky.
func (e *Engine) HandleMessage(ctx context.Context, msg gateway.Message) bool {
	st, ok := e.store.Sticky(msg.ChannelID)
	if !ok || !st.Active {
		return false
	}

	if st.MessageID != "" {
		e.deleteBestEffort(ctx, msg.ChannelID, st.MessageID)
	}

	id, err := e.gw.SendMessage(ctx, msg.ChannelID, Format(st.Text))
	if err != nil {
		e.log.Error().Err(err).Str("channel", msg.ChannelID).Msg("failed to repost sticky")
		st.MessageID = ""
		e.store.PutSticky(msg.ChannelID, st)
		return true
	}

	st.MessageID = id
	e.store.PutSticky(msg.ChannelID, st)
	return true
}

func (e *Engine) deleteBestEffort(ctx context.Context, channelID, messageID string) {
	err := e.gw.DeleteMessage(ctx, channelID, messageID)
	switch {
	case err == nil, gateway.IsNotFound(err):
	case gateway.IsPermission(err):
		e.log.Info().Err(err).Str("channel", channelID).Msg("no permission to delete old sticky")
	default:
		e.log.Warn().Err(err).Str("channel", channelID).Str("message", messageID).Msg("failed to delete old sticky")
	}
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLen {
		return text
	}
	return string([]rune(text)[:previewLen]) + "..."
}
