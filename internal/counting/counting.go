// Package counting runs the counting game: members of a configured channel
// take turns posting the next integer, and any wrong number or double turn
// resets the count.
package counting

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"server-warden/internal/apperr"
	"server-warden/internal/gateway"
	"server-warden/internal/storage"

	"github.com/rs/zerolog"
)

const (
	ReactAccept = "✅"
	ReactReject = "❌"
)

type Engine struct {
	store *storage.Storage
	gw    gateway.Gateway
	log   zerolog.Logger
}

func New(store *storage.Storage, gw gateway.Gateway, logger zerolog.Logger) *Engine {
	return &Engine{store: store, gw: gw, log: logger.With().Str("component", "counting").Logger()}
}

// Status is a read-only view of a counting channel.
type Status struct {
	Count    int64
	LastUser string
	Next     int64
}

// Set configures channelID as a counting channel starting from zero. An
// existing channel is reset.
func (e *Engine) Set(channelID string) {
	e.store.PutCounting(channelID, storage.CountingState{})
}

// Remove stops counting in channelID.
func (e *Engine) Remove(channelID string) error {
	if !e.store.RemoveCounting(channelID) {
		return apperr.New(apperr.CodeNotFound, fmt.Sprintf("❌ <#%s> is not a counting channel.", channelID))
	}
	return nil
}

func (e *Engine) Status(channelID string) (Status, error) {
	st, ok := e.store.Counting(channelID)
	if !ok {
		return Status{}, apperr.New(apperr.CodeNotFound, fmt.Sprintf("❌ <#%s> is not a counting channel.", channelID))
	}
	return Status{Count: st.Count, LastUser: st.LastUser, Next: st.Count + 1}, nil
}

// HandleMessage evaluates msg if its channel is a counting channel and
// reports whether it did. State is persisted before any reaction is sent.
func (e *Engine) HandleMessage(ctx context.Context, msg gateway.Message) bool {
	st, ok := e.store.Counting(msg.ChannelID)
	if !ok {
		return false
	}

	expected := st.Count + 1
	n, isNumber := ParseCount(msg.Content)
	if isNumber && n == expected && msg.AuthorID != st.LastUser {
		e.store.PutCounting(msg.ChannelID, storage.CountingState{Count: expected, LastUser: msg.AuthorID})
		e.react(ctx, msg, ReactAccept)
		return true
	}

	reached := st.Count
	e.store.PutCounting(msg.ChannelID, storage.CountingState{})
	e.react(ctx, msg, ReactReject)

	text := fmt.Sprintf("❌ **Count reset!** <@%s> ruined it at **%d**. The next number is **1**.", msg.AuthorID, reached)
	if _, err := e.gw.SendMessage(ctx, msg.ChannelID, text); err != nil {
		e.log.Warn().Err(err).Str("channel", msg.ChannelID).Msg("failed to announce count reset")
	}
	e.log.Debug().Str("channel", msg.ChannelID).Str("user", msg.AuthorID).Int64("reached", reached).Msg("count reset")
	return true
}

func (e *Engine) react(ctx context.Context, msg gateway.Message, emoji string) {
	if err := e.gw.React(ctx, msg.ChannelID, msg.ID, emoji); err != nil {
		e.log.Warn().Err(err).Str("channel", msg.ChannelID).Str("message", msg.ID).Msg("failed to react")
	}
}

// ParseCount accepts the canonical decimal form of a positive integer after
// trimming surrounding whitespace: no sign, no leading zeros, no fraction.
func ParseCount(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
