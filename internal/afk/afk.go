// Package afk tracks members who declared themselves away: it marks their
// nickname, answers mentions of them and clears the status when they speak
// again.
package afk

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"server-warden/internal/apperr"
	"server-warden/internal/gateway"
	"server-warden/internal/storage"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// Marker prefixes the nickname of an AFK member.
	Marker        = "[AFK] "
	DefaultReason = "Not specified"
	maxNickLen    = 32
	deleteTimeout = 10 * time.Second
)

// Scheduler runs fn after delay, detached from the caller.
type Scheduler interface {
	Schedule(name string, delay time.Duration, fn func(ctx context.Context) error) error
}

type Options struct {
	NoticeTTL    time.Duration
	SuccessColor int
	WarnColor    int
}

type Engine struct {
	store *storage.Storage
	gw    gateway.Gateway
	sched Scheduler
	opts  Options
	log   zerolog.Logger
}

func New(store *storage.Storage, gw gateway.Gateway, sched Scheduler, opts Options, logger zerolog.Logger) *Engine {
	return &Engine{
		store: store,
		gw:    gw,
		sched: sched,
		opts:  opts,
		log:   logger.With().Str("component", "afk").Logger(),
	}
}

// Entry is one line of the guild listing.
type Entry struct {
	UserID string
	Reason string
}

// Set marks member as AFK in guildID and returns the stored reason. The
// nickname change is best effort.
func (e *Engine) Set(ctx context.Context, guildID string, member *discordgo.Member, reason string) (string, error) {
	if member == nil || member.User == nil {
		return "", apperr.New(apperr.CodeValidation, "❌ Could not resolve your member profile.")
	}
	userID := member.User.ID
	if _, ok := e.store.Afk(userID); ok {
		return "", apperr.New(apperr.CodeConflict, "❌ You're already AFK!")
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultReason
	}

	display := member.DisplayName()
	e.store.PutAfk(userID, storage.AfkRecord{GuildID: guildID, Reason: reason, OriginalNick: display})

	if !strings.Contains(display, Marker) {
		if err := e.gw.SetNickname(ctx, guildID, userID, MarkedNick(display)); err != nil {
			e.logNickError(err, guildID, userID, "failed to set AFK nickname")
		}
	}
	return reason, nil
}

// List returns the AFK members of guildID ordered by user id.
func (e *Engine) List(guildID string) ([]Entry, error) {
	recs := e.store.AfkInGuild(guildID)
	if len(recs) == 0 {
		return nil, apperr.New(apperr.CodeNotFound, "❌ No AFK users found in this server!")
	}
	out := make([]Entry, 0, len(recs))
	for user, rec := range recs {
		out = append(out, Entry{UserID: user, Reason: rec.Reason})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// HandleMessage clears the author's AFK status if set, then answers the
// first mention of an AFK member of the same guild.
func (e *Engine) HandleMessage(ctx context.Context, msg gateway.Message) {
	e.handleReturn(ctx, msg)
	e.handleMentions(ctx, msg)
}

func (e *Engine) handleReturn(ctx context.Context, msg gateway.Message) {
	rec, ok := e.store.Afk(msg.AuthorID)
	if !ok {
		return
	}
	e.store.RemoveAfk(msg.AuthorID)
	e.restoreNick(ctx, rec, msg.AuthorID)

	e.notice(ctx, msg.ChannelID, &discordgo.MessageEmbed{
		Description: fmt.Sprintf("👋 Welcome back <@%s>! Your AFK status has been removed.", msg.AuthorID),
		Color:       e.opts.SuccessColor,
	})
}

func (e *Engine) restoreNick(ctx context.Context, rec storage.AfkRecord, userID string) {
	member, err := e.gw.Member(ctx, rec.GuildID, userID)
	if err != nil {
		e.logNickError(err, rec.GuildID, userID, "failed to fetch returning member")
		return
	}
	if !strings.Contains(member.DisplayName(), Marker) {
		return
	}

	nick := rec.OriginalNick
	if member.User != nil && nick == member.User.DisplayName() {
		// The member had no guild nickname; clearing restores the account name.
		nick = ""
	}
	if err := e.gw.SetNickname(ctx, rec.GuildID, userID, nick); err != nil {
		e.logNickError(err, rec.GuildID, userID, "failed to restore nickname")
	}
}

func (e *Engine) handleMentions(ctx context.Context, msg gateway.Message) {
	seen := make(map[string]bool, len(msg.Mentions))
	for _, userID := range msg.Mentions {
		if seen[userID] {
			continue
		}
		seen[userID] = true

		rec, ok := e.store.Afk(userID)
		if !ok || rec.GuildID != msg.GuildID {
			continue
		}
		e.notice(ctx, msg.ChannelID, &discordgo.MessageEmbed{
			Description: fmt.Sprintf("😴 <@%s> is currently AFK: **%s**", userID, rec.Reason),
			Color:       e.opts.WarnColor,
		})
		return
	}
}

// notice posts embed and schedules its deletion after NoticeTTL.
func (e *Engine) notice(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) {
	id, err := e.gw.SendEmbed(ctx, channelID, embed)
	if err != nil {
		e.log.Warn().Err(err).Str("channel", channelID).Msg("failed to post AFK notice")
		return
	}

	name := "afk-notice:" + uuid.NewString()
	err = e.sched.Schedule(name, e.opts.NoticeTTL, func(jobCtx context.Context) error {
		ctx, cancel := context.WithTimeout(jobCtx, deleteTimeout)
		defer cancel()
		if err := e.gw.DeleteMessage(ctx, channelID, id); err != nil && !gateway.IsNotFound(err) {
			return err
		}
		return nil
	})
	if err != nil {
		e.log.Warn().Err(err).Str("channel", channelID).Msg("failed to schedule notice cleanup")
	}
}

func (e *Engine) logNickError(err error, guildID, userID, msg string) {
	ev := e.log.Warn()
	if gateway.IsPermission(err) || gateway.IsNotFound(err) {
		ev = e.log.Debug()
	}
	ev.Err(err).Str("guild", guildID).Str("user", userID).Msg(msg)
}

// MarkedNick prefixes display with Marker and truncates to the platform's
// nickname limit.
func MarkedNick(display string) string {
	nick := []rune(Marker + display)
	if len(nick) > maxNickLen {
		nick = nick[:maxNickLen]
	}
	return string(nick)
}
