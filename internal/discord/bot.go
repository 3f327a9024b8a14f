package discord

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"server-warden/internal/access"
	"server-warden/internal/afk"
	"server-warden/internal/command"
	"server-warden/internal/config"
	"server-warden/internal/counting"
	"server-warden/internal/gateway"
	"server-warden/internal/sticky"
	"server-warden/internal/storage"
	"server-warden/pkg/cmd"
	"server-warden/pkg/cooldown"
	"server-warden/pkg/jobmgr"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

const eventBuffer = 256

// Bot owns the Discord session and the single loop that handles every
// message and interaction in arrival order.
type Bot struct {
	dg              *discordgo.Session
	cfg             *config.Config
	store           *storage.Storage
	registry        *cmd.Registry
	pipeline        *Pipeline
	dispatcher      *Dispatcher
	commandCacheDir string
	log             zerolog.Logger

	events chan any
	done   chan struct{}
}

// NewBot wires the engines to a new session. Commands come from registry;
// jobs runs delayed notice cleanup.
func NewBot(cfg *config.Config, store *storage.Storage, registry *cmd.Registry, jobs *jobmgr.Manager, logger zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	gw := gateway.NewDiscord(dg)
	gate := access.New(store, cfg.OwnerID)
	countingEngine := counting.New(store, gw, logger)
	stickyEngine := sticky.New(store, gw, logger)
	afkEngine := afk.New(store, gw, jobs, afk.Options{
		NoticeTTL:    cfg.NoticeTTL,
		SuccessColor: cfg.SuccessColor,
		WarnColor:    cfg.WarnColor,
	}, logger)

	services := &command.Services{
		Config:   cfg,
		Store:    store,
		Gate:     gate,
		Counting: countingEngine,
		Sticky:   stickyEngine,
		Afk:      afkEngine,
		Gateway:  gw,
		Feedback: cooldown.New(cfg.FeedbackCooldown),
		Registry: registry,
		State:    dg.State,
		Started:  time.Now(),
		Latency:  dg.HeartbeatLatency,
		Log:      logger,
	}

	return &Bot{
		dg:              dg,
		cfg:             cfg,
		store:           store,
		registry:        registry,
		pipeline:        NewPipeline(gate, countingEngine, afkEngine, stickyEngine, logger),
		dispatcher:      NewDispatcher(registry, services, logger),
		commandCacheDir: filepath.Join(filepath.Dir(cfg.StoragePath), "commands"),
		log:             logger,
		events:          make(chan any, eventBuffer),
		done:            make(chan struct{}),
	}, nil
}

// Run opens the session and handles events until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onGuildCreate)
	b.dg.AddHandler(b.onMessageCreate)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if err := b.dg.Close(); err != nil {
			b.log.Warn().Err(err).Msg("failed to close session")
		}
	}()

	b.loop(ctx)
	b.log.Info().Msg("shutdown signal received, event loop stopped")
	return nil
}

// loop handles one event at a time, each to completion.
func (b *Bot) loop(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.events:
			b.handle(ctx, ev)
		}
	}
}

func (b *Bot) handle(ctx context.Context, ev any) {
	evCtx, cancel := context.WithTimeout(ctx, b.cfg.EventTimeout)
	defer cancel()

	switch e := ev.(type) {
	case *discordgo.MessageCreate:
		b.pipeline.HandleMessage(evCtx, gateway.FromDiscord(e.Message))
	case *discordgo.InteractionCreate:
		b.dispatcher.Dispatch(evCtx, e, newResponder(evCtx, b.dg, e.Interaction))
	}
}

// enqueue hands ev to the loop. discordgo runs handlers on their own
// goroutines, so blocking here only holds up this one event.
func (b *Bot) enqueue(ev any) {
	select {
	case b.events <- ev:
	case <-b.done:
	}
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil {
		return
	}
	b.enqueue(m)
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	b.enqueue(i)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Int("commands", b.registry.Len()).
		Msg("discord bot is running")
}

// onGuildCreate fires for every guild on connect and whenever the bot joins
// one. Blocked guilds stay joined and get their commands too, so removing a
// guild from the block list takes effect without a new invite.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	logger := b.log.With().Str("guild", g.ID).Str("name", g.Name).Logger()
	if b.store.IsGuildBlocked(g.ID) {
		logger.Debug().Msg("guild is blacklisted, commands will be denied")
	}

	if !b.cfg.InitSlashCommands {
		logger.Debug().Msg("slash command registration skipped")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := b.registerCommands(ctx, g.ID); err != nil {
		logger.Error().Err(err).Msg("failed to register slash commands")
	}
}
