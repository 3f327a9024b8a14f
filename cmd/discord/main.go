// cmd/discord/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "server-warden/internal/command/afk"
	_ "server-warden/internal/command/blacklist"
	_ "server-warden/internal/command/channel"
	_ "server-warden/internal/command/core"
	_ "server-warden/internal/command/info"

	"server-warden/internal/config"
	"server-warden/internal/discord"
	"server-warden/internal/logging"
	"server-warden/internal/storage"
	"server-warden/pkg/cmd"
	"server-warden/pkg/jobmgr"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// drainGrace is added to the notice lifetime when waiting for pending
// deletions on shutdown.
const drainGrace = 5 * time.Second

func main() {
	loaded, err := config.LoadDotEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read .env")
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger, logCloser, err := logging.Setup(logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	}, os.Stderr)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}

	if !loaded {
		logger.Debug().Msg("no .env file found, using process environment")
	}

	err = run(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("discord bot stopped with error")
	} else {
		logger.Info().Msg("discord bot exited cleanly")
	}
	logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run owns every resource opened after logging and releases them before
// returning, so main can exit without skipping deferred cleanup.
func run(cfg *config.Config, logger zerolog.Logger) error {
	logger.Info().Str("storage", cfg.StorageDriver).Msg("starting server-warden")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	backend, err := storage.OpenBackend(ctx, storage.BackendOptions{
		Driver:      cfg.StorageDriver,
		Path:        cfg.StoragePath,
		DatabaseURL: cfg.DatabaseURL,
		Backups:     cfg.StorageBackups,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	store := storage.New(ctx, backend, logger)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close storage")
		}
	}()

	jobs := jobmgr.NewManager(func(msg string) {
		logger.Debug().Str("job", msg).Msg("job status")
	})
	defer func() {
		drainCtx, stop := context.WithTimeout(context.Background(), cfg.NoticeTTL+drainGrace)
		defer stop()
		if err := jobs.Drain(drainCtx); err != nil {
			logger.Warn().Err(err).Msg("pending notice deletions cancelled")
		}
	}()

	bot, err := discord.NewBot(cfg, store, cmd.DefaultRegistry, jobs, logger)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bot.Run(ctx)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
		return <-errCh
	case err := <-errCh:
		return err
	}
}
