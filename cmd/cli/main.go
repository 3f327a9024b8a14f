// cmd/cli/main.go is the operator tool. It works on the configured storage
// backend directly and must only be used while the bot is stopped.
package main

import (
	"context"
	"fmt"
	"os"

	"server-warden/internal/config"
	"server-warden/internal/storage"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// storageEnv is the storage part of the bot configuration. The CLI does not
// need a token, so it cannot use config.New.
type storageEnv struct {
	Driver      string `env:"STORAGE_DRIVER" envDefault:"file"`
	Path        string `env:"STORAGE_PATH" envDefault:"data.json"`
	DatabaseURL string `env:"DATABASE_URL"`
	Backups     int    `env:"STORAGE_BACKUPS" envDefault:"3"`
}

type app struct {
	storage storageEnv
	verbose bool
}

func main() {
	if _, err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var defaults storageEnv
	if err := env.Parse(&defaults); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd(defaults).ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(defaults storageEnv) *cobra.Command {
	a := &app{storage: defaults}

	root := &cobra.Command{
		Use:          "warden-cli",
		Short:        "Inspect and edit server-warden state",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.storage.Driver, "driver", defaults.Driver, "Storage driver: file, sqlite or postgres")
	root.PersistentFlags().StringVar(&a.storage.Path, "path", defaults.Path, "Data file or sqlite database path")
	root.PersistentFlags().StringVar(&a.storage.DatabaseURL, "database-url", defaults.DatabaseURL, "Postgres connection string")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log storage activity to stderr")

	root.AddCommand(
		a.dumpCmd(),
		a.validateCmd(),
		a.blacklistCmd(),
		a.countingCmd(),
	)
	return root
}

func (a *app) logger(cmd *cobra.Command) zerolog.Logger {
	if !a.verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
}

func (a *app) backend(ctx context.Context, cmd *cobra.Command) (storage.Backend, error) {
	return storage.OpenBackend(ctx, storage.BackendOptions{
		Driver:      a.storage.Driver,
		Path:        a.storage.Path,
		DatabaseURL: a.storage.DatabaseURL,
		Backups:     a.storage.Backups,
		Logger:      a.logger(cmd),
	})
}

// withStore opens the store, runs fn and closes it.
func (a *app) withStore(cmd *cobra.Command, fn func(*storage.Storage) error) error {
	ctx := cmd.Context()
	backend, err := a.backend(ctx, cmd)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	store := storage.New(ctx, backend, a.logger(cmd))
	defer store.Close()
	return fn(store)
}
