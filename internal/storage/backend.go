package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// ErrNoSnapshot is returned by a Backend that has never been saved to.
var ErrNoSnapshot = errors.New("storage: no snapshot stored")

// Backend loads and overwrites the whole snapshot. Implementations keep no
// history.
type Backend interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
	Close() error
	String() string
}

// Driver names accepted by OpenBackend.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// BackendOptions selects and configures a Backend.
type BackendOptions struct {
	Driver      string
	Path        string // file and sqlite
	DatabaseURL string // postgres
	Backups     int    // file only
	Logger      zerolog.Logger
}

// OpenBackend opens the backend named by opts.Driver.
func OpenBackend(ctx context.Context, opts BackendOptions) (Backend, error) {
	switch opts.Driver {
	case DriverFile, "":
		return NewFileBackend(opts.Path, opts.Backups, opts.Logger)
	case DriverSQLite:
		return OpenSQLBackend(ctx, DriverSQLite, opts.Path, opts.Logger)
	case DriverPostgres:
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres storage requires a database url")
		}
		return OpenSQLBackend(ctx, DriverPostgres, opts.DatabaseURL, opts.Logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}
