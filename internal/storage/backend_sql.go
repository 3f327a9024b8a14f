package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its base FS and dialect in package state.
var migrateMu sync.Mutex

// snapshotRow is the fixed primary key of the single snapshot row.
const snapshotRow = 1

// SQLBackend keeps the snapshot as one JSON row in sqlite or postgres.
type SQLBackend struct {
	db     *sql.DB
	driver string
	target string
}

// OpenSQLBackend opens the database, checks it is reachable and applies the
// embedded migrations.
func OpenSQLBackend(ctx context.Context, driver, dsn string, logger zerolog.Logger) (*SQLBackend, error) {
	var sqlDriver, dialect string
	switch driver {
	case DriverSQLite:
		sqlDriver, dialect = "sqlite", "sqlite3"
	case DriverPostgres:
		sqlDriver, dialect = "pgx", "postgres"
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	if err := migrate(ctx, db, dialect, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &SQLBackend{db: db, driver: driver, target: redact(dsn)}, nil
}

func migrate(ctx context.Context, db *sql.DB, dialect string, logger zerolog.Logger) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger})
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

func (b *SQLBackend) Load(ctx context.Context) (*Snapshot, error) {
	var data string
	err := b.db.QueryRowContext(ctx, b.rebind("SELECT data FROM snapshots WHERE id = ?"), snapshotRow).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("select snapshot: %w", err)
	}

	snap := NewSnapshot()
	if err := json.Unmarshal([]byte(data), snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (b *SQLBackend) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	q := b.rebind(`INSERT INTO snapshots (id, data, updated_at) VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`)
	if _, err := b.db.ExecContext(ctx, q, snapshotRow, string(data), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

func (b *SQLBackend) Close() error { return b.db.Close() }

func (b *SQLBackend) String() string { return b.driver + ":" + b.target }

// rebind rewrites ? placeholders to $n for postgres.
func (b *SQLBackend) rebind(q string) string {
	if b.driver != DriverPostgres {
		return q
	}
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&sb, "$%d", n)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// redact drops credentials from a connection string before it is logged.
func redact(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}

type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Debug().Msgf(strings.TrimSpace(format), v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Msgf(strings.TrimSpace(format), v...)
}
