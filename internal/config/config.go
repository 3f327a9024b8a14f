package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DiscordToken      string `env:"DISCORD_TOKEN,required,notEmpty"`
	OwnerID           string `env:"OWNER_ID,required,notEmpty"`
	FeedbackChannelID string `env:"FEEDBACK_CHANNEL_ID"`

	StorageDriver  string `env:"STORAGE_DRIVER" envDefault:"file"`
	StoragePath    string `env:"STORAGE_PATH" envDefault:"data.json"`
	DatabaseURL    string `env:"DATABASE_URL"`
	StorageBackups int    `env:"STORAGE_BACKUPS" envDefault:"3"`

	InitSlashCommands bool          `env:"INIT_SLASH_COMMANDS" envDefault:"true"`
	EventTimeout      time.Duration `env:"EVENT_TIMEOUT" envDefault:"10s"`
	NoticeTTL         time.Duration `env:"NOTICE_TTL" envDefault:"5s"`
	FeedbackCooldown  time.Duration `env:"FEEDBACK_COOLDOWN" envDefault:"1m"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"console"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"20"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"28"`

	// Embed colors, decimal.
	SuccessColor int `env:"SUCCESS_COLOR" envDefault:"5763719"`
	ErrorColor   int `env:"ERROR_COLOR" envDefault:"15548997"`
	WarnColor    int `env:"WARN_COLOR" envDefault:"16705372"`
	InfoColor    int `env:"INFO_COLOR" envDefault:"5793266"`
}

// LoadDotEnv reads .env files into the process environment. A missing file is
// not an error; the returned bool reports whether any file was read.
func LoadDotEnv(files ...string) (bool, error) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("load .env: %w", err)
	}
	return true, nil
}

// New parses the environment into a Config and validates it.
func New() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case "file", "sqlite":
		if c.StoragePath == "" {
			return fmt.Errorf("STORAGE_PATH is required for the %s driver", c.StorageDriver)
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.StorageBackups < 0 {
		return fmt.Errorf("STORAGE_BACKUPS must not be negative")
	}
	if c.EventTimeout <= 0 {
		return fmt.Errorf("EVENT_TIMEOUT must be positive")
	}
	if c.NoticeTTL < 0 {
		return fmt.Errorf("NOTICE_TTL must not be negative")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}
