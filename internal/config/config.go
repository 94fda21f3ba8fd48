// Package config loads the bot's settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// ErrMissingToken is returned by ValidateForRun when no bot token is set
var ErrMissingToken = errors.New("DISCORD_TOKEN environment variable is required")

// Config holds every setting the bot reads from the environment
type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN"`
	ApplicationID string `env:"APPLICATION_ID"`

	// GuildID registers commands in one guild only, for development
	GuildID string `env:"GUILD_ID"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"file"`
	DataDir        string `env:"DATA_DIR" envDefault:"data"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// SQLitePath defaults to nomic.db inside DataDir
	SQLitePath string `env:"SQLITE_PATH"`

	ConfirmTimeout   time.Duration `env:"CONFIRM_TIMEOUT" envDefault:"30s"`
	ActivityDebounce time.Duration `env:"ACTIVITY_DEBOUNCE" envDefault:"10m"`
}

// Load reads the optional .env files, then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every command needs
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case BackendFile, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}
	if c.DataDir == "" {
		return errors.New("DATA_DIR cannot be empty")
	}
	if c.ConfirmTimeout <= 0 {
		return errors.New("CONFIRM_TIMEOUT must be positive")
	}
	if c.ActivityDebounce < 0 {
		return errors.New("ACTIVITY_DEBOUNCE cannot be negative")
	}
	return nil
}

// ValidateForRun checks the additional settings needed to connect to Discord
func (c *Config) ValidateForRun() error {
	if c.DiscordToken == "" {
		return ErrMissingToken
	}
	return c.Validate()
}

// DatabasePath returns where the SQLite database lives
func (c *Config) DatabasePath() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "nomic.db")
}
