package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Session   SessionConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StoreConfig holds file store configuration.
type StoreConfig struct {
	// Root is the directory all client paths are sandboxed beneath.
	Root string `envconfig:"STORE_ROOT" default:"uploads"`
	// StateDir holds the users/sessions JSON snapshots.
	StateDir string `envconfig:"STATE_DIR" default:"state"`
	// ExtraExtensions extends the static upload allow-list (comma-separated).
	ExtraExtensions []string `envconfig:"STORE_EXTRA_EXTENSIONS"`
	// WarnBytes is the total-size threshold for the storage warning signal.
	WarnBytes int64 `envconfig:"STORE_WARN_BYTES" default:"107374182400"`
	// CapacityBytes is the nominal capacity used for the usage percentage.
	CapacityBytes int64 `envconfig:"STORE_CAPACITY_BYTES" default:"1099511627776"`
}

// SessionConfig holds session store configuration.
type SessionConfig struct {
	TTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Store: StoreConfig{
			Root:          "uploads",
			StateDir:      "state",
			WarnBytes:     100 << 30,
			CapacityBytes: 1 << 40,
		},
		Session: SessionConfig{
			TTL: 24 * time.Hour,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
