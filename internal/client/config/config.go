package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds runtime settings for the taskflow CLI.
//
// Units: every interval is a time.Duration (e.g., 3*time.Second).
type Config struct {
	ServerBaseURL  string `env:"SERVER_BASE_URL, overwrite" validate:"required,url"`
	DatabasePath   string `env:"DATABASE_PATH, overwrite" validate:"required_if=StorageBackend sqlite"`
	StorageBackend string `env:"STORAGE_BACKEND, overwrite" validate:"oneof=sqlite redis"`
	RedisAddr      string `env:"REDIS_ADDR, overwrite" validate:"required_if=StorageBackend redis"`
	RedisDB        int    `env:"REDIS_DB, overwrite" validate:"gte=0"`
	CallbackAddr   string `env:"CALLBACK_ADDR, overwrite" validate:"required,hostname_port"`

	RequestTimeout      time.Duration `env:"REQUEST_TIMEOUT, overwrite" validate:"gt=0"`
	OnlineCheckInterval time.Duration `env:"ONLINE_CHECK_INTERVAL, overwrite" validate:"gt=0"`
	CacheTTL            time.Duration `env:"CACHE_TTL, overwrite" validate:"gt=0"`
	CacheMaxSize        int           `env:"CACHE_MAX_SIZE, overwrite" validate:"gt=0"`

	LogLevel  string `env:"LOG_LEVEL, overwrite"`
	LogFormat string `env:"LOG_FORMAT, overwrite" validate:"oneof=console json text"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://localhost:8080/api"
	c.DatabasePath = "taskflow.db"
	c.StorageBackend = StorageSQLite
	c.RedisAddr = "localhost:6379"
	c.RedisDB = 0
	c.CallbackAddr = "localhost:3000"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.CacheTTL = 5 * time.Minute
	c.CacheMaxSize = 500
	c.LogLevel = "info"
	c.LogFormat = "console"
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Load constructs a Config, applies defaults, then overlays values from JSON
// (if present), the environment and command-line flags found in args. Later
// sources take precedence over earlier ones.
func Load(ctx context.Context, args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(ctx, cfg, lookuper); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
