package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	HTTP     HTTPConfig
	GRPC     GRPCConfig
	API      APIConfig
	Session  SessionConfig
	Auth     AuthConfig
	Log      LogConfig
}

// DatabaseConfig contains database-related settings.
type DatabaseConfig struct {
	Path string `env:"DB_PATH" envDefault:"app.db"` // SQLite file holding sessions
}

// HTTPConfig contains web server settings.
type HTTPConfig struct {
	Address string `env:"HTTP_ADDRESS" envDefault:":3000"`
}

// GRPCConfig contains gRPC health server settings.
type GRPCConfig struct {
	Address string `env:"GRPC_ADDRESS" envDefault:":50051"`
}

// APIConfig points at the storefront backend.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8080"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"15s"`
}

// SessionConfig controls the session and flash cookies.
type SessionConfig struct {
	CookieName    string        `env:"SESSION_COOKIE_NAME" envDefault:"session"`
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	PurgeInterval time.Duration `env:"SESSION_PURGE_INTERVAL" envDefault:"10m"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`
	FlashSecret   string        `env:"FLASH_SECRET"`
}

// AuthConfig contains token settings.
type AuthConfig struct {
	// JWTSecret enables signature verification of session tokens when set.
	JWTSecret string `env:"JWT_SECRET"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

const devFlashSecret = "dev-flash-secret-change-me"

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if cfg.Session.FlashSecret == "" {
		return nil, fmt.Errorf("FLASH_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a fixed FLASH_SECRET when none is set.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	cfg, err := parse()
	if err != nil {
		return nil, err
	}
	if cfg.Session.FlashSecret == "" {
		cfg.Session.FlashSecret = devFlashSecret
	}
	return cfg, nil
}

func parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if strings.TrimSpace(cfg.API.BaseURL) == "" {
		return nil, fmt.Errorf("API_BASE_URL must not be empty")
	}
	if _, err := cfg.Log.SlogLevel(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SlogLevel maps LOG_LEVEL to a slog level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(l.Level))); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", l.Level, err)
	}
	return lvl, nil
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{DB: %s, HTTP: %s, gRPC: %s, API: %s, Session: %s/%s, Secrets: *** (masked) ***}",
		c.Database.Path, c.HTTP.Address, c.GRPC.Address, c.API.BaseURL, c.Session.CookieName, c.Session.TTL)
}
