// Package config provides environment-driven configuration for the studio server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	ListenHost     string
	Port           string
	MetricsPort    string
	CORSOrigins    []string
	LogLevel       string
	TypeDBAddress  string
	TypeDBUsername string
	TypeDBPassword Secret
	DatabaseURL    Secret
	DBMaxConns     int
	APIKey         Secret
	ExploreWorkers int
	FrameInterval  time.Duration
	DrainInterval  time.Duration
	SessionTTL     time.Duration
	MaxSessions    int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ListenHost:     envOrDefault("LISTEN_HOST", "127.0.0.1"),
		Port:           envOrDefault("PORT", "3040"),
		MetricsPort:    envOrDefault("METRICS_PORT", "9092"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		TypeDBAddress:  strings.TrimRight(envOrDefault("TYPEDB_ADDRESS", "http://localhost:8000"), "/"),
		TypeDBUsername: envOrDefault("TYPEDB_USERNAME", "admin"),
		TypeDBPassword: Secret(envOrDefault("TYPEDB_PASSWORD", "password")),
		DatabaseURL:    Secret(envOrDefault("DATABASE_URL", "")),
		APIKey:         Secret(envOrDefault("STUDIO_API_KEY", "")),
	}

	var err error

	if cfg.ExploreWorkers, err = envInt("EXPLORE_WORKERS", 4, 1, 16); err != nil {
		return nil, err
	}

	if cfg.MaxSessions, err = envInt("MAX_SESSIONS", 16, 1, 256); err != nil {
		return nil, err
	}

	if cfg.DBMaxConns, err = envInt("DB_MAX_CONNS", 5, 1, 100); err != nil {
		return nil, err
	}

	if cfg.FrameInterval, err = envDuration("FRAME_INTERVAL", 16*time.Millisecond); err != nil {
		return nil, err
	}

	if cfg.DrainInterval, err = envDuration("DRAIN_INTERVAL", 50*time.Millisecond); err != nil {
		return nil, err
	}

	if cfg.SessionTTL, err = envDuration("SESSION_TTL", 10*time.Minute); err != nil {
		return nil, err
	}

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3040")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the Prometheus listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

// HistoryEnabled reports whether a Postgres URL was configured for query history.
func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL.Value() != ""
}

// AuthEnabled reports whether the API requires a bearer key.
func (c *Config) AuthEnabled() bool {
	return c.APIKey.Value() != ""
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback, lo, hi int) (int, error) {
	v, err := strconv.Atoi(envOrDefault(key, strconv.Itoa(fallback)))
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}

	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback.String()))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 50ms: %w", key, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}

	return d, nil
}
