package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// minFrameInterval caps the render loop at roughly 250 frames per second.
const minFrameInterval = 4 * time.Millisecond

func (c *Config) validate() error {
	if err := c.validateNetwork(); err != nil {
		return err
	}

	if err := c.validateTypeDB(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	if err := c.validateTiming(); err != nil {
		return err
	}

	return nil
}

func (c *Config) validateNetwork() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid integer: %w", err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Loopback for local use, any-address for containers where the network
	// boundary is enforced externally.
	validHosts := map[string]bool{
		"127.0.0.1": true,
		"::1":       true,
		"localhost": true,
		"0.0.0.0":   true,
		"::":        true,
	}
	if !validHosts[c.ListenHost] {
		return fmt.Errorf("LISTEN_HOST must be a loopback address or 0.0.0.0/:: for containers (got %q)", c.ListenHost)
	}

	metricsPort, err := strconv.Atoi(c.MetricsPort)
	if err != nil {
		return fmt.Errorf("METRICS_PORT must be a valid integer: %w", err)
	}

	if metricsPort < 1 || metricsPort > 65535 {
		return fmt.Errorf("METRICS_PORT must be between 1 and 65535")
	}

	if metricsPort == port {
		return fmt.Errorf("METRICS_PORT must differ from PORT")
	}

	if c.ListenHost == "0.0.0.0" || c.ListenHost == "::" {
		if !c.AuthEnabled() {
			return fmt.Errorf("STUDIO_API_KEY is required when LISTEN_HOST is %q", c.ListenHost)
		}
	}

	return nil
}

func (c *Config) validateTypeDB() error {
	u, err := url.ParseRequestURI(c.TypeDBAddress)
	if err != nil {
		return fmt.Errorf("TYPEDB_ADDRESS is not a valid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("TYPEDB_ADDRESS scheme must be http:// or https://")
	}

	if u.Hostname() == "" {
		return fmt.Errorf("TYPEDB_ADDRESS must include a host")
	}

	if !isLocalhost(c.TypeDBAddress) && u.Scheme != "https" {
		return fmt.Errorf("TYPEDB_ADDRESS must use HTTPS for non-localhost servers")
	}

	if c.TypeDBUsername == "" {
		return fmt.Errorf("TYPEDB_USERNAME is required")
	}

	return nil
}

// validateDatabase checks DATABASE_URL when set. History is disabled without it.
func (c *Config) validateDatabase() error {
	if c.DatabaseURL.Value() == "" {
		return nil
	}

	dbURL, err := url.Parse(c.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}

	if dbURL.Scheme != "postgres" && dbURL.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL scheme must be postgres:// or postgresql://")
	}

	if dbURL.Hostname() == "" {
		return fmt.Errorf("DATABASE_URL must include a host")
	}

	dbHost := dbURL.Hostname()
	if dbHost != "localhost" && dbHost != "127.0.0.1" && dbHost != "::1" {
		sslmode := dbURL.Query().Get("sslmode")
		if sslmode == "disable" {
			return fmt.Errorf("DATABASE_URL sslmode=disable is not allowed for non-local host %q", dbHost)
		}
	}

	return nil
}

func (c *Config) validateCORS() error {
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain wildcard '*'")
		}
		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain glob characters (*?[]), got %q", origin)
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}

	return nil
}

func (c *Config) validateTiming() error {
	if c.FrameInterval < minFrameInterval {
		return fmt.Errorf("FRAME_INTERVAL must be at least %s", minFrameInterval)
	}

	if c.DrainInterval < c.FrameInterval {
		return fmt.Errorf("DRAIN_INTERVAL must not be shorter than FRAME_INTERVAL")
	}

	if c.SessionTTL < time.Minute {
		return fmt.Errorf("SESSION_TTL must be at least 1m")
	}

	return nil
}

// isLocalhost returns true if the given address points to a loopback address.
func isLocalhost(addr string) bool {
	u, err := url.Parse(addr)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
