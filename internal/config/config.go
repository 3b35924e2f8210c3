// Package config loads process configuration from environment variables and
// the optional feeds file. Loading is fail-open: invalid values fall back to
// defaults with a warning instead of refusing to start.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	// Port the API listens on. Loaded from PORT.
	Port int

	// CronSecret authenticates the external batch trigger. Loaded from
	// CRON_SECRET; empty disables the batch endpoint.
	CronSecret string

	// Version reported by the health endpoint. Loaded from APP_VERSION.
	Version string

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns production defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            8080,
		Version:         "dev",
		ShutdownTimeout: 15 * time.Second,
	}
}

// LoadServerConfig loads the server configuration from environment
// variables with fallback to defaults.
func LoadServerConfig() ServerConfig {
	cfg := DefaultServerConfig()

	if raw := os.Getenv("PORT"); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port < 1 || port > 65535 {
			slog.Warn("invalid PORT, using default",
				slog.String("value", raw),
				slog.Int("default", cfg.Port))
		} else {
			cfg.Port = port
		}
	}

	cfg.CronSecret = os.Getenv("CRON_SECRET")
	if cfg.CronSecret == "" {
		slog.Warn("CRON_SECRET not set, batch endpoint will reject all requests")
	}

	if v := os.Getenv("APP_VERSION"); v != "" {
		cfg.Version = v
	}

	if raw := os.Getenv("SHUTDOWN_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			slog.Warn("invalid SHUTDOWN_TIMEOUT, using default",
				slog.String("value", raw),
				slog.Duration("default", cfg.ShutdownTimeout))
		} else {
			cfg.ShutdownTimeout = d
		}
	}

	return cfg
}
