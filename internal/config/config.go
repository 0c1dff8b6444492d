// Package config defines the tracker's process configuration and its loader.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// BusyTimeoutMS bounds how long a writer waits on a locked database.
	BusyTimeoutMS int `koanf:"busy_timeout_ms"`

	// RedisURL enables the stats cache when set, e.g. redis://localhost:6379/0.
	RedisURL string `koanf:"redis_url"`

	// StatsCacheTTLSeconds is the lifetime of a cached stats table.
	StatsCacheTTLSeconds int `koanf:"stats_cache_ttl_seconds"`

	// IdempotencyCacheSize bounds the remembered Idempotency-Key values.
	IdempotencyCacheSize int `koanf:"idempotency_cache_size"`

	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// RequestTimeoutSeconds caps a single HTTP request.
	RequestTimeoutSeconds int `koanf:"request_timeout_seconds"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":8080",
		DBPath:                "pmv.db",
		BusyTimeoutMS:         5000,
		StatsCacheTTLSeconds:  30,
		IdempotencyCacheSize:  10_000,
		CORSOrigins:           []string{"*"},
		RequestTimeoutSeconds: 15,
	}
}

// BusyTimeout returns BusyTimeoutMS as a duration.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.BusyTimeoutMS) * time.Millisecond
}

// StatsCacheTTL returns StatsCacheTTLSeconds as a duration.
func (c *Config) StatsCacheTTL() time.Duration {
	return time.Duration(c.StatsCacheTTLSeconds) * time.Second
}

// RequestTimeout returns RequestTimeoutSeconds as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
