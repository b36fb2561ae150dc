// Package config provides hierarchical configuration loading for notestream.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the notestream service.
type Config struct {
	Stream   Stream   `yaml:"stream"`
	Postgres Postgres `yaml:"postgres"`
	NATS     NATS     `yaml:"nats"`
	Cache    Cache    `yaml:"cache"`
	Logging  Logging  `yaml:"logging"`
	Breaker  Breaker  `yaml:"breaker"`
	Rate     Rate     `yaml:"rate"`
	OTel     OTel     `yaml:"otel"`
}

// Stream holds the event stream server configuration.
type Stream struct {
	Addr              string        `yaml:"addr"`               // Listen address (default: ":12345")
	WriteTimeout      time.Duration `yaml:"write_timeout"`      // Per-connection write deadline (default: 5s)
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"` // Keep-alive comment interval; 0 disables (default: 30s)
	MaxOnboarding     int64         `yaml:"max_onboarding"`     // Subscribers handshaking concurrently (default: 1)
	FanoutWorkers     int           `yaml:"fanout_workers"`     // Concurrent writes per broadcast (default: 16)
	CORSOrigin        string        `yaml:"cors_origin"`
}

// Postgres holds PostgreSQL connection configuration.
// An empty DSN selects the in-memory note store.
type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	HealthCheck     time.Duration `yaml:"health_check"`
}

// NATS holds NATS JetStream configuration for the mutation relay.
// An empty URL disables the relay.
type NATS struct {
	URL    string `yaml:"url"`
	Stream string `yaml:"stream"`
}

// Cache holds the note lookup cache configuration.
type Cache struct {
	MaxSizeMB int64         `yaml:"max_size_mb"`
	TTL       time.Duration `yaml:"ttl"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
}

// Breaker holds circuit breaker configuration for note lookups.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Rate holds rate limiter configuration for the REST API.
type Rate struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Burst             int           `yaml:"burst"`
	CleanupInterval   time.Duration `yaml:"cleanup_interval"`
	MaxIdleTime       time.Duration `yaml:"max_idle_time"`
}

// OTel holds OpenTelemetry exporter configuration.
// An empty Endpoint keeps the global no-op providers.
type OTel struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Stream: Stream{
			Addr:              ":12345",
			WriteTimeout:      5 * time.Second,
			HeartbeatInterval: 30 * time.Second,
			MaxOnboarding:     1,
			FanoutWorkers:     16,
			CORSOrigin:        "*",
		},
		Postgres: Postgres{
			MaxConns:        10,
			MinConns:        1,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 10 * time.Minute,
			HealthCheck:     time.Minute,
		},
		NATS: NATS{
			Stream: "NOTESTREAM",
		},
		Cache: Cache{
			MaxSizeMB: 16,
			TTL:       10 * time.Minute,
		},
		Logging: Logging{
			Level:   "info",
			Service: "notestream",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Rate: Rate{
			RequestsPerSecond: 10,
			Burst:             100,
			CleanupInterval:   5 * time.Minute,
			MaxIdleTime:       10 * time.Minute,
		},
		OTel: OTel{
			ServiceName: "notestream",
			Insecure:    true,
		},
	}
}
