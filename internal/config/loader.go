package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "notestream.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if v := os.Getenv("NOTESTREAM_CONFIG"); v != "" {
		path = v
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is operator supplied
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Stream.Addr, "NOTESTREAM_ADDR")
	setDuration(&cfg.Stream.WriteTimeout, "NOTESTREAM_WRITE_TIMEOUT")
	setDuration(&cfg.Stream.HeartbeatInterval, "NOTESTREAM_HEARTBEAT_INTERVAL")
	setInt64(&cfg.Stream.MaxOnboarding, "NOTESTREAM_MAX_ONBOARDING")
	setInt(&cfg.Stream.FanoutWorkers, "NOTESTREAM_FANOUT_WORKERS")
	setString(&cfg.Stream.CORSOrigin, "NOTESTREAM_CORS_ORIGIN")

	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "NOTESTREAM_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "NOTESTREAM_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "NOTESTREAM_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "NOTESTREAM_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "NOTESTREAM_PG_HEALTH_CHECK")

	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.Stream, "NOTESTREAM_NATS_STREAM")

	setInt64(&cfg.Cache.MaxSizeMB, "NOTESTREAM_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.TTL, "NOTESTREAM_CACHE_TTL")

	setString(&cfg.Logging.Level, "NOTESTREAM_LOG_LEVEL")
	setString(&cfg.Logging.Service, "NOTESTREAM_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "NOTESTREAM_LOG_ASYNC")

	setInt(&cfg.Breaker.MaxFailures, "NOTESTREAM_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "NOTESTREAM_BREAKER_TIMEOUT")

	setFloat64(&cfg.Rate.RequestsPerSecond, "NOTESTREAM_RATE_RPS")
	setInt(&cfg.Rate.Burst, "NOTESTREAM_RATE_BURST")
	setDuration(&cfg.Rate.CleanupInterval, "NOTESTREAM_RATE_CLEANUP_INTERVAL")
	setDuration(&cfg.Rate.MaxIdleTime, "NOTESTREAM_RATE_MAX_IDLE_TIME")

	setString(&cfg.OTel.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.OTel.ServiceName, "OTEL_SERVICE_NAME")
	setBool(&cfg.OTel.Insecure, "NOTESTREAM_OTEL_INSECURE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Stream.Addr == "" {
		return errors.New("stream.addr is required")
	}
	if cfg.Stream.WriteTimeout <= 0 {
		return errors.New("stream.write_timeout must be > 0")
	}
	if cfg.Stream.HeartbeatInterval < 0 {
		return errors.New("stream.heartbeat_interval must be >= 0")
	}
	if cfg.Stream.MaxOnboarding < 1 {
		return errors.New("stream.max_onboarding must be >= 1")
	}
	if cfg.Stream.FanoutWorkers < 1 {
		return errors.New("stream.fanout_workers must be >= 1")
	}
	if cfg.Postgres.DSN != "" && cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.NATS.URL != "" && cfg.NATS.Stream == "" {
		return errors.New("nats.stream is required when nats.url is set")
	}
	if cfg.Cache.MaxSizeMB < 0 {
		return errors.New("cache.max_size_mb must be >= 0")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Rate.Burst < 1 {
		return errors.New("rate.burst must be >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
