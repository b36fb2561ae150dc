package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// CLIFlags holds command-line overrides. A nil field means the flag was not given.
type CLIFlags struct {
	ConfigPath *string
	Addr       *string
	LogLevel   *string
	DSN        *string
	NatsURL    *string
}

// ParseFlags parses command-line arguments (without the program name).
// On -h or --help it writes usage to out and returns an error wrapping
// flag.ErrHelp.
func ParseFlags(args []string, out io.Writer) (CLIFlags, error) {
	fs := flag.NewFlagSet("notestream", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	var (
		configPath, addr, logLevel, dsn, natsURL string
	)
	fs.StringVar(&configPath, "config", "", "path to YAML config file")
	fs.StringVar(&configPath, "c", "", "shorthand for --config")
	fs.StringVar(&addr, "addr", "", "listen address")
	fs.StringVar(&addr, "a", "", "shorthand for --addr")
	fs.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&dsn, "dsn", "", "PostgreSQL DSN; empty uses the in-memory store")
	fs.StringVar(&natsURL, "nats-url", "", "NATS URL for the mutation relay")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(out, "Usage: notestream [flags]\n       notestream migrate <up|down|version> [flags]\n\nFlags:\n")
			fs.SetOutput(out)
			fs.PrintDefaults()
		}
		return CLIFlags{}, fmt.Errorf("parse flags: %w", err)
	}

	var flags CLIFlags
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "config", "c":
			flags.ConfigPath = &configPath
		case "addr", "a":
			flags.Addr = &addr
		case "log-level":
			flags.LogLevel = &logLevel
		case "dsn":
			flags.DSN = &dsn
		case "nats-url":
			flags.NatsURL = &natsURL
		}
	})
	return flags, nil
}

// LoadWithCLI loads configuration with the hierarchy
// defaults < YAML < ENV < CLI and returns the YAML path that was used.
func LoadWithCLI(flags CLIFlags) (*Config, string, error) {
	path := DefaultConfigFile
	if v := os.Getenv("NOTESTREAM_CONFIG"); v != "" {
		path = v
	}
	if flags.ConfigPath != nil {
		path = *flags.ConfigPath
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, path); err != nil {
		return nil, "", fmt.Errorf("config yaml: %w", err)
	}
	loadEnv(&cfg)
	applyCLI(&cfg, flags)

	if err := validate(&cfg); err != nil {
		return nil, "", fmt.Errorf("config validate: %w", err)
	}
	return &cfg, path, nil
}

// applyCLI overlays the non-nil flags onto cfg.
func applyCLI(cfg *Config, flags CLIFlags) {
	if flags.Addr != nil {
		cfg.Stream.Addr = *flags.Addr
	}
	if flags.LogLevel != nil {
		cfg.Logging.Level = *flags.LogLevel
	}
	if flags.DSN != nil {
		cfg.Postgres.DSN = *flags.DSN
	}
	if flags.NatsURL != nil {
		cfg.NATS.URL = *flags.NatsURL
	}
}
