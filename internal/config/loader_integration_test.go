package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Integration tests that exercise the full LoadFrom pipeline:
// defaults < YAML < environment variables.

func TestLoadFrom_FullHierarchy(t *testing.T) {
	// YAML sets addr=:9090, env overrides to :7070. Env must win.
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(yamlPath, []byte(`
stream:
  addr: ":9090"
logging:
  level: "debug"
`), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NOTESTREAM_ADDR", ":7070")
	t.Setenv("NOTESTREAM_LOG_LEVEL", "warn")

	cfg, err := LoadFrom(yamlPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Stream.Addr != ":7070" {
		t.Errorf("env should override YAML: got addr %q, want :7070", cfg.Stream.Addr)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env should override YAML: got level %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadFrom_YAMLPartialOverride(t *testing.T) {
	// YAML sets only logging.level; all other fields keep defaults.
	t.Setenv("NOTESTREAM_ADDR", "")
	t.Setenv("NOTESTREAM_WRITE_TIMEOUT", "")

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(yamlPath, []byte(`
logging:
  level: "error"
`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(yamlPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Logging.Level != "error" {
		t.Errorf("got level %q, want error", cfg.Logging.Level)
	}
	if cfg.Stream.Addr != ":12345" {
		t.Errorf("default addr should be :12345, got %q", cfg.Stream.Addr)
	}
	if cfg.Stream.WriteTimeout != 5*time.Second {
		t.Errorf("default write timeout should be 5s, got %v", cfg.Stream.WriteTimeout)
	}
}

func TestLoadFrom_EnvInvalidValues(t *testing.T) {
	// Invalid env values are silently ignored; defaults survive.
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(yamlPath, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("NOTESTREAM_WRITE_TIMEOUT", "not-a-duration")
	t.Setenv("NOTESTREAM_MAX_ONBOARDING", "many")
	t.Setenv("NOTESTREAM_RATE_BURST", "lots")

	cfg, err := LoadFrom(yamlPath)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Stream.WriteTimeout != 5*time.Second {
		t.Errorf("invalid duration should be ignored, got %v", cfg.Stream.WriteTimeout)
	}
	if cfg.Stream.MaxOnboarding != 1 {
		t.Errorf("invalid int should be ignored, got %d", cfg.Stream.MaxOnboarding)
	}
	if cfg.Rate.Burst != 100 {
		t.Errorf("invalid int should be ignored, got %d", cfg.Rate.Burst)
	}
}

func TestLoadFrom_ValidationFailure(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(yamlPath, []byte(`
stream:
  max_onboarding: 0
`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NOTESTREAM_MAX_ONBOARDING", "")

	if _, err := LoadFrom(yamlPath); err == nil {
		t.Fatal("expected validation error")
	}
}
