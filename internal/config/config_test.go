package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("expected default output format text, got %q", cfg.Output.Format)
	}
	if cfg.Rates.File != "" {
		t.Errorf("expected built-in rate table by default, got %q", cfg.Rates.File)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected default log level warn, got %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TRAVELMATE_STORE_PATH", "/tmp/custom.db")
	t.Setenv("TRAVELMATE_OUTPUT_FORMAT", "json")
	t.Setenv("TRAVELMATE_OUTPUT_COLOR", "false")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Store.Path != "/tmp/custom.db" {
		t.Errorf("expected store path from env, got %q", cfg.Store.Path)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected json format from env, got %q", cfg.Output.Format)
	}
	if cfg.Output.Color {
		t.Error("expected color disabled from env")
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "travel-mate.json")
	body := `{"rates": {"file": "rates.hcl"}, "logging": {"level": "debug"}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Rates.File != "rates.hcl" {
		t.Errorf("expected rates file from config, got %q", cfg.Rates.File)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected debug level from config, got %q", cfg.Logging.Level)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("expected untouched default format, got %q", cfg.Output.Format)
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("Load returned error for missing file: %v", err)
	}
	if cfg.Output.Format != "text" {
		t.Errorf("expected defaults, got %q", cfg.Output.Format)
	}
}
