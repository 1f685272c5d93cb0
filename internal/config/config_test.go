package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("APIURL = %q, want default %q", cfg.APIURL, DefaultAPIURL)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "api_url: https://board.internal.example\nlog:\n  level: debug\n  file: /tmp/taskdeck.log\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "https://board.internal.example" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Log.File != "/tmp/taskdeck.log" {
		t.Errorf("Log.File = %q", cfg.Log.File)
	}
}

func TestLoadBrokenFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_url: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TASKDECK_API_URL", "https://override.example")
	t.Setenv("TASKDECK_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "https://override.example" {
		t.Errorf("APIURL = %q, want env override", cfg.APIURL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want env override", cfg.Log.Level)
	}
}

func TestEnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_url: https://from-file.example\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKDECK_API_URL", "https://from-env.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIURL != "https://from-env.example" {
		t.Errorf("APIURL = %q, want env to win", cfg.APIURL)
	}
}
