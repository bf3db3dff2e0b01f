package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	cfg := Default()
	if cfg.APIBaseURL != DefaultAPIBaseURL || cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DataDir != "/tmp/xdg-data/tasktag" || cfg.Theme != "dark" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SessionDBPath() != "/tmp/xdg-data/tasktag/tasktag.db" {
		t.Fatalf("unexpected session db path: %s", cfg.SessionDBPath())
	}
}

func TestDefaultPathUsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	if got := DefaultPath(); got != "/tmp/xdg-config/tasktag/config.yaml" {
		t.Fatalf("unexpected config path: %s", got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("TASKTAG_API_URL", "https://api.example.com")
	t.Setenv("TASKTAG_DATA_DIR", "data/custom")
	t.Setenv("TASKTAG_TIMEOUT_SECONDS", "30")
	t.Setenv("TASKTAG_THEME", "LIGHT")
	t.Setenv("TASKTAG_DEBUG_LOG", "debug.log")

	cfg := FromEnv(Default())
	if cfg.APIBaseURL != "https://api.example.com" || cfg.DataDir != "data/custom" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.RequestTimeout != 30*time.Second || cfg.Theme != "light" || cfg.DebugLog != "debug.log" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("TASKTAG_TIMEOUT_SECONDS", "soon")
	t.Setenv("TASKTAG_THEME", "neon")

	base := Default()
	cfg := FromEnv(base)
	if cfg.RequestTimeout != base.RequestTimeout || cfg.Theme != base.Theme {
		t.Fatalf("invalid env should keep defaults: %+v", cfg)
	}

	t.Setenv("TASKTAG_TIMEOUT_SECONDS", "-4")
	if cfg := FromEnv(base); cfg.RequestTimeout != base.RequestTimeout {
		t.Fatalf("negative timeout should be ignored: %v", cfg.RequestTimeout)
	}
}

func TestWriteDefaultThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	want := Default()
	want.APIBaseURL = "https://tasks.example.com"
	want.RequestTimeout = 5 * time.Second
	want.Theme = "light"

	if err := WriteDefault(path, want, false); err != nil {
		t.Fatalf("write default: %v", err)
	}
	if err := WriteDefault(path, want, false); err == nil {
		t.Fatal("expected existing file to be kept")
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.APIBaseURL != want.APIBaseURL || got.RequestTimeout != want.RequestTimeout || got.Theme != "light" {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}

	t.Setenv("TASKTAG_API_URL", "http://override.local")
	got, err = Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.APIBaseURL != "http://override.local" {
		t.Fatalf("env should win over file, got %s", got.APIBaseURL)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.APIBaseURL != DefaultAPIBaseURL {
		t.Fatalf("expected default api url, got %s", got.APIBaseURL)
	}
}

func TestFromFileRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("api_url: [unclosed"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := FromFile(path, Default()); err == nil {
		t.Fatal("expected parse error")
	}
}
