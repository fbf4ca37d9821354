package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Path != DefaultPath {
		t.Fatalf("Path = %q", cfg.Path)
	}
	if cfg.Upcoming.Days != 3 {
		t.Fatalf("Upcoming.Days = %d", cfg.Upcoming.Days)
	}
	if cfg.Places.SearchURL != DefaultSearchURL {
		t.Fatalf("SearchURL = %q", cfg.Places.SearchURL)
	}
	if cfg.Places.Timeout != 15*time.Second {
		t.Fatalf("Timeout = %v", cfg.Places.Timeout)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	data := []byte("path: " + filepath.Join(dir, "db") + "\nupcoming:\n  days: 5\nplaces:\n  fetch_url: http://example.test/places\n")
	if err := os.WriteFile(filepath.Join(dir, ".notiq.yaml"), data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("NOTIQ_CONFIG_PATH", dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BasePath() != filepath.Join(dir, "db") {
		t.Fatalf("BasePath = %q", cfg.BasePath())
	}
	if cfg.Upcoming.Days != 5 {
		t.Fatalf("Upcoming.Days = %d", cfg.Upcoming.Days)
	}
	if cfg.Places.FetchURL != "http://example.test/places" {
		t.Fatalf("FetchURL = %q", cfg.Places.FetchURL)
	}
}

func TestLoadEnvOverridesPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("NOTIQ_CONFIG_PATH", dir)
	t.Setenv("NOTIQ_PATH", filepath.Join(dir, "envdb"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != filepath.Join(dir, "envdb") {
		t.Fatalf("Path = %q", cfg.Path)
	}
}
