package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Roots.Paths) != 1 || cfg.Watcher.DebounceInterval != 500*time.Millisecond {
		t.Fatalf("got %+v", cfg)
	}
}

func TestLoadFromParsesDurationsAndRoots(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"roots": {"paths": ["/a", "/b"]},
		"watcher": {"pollInterval": "2s", "debounceInterval": "250ms"},
		"output": {"format": "json"}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Roots.Paths) != 2 || cfg.Roots.Paths[0] != "/a" {
		t.Fatalf("roots = %+v", cfg.Roots)
	}
	if cfg.Watcher.PollInterval != 2*time.Second {
		t.Fatalf("pollInterval = %v", cfg.Watcher.PollInterval)
	}
	if cfg.Watcher.DebounceInterval != 250*time.Millisecond {
		t.Fatalf("debounceInterval = %v", cfg.Watcher.DebounceInterval)
	}
	if cfg.Output.Format != "json" {
		t.Fatalf("format = %q", cfg.Output.Format)
	}
}

func TestValidateNormalizesInvalidIntervals(t *testing.T) {
	cfg := &Config{}
	cfg.Validate()
	if cfg.Watcher.PollInterval != defaultPollInterval || cfg.Watcher.DebounceInterval != defaultDebounceInterval {
		t.Fatalf("got %+v", cfg.Watcher)
	}
	if len(cfg.Roots.Paths) == 0 {
		t.Fatal("expected default roots to be filled in")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := Default()
	cfg.Roots.Paths = []string{"/custom/root"}
	cfg.Watcher.DebounceInterval = 750 * time.Millisecond

	if err := Save(cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Roots.Paths) != 1 || loaded.Roots.Paths[0] != "/custom/root" {
		t.Fatalf("roots = %+v", loaded.Roots)
	}
	if loaded.Watcher.DebounceInterval != 750*time.Millisecond {
		t.Fatalf("debounceInterval = %v", loaded.Watcher.DebounceInterval)
	}
}
