package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that renders durations as
// strings, mirroring rawConfig on the way out.
type saveConfig struct {
	Roots   RootsConfig       `json:"roots"`
	Watcher saveWatcherConfig `json:"watcher"`
	Output  OutputConfig      `json:"output"`
}

type saveWatcherConfig struct {
	PollInterval     string `json:"pollInterval"`
	DebounceInterval string `json:"debounceInterval"`
}

func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		Roots: cfg.Roots,
		Watcher: saveWatcherConfig{
			PollInterval:     cfg.Watcher.PollInterval.String(),
			DebounceInterval: cfg.Watcher.DebounceInterval.String(),
		},
		Output: cfg.Output,
	}
}

// Save writes cfg to ~/.config/attnwatch/config.json.
func Save(cfg *Config) error {
	path := ConfigPath()
	if path == "" {
		return os.ErrInvalid
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(toSaveConfig(cfg), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
