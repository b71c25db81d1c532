package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	configDirName  = ".config/attnwatch"
	configFileName = "config.json"
)

// rawConfig is the JSON-unmarshaling intermediary: durations arrive as
// strings on the wire (e.g. "500ms") and are parsed during merge, the way
// the teacher's loader keeps raw and typed representations separate.
type rawConfig struct {
	Roots   rawRootsConfig   `json:"roots"`
	Watcher rawWatcherConfig `json:"watcher"`
	Output  rawOutputConfig  `json:"output"`
}

type rawRootsConfig struct {
	Paths []string `json:"paths"`
}

type rawWatcherConfig struct {
	PollInterval     string `json:"pollInterval"`
	DebounceInterval string `json:"debounceInterval"`
}

type rawOutputConfig struct {
	Format string `json:"format"`
}

// Load loads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from a specific path. If path is empty, uses
// ~/.config/attnwatch/config.json. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, configDirName, configFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	mergeConfig(cfg, &raw)

	for i, p := range cfg.Roots.Paths {
		cfg.Roots.Paths[i] = ExpandPath(p)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeConfig(cfg *Config, raw *rawConfig) {
	if len(raw.Roots.Paths) > 0 {
		cfg.Roots.Paths = raw.Roots.Paths
	}
	if raw.Watcher.PollInterval != "" {
		if d, err := time.ParseDuration(raw.Watcher.PollInterval); err == nil {
			cfg.Watcher.PollInterval = d
		}
	}
	if raw.Watcher.DebounceInterval != "" {
		if d, err := time.ParseDuration(raw.Watcher.DebounceInterval); err == nil {
			cfg.Watcher.DebounceInterval = d
		}
	}
	if raw.Output.Format != "" {
		cfg.Output.Format = raw.Output.Format
	}
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// ConfigPath returns the default config file path.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, configDirName, configFileName)
}
