// Package config loads and saves the attnwatch host's configuration: the
// roots to watch and the tunables governing debounce and poll behavior.
// This configuration belongs to the CLI host, not the core (§6: "no
// configuration loading" is part of the core's explicit out-of-scope list).
package config

import "time"

// Config is the root configuration structure for the attnwatch host.
type Config struct {
	Roots   RootsConfig   `json:"roots"`
	Watcher WatcherConfig `json:"watcher"`
	Output  OutputConfig  `json:"output"`
}

// RootsConfig lists the directories to watch.
type RootsConfig struct {
	Paths []string `json:"paths"`
}

// WatcherConfig tunes the observer and debounce timings.
type WatcherConfig struct {
	PollInterval     time.Duration `json:"pollInterval"`
	DebounceInterval time.Duration `json:"debounceInterval"`
}

// OutputConfig configures the CLI host's rendering.
type OutputConfig struct {
	Format string `json:"format"` // "table", "plain", "json", "jsonl"
}

const (
	defaultPollInterval     = time.Second
	defaultDebounceInterval = 500 * time.Millisecond
)

// Default returns the default configuration: one root at
// ~/.copilot/session-state, 1s polling, 500ms debounce, table output.
func Default() *Config {
	return &Config{
		Roots: RootsConfig{
			Paths: []string{"~/.copilot/session-state"},
		},
		Watcher: WatcherConfig{
			PollInterval:     defaultPollInterval,
			DebounceInterval: defaultDebounceInterval,
		},
		Output: OutputConfig{
			Format: "table",
		},
	}
}

// Validate normalizes out-of-range tunables rather than erroring — a
// misconfigured interval should degrade to a sane default, not crash the host.
func (c *Config) Validate() error {
	if c.Watcher.PollInterval <= 0 {
		c.Watcher.PollInterval = defaultPollInterval
	}
	if c.Watcher.DebounceInterval <= 0 {
		c.Watcher.DebounceInterval = defaultDebounceInterval
	}
	if len(c.Roots.Paths) == 0 {
		c.Roots.Paths = Default().Roots.Paths
	}
	return nil
}
