// Command attnwatch is the CLI host around the attention core: it discovers
// roots, wires the core's subscriber interface to terminal output, and owns
// everything the core declares out of scope (§1) — configuration, root
// discovery, and user-facing formatting.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nrobbins/attnwatch/internal/attention"
	"github.com/nrobbins/attnwatch/internal/cli"
	"github.com/nrobbins/attnwatch/internal/config"
	"github.com/nrobbins/attnwatch/internal/conversation"
)

// Version is set at build time via ldflags.
var Version = ""

var rootCmd = &cobra.Command{
	Use:   "attnwatch",
	Short: "Watch coding-agent conversation logs for events that need your attention",
}

func init() {
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "attnwatch: %v\n", err)
		os.Exit(1)
	}
}

func newWatchCmd() *cobra.Command {
	var (
		configPath string
		roots      []string
		debugFlag  bool
		formatFlag string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Continuously watch roots and print conversations that need attention",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if len(roots) > 0 {
				cfg.Roots.Paths = roots
			}
			if formatFlag != "" {
				cfg.Output.Format = formatFlag
			}

			logLevel := slog.LevelInfo
			if debugFlag {
				logLevel = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

			out := cmd.OutOrStdout()
			var mu sync.Mutex
			watchers := make([]*attention.Watcher, 0, len(cfg.Roots.Paths))

			// Each root's initial recursive fsnotify registration and
			// baseline snapshot is independent I/O; start them concurrently
			// rather than one after another.
			var eg errgroup.Group
			for _, root := range cfg.Roots.Paths {
				root := root
				eg.Go(func() error {
					w := attention.New(
						attention.WithDebounceInterval(cfg.Watcher.DebounceInterval),
						attention.WithPollInterval(cfg.Watcher.PollInterval),
						attention.WithLogger(logger.With("root", root)),
					)
					err := w.Start(root, func(convs []conversation.Conversation) {
						mu.Lock()
						defer mu.Unlock()
						if err := cli.Write(out, convs, cfg.Output.Format); err != nil {
							logger.Error("render failed", "err", err)
						}
					})
					if err != nil {
						logger.Error("failed to start watcher", "root", root, "err", err)
						return nil
					}
					mu.Lock()
					watchers = append(watchers, w)
					mu.Unlock()
					return nil
				})
			}
			eg.Wait()

			if len(watchers) == 0 {
				return fmt.Errorf("no roots could be watched")
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			<-sigCh

			for _, w := range watchers {
				w.Stop()
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to config file")
	flags.StringArrayVar(&roots, "root", nil, "root directory to watch (repeatable; overrides config)")
	flags.BoolVar(&debugFlag, "debug", false, "enable debug logging")
	flags.StringVar(&formatFlag, "format", "", "output format: table, plain, json, or jsonl (overrides config)")

	return cmd
}

func newScanCmd() *cobra.Command {
	var (
		configPath string
		roots      []string
		formatFlag string
		all        bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single scan pass and print the result (no watermark, no watching)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if len(roots) > 0 {
				cfg.Roots.Paths = roots
			}
			if formatFlag != "" {
				cfg.Output.Format = formatFlag
			}

			var combined []conversation.Conversation
			for _, root := range cfg.Roots.Paths {
				convs, err := conversation.Scan(root)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: scan %s: %v\n", root, err)
					continue
				}
				for _, c := range convs {
					if all || c.Status.Code.AttentionRequired() {
						combined = append(combined, c)
					}
				}
			}

			return cli.Write(cmd.OutOrStdout(), combined, cfg.Output.Format)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to config file")
	flags.StringArrayVar(&roots, "root", nil, "root directory to scan (repeatable; overrides config)")
	flags.StringVar(&formatFlag, "format", "", "output format: table, plain, json, or jsonl (overrides config)")
	flags.BoolVar(&all, "all", false, "include conversations that don't currently need attention")

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), effectiveVersion(Version))
			return nil
		},
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func effectiveVersion(v string) string {
	if v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}

	var revision string
	var dirty bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			dirty = setting.Value == "true"
		}
	}
	if revision != "" {
		ver := "devel+" + revision
		if len(ver) > 20 {
			ver = ver[:20]
		}
		if dirty {
			ver += "+dirty"
		}
		return ver
	}
	return "devel"
}
