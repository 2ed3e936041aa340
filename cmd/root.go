// Package cmd implements the stepreplay CLI.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/stepreplay/internal/config"
)

var cfgPath string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stepreplay",
		Short: "Record-and-replay engine for web sessions",
		Long: "stepreplay replays recorded browser interaction steps against a live\n" +
			"Chrome tab: it resolves each step's locator, drives the element with\n" +
			"synthetic events, and survives full-page navigations mid-sequence.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default stepreplay.yaml)")

	cmd.AddCommand(runCmd())
	cmd.AddCommand(stepsCmd())
	cmd.AddCommand(statusCmd())
	cmd.AddCommand(versionCmd())
	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func resolveConfigPath() string {
	if cfgPath != "" {
		return cfgPath
	}
	return "stepreplay.yaml"
}

func loadConfig() *config.Config {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// applyReload applies the parts of a reloaded config that can change
// mid-process. Session-scoped knobs (poll interval, budgets, settle delays)
// are captured when a session is constructed and take effect on the next run.
func applyReload(cfg *config.Config) {
	setupLogging(cfg)
}

func setupLogging(cfg *config.Config) {
	var level slog.Level
	switch cfg.Log.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}
