package cmd

import (
	"context"
	"log/slog"
	"testing"

	"github.com/nextlevelbuilder/stepreplay/internal/config"
)

func TestApplyReload_SwitchesLogLevel(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	cfg := config.Default()
	cfg.Log.Level = "debug"
	applyReload(cfg)
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug logging not enabled after reload to level debug")
	}

	cfg.Log.Level = "error"
	applyReload(cfg)
	if slog.Default().Enabled(context.Background(), slog.LevelWarn) {
		t.Error("warn logging still enabled after reload to level error")
	}
}
