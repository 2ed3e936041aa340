package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Replay.PollInterval() != 100*time.Millisecond {
		t.Errorf("PollInterval = %v, want 100ms", cfg.Replay.PollInterval())
	}
	if cfg.Replay.ResolveBudget() != 15*time.Second {
		t.Errorf("ResolveBudget = %v, want 15s", cfg.Replay.ResolveBudget())
	}
	if cfg.Replay.ContinueOnError {
		t.Error("ContinueOnError must default to false")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.StepsFile != "steps.csv" {
		t.Errorf("StepsFile = %q", cfg.StepsFile)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
browser:
  headless: true
  page_load_timeout_ms: 5000
replay:
  poll_interval_ms: 50
  resolve_budget_ms: 2000
  step_settle_ms: -1
  continue_on_error: true
log:
  level: debug
steps_file: flows/login.csv
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Browser.Headless || cfg.Browser.PageLoadTimeout() != 5*time.Second {
		t.Errorf("browser = %+v", cfg.Browser)
	}
	if cfg.Replay.PollInterval() != 50*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.Replay.PollInterval())
	}
	if cfg.Replay.StepSettle() != 0 {
		t.Errorf("StepSettle = %v, negative must disable the delay", cfg.Replay.StepSettle())
	}
	if cfg.Replay.PostLoadSettle() != 500*time.Millisecond {
		t.Errorf("PostLoadSettle = %v, unset must keep the default", cfg.Replay.PostLoadSettle())
	}
	if !cfg.Replay.ContinueOnError || cfg.Log.Level != "debug" || cfg.StepsFile != "flows/login.csv" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("replay: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed YAML must error")
	}
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	reloaded := make(chan *Config, 1)
	w.OnChange(func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Log.Level != "debug" {
			t.Errorf("reloaded level = %q, want debug", cfg.Log.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reload never fired")
	}
}
