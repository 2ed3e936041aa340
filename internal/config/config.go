// Package config loads and watches the replay service configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration. Zero values mean "use default";
// Load applies defaults after parsing.
type Config struct {
	Browser   BrowserConfig   `yaml:"browser"`
	Replay    ReplayConfig    `yaml:"replay"`
	Recording RecordingConfig `yaml:"recording"`
	Log       LogConfig       `yaml:"log"`

	// StepsFile is the default CSV path for run/steps commands.
	StepsFile string `yaml:"steps_file"`
}

// BrowserConfig controls the controlled Chrome instance.
type BrowserConfig struct {
	Headless bool `yaml:"headless"`
	// BinPath overrides browser auto-detection.
	BinPath string `yaml:"bin_path"`
	// DebugURL attaches to an already-running browser instead of launching.
	DebugURL string `yaml:"debug_url"`
	// PageLoadTimeoutMs bounds OPEN navigation waits.
	PageLoadTimeoutMs int `yaml:"page_load_timeout_ms"`
}

// ReplayConfig tunes resolution and pacing.
type ReplayConfig struct {
	PollIntervalMs   int  `yaml:"poll_interval_ms"`
	ResolveBudgetMs  int  `yaml:"resolve_budget_ms"`
	StepSettleMs     int  `yaml:"step_settle_ms"`
	PostLoadSettleMs int  `yaml:"post_load_settle_ms"`
	KeyDelayMs       int  `yaml:"key_delay_ms"`
	ContinueOnError  bool `yaml:"continue_on_error"`
}

// RecordingConfig tunes capture ingestion.
type RecordingConfig struct {
	CoalesceWindowMs int `yaml:"coalesce_window_ms"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.normalize()
	return cfg
}

// Load reads a YAML config file and applies defaults. A missing file is not
// an error: it yields Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.normalize()
	return cfg, nil
}

// normalize applies defaults and clamps nonsensical values. For the delay
// knobs, 0 means "default" and a negative value disables the delay.
func (c *Config) normalize() {
	if c.Browser.PageLoadTimeoutMs <= 0 {
		c.Browser.PageLoadTimeoutMs = 30000
	}
	if c.Replay.PollIntervalMs <= 0 {
		c.Replay.PollIntervalMs = 100
	}
	if c.Replay.ResolveBudgetMs <= 0 {
		c.Replay.ResolveBudgetMs = 15000
	}
	if c.Replay.StepSettleMs < 0 {
		c.Replay.StepSettleMs = 0
	} else if c.Replay.StepSettleMs == 0 {
		c.Replay.StepSettleMs = 300
	}
	if c.Replay.PostLoadSettleMs < 0 {
		c.Replay.PostLoadSettleMs = 0
	} else if c.Replay.PostLoadSettleMs == 0 {
		c.Replay.PostLoadSettleMs = 500
	}
	if c.Replay.KeyDelayMs < 0 {
		c.Replay.KeyDelayMs = 0
	} else if c.Replay.KeyDelayMs == 0 {
		c.Replay.KeyDelayMs = 30
	}
	if c.Recording.CoalesceWindowMs < 0 {
		c.Recording.CoalesceWindowMs = 0
	} else if c.Recording.CoalesceWindowMs == 0 {
		c.Recording.CoalesceWindowMs = 400
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.StepsFile == "" {
		c.StepsFile = "steps.csv"
	}
}

// Durations for the ms-denominated knobs.

func (c *BrowserConfig) PageLoadTimeout() time.Duration {
	return time.Duration(c.PageLoadTimeoutMs) * time.Millisecond
}

func (c *ReplayConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

func (c *ReplayConfig) ResolveBudget() time.Duration {
	return time.Duration(c.ResolveBudgetMs) * time.Millisecond
}

func (c *ReplayConfig) StepSettle() time.Duration {
	return time.Duration(c.StepSettleMs) * time.Millisecond
}

func (c *ReplayConfig) PostLoadSettle() time.Duration {
	return time.Duration(c.PostLoadSettleMs) * time.Millisecond
}

func (c *ReplayConfig) KeyDelay() time.Duration {
	return time.Duration(c.KeyDelayMs) * time.Millisecond
}

func (c *RecordingConfig) CoalesceWindow() time.Duration {
	return time.Duration(c.CoalesceWindowMs) * time.Millisecond
}
