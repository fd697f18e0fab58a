// Package config provides unified configuration loading for gridbench.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/windyasd/lightsim2grid/internal/envname"
)

// GridbenchConfig contains all gridbench configuration settings.
type GridbenchConfig struct {
	// Bench contains default settings for benchmark runs.
	Bench BenchConfig `json:"bench" yaml:"bench"`

	// Store contains settings for the run-history store.
	Store StoreConfig `json:"store" yaml:"store"`

	// Logging contains settings for operational and step-trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// BenchConfig configures benchmark run defaults, overridable per run
// from the command line.
type BenchConfig struct {
	// StepBudget is the default maximum number of steps per run.
	StepBudget int `json:"step_budget" yaml:"step_budget"`

	// EpisodeID is the default episode to replay, one-based. Zero
	// keeps the environment's current episode.
	EpisodeID int `json:"episode_id" yaml:"episode_id"`

	// KeepForecast leaves forecast computation enabled during runs.
	KeepForecast bool `json:"keep_forecast" yaml:"keep_forecast"`

	// ExportDir, when set, is where Arrow exports of run buffers land.
	ExportDir string `json:"export_dir,omitempty" yaml:"export_dir,omitempty"`
}

// StoreConfig configures the run-history store.
type StoreConfig struct {
	// Path is the SQLite database file. Empty disables history.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoggingConfig configures gridbench's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or
	// "trace". "debug" enables per-step trace logging.
	Level string `json:"level" yaml:"level"`
}

// Default returns a GridbenchConfig with sensible defaults.
func Default() *GridbenchConfig {
	return &GridbenchConfig{
		Bench: BenchConfig{
			StepBudget: 1000,
			EpisodeID:  1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a file and environment variables.
// Order: defaults -> config file -> environment. An empty path falls
// back to ./gridbench.yaml when that file exists; environment
// overrides apply either way.
func Load(path string) (*GridbenchConfig, error) {
	cfg := Default()

	if path == "" {
		if p, ok := defaultPath(); ok {
			path = p
		}
	}
	if path != "" {
		fileCfg, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		cfg = fileCfg
	}

	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultPath() (string, bool) {
	path := filepath.Join(".", "gridbench.yaml")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*GridbenchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *GridbenchConfig) Validate() error {
	if c.Bench.StepBudget <= 0 {
		return fmt.Errorf("step_budget must be positive, got %d", c.Bench.StepBudget)
	}
	if c.Bench.EpisodeID < 0 {
		return fmt.Errorf("episode_id must not be negative, got %d", c.Bench.EpisodeID)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *GridbenchConfig) {
	if v := os.Getenv("GRIDBENCH_STEP_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Bench.StepBudget = n
		}
	}

	if v := os.Getenv("GRIDBENCH_EPISODE_ID"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Bench.EpisodeID = n
		}
	}

	if v := os.Getenv("GRIDBENCH_KEEP_FORECAST"); v != "" {
		if b, err := envname.ParseBool(v); err == nil {
			cfg.Bench.KeepForecast = b
		}
	}

	if v := os.Getenv("GRIDBENCH_EXPORT_DIR"); v != "" {
		cfg.Bench.ExportDir = v
	}

	if v := os.Getenv("GRIDBENCH_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}

	if v := os.Getenv("GRIDBENCH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
