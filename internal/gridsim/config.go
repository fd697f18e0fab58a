// Package gridsim provides a deterministic synthetic grid simulation
// environment with interchangeable solver backends. It stands in for a
// full simulation platform so the harness can be exercised end to end:
// chronics are generated from a seed, and the two shipped solvers
// produce numerically close but not bit-identical results at very
// different costs.
package gridsim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes the synthetic grid and its episodes.
type Config struct {
	Name          string  `yaml:"name"`
	Lines         int     `yaml:"lines"`
	Generators    int     `yaml:"generators"`
	EpisodeLength int     `yaml:"episode_length"`
	Episodes      int     `yaml:"episodes"`
	BaseLoadMW    float64 `yaml:"base_load_mw"`
	LoadSwingMW   float64 `yaml:"load_swing_mw"`
}

// DefaultConfig is a small day-long scenario: 5-minute steps over 24h.
func DefaultConfig() Config {
	return Config{
		Name:          "l2rpn_case14_sandbox",
		Lines:         20,
		Generators:    6,
		EpisodeLength: 288,
		Episodes:      10,
		BaseLoadMW:    260,
		LoadSwingMW:   60,
	}
}

// Validate reports the first structural problem in the config.
func (c Config) Validate() error {
	switch {
	case c.Lines <= 0:
		return fmt.Errorf("scenario needs at least one line, got %d", c.Lines)
	case c.Generators <= 0:
		return fmt.Errorf("scenario needs at least one generator, got %d", c.Generators)
	case c.EpisodeLength <= 0:
		return fmt.Errorf("episode length must be positive, got %d", c.EpisodeLength)
	case c.Episodes <= 0:
		return fmt.Errorf("scenario needs at least one episode, got %d", c.Episodes)
	case c.BaseLoadMW <= 0:
		return fmt.Errorf("base load must be positive, got %g", c.BaseLoadMW)
	case c.LoadSwingMW < 0:
		return fmt.Errorf("load swing must not be negative, got %g", c.LoadSwingMW)
	}
	return nil
}

// LoadConfig reads a scenario config from a YAML file. Absent fields
// fall back to the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse scenario: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("scenario %s: %w", path, err)
	}
	return cfg, nil
}
