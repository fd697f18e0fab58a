package gridsim

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/windyasd/lightsim2grid/internal/grid"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Lines = 4
	cfg.Generators = 2
	cfg.EpisodeLength = 10
	cfg.Episodes = 3
	return cfg
}

func TestEnvEpisodeLifecycle(t *testing.T) {
	env, err := New(testConfig(), NewFastSolver(4, 2))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	obs, err := env.Reset()
	if err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if len(obs.AOr) != 4 || len(obs.GenP) != 2 {
		t.Fatalf("initial obs sized %d lines / %d gens, want 4/2", len(obs.AOr), len(obs.GenP))
	}

	done := false
	steps := 0
	for !done {
		var err error
		obs, _, done, _, err = env.Step(nil)
		if err != nil {
			t.Fatalf("Step(%d) error: %v", steps, err)
		}
		steps++
		if steps > 20 {
			t.Fatal("episode never terminated")
		}
	}
	if steps != 10 {
		t.Errorf("episode ran %d steps, want 10", steps)
	}

	// Stepping past the end is an error, not a silent restart.
	if _, _, _, _, err := env.Step(nil); err == nil {
		t.Error("Step() after episode end expected error, got nil")
	}

	// Reset starts a fresh episode.
	if _, err := env.Reset(); err != nil {
		t.Fatalf("second Reset() error: %v", err)
	}
	if _, _, _, _, err := env.Step(nil); err != nil {
		t.Errorf("Step() after reset error: %v", err)
	}
}

func TestEnvDeterministicChronics(t *testing.T) {
	runEpisode := func() []grid.Observation {
		env, err := New(testConfig(), NewFastSolver(4, 2))
		if err != nil {
			t.Fatalf("New() error: %v", err)
		}
		env.Seed(99)
		if err := env.SelectEpisode(1); err != nil {
			t.Fatal(err)
		}
		if _, err := env.Reset(); err != nil {
			t.Fatal(err)
		}
		var trace []grid.Observation
		for i := 0; i < 5; i++ {
			obs, _, _, _, err := env.Step(nil)
			if err != nil {
				t.Fatal(err)
			}
			trace = append(trace, obs)
		}
		return trace
	}

	a, b := runEpisode(), runEpisode()
	for i := range a {
		for l := range a[i].AOr {
			if a[i].AOr[l] != b[i].AOr[l] {
				t.Fatalf("step %d line %d: %g != %g under identical seed/episode",
					i, l, a[i].AOr[l], b[i].AOr[l])
			}
		}
	}
}

func TestEnvDifferentEpisodesDiffer(t *testing.T) {
	obsFor := func(episode int) grid.Observation {
		env, err := New(testConfig(), NewFastSolver(4, 2))
		if err != nil {
			t.Fatal(err)
		}
		if err := env.SelectEpisode(episode); err != nil {
			t.Fatal(err)
		}
		obs, err := env.Reset()
		if err != nil {
			t.Fatal(err)
		}
		return obs
	}

	a, b := obsFor(0), obsFor(2)
	same := true
	for l := range a.AOr {
		if a.AOr[l] != b.AOr[l] {
			same = false
		}
	}
	if same {
		t.Error("different episodes produced identical initial observations")
	}
}

func TestEnvSelectEpisodeBounds(t *testing.T) {
	env, err := New(testConfig(), NewFastSolver(4, 2))
	if err != nil {
		t.Fatal(err)
	}
	if err := env.SelectEpisode(2); err != nil {
		t.Errorf("SelectEpisode(2) error: %v", err)
	}
	if err := env.SelectEpisode(3); err == nil {
		t.Error("SelectEpisode(3) expected error for 3-episode scenario")
	}
	if err := env.SelectEpisode(-1); err == nil {
		t.Error("SelectEpisode(-1) expected error")
	}
}

func TestEnvLineDisconnectAction(t *testing.T) {
	env, err := New(testConfig(), NewFastSolver(4, 2))
	if err != nil {
		t.Fatal(err)
	}
	obs, _, _, _, err := env.Step(SetLineStatus{Line: 2, On: false})
	if err != nil {
		t.Fatalf("Step() error: %v", err)
	}
	if obs.LineStatus[2] {
		t.Error("line 2 still reported in service after disconnect")
	}
	if obs.AOr[2] != 0 {
		t.Errorf("disconnected line flow = %g, want 0", obs.AOr[2])
	}

	if _, _, _, _, err := env.Step(SetLineStatus{Line: 99, On: false}); err == nil {
		t.Error("out-of-range line action expected error")
	}
	if _, _, _, _, err := env.Step("bogus"); err == nil {
		t.Error("unknown action type expected error")
	}
}

func TestEnvPhaseTimingsAccumulate(t *testing.T) {
	env, err := New(testConfig(), NewReferenceSolver(4, 2))
	if err != nil {
		t.Fatal(err)
	}
	before := env.PhaseTimings()
	for i := 0; i < 3; i++ {
		if _, _, _, _, err := env.Step(nil); err != nil {
			t.Fatal(err)
		}
	}
	after := env.PhaseTimings()
	if after.Powerflow <= before.Powerflow {
		t.Error("powerflow counter did not advance")
	}
	if after.ExtractObs <= before.ExtractObs {
		t.Error("extract-obs counter did not advance")
	}
}

func TestEnvRewardWithinRange(t *testing.T) {
	env, err := New(testConfig(), NewFastSolver(4, 2))
	if err != nil {
		t.Fatal(err)
	}
	lo, hi := env.RewardRange()
	for i := 0; i < 10; i++ {
		_, reward, _, _, err := env.Step(nil)
		if err != nil {
			t.Fatal(err)
		}
		if reward < lo || reward > hi || math.IsNaN(reward) {
			t.Errorf("step %d reward %g outside [%g, %g]", i, reward, lo, hi)
		}
	}
}

func TestNewMultiMix(t *testing.T) {
	mix, err := NewMultiMix(testConfig(), func() Solver { return NewFastSolver(4, 2) }, "b_mix", "a_mix")
	if err != nil {
		t.Fatalf("NewMultiMix() error: %v", err)
	}
	if len(mix) != 2 {
		t.Fatalf("mix has %d environments, want 2", len(mix))
	}
	env, err := mix.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if env != mix["a_mix"] {
		t.Error("Resolve() did not pick a_mix")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	content := "name: test_grid\nlines: 7\ngenerators: 3\nepisode_length: 50\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Name != "test_grid" || cfg.Lines != 7 || cfg.Generators != 3 {
		t.Errorf("LoadConfig() = %+v", cfg)
	}
	// Unset fields keep defaults.
	if cfg.Episodes != DefaultConfig().Episodes {
		t.Errorf("Episodes = %d, want default %d", cfg.Episodes, DefaultConfig().Episodes)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("lines: -2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Error("LoadConfig() on invalid scenario expected error")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"default is valid", func(c *Config) {}, true},
		{"zero lines", func(c *Config) { c.Lines = 0 }, false},
		{"zero generators", func(c *Config) { c.Generators = 0 }, false},
		{"zero episode length", func(c *Config) { c.EpisodeLength = 0 }, false},
		{"zero episodes", func(c *Config) { c.Episodes = 0 }, false},
		{"negative base load", func(c *Config) { c.BaseLoadMW = -1 }, false},
		{"negative swing", func(c *Config) { c.LoadSwingMW = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("Validate() error: %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("Validate() expected error, got nil")
			}
		})
	}
}
