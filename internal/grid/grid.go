// Package grid defines the contracts the benchmarking harness drives:
// a stateful simulation environment, the agent policy acting on it, and
// the power-flow backend plugged into the environment. Implementations
// live elsewhere (internal/gridsim ships a synthetic one); the harness
// only ever talks to these interfaces.
package grid

import (
	"fmt"
	"sort"
	"time"
)

// Action is whatever the agent hands back to the environment. The
// harness never inspects it.
type Action any

// Observation is an immutable snapshot of the grid's physical state
// after one step or reset. It is superseded by the next step.
type Observation struct {
	// AOr is the current magnitude at the origin side of each line, in amps.
	AOr []float64
	// GenP is the active power produced by each generator, in MW.
	GenP []float64
	// GenQ is the reactive power produced by each generator, in MVAr.
	GenQ []float64
	// LineStatus reports whether each line is in service.
	LineStatus []bool
}

// Timings holds the cumulative per-phase counters an environment
// maintains internally across steps. The harness reads them, it never
// computes them.
type Timings struct {
	ApplyAct   time.Duration
	Powerflow  time.Duration
	ExtractObs time.Duration
}

// Backend is the power-flow solver handle nested inside an environment.
type Backend interface {
	// SolverType names the solver implementation, for diagnostics only.
	SolverType() string
}

// Environment is a single stateful grid simulation the harness steps
// through. It is exclusively owned by the caller; no concurrent use.
type Environment interface {
	// Step applies the action and advances simulated time by one step.
	Step(action Action) (obs Observation, reward float64, done bool, info map[string]any, err error)

	// Reset restarts the currently selected episode and returns its
	// initial observation. Seeding and episode selection take effect
	// only after a reset.
	Reset() (Observation, error)

	// CurrentObservation returns the observation produced by the most
	// recent Step or Reset, without advancing time.
	CurrentObservation() Observation

	// Seed reseeds the environment's randomness. Effective after Reset.
	Seed(seed int64)

	// SelectEpisode selects the episode to replay on the next Reset,
	// by zero-based index into the environment's episode list.
	SelectEpisode(index int) error

	// SetForecasts enables or disables forecast computation.
	SetForecasts(enabled bool)

	LineCount() int
	GenCount() int

	// MaxEpisodeLength is the number of steps in the selected episode.
	MaxEpisodeLength() int

	// RewardRange returns the smallest and largest possible rewards.
	// The lower bound seeds the reward fed to the agent before the
	// first real step.
	RewardRange() (min, max float64)

	// PhaseTimings returns the environment's cumulative phase counters.
	PhaseTimings() Timings

	// Backend returns the nested solver handle, or nil if the
	// environment does not expose one.
	Backend() Backend
}

// Agent maps an observation to an action. Pure policy, no contract on
// internal state.
type Agent interface {
	Act(obs Observation, reward float64, done bool) Action
}

// DoNothingAgent always returns a nil action.
type DoNothingAgent struct{}

// Act implements Agent.
func (DoNothingAgent) Act(Observation, float64, bool) Action { return nil }

// MultiMix is a keyed collection of independent environments sharing a
// common interface.
type MultiMix map[string]Environment

// Resolve returns the sub-environment under the alphabetically first
// key. The choice is deterministic regardless of map iteration order.
func (m MultiMix) Resolve() (Environment, error) {
	if len(m) == 0 {
		return nil, fmt.Errorf("multi-mix environment has no mixes")
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return m[keys[0]], nil
}

// ResolveTarget accepts either an Environment or a MultiMix and returns
// the single environment all subsequent operations should target.
func ResolveTarget(target any) (Environment, error) {
	switch v := target.(type) {
	case MultiMix:
		return v.Resolve()
	case Environment:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported environment type %T", target)
	}
}
