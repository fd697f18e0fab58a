package gridsim

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/windyasd/lightsim2grid/internal/grid"
)

// SetLineStatus is the one topology action the synthetic environment
// understands: reconnect or disconnect a single line.
type SetLineStatus struct {
	Line int
	On   bool
}

// Env is a synthetic grid.Environment. Chronics are generated from the
// seed and episode index, so two environments with the same config,
// seed and episode replay identical injections step for step.
type Env struct {
	cfg    Config
	solver Solver

	seed       int64
	episode    int
	step       int
	done       bool
	forecasts  bool
	lineStatus []bool

	// chronics holds the per-step generator injection targets of the
	// selected episode, rebuilt on every reset.
	chronics [][]float64

	curObs   grid.Observation
	sol      Solution
	forecast Solution
	timings  grid.Timings
}

// New creates an environment and resets it once so the current
// observation is valid before the first explicit reset.
func New(cfg Config, solver Solver) (*Env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Env{
		cfg:        cfg,
		solver:     solver,
		forecasts:  true,
		lineStatus: make([]bool, cfg.Lines),
	}
	if _, err := e.Reset(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewMultiMix builds a keyed collection of independent environments,
// one per name, all sharing a config and a solver constructor.
func NewMultiMix(cfg Config, newSolver func() Solver, names ...string) (grid.MultiMix, error) {
	mix := grid.MultiMix{}
	for _, name := range names {
		env, err := New(cfg, newSolver())
		if err != nil {
			return nil, fmt.Errorf("mix %s: %w", name, err)
		}
		mix[name] = env
	}
	return mix, nil
}

// Name returns the configured environment name.
func (e *Env) Name() string { return e.cfg.Name }

// Reset implements grid.Environment. It rebuilds the chronics for the
// current seed and episode and solves the initial state.
func (e *Env) Reset() (grid.Observation, error) {
	e.step = 0
	e.done = false
	for i := range e.lineStatus {
		e.lineStatus[i] = true
	}
	e.buildChronics()

	begin := time.Now()
	e.solver.Solve(e.chronics[0], e.lineStatus, &e.sol)
	e.timings.Powerflow += time.Since(begin)

	begin = time.Now()
	e.extractObservation()
	e.timings.ExtractObs += time.Since(begin)

	return e.curObs, nil
}

// buildChronics generates the injection time series. One extra row
// past the episode end backs the forecast solve of the last step.
func (e *Env) buildChronics() {
	rng := rand.New(rand.NewSource(e.seed*7919 + int64(e.episode) + 1))
	rows := e.cfg.EpisodeLength + 1
	e.chronics = make([][]float64, rows)
	perGen := e.cfg.BaseLoadMW / float64(e.cfg.Generators)
	swing := e.cfg.LoadSwingMW / float64(e.cfg.Generators)
	for t := 0; t < rows; t++ {
		row := make([]float64, e.cfg.Generators)
		phase := 2 * math.Pi * float64(t) / float64(e.cfg.EpisodeLength)
		for g := range row {
			daily := swing * math.Sin(phase+float64(g))
			noise := perGen * 0.05 * (2*rng.Float64() - 1)
			row[g] = perGen + daily + noise
		}
		e.chronics[t] = row
	}
}

// Step implements grid.Environment.
func (e *Env) Step(action grid.Action) (grid.Observation, float64, bool, map[string]any, error) {
	if e.done {
		return grid.Observation{}, 0, true, nil, fmt.Errorf("episode is over, reset the environment")
	}

	begin := time.Now()
	if err := e.applyAction(action); err != nil {
		return grid.Observation{}, 0, false, nil, err
	}
	e.timings.ApplyAct += time.Since(begin)

	e.step++
	injections := e.chronics[e.step]

	begin = time.Now()
	e.solver.Solve(injections, e.lineStatus, &e.sol)
	if e.forecasts && e.step+1 < len(e.chronics) {
		// The forecast costs a full extra solve, which is exactly why
		// benchmark runs switch it off.
		e.solver.Solve(e.chronics[e.step+1], e.lineStatus, &e.forecast)
	}
	e.timings.Powerflow += time.Since(begin)

	begin = time.Now()
	e.extractObservation()
	e.timings.ExtractObs += time.Since(begin)

	e.done = e.step >= e.cfg.EpisodeLength
	info := map[string]any{"step": e.step}
	return e.curObs, e.reward(), e.done, info, nil
}

func (e *Env) applyAction(action grid.Action) error {
	switch a := action.(type) {
	case nil:
		return nil
	case SetLineStatus:
		if a.Line < 0 || a.Line >= e.cfg.Lines {
			return fmt.Errorf("line %d out of range [0, %d)", a.Line, e.cfg.Lines)
		}
		e.lineStatus[a.Line] = a.On
		return nil
	default:
		return fmt.Errorf("unsupported action type %T", action)
	}
}

func (e *Env) extractObservation() {
	obs := grid.Observation{
		AOr:        make([]float64, e.cfg.Lines),
		GenP:       make([]float64, e.cfg.Generators),
		GenQ:       make([]float64, e.cfg.Generators),
		LineStatus: make([]bool, e.cfg.Lines),
	}
	copy(obs.AOr, e.sol.FlowA)
	copy(obs.GenP, e.sol.GenP)
	copy(obs.GenQ, e.sol.GenQ)
	copy(obs.LineStatus, e.lineStatus)
	e.curObs = obs
}

// reward penalizes the most loaded line: 1 means an idle grid, values
// fall toward -1 as the worst line approaches twice its rating.
func (e *Env) reward() float64 {
	rating := flowAmps(e.cfg.BaseLoadMW+e.cfg.LoadSwingMW) * 1.2 / float64(e.cfg.Lines) * 4
	worst := 0.0
	for _, a := range e.sol.FlowA {
		if a > worst {
			worst = a
		}
	}
	r := 1 - worst/rating
	if r < -1 {
		r = -1
	}
	return r
}

// CurrentObservation implements grid.Environment.
func (e *Env) CurrentObservation() grid.Observation { return e.curObs }

// Seed implements grid.Environment. Takes effect on the next Reset.
func (e *Env) Seed(seed int64) { e.seed = seed }

// SelectEpisode implements grid.Environment. Takes effect on the next
// Reset.
func (e *Env) SelectEpisode(index int) error {
	if index < 0 || index >= e.cfg.Episodes {
		return fmt.Errorf("episode index %d out of range [0, %d)", index, e.cfg.Episodes)
	}
	e.episode = index
	return nil
}

// SetForecasts implements grid.Environment.
func (e *Env) SetForecasts(enabled bool) { e.forecasts = enabled }

// LineCount implements grid.Environment.
func (e *Env) LineCount() int { return e.cfg.Lines }

// GenCount implements grid.Environment.
func (e *Env) GenCount() int { return e.cfg.Generators }

// MaxEpisodeLength implements grid.Environment.
func (e *Env) MaxEpisodeLength() int { return e.cfg.EpisodeLength }

// RewardRange implements grid.Environment.
func (e *Env) RewardRange() (float64, float64) { return -1, 1 }

// PhaseTimings implements grid.Environment.
func (e *Env) PhaseTimings() grid.Timings { return e.timings }

// Backend implements grid.Environment.
func (e *Env) Backend() grid.Backend { return backendHandle{e.solver} }

type backendHandle struct{ solver Solver }

// SolverType implements grid.Backend.
func (b backendHandle) SolverType() string { return b.solver.Name() }
