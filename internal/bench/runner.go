package bench

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/windyasd/lightsim2grid/internal/grid"
	"github.com/windyasd/lightsim2grid/internal/logging"
)

// Options configures a single benchmark run.
type Options struct {
	// StepBudget bounds the number of steps taken.
	StepBudget int

	// EpisodeID selects the episode to replay, one-based. Zero keeps
	// the environment's current episode. Selecting an episode forces a
	// reset and, unless KeepForecast is set, disables forecasts.
	EpisodeID int

	// KeepForecast leaves forecast computation enabled when an episode
	// is selected. Forecasts are not exercised by the benchmark and
	// skew timing, so they are disabled by default.
	KeepForecast bool

	// ReportSolverType logs the backend solver type before reset,
	// after reset, and at the end of the run.
	ReportSolverType bool

	// Seed, when non-nil, reseeds the environment. Seeding forces a
	// reset.
	Seed *int64

	// Logger receives operational output. Nil falls back to
	// slog.Default().
	Logger *slog.Logger

	// Trace, when non-nil, receives one JSONL record per step.
	Trace *logging.TraceLogger
}

// RunResult is the outcome of one benchmark run. Elapsed covers only
// the step loop, excluding buffer allocation and reset.
type RunResult struct {
	StepsCompleted int
	Elapsed        time.Duration

	// AOr, GenP and GenQ hold one row per completed step; only the
	// first StepsCompleted rows are meaningful.
	AOr  *TimeSeries
	GenP *TimeSeries
	GenQ *TimeSeries

	// Timings snapshots the environment's cumulative phase counters at
	// the end of the run.
	Timings grid.Timings

	// SolverType is the backend's solver name, when the environment
	// exposes a backend handle.
	SolverType string
}

// StepError reports a failure raised by the environment or agent
// during the step loop. No partial result accompanies it.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// Run drives the environment through at most opts.StepBudget steps
// under the given agent policy and collects the line-current and
// generator power time series.
//
// target may be a grid.Environment or a grid.MultiMix; a multi-mix is
// resolved to the sub-environment under its alphabetically first key.
// The run resets the environment only when seeding or episode
// selection requires it; otherwise it continues from the current
// observation, which allows chained warm benchmarking.
//
// The environment is left in whatever state the run produced; callers
// needing isolation must provide a fresh instance per comparison arm.
func Run(target any, agent grid.Agent, opts Options) (*RunResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	env, err := grid.ResolveTarget(target)
	if err != nil {
		return nil, err
	}
	if opts.StepBudget <= 0 {
		return nil, fmt.Errorf("step budget must be positive, got %d", opts.StepBudget)
	}
	if agent == nil {
		return nil, fmt.Errorf("agent must not be nil")
	}

	// The reset decision is computed once, up front, from the
	// seed/episode inputs.
	needReset := false
	if opts.Seed != nil {
		env.Seed(*opts.Seed)
		needReset = true
	}
	if opts.EpisodeID != 0 {
		// One-based external numbering, zero-based internal indexing.
		if err := env.SelectEpisode(opts.EpisodeID - 1); err != nil {
			return nil, fmt.Errorf("select episode %d: %w", opts.EpisodeID, err)
		}
		if !opts.KeepForecast {
			env.SetForecasts(false)
		}
		needReset = true
	}

	nbRows := env.MaxEpisodeLength()
	if opts.StepBudget < nbRows {
		nbRows = opts.StepBudget
	}
	res := &RunResult{
		AOr:  NewTimeSeries(nbRows, env.LineCount()),
		GenP: NewTimeSeries(nbRows, env.GenCount()),
		GenQ: NewTimeSeries(nbRows, env.GenCount()),
	}

	if opts.ReportSolverType {
		logSolverType(logger, env, "before reset")
	}

	var obs grid.Observation
	if needReset {
		obs, err = env.Reset()
		if err != nil {
			return nil, fmt.Errorf("reset environment: %w", err)
		}
	} else {
		obs = env.CurrentObservation()
	}

	if opts.ReportSolverType {
		logSolverType(logger, env, "after reset")
	}

	done := false
	reward, _ := env.RewardRange()
	steps := 0

	begin := time.Now()
	for !done {
		act := agent.Act(obs, reward, done)
		stepBegin := time.Now()
		var info map[string]any
		obs, reward, done, info, err = env.Step(act)
		if err != nil {
			return nil, &StepError{Step: steps, Err: err}
		}
		_ = info

		res.AOr.SetRow(steps, obs.AOr)
		res.GenP.SetRow(steps, obs.GenP)
		res.GenQ.SetRow(steps, obs.GenQ)
		steps++

		opts.Trace.Log(logging.StepRecord{
			Step:   steps,
			Reward: reward,
			Done:   done,
			StepMS: float64(time.Since(stepBegin).Nanoseconds()) / 1e6,
		})

		// Budget and termination are checked after the write so the
		// terminal step's data is always captured.
		if steps >= opts.StepBudget || done {
			break
		}
	}
	res.Elapsed = time.Since(begin)
	res.StepsCompleted = steps
	res.Timings = env.PhaseTimings()
	if b := env.Backend(); b != nil {
		res.SolverType = b.SolverType()
	}

	if opts.ReportSolverType {
		logSolverType(logger, env, "end")
	}

	return res, nil
}

func logSolverType(logger *slog.Logger, env grid.Environment, stage string) {
	b := env.Backend()
	if b == nil {
		return
	}
	logger.Info("solver type", "stage", stage, "solver", b.SolverType())
}
