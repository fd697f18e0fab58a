package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/windyasd/lightsim2grid/internal/bench"
	"github.com/windyasd/lightsim2grid/internal/config"
	"github.com/windyasd/lightsim2grid/internal/envname"
	"github.com/windyasd/lightsim2grid/internal/export"
	"github.com/windyasd/lightsim2grid/internal/grid"
	"github.com/windyasd/lightsim2grid/internal/gridsim"
	"github.com/windyasd/lightsim2grid/internal/logging"
	"github.com/windyasd/lightsim2grid/internal/store"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Benchmark a single backend",
		Long: `Benchmark a single backend over one grid episode.

The run replays the selected episode with a do-nothing agent, recording
line currents and generator injections at every step along with per-phase
latency.

Examples:
  gridbench run                               # fast backend, default scenario
  gridbench run --backend reference           # reference backend
  gridbench run --episode 3 --steps 500       # replay episode 3, up to 500 steps
  gridbench run --export run.arrow --save     # export buffers, persist to history`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

			backend, _ := cmd.Flags().GetString("backend")
			scenario, _ := cmd.Flags().GetString("scenario")
			exportPath, _ := cmd.Flags().GetString("export")
			save, _ := cmd.Flags().GetBool("save")

			simCfg, env, err := newEnvironment(scenario, backend)
			if err != nil {
				return err
			}

			opts, trace, err := runOptions(cmd, cfg, logger)
			if err != nil {
				return err
			}
			defer trace.Close()

			res, err := bench.Run(env, grid.DoNothingAgent{}, opts)
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), bench.FormatRun(res, backend))

			if exportPath != "" {
				if err := export.WriteRunResult(exportPath, res); err != nil {
					return fmt.Errorf("failed to export run: %w", err)
				}
				logger.Info("exported run buffers", "path", exportPath)
			}

			if save {
				if err := saveRun(cmd.Context(), cfg, simCfg, res, backend); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().String("backend", "fast", "Backend to benchmark: fast or reference")
	cmd.Flags().String("scenario", "", "Path to a scenario YAML file (default built-in scenario)")
	addRunFlags(cmd)
	cmd.Flags().Bool("show-solver", false, "Log the backend solver type before and after reset")
	cmd.Flags().String("export", "", "Write run buffers to an Arrow IPC file")
	cmd.Flags().Bool("save", false, "Persist the run to the history store")
	return cmd
}

// addRunFlags registers the benchmark flags shared by run and compare.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("steps", 0, "Step budget (default from config)")
	cmd.Flags().Int("episode", 0, "One-based episode to replay (default from config; 0 keeps the current one)")
	cmd.Flags().Int64("seed", 0, "Reseed the environment before the run")
	cmd.Flags().Bool("keep-forecast", false, "Keep forecast computation enabled")
	cmd.Flags().String("trace-dir", "", "Directory for per-step JSONL traces (debug/trace level only)")
}

// runOptions builds bench.Options from config defaults and command
// flags. Flags that were not set on the command line fall back to the
// configured defaults.
func runOptions(cmd *cobra.Command, cfg *config.GridbenchConfig, logger *slog.Logger) (bench.Options, *logging.TraceLogger, error) {
	opts := bench.Options{
		StepBudget:   cfg.Bench.StepBudget,
		EpisodeID:    cfg.Bench.EpisodeID,
		KeepForecast: cfg.Bench.KeepForecast,
		Logger:       logger,
	}

	if cmd.Flags().Changed("steps") {
		opts.StepBudget, _ = cmd.Flags().GetInt("steps")
	}
	if cmd.Flags().Changed("episode") {
		opts.EpisodeID, _ = cmd.Flags().GetInt("episode")
	}
	if cmd.Flags().Changed("keep-forecast") {
		opts.KeepForecast, _ = cmd.Flags().GetBool("keep-forecast")
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetInt64("seed")
		opts.Seed = &seed
	}
	if show, _ := cmd.Flags().GetBool("show-solver"); show {
		opts.ReportSolverType = true
	}

	var trace *logging.TraceLogger
	if dir, _ := cmd.Flags().GetString("trace-dir"); dir != "" {
		trace = logging.NewTraceLogger(dir, cfg.Logging.Level)
		opts.Trace = trace
	}
	return opts, trace, nil
}

// newEnvironment builds a simulated grid environment for the named
// backend, loading the scenario file when one is given.
func newEnvironment(scenario, backend string) (gridsim.Config, *gridsim.Env, error) {
	simCfg := gridsim.DefaultConfig()
	if scenario != "" {
		var err error
		simCfg, err = gridsim.LoadConfig(scenario)
		if err != nil {
			return gridsim.Config{}, nil, err
		}
	}

	var solver gridsim.Solver
	switch backend {
	case "fast":
		solver = gridsim.NewFastSolver(simCfg.Lines, simCfg.Generators)
	case "reference":
		solver = gridsim.NewReferenceSolver(simCfg.Lines, simCfg.Generators)
	default:
		return gridsim.Config{}, nil, fmt.Errorf("unknown backend: %s (must be fast or reference)", backend)
	}

	env, err := gridsim.New(simCfg, solver)
	if err != nil {
		return gridsim.Config{}, nil, err
	}
	return simCfg, env, nil
}

// saveRun persists a finished run to the history store.
func saveRun(ctx context.Context, cfg *config.GridbenchConfig, simCfg gridsim.Config, res *bench.RunResult, label string) error {
	if cfg.Store.Path == "" {
		return fmt.Errorf("no store path configured; set store.path or GRIDBENCH_STORE_PATH")
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	_, err = st.SaveRun(ctx, runRecord(envname.DisplayName(simCfg.Name), label, res))
	return err
}
