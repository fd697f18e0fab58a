package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/windyasd/lightsim2grid/internal/bench"
	"github.com/windyasd/lightsim2grid/internal/config"
	"github.com/windyasd/lightsim2grid/internal/envname"
	"github.com/windyasd/lightsim2grid/internal/export"
	"github.com/windyasd/lightsim2grid/internal/grid"
	"github.com/windyasd/lightsim2grid/internal/logging"
	"github.com/windyasd/lightsim2grid/internal/store"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Benchmark the fast backend against the reference backend",
		Long: `Benchmark the fast backend against the reference backend.

Both backends replay the same episode with the same seed and step budget.
The report gives the overall speed-up, per-phase latency for each backend,
and the maximum absolute difference of line currents and generator
injections over the steps both runs completed.

Examples:
  gridbench compare                           # default scenario and budget
  gridbench compare --episode 2 --seed 42     # pinned episode and seed
  gridbench compare --export-dir out --save   # export both runs, persist`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

			scenario, _ := cmd.Flags().GetString("scenario")
			exportDir, _ := cmd.Flags().GetString("export-dir")
			save, _ := cmd.Flags().GetBool("save")
			if exportDir == "" {
				exportDir = cfg.Bench.ExportDir
			}

			opts, trace, err := runOptions(cmd, cfg, logger)
			if err != nil {
				return err
			}
			defer trace.Close()

			simCfg, fastEnv, err := newEnvironment(scenario, "fast")
			if err != nil {
				return err
			}
			_, refEnv, err := newEnvironment(scenario, "reference")
			if err != nil {
				return err
			}

			fast, err := bench.Run(fastEnv, grid.DoNothingAgent{}, opts)
			if err != nil {
				return fmt.Errorf("fast run: %w", err)
			}
			ref, err := bench.Run(refEnv, grid.DoNothingAgent{}, opts)
			if err != nil {
				return fmt.Errorf("reference run: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Environment: %s\n\n", envname.DisplayName(simCfg.Name))
			fmt.Fprint(cmd.OutOrStdout(), bench.FormatComparison(fast, ref, "fast", "reference"))

			if exportDir != "" {
				for _, run := range []struct {
					name string
					res  *bench.RunResult
				}{
					{"fast.arrow", fast},
					{"reference.arrow", ref},
				} {
					path := filepath.Join(exportDir, run.name)
					if err := export.WriteRunResult(path, run.res); err != nil {
						return fmt.Errorf("failed to export run: %w", err)
					}
					logger.Info("exported run buffers", "path", path)
				}
			}

			if save {
				if err := saveComparison(cmd, cfg, simCfg.Name, fast, ref); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().String("scenario", "", "Path to a scenario YAML file (default built-in scenario)")
	addRunFlags(cmd)
	cmd.Flags().Bool("show-solver", false, "Log each backend's solver type before and after reset")
	cmd.Flags().String("export-dir", "", "Directory for Arrow IPC exports of both runs")
	cmd.Flags().Bool("save", false, "Persist both runs and the comparison to the history store")
	return cmd
}

// saveComparison persists both runs and the comparison row linking them.
func saveComparison(cmd *cobra.Command, cfg *config.GridbenchConfig, envName string, fast, ref *bench.RunResult) error {
	if cfg.Store.Path == "" {
		return fmt.Errorf("no store path configured; set store.path or GRIDBENCH_STORE_PATH")
	}
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	display := envname.DisplayName(envName)

	runA, err := st.SaveRun(ctx, runRecord(display, "fast", fast))
	if err != nil {
		return err
	}
	runB, err := st.SaveRun(ctx, runRecord(display, "reference", ref))
	if err != nil {
		return err
	}

	common := fast.StepsCompleted
	if ref.StepsCompleted < common {
		common = ref.StepsCompleted
	}
	speedUp := 0.0
	if fast.Elapsed > 0 {
		speedUp = ref.Elapsed.Seconds() / fast.Elapsed.Seconds()
	}

	_, err = st.SaveComparison(ctx, store.Comparison{
		EnvName:     display,
		LabelA:      "fast",
		LabelB:      "reference",
		RunA:        runA.ID,
		RunB:        runB.ID,
		SpeedUp:     speedUp,
		MaxDiffAOr:  bench.MaxAbsDiff(fast.AOr, ref.AOr, common),
		MaxDiffGenP: bench.MaxAbsDiff(fast.GenP, ref.GenP, common),
		MaxDiffGenQ: bench.MaxAbsDiff(fast.GenQ, ref.GenQ, common),
	})
	return err
}

func runRecord(envName, label string, res *bench.RunResult) store.Run {
	return store.Run{
		EnvName:           envName,
		Label:             label,
		SolverType:        res.SolverType,
		Steps:             res.StepsCompleted,
		ElapsedSeconds:    res.Elapsed.Seconds(),
		ApplyActSeconds:   res.Timings.ApplyAct.Seconds(),
		PowerflowSeconds:  res.Timings.Powerflow.Seconds(),
		ExtractObsSeconds: res.Timings.ExtractObs.Seconds(),
	}
}
