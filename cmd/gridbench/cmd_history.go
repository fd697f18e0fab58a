package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/windyasd/lightsim2grid/internal/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List persisted benchmark runs and comparisons",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Store.Path == "" {
				return fmt.Errorf("no store path configured; set store.path or GRIDBENCH_STORE_PATH")
			}
			limit, _ := cmd.Flags().GetInt("limit")
			comparisons, _ := cmd.Flags().GetBool("comparisons")

			st, err := store.Open(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer w.Flush()

			if comparisons {
				cmps, err := st.ListComparisons(cmd.Context(), limit)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "CREATED\tENV\tBACKENDS\tSPEED-UP\tMAX DIFF a_or")
				for _, c := range cmps {
					fmt.Fprintf(w, "%s\t%s\t%s vs %s\t%.2f\t%g\n",
						c.CreatedAt.Format("2006-01-02 15:04:05"),
						c.EnvName, c.LabelA, c.LabelB, c.SpeedUp, c.MaxDiffAOr)
				}
				return nil
			}

			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, "CREATED\tENV\tBACKEND\tSOLVER\tSTEPS\tELAPSED\tIT/S")
			for _, r := range runs {
				itPerSec := 0.0
				if r.ElapsedSeconds > 0 {
					itPerSec = float64(r.Steps) / r.ElapsedSeconds
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%.4fs\t%.2f\n",
					r.CreatedAt.Format("2006-01-02 15:04:05"),
					r.EnvName, r.Label, r.SolverType, r.Steps, r.ElapsedSeconds, itPerSec)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum number of entries to list")
	cmd.Flags().Bool("comparisons", false, "List comparisons instead of runs")
	return cmd
}
