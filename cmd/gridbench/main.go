package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/windyasd/lightsim2grid/internal/config"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gridbench",
		Short: "Grid benchmark - differential benchmarking of power-flow backends",
		Long: `gridbench benchmarks power-grid simulation backends against each other.

It replays grid episodes through a fast backend and a reference backend,
measures per-phase latency, and reports the numeric drift between the two
so a speed-up claim always comes with a correctness bound.`,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to a gridbench config file (default ./gridbench.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log verbosity: info, debug, or trace")

	// Add subcommands
	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newCompareCmd(),
		newCheckCmd(),
		newHistoryCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

// loadConfig resolves the effective configuration for a command:
// defaults, then the config file (explicit --config or ./gridbench.yaml
// if present), then environment overrides, then the --log-level flag.
func loadConfig(cmd *cobra.Command) (*config.GridbenchConfig, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
