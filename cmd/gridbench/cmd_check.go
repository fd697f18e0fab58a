package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/windyasd/lightsim2grid/internal/logging"
	"github.com/windyasd/lightsim2grid/internal/network"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <network.yaml>",
		Short: "Check a network description for unsupported elements",
		Long: `Check a network description for elements the fast backend cannot model.

Three-winding transformers, motors, asymmetric loads, impedances, wards,
extended wards, DC lines and storage units are fatal: the check fails on
the first one found. Switches are advisory: the network passes but bus
reconfiguration through them is not modeled.

Examples:
  gridbench check case14.yaml
  gridbench check case118.yaml --log-level debug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

			desc, err := network.LoadFile(args[0])
			if err != nil {
				return err
			}

			name := desc.Name
			if name == "" {
				name = args[0]
			}

			report, err := network.NewChecker(logger).Check(desc)
			if err != nil {
				var uerr *network.UnsupportedElementError
				if errors.As(err, &uerr) {
					return fmt.Errorf("network %q is not supported: %w", name, err)
				}
				return err
			}

			for _, adv := range report.Advisories {
				fmt.Fprintf(cmd.OutOrStdout(), "warning: %s (%d rows) present but not modeled\n",
					adv.Category.Name, adv.Rows)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "network %q is supported\n", name)
			return nil
		},
	}
}
