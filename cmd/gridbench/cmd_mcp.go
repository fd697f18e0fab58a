package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/windyasd/lightsim2grid/internal/logging"
	"github.com/windyasd/lightsim2grid/internal/mcp"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server over stdio",
		Long: `Run the MCP server over stdio.

Exposes gridbench to MCP clients as two tools: grid_check validates a
network description, grid_compare runs the differential benchmark.
Logs go to stderr so stdout stays clean for the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

			srv, err := mcp.NewServer(&mcp.Config{
				Name:    "gridbench",
				Version: version,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			return srv.Run(context.Background())
		},
	}
}
