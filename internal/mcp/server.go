// Package mcp provides an MCP (Model Context Protocol) server for
// gridbench, exposing the network checker and the differential
// benchmark as tools.
package mcp

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server and provides gridbench-specific
// functionality.
type Server struct {
	server *sdk.Server
	logger *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "gridbench")
	Version string // Server version
	Logger  *slog.Logger
}

// NewServer creates a new MCP server with gridbench tools.
func NewServer(cfg *Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			// Client initialized, ready to serve
		},
	})

	s := &Server{server: mcpServer, logger: logger}
	s.registerTools()
	return s, nil
}

// registerTools registers all gridbench MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "grid_check",
		Description: "Validate a network description YAML file against the element types the accelerated backend supports",
	}, s.handleGridCheck)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "grid_compare",
		Description: "Run the fast and reference solvers through the same episode and report speed-up and numerical deltas",
	}, s.handleGridCompare)
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle OS signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}
