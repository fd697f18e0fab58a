package mcp

import (
	"context"
	"errors"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/windyasd/lightsim2grid/internal/bench"
	"github.com/windyasd/lightsim2grid/internal/envname"
	"github.com/windyasd/lightsim2grid/internal/grid"
	"github.com/windyasd/lightsim2grid/internal/gridsim"
	"github.com/windyasd/lightsim2grid/internal/network"
)

// GridCheckInput is the input for the grid_check tool.
type GridCheckInput struct {
	Path string `json:"path" jsonschema:"path to a network description YAML file"`
}

// GridCheckOutput is the output of the grid_check tool.
type GridCheckOutput struct {
	OK         bool     `json:"ok"`
	Fatal      string   `json:"fatal,omitempty"`
	Advisories []string `json:"advisories,omitempty"`
}

func (s *Server) handleGridCheck(ctx context.Context, req *sdk.CallToolRequest, args GridCheckInput) (*sdk.CallToolResult, GridCheckOutput, error) {
	if args.Path == "" {
		return nil, GridCheckOutput{}, fmt.Errorf("path is required")
	}

	desc, err := network.LoadFile(args.Path)
	if err != nil {
		return nil, GridCheckOutput{}, err
	}

	report, err := network.NewChecker(s.logger).Check(desc)
	if err != nil {
		// A fatal finding is a tool result, not a tool failure.
		var uerr *network.UnsupportedElementError
		if errors.As(err, &uerr) {
			return nil, GridCheckOutput{OK: false, Fatal: err.Error()}, nil
		}
		return nil, GridCheckOutput{}, err
	}

	out := GridCheckOutput{OK: true}
	for _, adv := range report.Advisories {
		out.Advisories = append(out.Advisories,
			fmt.Sprintf("%s (%d rows)", adv.Category.Name, adv.Rows))
	}
	return nil, out, nil
}

// GridCompareInput is the input for the grid_compare tool.
type GridCompareInput struct {
	Scenario  string `json:"scenario,omitempty" jsonschema:"optional path to a scenario YAML file; defaults to the built-in scenario"`
	Steps     int    `json:"steps,omitempty" jsonschema:"step budget per run, default 288"`
	EpisodeID int    `json:"episode_id,omitempty" jsonschema:"one-based episode to replay, default 1"`
	Seed      *int64 `json:"seed,omitempty" jsonschema:"optional environment seed"`
}

// GridCompareOutput is the output of the grid_compare tool.
type GridCompareOutput struct {
	Environment string  `json:"environment"`
	Report      string  `json:"report"`
	Steps       int     `json:"steps"`
	SpeedUp     float64 `json:"speed_up"`
	MaxDiffAOr  float64 `json:"max_diff_a_or"`
	MaxDiffGenP float64 `json:"max_diff_gen_p"`
	MaxDiffGenQ float64 `json:"max_diff_gen_q"`
}

func (s *Server) handleGridCompare(ctx context.Context, req *sdk.CallToolRequest, args GridCompareInput) (*sdk.CallToolResult, GridCompareOutput, error) {
	cfg := gridsim.DefaultConfig()
	if args.Scenario != "" {
		var err error
		cfg, err = gridsim.LoadConfig(args.Scenario)
		if err != nil {
			return nil, GridCompareOutput{}, err
		}
	}

	steps := args.Steps
	if steps <= 0 {
		steps = cfg.EpisodeLength
	}
	episode := args.EpisodeID
	if episode <= 0 {
		episode = 1
	}
	opts := bench.Options{
		StepBudget: steps,
		EpisodeID:  episode,
		Seed:       args.Seed,
		Logger:     s.logger,
	}

	fastEnv, err := gridsim.New(cfg, gridsim.NewFastSolver(cfg.Lines, cfg.Generators))
	if err != nil {
		return nil, GridCompareOutput{}, err
	}
	refEnv, err := gridsim.New(cfg, gridsim.NewReferenceSolver(cfg.Lines, cfg.Generators))
	if err != nil {
		return nil, GridCompareOutput{}, err
	}

	fast, err := bench.Run(fastEnv, grid.DoNothingAgent{}, opts)
	if err != nil {
		return nil, GridCompareOutput{}, fmt.Errorf("fast run: %w", err)
	}
	ref, err := bench.Run(refEnv, grid.DoNothingAgent{}, opts)
	if err != nil {
		return nil, GridCompareOutput{}, fmt.Errorf("reference run: %w", err)
	}

	common := fast.StepsCompleted
	if ref.StepsCompleted < common {
		common = ref.StepsCompleted
	}
	speedUp := 0.0
	if fast.Elapsed > 0 {
		speedUp = ref.Elapsed.Seconds() / fast.Elapsed.Seconds()
	}

	out := GridCompareOutput{
		Environment: envname.DisplayName(cfg.Name),
		Report:      bench.FormatComparison(fast, ref, fast.SolverType, ref.SolverType),
		Steps:       common,
		SpeedUp:     speedUp,
		MaxDiffAOr:  bench.MaxAbsDiff(fast.AOr, ref.AOr, common),
		MaxDiffGenP: bench.MaxAbsDiff(fast.GenP, ref.GenP, common),
		MaxDiffGenQ: bench.MaxAbsDiff(fast.GenQ, ref.GenQ, common),
	}
	return nil, out, nil
}
