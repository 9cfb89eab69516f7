package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"supplychain-sim/internal/analysis"
	"supplychain-sim/internal/config"
	"supplychain-sim/internal/logger"
	"supplychain-sim/internal/montecarlo"
	"supplychain-sim/internal/scenario"
	"supplychain-sim/internal/simulation"
)

// registerTools registers all simulator tools with the MCP server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "supplychain_presets",
		Description: "List preset disruption scenarios and the parameters that can be overridden",
	}, s.handlePresets)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "supplychain_run",
		Description: "Run a Monte Carlo simulation of one scenario and return aggregated resilience metrics",
	}, s.handleRun)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "supplychain_compare",
		Description: "Run several scenarios and compare their metrics against the baseline",
	}, s.handleCompare)
}

func (s *Server) handlePresets(ctx context.Context, req *sdk.CallToolRequest, args PresetsInput) (*sdk.CallToolResult, PresetsOutput, error) {
	var out PresetsOutput
	for _, name := range scenario.ListPresets() {
		params, err := scenario.EditableParameters(name)
		if err != nil {
			return nil, PresetsOutput{}, err
		}
		ps := PresetSummary{Name: name, Description: scenario.Describe(name)}
		for _, p := range params {
			ps.Parameters = append(ps.Parameters, ParameterRange(p))
		}
		out.Presets = append(out.Presets, ps)
	}
	out.Count = len(out.Presets)
	return nil, out, nil
}

func (s *Server) handleRun(ctx context.Context, req *sdk.CallToolRequest, args RunInput) (*sdk.CallToolResult, RunOutput, error) {
	scs, mode, err := resolve([]ScenarioInput{args.scenario()}, args.Mode)
	if err != nil {
		return nil, RunOutput{}, err
	}

	res, err := s.svc.Run(ctx, scs[0], simulation.RunOptions{Mode: mode})
	if err != nil {
		return nil, RunOutput{}, err
	}

	out := RunOutput{
		RunID:     res.RunID,
		Scenario:  res.Scenario,
		Completed: res.Completed,
		Failed:    res.Failed,
	}
	if res.Stats == nil {
		out.Message = fmt.Sprintf("all %d iterations failed", res.Failed)
		return nil, out, nil
	}
	out.Metrics = analysis.RoundTable(analysis.Table{res.Scenario: res.Stats.Values()})[res.Scenario]
	out.Message = fmt.Sprintf("%s: %d iterations completed, avg_resilience %.3f",
		res.Scenario, res.Completed, res.Stats.Mean["avg_resilience"])
	return nil, out, nil
}

func (s *Server) handleCompare(ctx context.Context, req *sdk.CallToolRequest, args CompareInput) (*sdk.CallToolResult, CompareOutput, error) {
	scs, mode, err := resolve(args.Scenarios, args.Mode)
	if err != nil {
		return nil, CompareOutput{}, err
	}

	cmp, err := s.svc.Compare(ctx, scs, simulation.RunOptions{Mode: mode})
	if err != nil {
		return nil, CompareOutput{}, err
	}
	logger.Debug("mcp", "compared %d scenarios", len(cmp.Runs))

	return nil, CompareOutput{
		Values:    analysis.RoundTable(cmp.Values),
		PctChange: analysis.RoundTable(cmp.Pct),
		Report:    analysis.Report(cmp.Values, cmp.Pct),
		Missing:   cmp.Missing,
	}, nil
}

// resolve converts tool inputs into validated, labeled scenario configs.
func resolve(inputs []ScenarioInput, modeName string) ([]config.Labeled, montecarlo.Mode, error) {
	mode, err := montecarlo.ParseMode(modeName)
	if err != nil {
		return nil, mode, err
	}

	doc := config.FileConfig{Mode: modeName}
	for _, in := range inputs {
		spec := config.ScenarioSpec{
			Label:  in.Label,
			Preset: in.Preset,
			Overrides: scenario.Overrides{
				Regions: in.Regions,
				Agent:   in.Agent,
			},
		}
		if in.Iterations > 0 {
			spec.Overrides.Simulation.Iterations = &in.Iterations
		}
		if in.HorizonWeeks > 0 {
			spec.Overrides.Simulation.HorizonWeeks = &in.HorizonWeeks
		}
		spec.Overrides.Simulation.Seed = in.Seed
		doc.Scenarios = append(doc.Scenarios, spec)
	}

	scs, err := doc.Scenarios()
	if err != nil {
		return nil, mode, err
	}
	return scs, mode, nil
}
