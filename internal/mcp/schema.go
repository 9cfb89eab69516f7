package mcp

// PresetsInput defines the input for supplychain_presets tool.
type PresetsInput struct{}

// PresetsOutput defines the output for supplychain_presets tool.
type PresetsOutput struct {
	Presets []PresetSummary `json:"presets" jsonschema:"Available preset scenarios"`
	Count   int             `json:"count" jsonschema:"Number of presets"`
}

// PresetSummary describes one preset and its editable parameters.
type PresetSummary struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  []ParameterRange `json:"parameters"`
}

// ParameterRange is one overridable parameter path.
type ParameterRange struct {
	Path    string  `json:"path"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
}

// ScenarioInput identifies a preset plus optional overrides.
type ScenarioInput struct {
	Label        string                        `json:"label,omitempty" jsonschema:"Label for the scenario (defaults to the preset name)"`
	Preset       string                        `json:"preset" jsonschema:"Preset scenario name, e.g. baseline or supplier_disruption"`
	Iterations   int                           `json:"iterations,omitempty" jsonschema:"Number of Monte Carlo iterations"`
	HorizonWeeks int                           `json:"horizon_weeks,omitempty" jsonschema:"Weeks simulated per iteration"`
	Seed         *int64                        `json:"seed,omitempty" jsonschema:"Random seed"`
	Regions      map[string]map[string]float64 `json:"regions,omitempty" jsonschema:"Region field overrides, keyed by region then field"`
	Agent        map[string]float64            `json:"agent,omitempty" jsonschema:"Agent capability overrides"`
}

// RunInput defines the input for supplychain_run tool.
type RunInput struct {
	Label        string                        `json:"label,omitempty" jsonschema:"Label for the scenario (defaults to the preset name)"`
	Preset       string                        `json:"preset" jsonschema:"Preset scenario name, e.g. baseline or supplier_disruption"`
	Iterations   int                           `json:"iterations,omitempty" jsonschema:"Number of Monte Carlo iterations"`
	HorizonWeeks int                           `json:"horizon_weeks,omitempty" jsonschema:"Weeks simulated per iteration"`
	Seed         *int64                        `json:"seed,omitempty" jsonschema:"Random seed"`
	Regions      map[string]map[string]float64 `json:"regions,omitempty" jsonschema:"Region field overrides, keyed by region then field"`
	Agent        map[string]float64            `json:"agent,omitempty" jsonschema:"Agent capability overrides"`
	Mode         string                        `json:"mode,omitempty" jsonschema:"Random stream mode: shared (default) or independent"`
}

func (in RunInput) scenario() ScenarioInput {
	return ScenarioInput{
		Label:        in.Label,
		Preset:       in.Preset,
		Iterations:   in.Iterations,
		HorizonWeeks: in.HorizonWeeks,
		Seed:         in.Seed,
		Regions:      in.Regions,
		Agent:        in.Agent,
	}
}

// RunOutput defines the output for supplychain_run tool.
type RunOutput struct {
	RunID     string             `json:"run_id,omitempty" jsonschema:"Stored run ID when persistence is enabled"`
	Scenario  string             `json:"scenario" jsonschema:"Scenario label"`
	Completed int                `json:"completed" jsonschema:"Completed iterations"`
	Failed    int                `json:"failed" jsonschema:"Failed iterations"`
	Metrics   map[string]float64 `json:"metrics,omitempty" jsonschema:"Aggregated metrics rounded to 3 decimals"`
	Message   string             `json:"message" jsonschema:"Human-readable result message"`
}

// CompareInput defines the input for supplychain_compare tool.
type CompareInput struct {
	Scenarios []ScenarioInput `json:"scenarios" jsonschema:"Scenarios to compare; include one labeled baseline to get percentage changes"`
	Mode      string          `json:"mode,omitempty" jsonschema:"Random stream mode: shared (default) or independent"`
}

// CompareOutput defines the output for supplychain_compare tool.
type CompareOutput struct {
	Values    map[string]map[string]float64 `json:"values" jsonschema:"Metric values per scenario"`
	PctChange map[string]map[string]float64 `json:"pct_change" jsonschema:"Percentage change versus baseline per scenario"`
	Report    string                        `json:"report" jsonschema:"Formatted comparison report"`
	Missing   []string                      `json:"missing,omitempty" jsonschema:"Scenarios left out because every iteration failed"`
}
