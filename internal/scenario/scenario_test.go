package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "baseline", config.Name)
	assert.Equal(t, 100, config.Simulation.Iterations)
	assert.Equal(t, int64(42), config.Simulation.Seed)
	assert.Equal(t, 52, config.Simulation.HorizonWeeks)
	assert.Len(t, config.Regions, 3)
	assert.Equal(t, []string{"East_Asia", "Europe", "North_America"}, config.RegionNames())
	assert.InDelta(t, 0.33, config.WeightedStrategyCost(), 1e-12)
	require.NoError(t, Validate(config))
	require.NoError(t, ValidateRanges(config))
}

func TestCloneIsDeep(t *testing.T) {
	original := ProductionDisruptionScenario()
	clone := original.Clone()

	p := clone.Regions["Europe"]
	*p.ProductionCapacity = 0.1
	clone.Regions["Europe"] = p
	clone.Weights.Cost[StrategyInventory] = 9
	clone.Agents.COO["risk_tolerance"] = 0
	clone.Simulation.DisruptionTypes[0] = "changed"

	assert.InDelta(t, 0.6, *original.Regions["Europe"].ProductionCapacity, 1e-12)
	assert.Equal(t, 0.3, original.Weights.Cost[StrategyInventory])
	assert.Equal(t, 0.6, original.Agents.COO["risk_tolerance"])
	assert.Equal(t, DisruptionNatural, original.Simulation.DisruptionTypes[0])
}

func TestGetPreset(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg, err := GetPreset(name)
			require.NoError(t, err)
			assert.Equal(t, name, cfg.Name)
			assert.NotEmpty(t, Describe(name))
			require.NoError(t, ValidateRanges(cfg))
		})
	}
}

func TestGetPresetUnknown(t *testing.T) {
	_, err := GetPreset("unknown")
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
	assert.Empty(t, Describe("unknown"))
}

func TestSupplierDisruptionProbabilities(t *testing.T) {
	cfg, err := GetPreset("supplier_disruption")
	require.NoError(t, err)

	assert.InDelta(t, 0.20, cfg.Regions["North_America"].DisasterProbability, 1e-12)
	assert.InDelta(t, 0.16, cfg.Regions["Europe"].DisasterProbability, 1e-12)
	assert.InDelta(t, 0.30, cfg.Regions["East_Asia"].DisasterProbability, 1e-12)
}

func TestPresetMultipliers(t *testing.T) {
	def := DefaultConfig()

	tests := []struct {
		preset string
		field  string
		k      float64
	}{
		{"supplier_disruption", FieldDisasterProbability, 2.0},
		{"transportation_disruption", FieldInfrastructureQuality, 0.7},
		{"production_disruption", FieldDisasterProbability, 1.5},
		{"multi_factor_disruption", FieldDisasterProbability, 1.8},
		{"multi_factor_disruption", FieldInfrastructureQuality, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.preset+"/"+tt.field, func(t *testing.T) {
			cfg, err := GetPreset(tt.preset)
			require.NoError(t, err)
			for region, d := range def.Regions {
				want, _ := d.Field(tt.field)
				got, ok := cfg.Regions[region].Field(tt.field)
				require.True(t, ok)
				assert.InDelta(t, Clamp01(want*tt.k), got, 1e-12, region)
			}
		})
	}
}

func TestPresetProductionCapacity(t *testing.T) {
	tests := []struct {
		preset string
		want   float64
	}{
		{"production_disruption", 0.6},
		{"multi_factor_disruption", 0.7},
	}
	for _, tt := range tests {
		cfg, err := GetPreset(tt.preset)
		require.NoError(t, err)
		for region, p := range cfg.Regions {
			require.NotNil(t, p.ProductionCapacity, region)
			assert.InDelta(t, tt.want, *p.ProductionCapacity, 1e-12)
		}
	}

	baseline, err := GetPreset("baseline")
	require.NoError(t, err)
	for _, p := range baseline.Regions {
		assert.Nil(t, p.ProductionCapacity)
	}
}

func TestGlobalTariffDisruption(t *testing.T) {
	cfg, err := GetPreset("global_tariff_disruption")
	require.NoError(t, err)
	def := DefaultConfig()

	ea := cfg.Regions["East_Asia"]
	assert.InDelta(t, 0.6*0.8, ea.PoliticalStability, 1e-12)
	assert.InDelta(t, 0.7*1.3, ea.LaborCost, 1e-12)
	assert.InDelta(t, 0.85*0.9, ea.InfrastructureQuality, 1e-12)
	assert.InDelta(t, 0.15*1.4, ea.DisasterProbability, 1e-12)

	eu := cfg.Regions["Europe"]
	assert.InDelta(t, 1.1*1.1, eu.LaborCost, 1e-12)
	assert.InDelta(t, 0.08*1.2, eu.DisasterProbability, 1e-12)
	assert.InDelta(t, 0.95*0.95, eu.InfrastructureQuality, 1e-12)
	assert.Equal(t, def.Regions["Europe"].PoliticalStability, eu.PoliticalStability)

	assert.InDelta(t, 0.4*1.2, cfg.Strategies[StrategyDiversification].CostImpact, 1e-12)
	assert.InDelta(t, 0.2*1.15, cfg.Strategies[StrategyTransport].CostImpact, 1e-12)
	assert.Equal(t, 0.3, cfg.Strategies[StrategyInventory].CostImpact)
}

func TestPresetsDoNotShareState(t *testing.T) {
	a, _ := GetPreset("supplier_disruption")
	a.Regions["Europe"] = RegionProfile{}

	b, _ := GetPreset("supplier_disruption")
	assert.InDelta(t, 0.16, b.Regions["Europe"].DisasterProbability, 1e-12)
	assert.InDelta(t, 0.08, DefaultConfig().Regions["Europe"].DisasterProbability, 1e-12)
}

func TestComposeWithoutOverrides(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			preset, err := GetPreset(name)
			require.NoError(t, err)
			composed, err := Compose(name, Overrides{})
			require.NoError(t, err)
			assert.Equal(t, preset, composed)
		})
	}
}

func TestComposeRetainsMultiplier(t *testing.T) {
	cfg, err := Compose("supplier_disruption", Overrides{
		Regions: map[string]map[string]float64{
			"East_Asia": {FieldDisasterProbability: 0.2},
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.4, cfg.Regions["East_Asia"].DisasterProbability, 1e-12)
	// 上書きしていない地域はプリセットのまま
	assert.InDelta(t, 0.16, cfg.Regions["Europe"].DisasterProbability, 1e-12)
}

func TestComposeBaselineAssignsDirectly(t *testing.T) {
	cfg, err := Compose("baseline", Overrides{
		Regions: map[string]map[string]float64{
			"Europe": {FieldInfrastructureQuality: 0.5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.Regions["Europe"].InfrastructureQuality)
}

func TestComposeUnscaledFieldAssignedDirectly(t *testing.T) {
	cfg, err := Compose("production_disruption", Overrides{
		Regions: map[string]map[string]float64{
			"Europe": {FieldProductionCapacity: 0.3, FieldMarketSize: 0.5},
		},
	})
	require.NoError(t, err)

	eu := cfg.Regions["Europe"]
	require.NotNil(t, eu.ProductionCapacity)
	assert.Equal(t, 0.3, *eu.ProductionCapacity)
	// market_size の倍率は 1
	assert.InDelta(t, 0.5, eu.MarketSize, 1e-12)
}

func TestComposeClampsFractionalFields(t *testing.T) {
	cfg, err := Compose("supplier_disruption", Overrides{
		Regions: map[string]map[string]float64{
			"Europe": {FieldDisasterProbability: 0.9},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.Regions["Europe"].DisasterProbability)
}

func TestComposeUnknownRegionIgnored(t *testing.T) {
	cfg, err := Compose("baseline", Overrides{
		Regions: map[string]map[string]float64{
			"Atlantis": {FieldDisasterProbability: 0.9},
		},
	})
	require.NoError(t, err)
	assert.NotContains(t, cfg.Regions, "Atlantis")
	assert.Equal(t, DefaultConfig().Regions, cfg.Regions)
}

func TestComposeUnknownField(t *testing.T) {
	_, err := Compose("baseline", Overrides{
		Regions: map[string]map[string]float64{
			"Europe": {"weather": 0.9},
		},
	})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestComposeUnknownPreset(t *testing.T) {
	_, err := Compose("nope", Overrides{})
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestComposeSimulationAndAgent(t *testing.T) {
	cfg, err := Compose("supplier_disruption", Overrides{
		Simulation: SimulationOverrides{
			Iterations:   ptr(10),
			Seed:         ptr(int64(7)),
			HorizonWeeks: ptr(12),
		},
		Agent: map[string]float64{"risk_tolerance": 0.2},
	})
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Simulation.Iterations)
	assert.Equal(t, int64(7), cfg.Simulation.Seed)
	assert.Equal(t, 12, cfg.Simulation.HorizonWeeks)
	assert.Equal(t, 0.2, cfg.Agents.COO["risk_tolerance"])
	assert.Equal(t, 0.2, cfg.Agents.RegionalManager["risk_tolerance"])
	assert.Equal(t, 0.2, cfg.Agents.Supplier["risk_tolerance"])
	// 既存キーは保持される
	assert.Equal(t, 0.8, cfg.Agents.COO["decision_making_speed"])
	// プリセットの倍率は維持される
	assert.InDelta(t, 0.30, cfg.Regions["East_Asia"].DisasterProbability, 1e-12)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero iterations", func(c *Config) { c.Simulation.Iterations = 0 }},
		{"zero horizon", func(c *Config) { c.Simulation.HorizonWeeks = 0 }},
		{"no regions", func(c *Config) { c.Regions = nil }},
		{"no disruption types", func(c *Config) { c.Simulation.DisruptionTypes = nil }},
		{"unknown disruption type", func(c *Config) { c.Simulation.DisruptionTypes = []string{"cyber"} }},
		{"missing strategy", func(c *Config) { delete(c.Strategies, StrategyTransport) }},
		{"missing resilience weight", func(c *Config) { delete(c.Weights.Resilience, StrategyInventory) }},
		{"missing cost weight", func(c *Config) { c.Weights.Cost = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, IsConfigError(err))
		})
	}
}

func TestValidateRanges(t *testing.T) {
	cfg := DefaultConfig()
	p := cfg.Regions["Europe"]
	p.InfrastructureQuality = 1.5
	cfg.Regions["Europe"] = p
	assert.Error(t, ValidateRanges(cfg))

	cfg = DefaultConfig()
	p = cfg.Regions["Europe"]
	p.LaborCost = 1.5
	cfg.Regions["Europe"] = p
	assert.NoError(t, ValidateRanges(cfg))

	cfg = DefaultConfig()
	cfg.Market.DemandVolatility = -1
	assert.Error(t, ValidateRanges(cfg))
}

func TestEditableParameters(t *testing.T) {
	params, err := EditableParameters("supplier_disruption")
	require.NoError(t, err)

	byPath := map[string]Parameter{}
	for _, p := range params {
		byPath[p.Path] = p
	}
	assert.Equal(t, Parameter{Path: "simulation.iterations", Min: 10, Max: 10000, Default: 100}, byPath["simulation.iterations"])
	assert.Equal(t, 520.0, byPath["simulation.horizon_weeks"].Max)
	assert.Equal(t, 999999.0, byPath["simulation.seed"].Max)
	assert.InDelta(t, 0.30, byPath["regions.East_Asia.disaster_probability"].Default, 1e-12)
	assert.Equal(t, 1.0, byPath["regions.East_Asia.production_capacity"].Default)
	assert.Contains(t, byPath, "agent.risk_tolerance")

	_, err = EditableParameters("nope")
	assert.Error(t, err)
}

func TestRegionProfileWithField(t *testing.T) {
	p := DefaultConfig().Regions["Europe"]

	q, err := p.WithField(FieldLaborCost, 1.7)
	require.NoError(t, err)
	assert.Equal(t, 1.7, q.LaborCost)
	assert.Equal(t, 1.1, p.LaborCost)

	q, err = p.WithField(FieldMarketSize, -0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.0, q.MarketSize)

	_, err = p.WithField("unknown", 1)
	assert.Error(t, err)
}
