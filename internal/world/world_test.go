package world

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplychain-sim/internal/disruption"
	"supplychain-sim/internal/market"
	"supplychain-sim/internal/metrics"
	"supplychain-sim/internal/scenario"
)

// quietConfig は障害も市場変動もない決定的な設定を返す
func quietConfig() scenario.Config {
	cfg := scenario.DefaultConfig()
	for name, p := range cfg.Regions {
		p.DisasterProbability = 0
		cfg.Regions[name] = p
	}
	cfg.Market = scenario.Market{}
	return cfg
}

func runToEnd(t *testing.T, w *World) []State {
	t.Helper()
	var states []State
	for !w.Done() {
		s, _, _, err := w.Step()
		require.NoError(t, err)
		states = append(states, s)
	}
	return states
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := scenario.DefaultConfig()
	cfg.Regions = nil
	_, err := New(cfg, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	assert.True(t, scenario.IsConfigError(err))
}

func TestStepUntilTerminal(t *testing.T) {
	cfg := scenario.DefaultConfig()
	cfg.Simulation.HorizonWeeks = 4
	w, err := New(cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	for week := 1; week <= 4; week++ {
		s, reward, done, err := w.Step()
		require.NoError(t, err)
		assert.Equal(t, week, s.Week)
		assert.Equal(t, week == 4, done)
		assert.InDelta(t, s.Metrics.ServiceLevel-0.5*s.Metrics.CostImpact, reward, 1e-12)
		assert.Len(t, s.Indicators, 3)
	}

	_, _, done, err := w.Step()
	assert.True(t, done)
	assert.ErrorIs(t, err, ErrTerminal)
	assert.Equal(t, 4, w.Week())

	for _, name := range metrics.Names() {
		assert.Equal(t, 4, w.Recorder().Series(name).Len(), name)
	}
	for _, r := range w.Regions() {
		assert.Equal(t, 4, w.Recorder().RegionSeries(metrics.SupplierPerformance, r).Len())
		assert.Equal(t, 4, w.Recorder().RegionSeries(metrics.RegionalPerformance, r).Len())
	}
}

func TestGoldenConvergence(t *testing.T) {
	cfg := quietConfig()
	w, err := New(cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	states := runToEnd(t, w)
	require.Len(t, states, 52)

	first := states[0].Metrics
	assert.InDelta(t, 0.984, first.ResilienceScore, 1e-9)
	assert.InDelta(t, 0.85572, first.InventoryHealth, 1e-9)
	assert.InDelta(t, 0.704428704, first.ServiceLevel, 1e-9)
	assert.InDelta(t, 0.02, first.RiskExposure, 1e-12)
	assert.InDelta(t, 0.9, first.TransportationEfficiency, 1e-12)
	assert.InDelta(t, 0.33, first.CostImpact, 1e-12)
	assert.InDelta(t, -1.0, first.ROI, 1e-12)
	assert.Equal(t, 0.0, first.RecoveryTime)

	last := states[len(states)-1].Metrics
	assert.InDelta(t, 0.5932592572155239, last.ServiceLevel, 1e-9)
	assert.InDelta(t, 0.9153933767924372, last.ResilienceScore, 1e-9)
	assert.InDelta(t, 0.7206745107088482, last.InventoryHealth, 1e-9)

	// 数週で固定点に収束する
	for _, s := range states[20:] {
		assert.InDelta(t, last.ServiceLevel, s.Metrics.ServiceLevel, 1e-9)
		assert.InDelta(t, last.ResilienceScore, s.Metrics.ResilienceScore, 1e-9)
	}

	summary := w.Summary()
	assert.Equal(t, 0.0, summary[metrics.DisruptionCount])
	assert.Equal(t, 0.0, summary[metrics.AvgRecoveryTime])
	assert.InDelta(t, 0.33, summary[metrics.MaxCostImpact], 1e-12)
	assert.InDelta(t, last.ServiceLevel, summary[metrics.MinServiceLevel], 1e-9)
	assert.InDelta(t, 0.85, summary["supplier_performance_East_Asia"], 1e-12)
	assert.InDelta(t, 0.875, summary["regional_performance_Europe"], 1e-12)
}

func TestSameSeedSameTrajectory(t *testing.T) {
	cfg := scenario.DefaultConfig()

	a, err := New(cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	b, err := New(cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	runToEnd(t, a)
	runToEnd(t, b)

	assert.Equal(t, a.Summary(), b.Summary())
	assert.Equal(t, a.Ledger().All(), b.Ledger().All())
	assert.Equal(t, a.CompetitorActions(), b.CompetitorActions())
}

func TestLedgerMatchesStates(t *testing.T) {
	cfg, err := scenario.GetPreset("multi_factor_disruption")
	require.NoError(t, err)
	w, err := New(cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)

	states := runToEnd(t, w)

	total := 0
	for _, s := range states {
		assert.Equal(t, s.Disruptions, w.Ledger().ForWeek(s.Week))
		total += len(s.Disruptions)
		if len(s.Disruptions) == 0 {
			assert.Equal(t, 0.0, s.Metrics.RecoveryTime)
		} else {
			assert.GreaterOrEqual(t, s.Metrics.RecoveryTime, 1.0)
		}
	}
	assert.Equal(t, total, w.Ledger().Len())
	assert.Equal(t, uint64(total), w.DisruptionStats().TotalDisruptions)
	assert.Equal(t, float64(total), w.Summary()[metrics.DisruptionCount])
	assert.Positive(t, total)
	assert.Positive(t, w.RecoveryStats().DisruptedWeeks)
}

func TestNonFiniteProfileFails(t *testing.T) {
	cfg := scenario.DefaultConfig()
	p := cfg.Regions["Europe"]
	p.InfrastructureQuality = math.NaN()
	cfg.Regions["Europe"] = p

	w, err := New(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	_, _, _, err = w.Step()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonFinite))
	assert.Equal(t, 0, w.Recorder().Series(metrics.ServiceLevel).Len())
}

func TestComputeBoundsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(2024))
	types := []disruption.Type{disruption.TypeNatural, disruption.TypePolitical, disruption.TypeInfrastructure}

	for i := 0; i < 10000; i++ {
		n := 1 + rng.Intn(6)
		in := Inputs{
			StrategyCost:          rng.Float64() * 2,
			RecoveryEffectiveness: rng.Float64(),
			TransportFlexibility:  rng.Float64(),
		}
		if rng.Intn(4) > 0 {
			in.Prev = &Previous{ServiceLevel: rng.Float64(), InventoryHealth: rng.Float64()}
		}
		for r := 0; r < n; r++ {
			name := string(rune('A' + r))
			p := scenario.RegionProfile{
				PoliticalStability:    rng.Float64(),
				DisasterProbability:   rng.Float64(),
				LaborCost:             rng.Float64() * 2,
				InfrastructureQuality: rng.Float64(),
				MarketSize:            rng.Float64(),
			}
			in.Regions = append(in.Regions, RegionInput{
				Name:    name,
				Profile: p,
				Indicators: market.Indicators{
					GDPGrowth:    -0.05 + rng.Float64()*0.15,
					Inflation:    rng.Float64() * 0.15,
					ExchangeRate: 0.5 + rng.Float64()*1.5,
				},
			})
			for k := rng.Intn(3); k > 0; k-- {
				typ := types[rng.Intn(len(types))]
				in.Disruptions = append(in.Disruptions, disruption.Event{
					Region:   name,
					Type:     typ,
					Severity: disruption.Severity(typ, 0.1+rng.Float64()*0.9, p),
				})
			}
		}

		m := Compute(in)
		fractional := map[string]float64{
			"risk_exposure":             m.RiskExposure,
			"transportation_efficiency": m.TransportationEfficiency,
			"resilience_score":          m.ResilienceScore,
			"inventory_health":          m.InventoryHealth,
			"service_level":             m.ServiceLevel,
		}
		for r, v := range m.SupplierPerformance {
			fractional["supplier_performance_"+r] = v
		}
		for r, v := range m.RegionalPerformance {
			fractional["regional_performance_"+r] = v
		}
		for name, v := range fractional {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("sample %d: %s = %v out of [0,1]", i, name, v)
			}
		}
		if m.RecoveryTime < 0 || m.RecoveryTime > 10 {
			t.Fatalf("sample %d: recovery_time = %v out of [0,10]", i, m.RecoveryTime)
		}
		if len(in.Disruptions) > 0 && m.RecoveryTime < 1 {
			t.Fatalf("sample %d: recovery_time = %v below 1 with %d disruptions", i, m.RecoveryTime, len(in.Disruptions))
		}
		if len(in.Disruptions) == 0 && m.RecoveryTime != 0 {
			t.Fatalf("sample %d: recovery_time = %v without disruptions", i, m.RecoveryTime)
		}
		if math.Abs(m.Reward-(m.ServiceLevel-0.5*m.CostImpact)) > 1e-12 {
			t.Fatalf("sample %d: reward mismatch", i)
		}
	}
}

func TestComputeROI(t *testing.T) {
	base := Inputs{
		Regions: []RegionInput{{
			Name:       "Europe",
			Profile:    scenario.DefaultConfig().Regions["Europe"],
			Indicators: market.Indicators{GDPGrowth: 0.02, Inflation: 0.02, ExchangeRate: 1},
		}},
		StrategyCost:          0.33,
		RecoveryEffectiveness: 0.33,
		TransportFlexibility:  0.3,
	}

	quiet := Compute(base)
	assert.InDelta(t, -1.0, quiet.ROI, 1e-12)

	hit := base
	hit.Disruptions = []disruption.Event{{Region: "Europe", Severity: 0.5}}
	m := Compute(hit)
	wantBenefit := 0.5 * (1 - m.ResilienceScore)
	assert.InDelta(t, (wantBenefit-0.33)/0.33, m.ROI, 1e-12)
	assert.InDelta(t, 0.33+0.25, m.CostImpact, 1e-12)

	free := base
	free.StrategyCost = 0
	assert.Equal(t, 0.0, Compute(free).ROI)
}
