package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplychain-sim/internal/metrics"
	"supplychain-sim/internal/montecarlo"
)

func summary(iter int, m map[string]float64) montecarlo.IterationSummary {
	return montecarlo.IterationSummary{Scenario: "baseline", Iteration: iter, Metrics: m}
}

func TestAnalyzeMeanAndStd(t *testing.T) {
	st, err := Analyze([]montecarlo.IterationSummary{
		summary(0, map[string]float64{metrics.AvgResilience: 0.8, metrics.MinServiceLevel: 0.5, metrics.MaxCostImpact: 0.4}),
		summary(1, map[string]float64{metrics.AvgResilience: 0.9, metrics.MinServiceLevel: 0.3, metrics.MaxCostImpact: 0.7}),
		summary(2, map[string]float64{metrics.AvgResilience: 1.0, metrics.MinServiceLevel: 0.6, metrics.MaxCostImpact: 0.5}),
	})
	require.NoError(t, err)

	assert.Equal(t, "baseline", st.Scenario)
	assert.Equal(t, 3, st.Iterations)
	assert.InDelta(t, 0.9, st.Mean[metrics.AvgResilience], 1e-9)
	assert.InDelta(t, 0.1, st.Std[metrics.AvgResilience], 1e-9)
	assert.Equal(t, 0.3, st.MinServiceLevel)
	assert.Equal(t, 0.7, st.MaxCostImpact)

	values := st.Values()
	assert.Equal(t, 0.3, values[metrics.MinServiceLevel])
	assert.Equal(t, 0.7, values[metrics.MaxCostImpact])
	assert.InDelta(t, 0.9, values[metrics.AvgResilience], 1e-12)
}

func TestAnalyzeSingleIterationStdIsZero(t *testing.T) {
	st, err := Analyze([]montecarlo.IterationSummary{
		summary(0, map[string]float64{metrics.AvgServiceLevel: 0.7}),
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, st.Std[metrics.AvgServiceLevel])
	assert.False(t, math.IsNaN(st.Std[metrics.AvgServiceLevel]))
}

func TestAnalyzeNoIterations(t *testing.T) {
	_, err := Analyze(nil)
	assert.ErrorIs(t, err, ErrNoIterations)

	st, err := Analyze([]montecarlo.IterationSummary{
		{Scenario: "x", Iteration: 0, Failed: true, Error: "boom"},
	})
	assert.ErrorIs(t, err, ErrNoIterations)
	assert.Equal(t, 1, st.Failed)
}

func TestAnalyzeSkipsFailed(t *testing.T) {
	st, err := Analyze([]montecarlo.IterationSummary{
		summary(0, map[string]float64{metrics.AvgROI: -1}),
		{Scenario: "baseline", Iteration: 1, Failed: true},
		summary(2, map[string]float64{metrics.AvgROI: -0.5}),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, st.Iterations)
	assert.Equal(t, 1, st.Failed)
	assert.InDelta(t, -0.75, st.Mean[metrics.AvgROI], 1e-12)
}

func TestFlatIncludesStd(t *testing.T) {
	st := Stats{
		Mean: map[string]float64{metrics.AvgResilience: 0.9},
		Std:  map[string]float64{metrics.AvgResilience: 0.05},
	}
	flat := st.Flat()
	assert.Equal(t, 0.9, flat[metrics.AvgResilience])
	assert.Equal(t, 0.05, flat["std_"+metrics.AvgResilience])
	assert.True(t, IsStdKey("std_"+metrics.AvgResilience))
	assert.False(t, IsStdKey(metrics.AvgResilience))
}

func TestComparePercentChange(t *testing.T) {
	all := map[string]Stats{
		"baseline": {Mean: map[string]float64{metrics.AvgResilience: 0.8, metrics.AvgROI: 0}},
		"supplier_disruption": {Mean: map[string]float64{
			metrics.AvgResilience: 0.6,
			metrics.AvgROI:        -0.5,
		}},
	}
	values, pct := Compare(all)

	assert.Equal(t, 0.6, values["supplier_disruption"][metrics.AvgResilience])
	assert.InDelta(t, -25.0, pct["supplier_disruption"][metrics.AvgResilience], 1e-9)
	assert.Equal(t, 0.0, pct["baseline"][metrics.AvgResilience])

	// baseline の値が 0 のセルは省略
	_, ok := pct["supplier_disruption"][metrics.AvgROI]
	assert.False(t, ok)
}

func TestCompareWithoutBaseline(t *testing.T) {
	values, pct := Compare(map[string]Stats{
		"a": {Mean: map[string]float64{metrics.AvgResilience: 0.8}},
		"b": {Mean: map[string]float64{metrics.AvgResilience: 0.7}},
	})
	assert.Len(t, values, 2)
	assert.Empty(t, pct)
}

func TestTableOrdering(t *testing.T) {
	tbl := Table{
		"transportation_disruption": {"b": 1},
		"baseline":                  {"c": 1},
		"supplier_disruption":       {"a": 1},
	}
	assert.Equal(t, []string{"baseline", "supplier_disruption", "transportation_disruption"}, tbl.Scenarios())
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Metrics())
}

func TestRound3(t *testing.T) {
	assert.Equal(t, 0.593, Round3(0.5932592572155239))
	assert.Equal(t, 0.916, Round3(0.9155))
	assert.Equal(t, -1.0, Round3(-1))
	assert.True(t, math.IsNaN(Round3(math.NaN())))

	rounded := RoundTable(Table{"baseline": {"x": 0.12345}})
	assert.Equal(t, 0.123, rounded["baseline"]["x"])
}

func TestReport(t *testing.T) {
	values, pct := Compare(map[string]Stats{
		"baseline":            {Mean: map[string]float64{metrics.AvgResilience: 0.8, metrics.AvgCostImpact: 1250.5}},
		"supplier_disruption": {Mean: map[string]float64{metrics.AvgResilience: 0.6, metrics.AvgCostImpact: 1300}},
	})
	out := Report(values, pct)

	assert.Contains(t, out, "Supply chain resilience comparison")
	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "0.600 (-25.0%)")
	assert.Contains(t, out, "1,250.500")
	assert.NotContains(t, out, "percentage changes omitted")
}

func TestReportWithoutBaseline(t *testing.T) {
	values, pct := Compare(map[string]Stats{
		"a": {Mean: map[string]float64{metrics.AvgResilience: 0.8}},
		"b": {Mean: map[string]float64{metrics.AvgResilience: 0.7}},
	})
	out := Report(values, pct)
	assert.Contains(t, out, "percentage changes omitted")
}
