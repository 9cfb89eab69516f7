package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplychain-sim/internal/analysis"
	"supplychain-sim/internal/montecarlo"
)

func summaries() []montecarlo.IterationSummary {
	return []montecarlo.IterationSummary{
		{Scenario: "baseline", Iteration: 0, Metrics: map[string]float64{"avg_resilience": 0.9, "avg_roi": -1}},
		{Scenario: "baseline", Iteration: 1, Failed: true, Error: "non-finite metric"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, summaries()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"scenario", "iteration", "failed", "error", "avg_resilience", "avg_roi"}, rows[0])
	assert.Equal(t, []string{"baseline", "0", "false", "", "0.9", "-1"}, rows[1])
	assert.Equal(t, []string{"baseline", "1", "true", "non-finite metric", "", ""}, rows[2])
}

func TestWriteJSONL(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, summaries()))

	var lines []map[string]any
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "baseline", lines[0]["scenario"])
	assert.Equal(t, 0.9, lines[0]["avg_resilience"])
	assert.Equal(t, false, lines[0]["failed"])
	assert.NotContains(t, lines[0], "error")
	assert.Equal(t, true, lines[1]["failed"])
	assert.Equal(t, "non-finite metric", lines[1]["error"])
}

func TestWriteTableCSV(t *testing.T) {
	values := analysis.Table{
		"baseline":            {"avg_resilience": 0.8},
		"supplier_disruption": {"avg_resilience": 0.6},
	}
	pct := analysis.Table{
		"baseline":            {"avg_resilience": 0},
		"supplier_disruption": {"avg_resilience": -25},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, values, pct))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"scenario", "metric", "value", "pct_change"},
		{"baseline", "avg_resilience", "0.8", "0"},
		{"supplier_disruption", "avg_resilience", "0.6", "-25"},
	}, rows)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("jsonl")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestWriteDispatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, summaries()))
	assert.Contains(t, buf.String(), "avg_resilience")

	assert.Error(t, Write(&buf, Format("xml"), summaries()))
}
