package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"supplychain-sim/internal/simulation"
	"supplychain-sim/internal/store"
)

// execute はルートコマンドを args で実行し、標準出力の内容を返す
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SUPPLYSIM_DB", "")
	t.Setenv("SUPPLYSIM_DECISION_LOG_DIR", "")
	t.Setenv("SUPPLYSIM_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, version, got["version"])
}

func TestPresetsList(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "global_tariff_disruption")
}

func TestPresetsShow(t *testing.T) {
	out, err := execute(t, "presets", "supplier_disruption", "--json")
	require.NoError(t, err)

	var info presetInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "supplier_disruption", info.Name)
	assert.NotEmpty(t, info.Parameters)
}

func TestPresetsUnknown(t *testing.T) {
	_, err := execute(t, "presets", "asteroid")
	assert.Error(t, err)
}

func TestRunJSON(t *testing.T) {
	out, err := execute(t, "run", "baseline", "--iterations", "2", "--weeks", "4", "--json")
	require.NoError(t, err)

	var outcomes []simulation.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	require.Len(t, outcomes, 1)
	assert.Equal(t, "baseline", outcomes[0].Scenario)
	assert.Equal(t, 2, outcomes[0].Completed)
	require.NotNil(t, outcomes[0].Stats)
	assert.Contains(t, outcomes[0].Stats.Mean, "avg_resilience")
}

func TestRunText(t *testing.T) {
	out, err := execute(t, "run", "production_disruption", "--iterations", "2", "--weeks", "4", "--mode", "independent", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Scenario: production_disruption (mode independent)")
	assert.Contains(t, out, "avg_resilience")
}

func TestRunUnknownPreset(t *testing.T) {
	_, err := execute(t, "run", "asteroid")
	assert.Error(t, err)
}

func TestRunBadMode(t *testing.T) {
	_, err := execute(t, "run", "--mode", "turbo", "--iterations", "1")
	assert.Error(t, err)
}

func TestRunExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "iterations.csv")
	_, err := execute(t, "run", "--iterations", "3", "--weeks", "4", "--export", "csv", "--out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "scenario,iteration,failed,error"))
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: independent
scenarios:
  - preset: baseline
  - label: harsh
    preset: supplier_disruption
    overrides:
      regions:
        East_Asia:
          disaster_probability: 0.2
`), 0o644))

	out, err := execute(t, "run", "--config", path, "--iterations", "2", "--weeks", "3", "--json")
	require.NoError(t, err)

	var outcomes []simulation.Outcome
	require.NoError(t, json.Unmarshal([]byte(out), &outcomes))
	require.Len(t, outcomes, 2)
	assert.Equal(t, "harsh", outcomes[1].Scenario)
	assert.Equal(t, 2, outcomes[1].Completed)
}

func TestRunConfigWithPresetArg(t *testing.T) {
	_, err := execute(t, "run", "baseline", "--config", "scenarios.yaml")
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	out, err := execute(t, "compare", "baseline", "supplier_disruption", "--iterations", "2", "--weeks", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Supply chain resilience comparison")
	assert.Contains(t, out, "supplier_disruption")
	assert.Contains(t, out, "%)")
}

func TestCompareCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comparison.csv")
	_, err := execute(t, "compare", "baseline", "transportation_disruption",
		"--iterations", "2", "--weeks", "4", "--csv", path, "--json")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "transportation_disruption")
}

func TestRunsWithDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(t, "--db", db, "run", "baseline", "--iterations", "2", "--weeks", "4")
	require.NoError(t, err)

	out, err := execute(t, "--db", db, "runs", "list", "--json")
	require.NoError(t, err)
	var runs []store.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "baseline", runs[0].Scenario)

	out, err = execute(t, "--db", db, "runs", "show", runs[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, runs[0].ID)
	assert.Contains(t, out, "avg_resilience")

	out, err = execute(t, "--db", db, "runs", "show", runs[0].ID, "--export", "jsonl")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	_, err = execute(t, "--db", db, "runs", "delete", runs[0].ID)
	require.NoError(t, err)

	_, err = execute(t, "--db", db, "runs", "show", runs[0].ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunsWithoutDatabase(t *testing.T) {
	_, err := execute(t, "runs", "list")
	assert.ErrorIs(t, err, errNoDatabase)
}

func TestPresetsYAML(t *testing.T) {
	out, err := execute(t, "presets", "--yaml")
	require.NoError(t, err)

	var infos []presetInfo
	require.NoError(t, yaml.Unmarshal([]byte(out), &infos))
	require.Len(t, infos, 6)
	assert.Equal(t, "baseline", infos[0].Name)
}
