package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplychain-sim/internal/events"
	"supplychain-sim/internal/simulation"
	"supplychain-sim/internal/store"
)

func newTestServer(t *testing.T, withStore bool) (*Server, *httptest.Server) {
	t.Helper()
	opts := simulation.Options{}
	if withStore {
		st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
		require.NoError(t, err)
		t.Cleanup(func() { st.Close() })
		opts.Store = st
	}
	bus := events.NewBus()
	opts.Bus = bus
	srv := NewServer("127.0.0.1:0", simulation.New(opts), bus)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	return resp
}

func TestStatus(t *testing.T) {
	_, ts := newTestServer(t, true)

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.False(t, status.Running)
	assert.True(t, status.Persistent)
}

func TestMethodNotAllowed(t *testing.T) {
	_, ts := newTestServer(t, false)

	resp := postJSON(t, ts.URL+"/api/status", map[string]any{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPresets(t *testing.T) {
	_, ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/api/presets")
	require.NoError(t, err)
	defer resp.Body.Close()

	var presets []PresetInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&presets))
	require.Len(t, presets, 6)
	assert.Equal(t, "baseline", presets[0].Name)
	assert.NotEmpty(t, presets[0].Parameters)
}

func TestRunWaitAndFetch(t *testing.T) {
	_, ts := newTestServer(t, true)

	resp := postJSON(t, ts.URL+"/api/runs", map[string]any{
		"preset": "supplier_disruption",
		"wait":   true,
		"overrides": map[string]any{
			"simulation": map[string]any{"iterations": 2, "horizon_weeks": 6},
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out simulation.Outcome
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "supplier_disruption", out.Scenario)
	assert.Equal(t, 2, out.Completed)
	require.NotEmpty(t, out.RunID)

	list, err := http.Get(ts.URL + "/api/runs")
	require.NoError(t, err)
	defer list.Body.Close()
	var runs []store.Run
	require.NoError(t, json.NewDecoder(list.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, out.RunID, runs[0].ID)

	detail, err := http.Get(ts.URL + "/api/runs/" + out.RunID)
	require.NoError(t, err)
	defer detail.Body.Close()
	var rd RunDetail
	require.NoError(t, json.NewDecoder(detail.Body).Decode(&rd))
	assert.Len(t, rd.Summaries, 2)
}

func TestRunUnknownPreset(t *testing.T) {
	_, ts := newTestServer(t, false)

	resp := postJSON(t, ts.URL+"/api/runs", map[string]any{"preset": "volcano", "wait": true})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunInvalidBody(t *testing.T) {
	_, ts := newTestServer(t, false)

	resp, err := http.Post(ts.URL+"/api/runs", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRunConflict(t *testing.T) {
	srv, ts := newTestServer(t, false)
	srv.mu.Lock()
	srv.running = true
	srv.mu.Unlock()

	resp := postJSON(t, ts.URL+"/api/runs", map[string]any{"preset": "baseline", "wait": true})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRunsWithoutStore(t *testing.T) {
	_, ts := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/api/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRunNotFound(t *testing.T) {
	_, ts := newTestServer(t, true)

	resp, err := http.Get(ts.URL + "/api/runs/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCompareWait(t *testing.T) {
	_, ts := newTestServer(t, false)

	small := map[string]any{"simulation": map[string]any{"iterations": 2, "horizon_weeks": 5}}
	resp := postJSON(t, ts.URL+"/api/compare", map[string]any{
		"wait": true,
		"scenarios": []map[string]any{
			{"preset": "baseline", "overrides": small},
			{"preset": "transportation_disruption", "overrides": small},
		},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cmp simulation.Comparison
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cmp))
	assert.Len(t, cmp.Runs, 2)
	assert.Contains(t, cmp.Pct, "transportation_disruption")
}

func TestCompareEmpty(t *testing.T) {
	_, ts := newTestServer(t, false)

	resp := postJSON(t, ts.URL+"/api/compare", map[string]any{"wait": true})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStopWithoutRun(t *testing.T) {
	_, ts := newTestServer(t, false)

	resp := postJSON(t, ts.URL+"/api/stop", map[string]any{})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
