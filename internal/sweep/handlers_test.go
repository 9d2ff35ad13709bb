package sweep

import (
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/models"
)

func newTestModule(t *testing.T, prober probeFunc) *Module {
	t.Helper()
	return &Module{
		logger:  zap.NewNop(),
		bus:     &recordingBus{},
		sweeper: newTestSweeper(t, testEnv(), prober, nil),
	}
}

func TestHandleScan(t *testing.T) {
	m := newTestModule(t, reachableSet("192.168.1.20"))

	req := httptest.NewRequest(http.MethodPost, "/scan", http.NoBody)
	w := httptest.NewRecorder()

	m.handleScan(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result models.SweepResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, "192.168.1", result.Prefix)
	assert.Equal(t, 1, result.Total)
	assert.False(t, result.Fallback)
}

func TestHandleScanConflict(t *testing.T) {
	m := newTestModule(t, reachableSet())
	m.sweeper.running.Store(true)
	defer m.sweeper.running.Store(false)

	req := httptest.NewRequest(http.MethodPost, "/scan", http.NoBody)
	w := httptest.NewRecorder()

	m.handleScan(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestHandleDevicesRunsFirstSweep(t *testing.T) {
	m := newTestModule(t, reachableSet("192.168.1.1", "192.168.1.20"))

	req := httptest.NewRequest(http.MethodGet, "/devices", http.NoBody)
	w := httptest.NewRecorder()

	m.handleDevices(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Devices  []models.Device `json:"devices"`
		Total    int             `json:"total"`
		Prefix   string          `json:"prefix"`
		Fallback bool            `json:"fallback"`
		SweepID  string          `json:"sweep_id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 2, body.Total)
	assert.Len(t, body.Devices, 2)
	assert.Equal(t, "192.168.1", body.Prefix)
	assert.NotEmpty(t, body.SweepID)
}

func TestHandleDevicesServesCachedResult(t *testing.T) {
	m := newTestModule(t, reachableSet("192.168.1.20"))

	// Prime the cache.
	_, err := m.sweeper.Run(t.Context())
	require.NoError(t, err)
	first := m.sweeper.Last()

	req := httptest.NewRequest(http.MethodGet, "/devices", http.NoBody)
	w := httptest.NewRecorder()

	m.handleDevices(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		SweepID string `json:"sweep_id"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, first.ID, body.SweepID)
}

func TestRoutes(t *testing.T) {
	m := newTestModule(t, reachableSet())
	routes := m.Routes()
	require.Len(t, routes, 4)

	paths := make(map[string]string, len(routes))
	for _, r := range routes {
		paths[r.Path] = r.Method
	}
	assert.Equal(t, "POST", paths["/scan"])
	assert.Equal(t, "GET", paths["/devices"])
	assert.Equal(t, "GET", paths["/devices.csv"])
	assert.Equal(t, "GET", paths["/ws"])
}

func TestHandleDevicesCSV(t *testing.T) {
	m := newTestModule(t, reachableSet("192.168.1.1", "192.168.1.20"))

	req := httptest.NewRequest(http.MethodGet, "/devices.csv", http.NoBody)
	w := httptest.NewRecorder()
	m.handleDevicesCSV(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 devices
	assert.Equal(t, csvHeaders(), records[0])
	assert.Equal(t, "192.168.1.1", records[1][2])
	assert.Equal(t, "router", records[1][4])
	assert.Equal(t, "192.168.1.20", records[2][2])
}
