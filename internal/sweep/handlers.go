package sweep

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/models"
	"github.com/lanscope/lanscope/pkg/plugin"
)

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/scan", Handler: m.handleScan},
		{Method: "GET", Path: "/devices", Handler: m.handleDevices},
		{Method: "GET", Path: "/devices.csv", Handler: m.handleDevicesCSV},
		{Method: "GET", Path: "/ws", Handler: m.handleWS},
	}
}

// handleScan runs a full sweep synchronously and returns its result.
// A sweep of a quiet /24 takes tens of seconds; clients wanting progress
// should watch /ws instead of polling.
func (m *Module) handleScan(w http.ResponseWriter, r *http.Request) {
	result, err := m.sweeper.Run(r.Context())
	if err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			sweepWriteError(w, http.StatusConflict, "a sweep is already running")
			return
		}
		m.logger.Warn("sweep failed", zap.Error(err))
		sweepWriteError(w, http.StatusInternalServerError, "sweep failed")
		return
	}
	sweepWriteJSON(w, http.StatusOK, result)
}

// handleDevices returns the device list from the most recent sweep,
// running one first if none has completed yet.
func (m *Module) handleDevices(w http.ResponseWriter, r *http.Request) {
	result := m.sweeper.Last()
	if result == nil {
		var err error
		result, err = m.sweeper.Run(r.Context())
		if err != nil {
			if errors.Is(err, ErrSweepInProgress) {
				sweepWriteError(w, http.StatusConflict, "a sweep is already running")
				return
			}
			m.logger.Warn("sweep failed", zap.Error(err))
			sweepWriteError(w, http.StatusInternalServerError, "sweep failed")
			return
		}
	}

	devices := result.Devices
	if devices == nil {
		devices = []models.Device{}
	}
	sweepWriteJSON(w, http.StatusOK, map[string]any{
		"devices":  devices,
		"total":    result.Total,
		"prefix":   result.Prefix,
		"fallback": result.Fallback,
		"sweep_id": result.ID,
	})
}

// -- helpers --

func sweepWriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func sweepWriteError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://lanscope.dev/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
