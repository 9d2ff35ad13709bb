package perf

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/models"
	"github.com/lanscope/lanscope/pkg/plugin"
)

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/sample", Handler: m.handleSample},
		{Method: "GET", Path: "/history", Handler: m.handleHistory},
	}
}

// handleSample takes a fresh measurement and returns it.
func (m *Module) handleSample(w http.ResponseWriter, r *http.Request) {
	sample, err := m.TakeSample(r.Context())
	if err != nil {
		m.logger.Warn("perf sample failed", zap.Error(err))
		perfWriteError(w, http.StatusInternalServerError, "failed to record sample")
		return
	}
	perfWriteJSON(w, http.StatusOK, sample)
}

// handleHistory returns recent samples, newest first.
func (m *Module) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			perfWriteError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	samples, err := m.History(r.Context(), limit)
	if err != nil {
		m.logger.Warn("perf history failed", zap.Error(err))
		perfWriteError(w, http.StatusInternalServerError, "failed to list samples")
		return
	}
	if samples == nil {
		samples = []models.PerformanceSample{}
	}
	perfWriteJSON(w, http.StatusOK, samples)
}

// -- helpers --

func perfWriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func perfWriteError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://lanscope.dev/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
