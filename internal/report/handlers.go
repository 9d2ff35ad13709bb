package report

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/plugin"
)

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "", Handler: m.handleReport},
		{Method: "GET", Path: "/analysis", Handler: m.handleAnalysis},
	}
}

// handleReport renders the full HTML diagnostic report. Rendering failures
// yield a degraded error page, never a bare 500.
func (m *Module) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	devices, fallback, perf := m.collect(ctx)

	data := ReportData{
		GeneratedAt: time.Now(),
		RequestedBy: r.URL.Query().Get("user"),
		LocalIP:     m.env.LocalIP().String(),
		LocalMAC:    m.env.LocalMAC(),
		Interfaces:  m.env.Interfaces(),
		Devices:     devices,
		Fallback:    fallback,
		Performance: perf,
		Analysis:    Analyze(devices, perf),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page, err := renderReport(data)
	if err != nil {
		m.logger.Error("report rendering failed", zap.Error(err))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(renderErrorReport(err.Error())))
		return
	}
	_, _ = w.Write([]byte(page))

	if m.bus != nil {
		m.bus.PublishAsync(context.WithoutCancel(ctx), plugin.Event{
			Topic:     TopicGenerated,
			Source:    "report",
			Timestamp: time.Now(),
			Payload:   data.RequestedBy,
		})
	}
}

// handleAnalysis returns the structured analysis as JSON.
func (m *Module) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	devices, _, perf := m.collect(r.Context())
	analysis := Analyze(devices, perf)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"analysis":    analysis,
		"performance": perf,
	})
}
