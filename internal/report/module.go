package report

import (
	"context"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/internal/netenv"
	"github.com/lanscope/lanscope/pkg/models"
	"github.com/lanscope/lanscope/pkg/plugin"
)

// DeviceSource supplies the device inventory. *sweep.Sweeper satisfies it.
type DeviceSource interface {
	Last() *models.SweepResult
	Run(ctx context.Context) (*models.SweepResult, error)
}

// PerfSource supplies performance readings. *perf.Module satisfies it.
type PerfSource interface {
	History(ctx context.Context, limit int) ([]models.PerformanceSample, error)
	TakeSample(ctx context.Context) (models.PerformanceSample, error)
}

// TopicGenerated is published after every successfully rendered report.
// The payload is the requesting username, which may be empty.
const TopicGenerated = "report.generated"

// Module assembles network reports from the sweep and perf modules.
type Module struct {
	logger  *zap.Logger
	bus     plugin.EventBus
	devices DeviceSource
	perf    PerfSource
	env     netenv.Env
}

var (
	_ plugin.Module       = (*Module)(nil)
	_ plugin.HTTPProvider = (*Module)(nil)
)

// New creates the report module. The sources are wired at composition time
// because they belong to sibling modules.
func New(devices DeviceSource, perf PerfSource) *Module {
	return &Module{devices: devices, perf: perf}
}

// Info implements plugin.Module.
func (m *Module) Info() plugin.ModuleInfo {
	return plugin.ModuleInfo{
		Name:        "report",
		Version:     "0.1.0",
		Description: "Network analysis and diagnostic reports",
	}
}

// Init implements plugin.Module.
func (m *Module) Init(_ context.Context, deps plugin.Deps) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	m.env = netenv.New(m.logger)
	m.logger.Info("report module initialized")
	return nil
}

// Start implements plugin.Module.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("report module started")
	return nil
}

// Stop implements plugin.Module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("report module stopped")
	return nil
}

// collect gathers the device list and aggregate performance for analysis.
// Every input degrades independently; collect itself never fails.
func (m *Module) collect(ctx context.Context) ([]models.Device, bool, Performance) {
	var devices []models.Device
	fallback := false

	result := m.devices.Last()
	if result == nil {
		var err error
		result, err = m.devices.Run(ctx)
		if err != nil {
			m.logger.Warn("report sweep failed", zap.Error(err))
		}
	}
	if result != nil {
		devices = result.Devices
		fallback = result.Fallback
	}

	perf := Performance{AvgBandwidthMbps: 50, AvgLatencyMs: 25}
	samples, err := m.perf.History(ctx, 0)
	if err != nil || len(samples) == 0 {
		if sample, serr := m.perf.TakeSample(ctx); serr == nil {
			samples = []models.PerformanceSample{sample}
		} else {
			m.logger.Warn("report perf sample failed", zap.Error(serr))
		}
	}
	if len(samples) > 0 {
		var bw, lat float64
		for _, s := range samples {
			bw += s.BandwidthMbps
			lat += s.LatencyMs
		}
		perf.AvgBandwidthMbps = bw / float64(len(samples))
		perf.AvgLatencyMs = lat / float64(len(samples))
	}

	return devices, fallback, perf
}
