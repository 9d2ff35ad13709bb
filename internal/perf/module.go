package perf

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/lanscope/lanscope/internal/netenv"
	"github.com/lanscope/lanscope/internal/probe"
	"github.com/lanscope/lanscope/pkg/models"
	"github.com/lanscope/lanscope/pkg/plugin"
)

const defaultWindow = 20

// Module is the network performance module.
type Module struct {
	logger  *zap.Logger
	bus     plugin.EventBus
	sampler *Sampler
	samples *sampleStore
	window  int
	metrics *perfMetrics
}

var (
	_ plugin.Module        = (*Module)(nil)
	_ plugin.HTTPProvider  = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
)

type perfMetrics struct {
	bandwidth prometheus.Gauge
	latency   prometheus.Gauge
	samples   prometheus.Counter
}

func newPerfMetrics(reg prometheus.Registerer) *perfMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &perfMetrics{
		bandwidth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lanscope",
			Subsystem: "perf",
			Name:      "bandwidth_mbps",
			Help:      "Bandwidth estimate from the most recent sample.",
		}),
		latency: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lanscope",
			Subsystem: "perf",
			Name:      "latency_ms",
			Help:      "Gateway latency from the most recent sample.",
		}),
		samples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lanscope",
			Subsystem: "perf",
			Name:      "samples_total",
			Help:      "Number of performance samples taken.",
		}),
	}
}

func (m *perfMetrics) observe(sample models.PerformanceSample) {
	m.bandwidth.Set(sample.BandwidthMbps)
	m.latency.Set(sample.LatencyMs)
	m.samples.Inc()
}

// New creates the perf module.
func New() *Module {
	return &Module{}
}

// Info implements plugin.Module.
func (m *Module) Info() plugin.ModuleInfo {
	return plugin.ModuleInfo{
		Name:        "perf",
		Version:     "0.1.0",
		Description: "Coarse bandwidth and latency sampling",
	}
}

// Init implements plugin.Module.
func (m *Module) Init(ctx context.Context, deps plugin.Deps) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	cfg := deps.Config

	timeout := cfg.GetDuration("perf.probe_timeout")
	if timeout <= 0 {
		timeout = probe.DefaultTimeout
	}
	m.window = cfg.GetInt("perf.window")
	if m.window <= 0 {
		m.window = defaultWindow
	}

	if err := deps.Store.Migrate(ctx, "perf", migrations); err != nil {
		return err
	}
	m.samples = newSampleStore(deps.Store)

	env := netenv.New(m.logger)
	m.sampler = NewSampler(env, probe.NewAuto(timeout, m.logger), m.logger)
	m.metrics = newPerfMetrics(prometheus.DefaultRegisterer)

	m.logger.Info("perf module initialized", zap.Int("window", m.window))
	return nil
}

// Start implements plugin.Module. Sampling is on demand.
func (m *Module) Start(_ context.Context) error {
	m.logger.Info("perf module started")
	return nil
}

// Stop implements plugin.Module.
func (m *Module) Stop(_ context.Context) error {
	m.logger.Info("perf module stopped")
	return nil
}

// Health implements plugin.HealthChecker.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	if m.sampler == nil || m.samples == nil {
		return plugin.HealthStatus{Healthy: false, Detail: "not initialized"}
	}
	return plugin.HealthStatus{Healthy: true}
}

// TakeSample measures, persists, prunes the window, and updates metrics.
// The report module calls this directly when it needs a fresh reading.
func (m *Module) TakeSample(ctx context.Context) (models.PerformanceSample, error) {
	sample := m.sampler.Sample(ctx)

	saved, err := m.samples.Insert(ctx, sample)
	if err != nil {
		return sample, err
	}
	if err := m.samples.Prune(ctx, m.window); err != nil {
		m.logger.Warn("perf sample prune failed", zap.Error(err))
	}

	m.metrics.observe(saved)
	if m.bus != nil {
		m.bus.PublishAsync(ctx, plugin.Event{
			Topic:     TopicSampled,
			Source:    "perf",
			Timestamp: time.Now(),
			Payload:   saved,
		})
	}
	return saved, nil
}

// History returns up to window recent samples, newest first.
func (m *Module) History(ctx context.Context, limit int) ([]models.PerformanceSample, error) {
	if limit <= 0 || limit > m.window {
		limit = m.window
	}
	return m.samples.List(ctx, limit)
}
