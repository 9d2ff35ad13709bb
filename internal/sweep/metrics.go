package sweep

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lanscope/lanscope/pkg/models"
)

// sweepMetrics are the Prometheus series exported by the sweep module.
type sweepMetrics struct {
	sweeps    prometheus.Counter
	fallbacks prometheus.Counter
	duration  prometheus.Histogram
	devices   prometheus.Gauge
}

// newSweepMetrics registers the sweep series on reg. reg may be nil, in
// which case the default registerer is used.
func newSweepMetrics(reg prometheus.Registerer) *sweepMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &sweepMetrics{
		sweeps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lanscope",
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Number of completed subnet sweeps.",
		}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lanscope",
			Subsystem: "sweep",
			Name:      "fallback_total",
			Help:      "Number of sweeps that found no devices and used fallback entries.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lanscope",
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of a full sweep.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 45},
		}),
		devices: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lanscope",
			Subsystem: "sweep",
			Name:      "devices_found",
			Help:      "Devices discovered by the most recent sweep.",
		}),
	}
}

func (m *sweepMetrics) observe(result *models.SweepResult) {
	m.sweeps.Inc()
	if result.Fallback {
		m.fallbacks.Inc()
	}
	m.duration.Observe(result.DurationMs / 1000)
	m.devices.Set(float64(result.Total))
}
