// Package perf measures coarse network performance: a bandwidth estimate
// seeded from interface counters and refined by a short probe burst to an
// external reference host, and a latency reading from a single gateway
// probe. Samples are persisted in SQLite with a rolling history window.
package perf

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/internal/netenv"
	"github.com/lanscope/lanscope/internal/probe"
	"github.com/lanscope/lanscope/pkg/models"
)

const (
	burstSize    = 3
	externalHost = "8.8.8.8"

	// Neutral readings reported when the host environment gives us nothing
	// to measure with.
	fallbackBandwidth = 50.0
	fallbackLatency   = 25.0

	// Bandwidth reported when the external burst cannot run at all.
	burstFailBandwidth = 25.0

	// Latency reported when the gateway never answers.
	penaltyLatency = 100.0
)

// Sampler produces performance samples. It is stateless; persistence lives
// in sampleStore.
type Sampler struct {
	env    netenv.Env
	prober probe.Prober
	logger *zap.Logger
}

// NewSampler creates a Sampler.
func NewSampler(env netenv.Env, prober probe.Prober, logger *zap.Logger) *Sampler {
	return &Sampler{env: env, prober: prober, logger: logger}
}

// Sample takes one measurement. It never fails; when the environment cannot
// be measured the sample carries neutral fallback values instead.
func (s *Sampler) Sample(ctx context.Context) models.PerformanceSample {
	bandwidth, latency := s.measure(ctx)
	return models.PerformanceSample{
		BandwidthMbps: round2(bandwidth),
		LatencyMs:     round2(latency),
		CreatedAt:     time.Now().UTC(),
	}
}

// measure layers two bandwidth heuristics. A counter-based estimate seeds
// the figure; when the external burst draws any answer, the estimate is
// replaced by one derived from gateway latency. A burst that runs but gets
// no answers leaves the counter estimate standing. Neither is a throughput
// test; the numbers are comparable across samples, not absolute.
func (s *Sampler) measure(ctx context.Context) (bandwidth, latency float64) {
	gw, err := s.env.DefaultGateway(ctx)
	if err != nil || gw == nil {
		s.logger.Debug("no default gateway for perf sample", zap.Error(err))
		return fallbackBandwidth, fallbackLatency
	}

	sent, recv, err := s.env.IOCounters()
	if err != nil {
		s.logger.Debug("interface counters unavailable", zap.Error(err))
		return fallbackBandwidth, fallbackLatency
	}
	mib := float64(sent+recv) / (1024 * 1024)
	bandwidth = math.Min(100, mib/60)

	latency = s.gatewayLatency(ctx, gw.String())

	replies, err := s.burst(ctx, externalHost)
	switch {
	case err != nil:
		bandwidth = burstFailBandwidth
	case replies > 0:
		bandwidth = math.Max(10, math.Min(100, 50+(100-latency)/2))
	}
	return bandwidth, latency
}

// gatewayLatency times a single echo to the gateway. An unanswered probe
// reports the fixed penalty value; a prober failure falls back to the
// wall-clock time of the call.
func (s *Sampler) gatewayLatency(ctx context.Context, addr string) float64 {
	start := time.Now()
	res, err := s.prober.Probe(ctx, addr)
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		s.logger.Debug("gateway probe failed", zap.String("addr", addr), zap.Error(err))
		return elapsed
	}
	if !res.Reachable {
		return penaltyLatency
	}
	if ms := float64(res.RTT) / float64(time.Millisecond); ms > 0 {
		return ms
	}
	return elapsed
}

// burst probes the external reference host a few times and counts the
// answers. A prober error aborts the burst and is reported to the caller;
// unanswered probes are not errors.
func (s *Sampler) burst(ctx context.Context, addr string) (int, error) {
	replies := 0
	for i := 0; i < burstSize; i++ {
		if err := ctx.Err(); err != nil {
			return replies, err
		}
		res, err := s.prober.Probe(ctx, addr)
		if err != nil {
			s.logger.Debug("burst probe failed", zap.String("addr", addr), zap.Error(err))
			return replies, err
		}
		if res.Reachable {
			replies++
		}
	}
	return replies, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
