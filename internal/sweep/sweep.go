// Package sweep discovers devices on the local /24 subnet. A sweep runs in
// two bounded phases: a wide liveness probe over all host addresses, then a
// narrower enrichment pass over the responders. Results are held in memory
// only; every sweep rebuilds the device list from scratch.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lanscope/lanscope/internal/netenv"
	"github.com/lanscope/lanscope/internal/probe"
	"github.com/lanscope/lanscope/pkg/models"
	"github.com/lanscope/lanscope/pkg/plugin"
)

// ErrSweepInProgress is returned by Run when a sweep is already active.
// Sweeps are serialized; callers should retry after the current one ends.
var ErrSweepInProgress = errors.New("sweep already in progress")

const (
	hostMin = 1
	hostMax = 254
)

// Sweeper orchestrates subnet sweeps. It is safe for concurrent use, but
// only one sweep runs at a time.
type Sweeper struct {
	env      netenv.Env
	prober   probe.Prober
	enricher *Enricher
	bus      plugin.EventBus
	logger   *zap.Logger
	metrics  *sweepMetrics

	probeWorkers  int
	enrichWorkers int
	limiter       *rate.Limiter
	deadline      time.Duration

	running atomic.Bool

	mu   sync.RWMutex
	last *models.SweepResult
}

// SweeperOptions bundle the tunables read from configuration.
type SweeperOptions struct {
	ProbeWorkers  int
	EnrichWorkers int
	ProbeRate     int
	Deadline      time.Duration
}

// NewSweeper creates a Sweeper. bus and metrics may be nil.
func NewSweeper(env netenv.Env, prober probe.Prober, enricher *Enricher, bus plugin.EventBus, metrics *sweepMetrics, opts SweeperOptions, logger *zap.Logger) *Sweeper {
	if opts.ProbeWorkers <= 0 {
		opts.ProbeWorkers = 50
	}
	if opts.EnrichWorkers <= 0 {
		opts.EnrichWorkers = 20
	}
	if opts.ProbeRate <= 0 {
		opts.ProbeRate = 200
	}
	if opts.Deadline <= 0 {
		opts.Deadline = 45 * time.Second
	}
	return &Sweeper{
		env:           env,
		prober:        prober,
		enricher:      enricher,
		bus:           bus,
		logger:        logger,
		metrics:       metrics,
		probeWorkers:  opts.ProbeWorkers,
		enrichWorkers: opts.EnrichWorkers,
		limiter:       rate.NewLimiter(rate.Limit(opts.ProbeRate), opts.ProbeRate),
		deadline:      opts.Deadline,
	}
}

// Run executes one full sweep of the local /24 and returns its result.
// The result list is never empty: when nothing responds, fallback entries
// for the gateway and the local host are synthesized instead.
func (s *Sweeper) Run(ctx context.Context) (*models.SweepResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSweepInProgress
	}
	defer s.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, s.deadline)
	defer cancel()

	localIP := s.env.LocalIP()
	prefix := netenv.Prefix24(localIP)
	if prefix == "" {
		return nil, fmt.Errorf("sweep: no usable IPv4 address (got %v)", localIP)
	}

	started := time.Now()
	sweepID := uuid.NewString()
	s.logger.Info("sweep started",
		zap.String("sweep_id", sweepID),
		zap.String("prefix", prefix))
	s.publish(ctx, TopicSweepStarted, sweepID)

	alive := s.probePhase(ctx, prefix)

	neighbors, err := s.env.Neighbors(ctx)
	if err != nil {
		s.logger.Debug("neighbor table unavailable", zap.Error(err))
		neighbors = nil
	}

	devices := s.enrichPhase(ctx, sweepID, alive, neighbors)

	fallback := false
	if len(devices) == 0 {
		devices = s.fallbackDevices(ctx, prefix, localIP.String())
		fallback = true
		s.logger.Warn("sweep found no devices, using fallback entries",
			zap.String("sweep_id", sweepID))
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })

	ended := time.Now()
	result := &models.SweepResult{
		ID:         sweepID,
		Prefix:     prefix,
		StartedAt:  started,
		EndedAt:    ended,
		Devices:    devices,
		Total:      len(devices),
		Fallback:   fallback,
		DurationMs: float64(ended.Sub(started)) / float64(time.Millisecond),
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.observe(result)
	}

	s.logger.Info("sweep completed",
		zap.String("sweep_id", sweepID),
		zap.Int("devices", result.Total),
		zap.Bool("fallback", fallback),
		zap.Float64("duration_ms", result.DurationMs))
	s.publish(ctx, TopicSweepCompleted, SweepCompletedEvent{Result: result})

	return result, nil
}

// Last returns the most recent sweep result, or nil before the first sweep.
func (s *Sweeper) Last() *models.SweepResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Running reports whether a sweep is currently active.
func (s *Sweeper) Running() bool {
	return s.running.Load()
}

// probePhase pings every host address in the prefix with a bounded worker
// pool and returns the responders. Addresses are rate limited globally so
// a burst of 254 probes does not flood the segment.
func (s *Sweeper) probePhase(ctx context.Context, prefix string) []string {
	addrs := make(chan string)
	hits := make(chan string, hostMax)

	var wg sync.WaitGroup
	for i := 0; i < s.probeWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for addr := range addrs {
				if err := s.limiter.Wait(ctx); err != nil {
					return
				}
				res, err := s.prober.Probe(ctx, addr)
				if err != nil {
					s.logger.Debug("probe failed", zap.String("addr", addr), zap.Error(err))
					continue
				}
				if res.Reachable {
					hits <- addr
				}
			}
		}()
	}

	go func() {
		defer close(addrs)
		for octet := hostMin; octet <= hostMax; octet++ {
			select {
			case addrs <- fmt.Sprintf("%s.%d", prefix, octet):
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(hits)

	alive := make([]string, 0, len(hits))
	for addr := range hits {
		alive = append(alive, addr)
	}
	return alive
}

// enrichPhase resolves names, MACs and signal for each responder with a
// second, smaller worker pool. A device_found event is published per device
// as it completes so websocket watchers see progress.
func (s *Sweeper) enrichPhase(ctx context.Context, sweepID string, alive []string, neighbors map[string]string) []models.Device {
	if len(alive) == 0 {
		return nil
	}

	addrs := make(chan string)
	out := make(chan models.Device, len(alive))

	var wg sync.WaitGroup
	for i := 0; i < s.enrichWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for addr := range addrs {
				device := s.enricher.Enrich(ctx, addr, neighbors)
				s.publish(ctx, TopicDeviceFound, DeviceFoundEvent{
					SweepID: sweepID,
					Device:  device,
				})
				out <- device
			}
		}()
	}

	go func() {
		defer close(addrs)
		for _, addr := range alive {
			select {
			case addrs <- addr:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(out)

	seen := make(map[int]bool, len(alive))
	devices := make([]models.Device, 0, len(alive))
	for device := range out {
		if seen[device.ID] {
			continue
		}
		seen[device.ID] = true
		devices = append(devices, device)
	}
	return devices
}

// fallbackDevices synthesizes gateway and local-host entries so the result
// is never empty, which would otherwise read as a dead network on hosts
// where ICMP is filtered entirely.
func (s *Sweeper) fallbackDevices(ctx context.Context, prefix, localIP string) []models.Device {
	gatewayIP := prefix + ".1"
	if gw, err := s.env.DefaultGateway(ctx); err == nil && gw != nil {
		gatewayIP = gw.String()
	}

	return []models.Device{
		{
			ID:     1,
			Name:   "Gateway",
			IP:     gatewayIP,
			MAC:    models.MACUnknown,
			Type:   models.DeviceTypeRouter,
			Status: models.DeviceStatusOnline,
			Signal: 100,
		},
		{
			ID:     2,
			Name:   "This Device",
			IP:     localIP,
			MAC:    s.env.LocalMAC(),
			Type:   models.DeviceTypeDesktop,
			Status: models.DeviceStatusOnline,
			Signal: 100,
		},
	}
}

func (s *Sweeper) publish(ctx context.Context, topic string, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.PublishAsync(ctx, plugin.Event{
		Topic:     topic,
		Source:    "sweep",
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
