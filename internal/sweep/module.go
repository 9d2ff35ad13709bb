package sweep

import (
	"context"
	"net"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lanscope/lanscope/internal/netenv"
	"github.com/lanscope/lanscope/internal/probe"
	"github.com/lanscope/lanscope/pkg/plugin"
)

// Module is the subnet discovery module.
type Module struct {
	logger  *zap.Logger
	bus     plugin.EventBus
	sweeper *Sweeper
	mdns    *MDNSCache

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var (
	_ plugin.Module        = (*Module)(nil)
	_ plugin.HTTPProvider  = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
)

// New creates the sweep module.
func New() *Module {
	return &Module{}
}

// Info implements plugin.Module.
func (m *Module) Info() plugin.ModuleInfo {
	return plugin.ModuleInfo{
		Name:        "sweep",
		Version:     "0.1.0",
		Description: "Local subnet device discovery",
	}
}

// Init implements plugin.Module.
func (m *Module) Init(_ context.Context, deps plugin.Deps) error {
	m.logger = deps.Logger
	m.bus = deps.Bus
	cfg := deps.Config

	timeout := cfg.GetDuration("sweep.probe_timeout")
	if timeout <= 0 {
		timeout = probe.DefaultTimeout
	}

	prober := probe.NewAuto(timeout, m.logger)
	env := netenv.New(m.logger)

	var hints []NameHint
	if cfg.GetBool("sweep.mdns_enabled") {
		m.mdns = NewMDNSCache(cfg.GetDuration("sweep.mdns_interval"), m.logger)
		hints = append(hints, m.mdns)
	}
	if cfg.GetBool("sweep.snmp_enabled") {
		hints = append(hints, NewSNMPHint(cfg.GetString("sweep.snmp_community"), m.logger))
	}

	enricher := NewEnricher(prober, net.DefaultResolver, hints, m.logger)
	metrics := newSweepMetrics(prometheus.DefaultRegisterer)

	m.sweeper = NewSweeper(env, prober, enricher, m.bus, metrics, SweeperOptions{
		ProbeWorkers:  cfg.GetInt("sweep.probe_workers"),
		EnrichWorkers: cfg.GetInt("sweep.enrich_workers"),
		ProbeRate:     cfg.GetInt("sweep.probe_rate"),
		Deadline:      cfg.GetDuration("sweep.deadline"),
	}, m.logger)

	m.logger.Info("sweep module initialized",
		zap.Bool("mdns", m.mdns != nil),
		zap.Int("name_hints", len(hints)))
	return nil
}

// Start implements plugin.Module. It launches the mDNS cache loop when
// enabled; sweeps themselves run on demand.
func (m *Module) Start(_ context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	if m.mdns != nil {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.mdns.Run(runCtx)
		}()
	}

	m.logger.Info("sweep module started")
	return nil
}

// Stop implements plugin.Module.
func (m *Module) Stop(ctx context.Context) error {
	if m.cancel != nil {
		m.cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	m.logger.Info("sweep module stopped")
	return nil
}

// Health implements plugin.HealthChecker. The module is degraded while no
// sweep has completed yet.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	if m.sweeper == nil {
		return plugin.HealthStatus{Healthy: false, Detail: "not initialized"}
	}
	if m.sweeper.Last() == nil {
		return plugin.HealthStatus{Healthy: true, Detail: "no sweep completed yet"}
	}
	return plugin.HealthStatus{Healthy: true}
}

// Sweeper exposes the sweeper to sibling modules (the report module reads
// the latest result through it).
func (m *Module) Sweeper() *Sweeper {
	return m.sweeper
}
