// Package registry manages the lifecycle of compile-time modules:
// registration, initialization, start, and ordered shutdown.
package registry

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/lanscope/lanscope/pkg/plugin"
)

// Registry holds all registered modules. Modules are initialized and started
// in registration order and stopped in reverse order.
type Registry struct {
	logger *zap.Logger

	mu      sync.RWMutex
	order   []string
	modules map[string]plugin.Module
	started []string
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	return &Registry{
		logger:  logger,
		modules: make(map[string]plugin.Module),
	}
}

// Register adds a module. Names must be unique and non-empty.
func (r *Registry) Register(m plugin.Module) error {
	name := m.Info().Name
	if name == "" {
		return fmt.Errorf("module name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[name]; exists {
		return fmt.Errorf("module %q already registered", name)
	}
	r.modules[name] = m
	r.order = append(r.order, name)
	return nil
}

// Get returns the module with the given name.
func (r *Registry) Get(name string) (plugin.Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// All returns the modules in registration order.
func (r *Registry) All() []plugin.Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]plugin.Module, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.modules[name])
	}
	return out
}

// InitAll initializes every module in registration order. The deps function
// produces per-module dependencies (scoped logger, config subtree).
func (r *Registry) InitAll(ctx context.Context, deps func(name string) plugin.Deps) error {
	for _, m := range r.All() {
		name := m.Info().Name
		if err := m.Init(ctx, deps(name)); err != nil {
			return fmt.Errorf("init module %q: %w", name, err)
		}
		r.logger.Debug("module initialized", zap.String("module", name))
	}
	return nil
}

// StartAll starts every module in registration order. On failure, modules
// already started are stopped in reverse order.
func (r *Registry) StartAll(ctx context.Context) error {
	for _, m := range r.All() {
		name := m.Info().Name
		if err := m.Start(ctx); err != nil {
			r.StopAll(ctx)
			return fmt.Errorf("start module %q: %w", name, err)
		}

		r.mu.Lock()
		r.started = append(r.started, name)
		r.mu.Unlock()

		r.logger.Info("module started", zap.String("module", name))
	}
	return nil
}

// StopAll stops started modules in reverse start order. Stop errors are
// logged, not returned; shutdown always proceeds.
func (r *Registry) StopAll(ctx context.Context) {
	r.mu.Lock()
	started := r.started
	r.started = nil
	r.mu.Unlock()

	for i := len(started) - 1; i >= 0; i-- {
		m, ok := r.Get(started[i])
		if !ok {
			continue
		}
		if err := m.Stop(ctx); err != nil {
			r.logger.Warn("module stop failed",
				zap.String("module", started[i]),
				zap.Error(err),
			)
		}
	}
}

// AllRoutes collects routes from every module implementing HTTPProvider,
// keyed by module name.
func (r *Registry) AllRoutes() map[string][]plugin.Route {
	routes := make(map[string][]plugin.Route)
	for _, m := range r.All() {
		hp, ok := m.(plugin.HTTPProvider)
		if !ok {
			continue
		}
		if rs := hp.Routes(); len(rs) > 0 {
			routes[m.Info().Name] = rs
		}
	}
	return routes
}

// AllSubscriptions collects declared event subscriptions from every module
// implementing EventSubscriber, keyed by module name.
func (r *Registry) AllSubscriptions() map[string][]plugin.Subscription {
	subs := make(map[string][]plugin.Subscription)
	for _, m := range r.All() {
		es, ok := m.(plugin.EventSubscriber)
		if !ok {
			continue
		}
		if ss := es.Subscriptions(); len(ss) > 0 {
			subs[m.Info().Name] = ss
		}
	}
	return subs
}
