// Package registry composes the site modules. Modules are registered in a
// fixed order by cmd/theboolean, initialized and started in that order,
// subscribed to the event bus after Init and stopped in reverse.
package registry

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"go.uber.org/zap"
)

var (
	// ErrDuplicate is returned when two modules share a name.
	ErrDuplicate = errors.New("plugin already registered")
	// ErrIncompatible is returned for modules built against another SDK version.
	ErrIncompatible = errors.New("incompatible plugin API version")
)

// module tracks one registered plugin through its lifecycle.
type module struct {
	p       plugin.Plugin
	info    plugin.PluginInfo
	inited  bool
	started bool
}

// Registry owns the lifecycle of the site modules.
type Registry struct {
	mu      sync.RWMutex
	modules []*module
	byName  map[string]*module
	unsubs  []func()
	logger  *zap.Logger
}

// New creates an empty registry.
func New(logger *zap.Logger) *Registry {
	return &Registry{
		byName: make(map[string]*module),
		logger: logger,
	}
}

// Register appends p to the start order.
func (r *Registry) Register(p plugin.Plugin) error {
	info := p.Info()
	if info.Name == "" {
		return errors.New("plugin has empty name")
	}
	if info.APIVersion != plugin.APIVersion {
		return fmt.Errorf("%w: %q targets v%d, server speaks v%d",
			ErrIncompatible, info.Name, info.APIVersion, plugin.APIVersion)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[info.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicate, info.Name)
	}
	m := &module{p: p, info: info}
	r.modules = append(r.modules, m)
	r.byName[info.Name] = m

	r.logger.Info("plugin registered",
		zap.String("name", info.Name),
		zap.String("version", info.Version),
		zap.Strings("roles", info.Roles),
	)
	return nil
}

// InitAll initializes every module and wires the bus subscriptions of each
// EventSubscriber. The first failure aborts startup; modules that already
// initialized are still stopped by StopAll.
func (r *Registry) InitAll(ctx context.Context, depsFn func(name string) plugin.Dependencies) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.modules {
		deps := depsFn(m.info.Name)
		if err := guard(m.info.Name, "init", func() error { return m.p.Init(ctx, deps) }); err != nil {
			return err
		}
		m.inited = true

		es, ok := m.p.(plugin.EventSubscriber)
		if !ok || deps.Bus == nil {
			continue
		}
		for _, sub := range es.Subscriptions() {
			r.unsubs = append(r.unsubs, deps.Bus.Subscribe(sub.Topic, sub.Handler))
			r.logger.Debug("plugin subscribed",
				zap.String("name", m.info.Name),
				zap.String("topic", sub.Topic),
			)
		}
	}
	return nil
}

// StartAll starts the initialized modules in registration order.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.modules {
		if !m.inited {
			continue
		}
		if err := guard(m.info.Name, "start", func() error { return m.p.Start(ctx) }); err != nil {
			return err
		}
		m.started = true
		r.logger.Info("plugin started", zap.String("name", m.info.Name))
	}
	return nil
}

// StopAll drops the bus subscriptions, then stops every initialized module
// in reverse registration order. Stop errors are logged, not returned.
func (r *Registry) StopAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil

	for _, m := range slices.Backward(r.modules) {
		if !m.inited {
			continue
		}
		if err := guard(m.info.Name, "stop", func() error { return m.p.Stop(ctx) }); err != nil {
			r.logger.Error("plugin stop failed", zap.String("name", m.info.Name), zap.Error(err))
		}
		m.inited, m.started = false, false
	}
}

// Get returns a registered module by name.
func (r *Registry) Get(name string) (plugin.Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return m.p, true
}

// Resolve implements plugin.PluginResolver.
func (r *Registry) Resolve(name string) (plugin.Plugin, bool) {
	return r.Get(name)
}

// ResolveByRole returns the modules declaring role, in registration order.
func (r *Registry) ResolveByRole(role string) []plugin.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []plugin.Plugin
	for _, m := range r.modules {
		if slices.Contains(m.info.Roles, role) {
			out = append(out, m.p)
		}
	}
	return out
}

// All returns the registered modules in registration order.
func (r *Registry) All() []plugin.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]plugin.Plugin, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m.p)
	}
	return out
}

// AllRoutes returns the routes of every HTTPProvider keyed by module name.
func (r *Registry) AllRoutes() map[string][]plugin.Route {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make(map[string][]plugin.Route)
	for _, m := range r.modules {
		hp, ok := m.p.(plugin.HTTPProvider)
		if !ok {
			continue
		}
		if rs := hp.Routes(); len(rs) > 0 {
			routes[m.info.Name] = rs
		}
	}
	return routes
}

// guard runs a lifecycle hook and converts a panic into an error.
func guard(name, phase string, fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("plugin %q panicked during %s: %v", name, phase, rec)
		}
	}()
	if err := fn(); err != nil {
		return fmt.Errorf("plugin %q %s: %w", name, phase, err)
	}
	return nil
}
