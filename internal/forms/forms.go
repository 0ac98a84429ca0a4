// Package forms accepts contact and registration submissions from the
// public site and lets admins triage them.
package forms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/thebooleanin/techstory-weaver/internal/ratelimit"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"github.com/thebooleanin/techstory-weaver/pkg/roles"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin       = (*Module)(nil)
	_ plugin.HTTPProvider = (*Module)(nil)
)

// Module implements the forms plugin.
type Module struct {
	logger   *zap.Logger
	cfg      Config
	store    *SubmissionStore
	bus      plugin.EventBus
	limiter  *ratelimit.Limiter
	clientIP func(*http.Request) string
	now      func() time.Time
}

// New creates a new forms plugin instance.
func New() *Module {
	return &Module{now: time.Now}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "forms",
		Version:     "0.1.0",
		Description: "Contact and registration form submissions",
		Roles:       []string{roles.RoleForms},
		APIVersion:  plugin.APIVersion,
	}
}

func (m *Module) Init(ctx context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal forms config: %w", err)
		}
	}
	def := DefaultConfig()
	if m.cfg.RateLimit <= 0 {
		m.cfg.RateLimit = def.RateLimit
	}
	if m.cfg.Burst <= 0 {
		m.cfg.Burst = def.Burst
	}
	if m.cfg.IdleTTL <= 0 {
		m.cfg.IdleTTL = def.IdleTTL
	}
	if m.cfg.MaxMessageLen <= 0 {
		m.cfg.MaxMessageLen = def.MaxMessageLen
	}
	if m.cfg.MaxPageSize <= 0 {
		m.cfg.MaxPageSize = def.MaxPageSize
	}
	if m.cfg.DefaultPageSize <= 0 || m.cfg.DefaultPageSize > m.cfg.MaxPageSize {
		m.cfg.DefaultPageSize = min(def.DefaultPageSize, m.cfg.MaxPageSize)
	}

	if deps.Store != nil {
		if err := deps.Store.Migrate(ctx, "forms", migrations()); err != nil {
			return fmt.Errorf("forms migrations: %w", err)
		}
		m.store = NewStore(deps.Store.DB())
	}
	m.bus = deps.Bus
	m.limiter = ratelimit.New(ratelimit.PerMinute(m.cfg.RateLimit), m.cfg.Burst,
		ratelimit.WithIdleTTL(m.cfg.IdleTTL),
		ratelimit.WithClock(func() time.Time { return m.now() }),
	)
	m.clientIP = deps.ClientIP
	if m.clientIP == nil {
		var direct *ratelimit.Proxies
		m.clientIP = direct.ClientIP
	}

	m.logger.Info("forms module initialized",
		zap.Float64("rate_limit_per_minute", m.cfg.RateLimit),
		zap.Int("burst", m.cfg.Burst),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.logger.Info("forms module started")
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.logger != nil {
		m.logger.Info("forms module stopped")
	}
	return nil
}
