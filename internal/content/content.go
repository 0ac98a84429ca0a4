// Package content implements the article, story and ad collections. Each
// kind is its own plugin mounted at /api/v1/{kind}; they share one table.
package content

import (
	"context"
	"fmt"
	"time"

	"github.com/thebooleanin/techstory-weaver/pkg/models"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"github.com/thebooleanin/techstory-weaver/pkg/roles"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin       = (*Module)(nil)
	_ plugin.HTTPProvider = (*Module)(nil)
)

var descriptions = map[models.ContentKind]string{
	models.KindArticles: "Blog articles",
	models.KindStories:  "Audio and written stories",
	models.KindAds:      "Advertisement placements",
}

// Module implements one content collection.
type Module struct {
	kind   models.ContentKind
	logger *zap.Logger
	cfg    Config
	store  *ContentStore
	bus    plugin.EventBus
	now    func() time.Time
}

// New creates the plugin for kind.
func New(kind models.ContentKind) *Module {
	return &Module{kind: kind, now: time.Now}
}

var _ roles.ContentSource = (*Module)(nil)

// Kind implements roles.ContentSource.
func (m *Module) Kind() models.ContentKind { return m.kind }

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        string(m.kind),
		Version:     "0.1.0",
		Description: descriptions[m.kind],
		Roles:       []string{roles.RoleContent},
		APIVersion:  plugin.APIVersion,
	}
}

func (m *Module) Init(ctx context.Context, deps plugin.Dependencies) error {
	if !m.kind.Valid() {
		return fmt.Errorf("unknown content kind %q", m.kind)
	}
	m.logger = deps.Logger

	m.cfg = DefaultConfig()
	if deps.Config != nil {
		if err := deps.Config.Unmarshal(&m.cfg); err != nil {
			return fmt.Errorf("unmarshal %s config: %w", m.kind, err)
		}
	}
	if m.cfg.MaxPageSize <= 0 {
		m.cfg.MaxPageSize = DefaultConfig().MaxPageSize
	}
	if m.cfg.DefaultPageSize <= 0 || m.cfg.DefaultPageSize > m.cfg.MaxPageSize {
		m.cfg.DefaultPageSize = min(DefaultConfig().DefaultPageSize, m.cfg.MaxPageSize)
	}

	if deps.Store != nil {
		if err := Migrate(ctx, deps.Store); err != nil {
			return fmt.Errorf("content migrations: %w", err)
		}
		m.store = NewStore(deps.Store.DB(), m.kind)
	}
	m.bus = deps.Bus

	m.logger.Info("content module initialized",
		zap.String("kind", string(m.kind)),
		zap.Int("default_page_size", m.cfg.DefaultPageSize),
		zap.Int("max_page_size", m.cfg.MaxPageSize),
	)
	return nil
}

func (m *Module) Start(_ context.Context) error {
	m.logger.Info("content module started", zap.String("kind", string(m.kind)))
	return nil
}

func (m *Module) Stop(_ context.Context) error {
	if m.logger != nil {
		m.logger.Info("content module stopped", zap.String("kind", string(m.kind)))
	}
	return nil
}
