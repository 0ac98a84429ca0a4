package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/thebooleanin/techstory-weaver/internal/auth"
	"github.com/thebooleanin/techstory-weaver/internal/config"
	"github.com/thebooleanin/techstory-weaver/internal/configstore"
	"github.com/thebooleanin/techstory-weaver/internal/content"
	"github.com/thebooleanin/techstory-weaver/internal/dashboard"
	"github.com/thebooleanin/techstory-weaver/internal/event"
	"github.com/thebooleanin/techstory-weaver/internal/forms"
	"github.com/thebooleanin/techstory-weaver/internal/ratelimit"
	"github.com/thebooleanin/techstory-weaver/internal/registry"
	"github.com/thebooleanin/techstory-weaver/internal/seed"
	"github.com/thebooleanin/techstory-weaver/internal/server"
	"github.com/thebooleanin/techstory-weaver/internal/services"
	"github.com/thebooleanin/techstory-weaver/internal/settings"
	"github.com/thebooleanin/techstory-weaver/internal/siteconfig"
	"github.com/thebooleanin/techstory-weaver/internal/store"
	"github.com/thebooleanin/techstory-weaver/internal/theme"
	"github.com/thebooleanin/techstory-weaver/internal/version"
	"github.com/thebooleanin/techstory-weaver/internal/webhook"
	"github.com/thebooleanin/techstory-weaver/internal/ws"
	"github.com/thebooleanin/techstory-weaver/pkg/models"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"github.com/thebooleanin/techstory-weaver/pkg/roles"
	"go.uber.org/zap"
)

// app is the assembled service: storage, plugins, theme state and the
// HTTP server.
type app struct {
	logger *zap.Logger
	db     *store.SQLiteStore
	bus    *event.Bus
	reg    *registry.Registry
	auth   *auth.Service
	themes *theme.Editor
	site   *siteconfig.Manager
	ws     *ws.Handler
	srv    *server.Server
	addr   string

	seedDemo bool

	stopOnce sync.Once
}

// newApp wires every component from v. The caller owns the returned app
// and must call shutdown.
func newApp(ctx context.Context, v *viper.Viper, logger *zap.Logger) (_ *app, err error) {
	a := &app{logger: logger}
	defer func() {
		if err != nil && a.db != nil {
			a.db.Close()
		}
	}()

	// Open database
	dbPath := v.GetString("database.path")
	if dbPath == "" {
		dbPath = "theboolean.db"
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	a.db, err = store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := a.db.CheckVersion(ctx, version.Short()); err != nil {
		return nil, err
	}
	logger.Info("database initialized",
		zap.String("component", "database"),
		zap.String("path", dbPath),
	)

	a.bus = event.NewBus(logger.Named("event"))

	// Theme and site configuration share the settings table.
	settingsRepo, err := services.NewSQLiteSettingsRepository(ctx, a.db)
	if err != nil {
		return nil, fmt.Errorf("initialize settings repository: %w", err)
	}
	cfgStore := configstore.NewSettingsStore(settingsRepo)

	var extra []theme.Preset
	if path := v.GetString("theme.presets_file"); path != "" {
		extra, err = theme.LoadPresetsFile(path)
		if err != nil {
			return nil, fmt.Errorf("load theme presets: %w", err)
		}
		logger.Info("theme presets loaded",
			zap.String("component", "theme"),
			zap.String("path", path),
			zap.Int("count", len(extra)),
		)
	}
	catalog := theme.NewCatalog(extra...)

	css := theme.NewStyleSheet(theme.Default())
	broadcaster := theme.NewBroadcaster(a.bus, logger.Named("theme"))
	a.themes = theme.NewEditor(cfgStore, catalog, logger.Named("theme"), css, broadcaster)
	loaded := a.themes.Load(ctx)
	a.themes.SetLivePreview(ctx, v.GetBool("theme.live_preview"))
	logger.Info("theme loaded",
		zap.String("component", "theme"),
		zap.String("mode", loaded.Mode()),
		zap.Int("presets", catalog.Len()),
	)

	a.site = siteconfig.NewManager(cfgStore, a.themes, a.bus, logger.Named("site"))
	a.site.Load(ctx)

	tokens, err := newTokenService(v, logger)
	if err != nil {
		return nil, err
	}
	authStore, err := auth.NewUserStore(ctx, a.db)
	if err != nil {
		return nil, fmt.Errorf("initialize auth store: %w", err)
	}
	a.auth = auth.NewService(authStore, tokens, logger.Named("auth"))
	authHandler := auth.NewHandler(a.auth, logger.Named("auth"),
		auth.PublicReads(
			"/api/v1/health",
			"/api/v1/settings/theme",
			"/api/v1/settings/site",
			"/api/v1/color",
			"/api/v1/"+string(models.KindArticles),
			"/api/v1/"+string(models.KindStories),
			"/api/v1/"+string(models.KindAds),
		),
		auth.PublicPosts(
			"/api/v1/forms/"+string(models.FormContact),
			"/api/v1/forms/"+string(models.FormRegistration),
		),
	)

	var srvCfg server.Config
	if err := v.UnmarshalKey("server", &srvCfg); err != nil {
		return nil, fmt.Errorf("unmarshal server config: %w", err)
	}
	opts, err := srvCfg.Options()
	if err != nil {
		return nil, err
	}

	if err := a.initPlugins(ctx, v, opts.Proxies); err != nil {
		return nil, err
	}

	settingsHandler := settings.NewHandler(a.themes, a.site, css, logger.Named("settings"))
	a.ws = ws.NewHandler(tokens, a.bus, a.themes.Current, logger.Named("ws"))

	a.addr = srvCfg.Addr()
	a.seedDemo = v.GetBool("server.seed_demo")
	readyCheck := server.ReadinessChecker(func(ctx context.Context) error {
		return a.db.Ping(ctx)
	})
	a.srv = server.New(a.addr, a.reg, logger, readyCheck, authHandler, dashboard.Handler(),
		opts, settingsHandler, a.ws)

	return a, nil
}

// initPlugins registers the enabled content, forms and webhook plugins,
// then initializes them.
func (a *app) initPlugins(ctx context.Context, v *viper.Viper, proxies *ratelimit.Proxies) error {
	a.reg = registry.New(a.logger.Named("registry"))

	modules := []plugin.Plugin{
		content.New(models.KindArticles),
		content.New(models.KindStories),
		content.New(models.KindAds),
		forms.New(),
		webhook.New(),
	}
	for _, m := range modules {
		name := m.Info().Name
		if !v.GetBool("plugins." + name + ".enabled") {
			a.logger.Info("plugin disabled by configuration", zap.String("name", name))
			continue
		}
		if err := a.reg.Register(m); err != nil {
			return fmt.Errorf("register plugin: %w", err)
		}
	}

	cfg := config.New(v)
	return a.reg.InitAll(ctx, func(name string) plugin.Dependencies {
		return plugin.Dependencies{
			Config:   cfg.Sub("plugins." + name),
			Logger:   a.logger.Named(name),
			Store:    a.db,
			Bus:      a.bus,
			Plugins:  a.reg,
			ClientIP: proxies.ClientIP,
		}
	})
}

// start starts the plugins. The HTTP listener is started separately so
// tests can drive Handler directly.
func (a *app) start(ctx context.Context) error {
	if err := a.reg.StartAll(ctx); err != nil {
		return fmt.Errorf("start plugins: %w", err)
	}
	a.auth.PurgeTokens(ctx)

	if a.seedDemo {
		stores := seed.Stores{}
		for _, p := range a.reg.ResolveByRole(roles.RoleContent) {
			if src, ok := p.(roles.ContentSource); ok {
				stores[src.Kind()] = content.NewStore(a.db.DB(), src.Kind())
			}
		}
		added, err := seed.SeedDemoContent(ctx, stores)
		if err != nil {
			return fmt.Errorf("seed demo content: %w", err)
		}
		a.logger.Info("demo content seeded", zap.Int("added", added))
	}
	return nil
}

// handler returns the full middleware chain.
func (a *app) handler() http.Handler {
	return a.srv.Handler()
}

// shutdown stops the server, then the plugins, then the database. Calls
// after the first are no-ops.
func (a *app) shutdown(ctx context.Context) {
	a.stopOnce.Do(func() {
		if err := a.srv.Shutdown(ctx); err != nil {
			a.logger.Error("server shutdown error", zap.Error(err))
		}
		a.ws.Close()
		a.reg.StopAll(ctx)
		if err := a.db.Close(); err != nil {
			a.logger.Error("database close error", zap.Error(err))
		}
	})
}

// newTokenService builds the JWT service. An empty auth.jwt_secret gets
// an ephemeral random secret; tokens then do not survive restarts.
func newTokenService(v *viper.Viper, logger *zap.Logger) (*auth.TokenService, error) {
	secret := v.GetString("auth.jwt_secret")
	if secret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("generate JWT secret: %w", err)
		}
		secret = hex.EncodeToString(b)
		logger.Info("using auto-generated JWT secret (set auth.jwt_secret to persist sessions across restarts)",
			zap.String("component", "auth"),
		)
	}

	accessTTL := v.GetDuration("auth.access_token_ttl")
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := v.GetDuration("auth.refresh_token_ttl")
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	logger.Info("auth service initialized",
		zap.String("component", "auth"),
		zap.Duration("access_token_ttl", accessTTL),
		zap.Duration("refresh_token_ttl", refreshTTL),
	)
	return auth.NewTokenService([]byte(secret), accessTTL, refreshTTL), nil
}
