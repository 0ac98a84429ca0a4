// Package plugintest provides shared contract tests that verify any
// plugin.Plugin implementation behaves correctly. Every module's test
// file should call TestPluginContract to ensure conformance.
package plugintest

import (
	"context"
	"strings"
	"testing"

	"github.com/thebooleanin/techstory-weaver/internal/event"
	"github.com/thebooleanin/techstory-weaver/internal/store"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"go.uber.org/zap"
)

// TestPluginContract runs a suite of behavioral contract tests against
// any plugin.Plugin implementation. Call this from each module's _test.go:
//
//	func TestContract(t *testing.T) {
//	    plugintest.TestPluginContract(t, func() plugin.Plugin { return content.New(content.KindArticles) })
//	}
func TestPluginContract(t *testing.T, factory func() plugin.Plugin) {
	t.Helper()

	t.Run("Info_returns_valid_metadata", func(t *testing.T) {
		p := factory()
		info := p.Info()
		if info.Name == "" {
			t.Error("Info().Name must not be empty")
		}
		if strings.ContainsAny(info.Name, "/ ") {
			t.Errorf("Info().Name %q must be usable as a route segment", info.Name)
		}
		if info.Version == "" {
			t.Error("Info().Version must not be empty")
		}
		if info.APIVersion != plugin.APIVersion {
			t.Errorf("Info().APIVersion = %d, want %d", info.APIVersion, plugin.APIVersion)
		}
	})

	t.Run("Init_succeeds_with_valid_deps", func(t *testing.T) {
		p := factory()
		if err := p.Init(context.Background(), Deps(t, p.Info().Name)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
	})

	t.Run("Start_after_Init", func(t *testing.T) {
		p := factory()
		if err := p.Init(context.Background(), Deps(t, p.Info().Name)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if err := p.Start(context.Background()); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		_ = p.Stop(context.Background())
	})

	t.Run("Stop_without_Start_does_not_panic", func(t *testing.T) {
		p := factory()
		if err := p.Init(context.Background(), Deps(t, p.Info().Name)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if err := p.Stop(context.Background()); err != nil {
			t.Fatalf("Stop() without Start error = %v", err)
		}
	})

	t.Run("Routes_are_relative", func(t *testing.T) {
		p := factory()
		if err := p.Init(context.Background(), Deps(t, p.Info().Name)); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		hp, ok := p.(plugin.HTTPProvider)
		if !ok {
			t.Skip("plugin exposes no routes")
		}
		for _, r := range hp.Routes() {
			if r.Method == "" || r.Handler == nil {
				t.Errorf("route %q has empty method or nil handler", r.Path)
			}
			if strings.HasPrefix(r.Path, "/api/") {
				t.Errorf("route %q must be relative to the plugin prefix", r.Path)
			}
		}
	})

	t.Run("Info_is_idempotent", func(t *testing.T) {
		p := factory()
		a := p.Info()
		b := p.Info()
		if a.Name != b.Name || a.Version != b.Version {
			t.Error("Info() must return consistent results")
		}
	})
}

// Deps returns plugin dependencies backed by a fresh in-memory database
// and event bus.
func Deps(t *testing.T, name string) plugin.Dependencies {
	t.Helper()
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop().Named(name)
	return plugin.Dependencies{
		Logger: logger,
		Store:  db,
		Bus:    event.NewBus(logger),
	}
}
