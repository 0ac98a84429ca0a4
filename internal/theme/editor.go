package theme

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/thebooleanin/techstory-weaver/internal/configstore"
	"github.com/thebooleanin/techstory-weaver/pkg/color"
	"go.uber.org/zap"
)

// Editor holds the working copy of the theme between edits and saves.
// Edits stay in memory until Save; while live preview is on each edit is
// also pushed to the appliers as a preview. The published copy is the one
// last loaded or saved.
type Editor struct {
	store    configstore.Store
	catalog  *Catalog
	appliers []Applier
	logger   *zap.Logger

	mu          sync.Mutex
	current     Config
	published   Config
	livePreview bool
}

// NewEditor returns an Editor starting from Default(). Call Load to read
// the persisted theme.
func NewEditor(store configstore.Store, catalog *Catalog, logger *zap.Logger, appliers ...Applier) *Editor {
	if catalog == nil {
		catalog = NewCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		store:     store,
		catalog:   catalog,
		appliers:  appliers,
		logger:    logger,
		current:   Default(),
		published: Default(),
	}
}

// Load reads the persisted theme. A missing or unreadable value leaves the
// default in place; Load never fails.
func (e *Editor) Load(ctx context.Context) Config {
	cfg := Default()

	raw, err := e.store.Load(ctx, configstore.KeyTheme)
	switch {
	case errors.Is(err, configstore.ErrNotFound):
		e.logger.Debug("no saved theme, using default")
	case err != nil:
		e.logger.Warn("load theme failed, using default", zap.Error(err))
	default:
		var saved Config
		if err := json.Unmarshal(raw, &saved); err != nil {
			e.logger.Warn("saved theme is not valid JSON, using default", zap.Error(err))
			break
		}
		if fell := saved.Colors.Sanitize(); len(fell) > 0 {
			themeColorFallbacksTotal.Add(float64(len(fell)))
			e.logger.Warn("saved theme had malformed colors", zap.Any("roles", fell))
		}
		cfg = saved
	}

	e.mu.Lock()
	e.current = cfg
	e.published = cfg
	e.mu.Unlock()

	e.apply(ctx, StageLoaded, cfg)
	return cfg
}

// Current returns a copy of the working theme, unsaved edits included.
func (e *Editor) Current() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Published returns a copy of the theme last loaded or saved.
func (e *Editor) Published() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.published
}

// Presets returns the preset catalog.
func (e *Editor) Presets() []Preset {
	return e.catalog.Presets()
}

// LivePreview reports whether edits are applied immediately.
func (e *Editor) LivePreview() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.livePreview
}

// SetLivePreview turns live preview on or off. Turning it on applies the
// working theme right away.
func (e *Editor) SetLivePreview(ctx context.Context, enabled bool) {
	e.mu.Lock()
	e.livePreview = enabled
	cfg := e.current
	e.mu.Unlock()

	if enabled {
		e.apply(ctx, StagePreview, cfg)
	}
}

// SetColor stores the HSL form of a hex color picked for role. Malformed
// hex degrades to the fallback triple.
func (e *Editor) SetColor(ctx context.Context, role Role, hex string) (Config, error) {
	conv := color.ConvertHexToHSL(hex)
	if !conv.Ok() {
		themeColorFallbacksTotal.Inc()
		e.logger.Debug("malformed hex color, using fallback", zap.String("role", string(role)), zap.String("hex", hex))
	}
	return e.setRole(ctx, role, conv.Value)
}

// SetColorHSL stores an HSL triple for role, normalized to integers.
func (e *Editor) SetColorHSL(ctx context.Context, role Role, hsl string) (Config, error) {
	conv := color.NormalizeHSL(hsl)
	if !conv.Ok() {
		themeColorFallbacksTotal.Inc()
		e.logger.Debug("malformed HSL color, using fallback", zap.String("role", string(role)), zap.String("hsl", hsl))
	}
	return e.setRole(ctx, role, conv.Value)
}

func (e *Editor) setRole(ctx context.Context, role Role, hsl string) (Config, error) {
	return e.mutate(ctx, func(cfg *Config) error {
		return cfg.Colors.Set(role, hsl)
	})
}

// SetDarkMode replaces the dark mode flags.
func (e *Editor) SetDarkMode(ctx context.Context, dm DarkMode) Config {
	cfg, _ := e.mutate(ctx, func(cfg *Config) error {
		cfg.DarkMode = dm
		return nil
	})
	return cfg
}

// Replace swaps in a whole theme after validating its colors.
func (e *Editor) Replace(ctx context.Context, next Config) (Config, error) {
	if err := next.Colors.Validate(); err != nil {
		return e.Current(), err
	}
	next.Colors.Sanitize()
	return e.mutate(ctx, func(cfg *Config) error {
		*cfg = next
		return nil
	})
}

// ApplyPreset replaces the colors with the preset at index and sets
// darkMode.default to the preset's flag. darkMode.enabled and auto are
// left alone.
func (e *Editor) ApplyPreset(ctx context.Context, index int) (Config, error) {
	p, err := e.catalog.Get(index)
	if err != nil {
		return e.Current(), err
	}
	return e.mutate(ctx, func(cfg *Config) error {
		cfg.Colors = p.Colors
		cfg.DarkMode.Default = p.IsDark
		cfg.Name = p.Name
		return nil
	})
}

// Reset discards unsaved edits and reinstates the default preset. The
// persisted theme is untouched until the next Save.
func (e *Editor) Reset(ctx context.Context) Config {
	cfg, _ := e.mutate(ctx, func(cfg *Config) error {
		*cfg = Default()
		return nil
	})
	return cfg
}

// Save persists the working theme and applies it whether or not live
// preview is on: as StageSaved on success, as a preview on failure. On
// failure the previously persisted value and the published copy are
// unchanged and the error wraps ErrSaveFailed.
func (e *Editor) Save(ctx context.Context) error {
	cfg := e.Current()

	raw, err := json.Marshal(cfg)
	if err == nil {
		err = e.store.Save(ctx, configstore.KeyTheme, raw)
	}
	if err != nil {
		themeSavesTotal.WithLabelValues("error").Inc()
		e.logger.Error("theme save failed", zap.Error(err))
		e.apply(ctx, StagePreview, cfg)
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	e.mu.Lock()
	e.published = cfg
	e.mu.Unlock()

	themeSavesTotal.WithLabelValues("ok").Inc()
	e.logger.Info("theme saved", zap.String("name", cfg.Name))
	e.apply(ctx, StageSaved, cfg)
	return nil
}

// mutate applies fn to the working theme and, with live preview on,
// pushes the result to the appliers.
func (e *Editor) mutate(ctx context.Context, fn func(*Config) error) (Config, error) {
	e.mu.Lock()
	next := e.current
	if err := fn(&next); err != nil {
		cur := e.current
		e.mu.Unlock()
		return cur, err
	}
	e.current = next
	live := e.livePreview
	e.mu.Unlock()

	if live {
		e.apply(ctx, StagePreview, next)
	}
	return next, nil
}

func (e *Editor) apply(ctx context.Context, stage Stage, cfg Config) {
	for _, a := range e.appliers {
		a.Apply(ctx, stage, cfg)
	}
}
