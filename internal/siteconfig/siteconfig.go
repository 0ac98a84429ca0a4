// Package siteconfig manages the site-wide settings document: branding,
// headline metrics, navigation toggles and social links.
//
// The primary, secondary and accent colors belong to the theme. The
// colorScheme block is derived from the published theme on every read and
// is never persisted here; writes to it are forwarded to the theme editor
// and persisted by the theme on the next Save.
package siteconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/mail"
	"net/url"
	"sync"

	"github.com/thebooleanin/techstory-weaver/internal/configstore"
	"github.com/thebooleanin/techstory-weaver/internal/event"
	"github.com/thebooleanin/techstory-weaver/internal/theme"
	"github.com/thebooleanin/techstory-weaver/pkg/color"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"go.uber.org/zap"
)

var (
	ErrSaveFailed = errors.New("site config save failed")
	ErrInvalid    = errors.New("invalid site config")
)

// Metrics are the headline counters on the home page.
type Metrics struct {
	ProjectsCompleted int `json:"projectsCompleted"`
	HappyClients      int `json:"happyClients"`
	YearsExperience   int `json:"yearsExperience"`
	TeamMembers       int `json:"teamMembers"`
}

// Navigation toggles public site sections.
type Navigation struct {
	ShowArticles    bool `json:"showArticles"`
	ShowStories     bool `json:"showStories"`
	ShowServices    bool `json:"showServices"`
	ShowSocialMedia bool `json:"showSocialMedia"`
	ShowContact     bool `json:"showContact"`
}

// ColorScheme is the hex view of the theme's brand colors.
type ColorScheme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// SiteConfig is the site settings document.
type SiteConfig struct {
	SiteName     string            `json:"siteName"`
	Tagline      string            `json:"tagline"`
	LogoURL      string            `json:"logoUrl"`
	ContactEmail string            `json:"contactEmail"`
	Metrics      Metrics           `json:"metrics"`
	Navigation   Navigation        `json:"navigation"`
	SocialLinks  map[string]string `json:"socialLinks"`
	ColorScheme  *ColorScheme      `json:"colorScheme,omitempty"`
}

func (c SiteConfig) clone() SiteConfig {
	c.SocialLinks = maps.Clone(c.SocialLinks)
	if c.ColorScheme != nil {
		cs := *c.ColorScheme
		c.ColorScheme = &cs
	}
	return c
}

// Validate checks fields the public site renders directly.
func (c SiteConfig) Validate() error {
	if c.SiteName == "" {
		return fmt.Errorf("%w: siteName is required", ErrInvalid)
	}
	if c.ContactEmail != "" {
		if _, err := mail.ParseAddress(c.ContactEmail); err != nil {
			return fmt.Errorf("%w: contactEmail %q", ErrInvalid, c.ContactEmail)
		}
	}
	m := c.Metrics
	if m.ProjectsCompleted < 0 || m.HappyClients < 0 || m.YearsExperience < 0 || m.TeamMembers < 0 {
		return fmt.Errorf("%w: metrics must not be negative", ErrInvalid)
	}
	for name, link := range c.SocialLinks {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: socialLinks.%s %q is not an http(s) URL", ErrInvalid, name, link)
		}
	}
	if cs := c.ColorScheme; cs != nil {
		for _, v := range []string{cs.Primary, cs.Secondary, cs.Accent} {
			if !color.IsHex(v) {
				return fmt.Errorf("%w: colorScheme value %q is not hex", ErrInvalid, v)
			}
		}
	}
	return nil
}

// Default returns the settings used before anything is saved.
func Default() SiteConfig {
	return SiteConfig{
		SiteName:     "TheBoolean",
		Tagline:      "Technology stories, told true or false.",
		LogoURL:      "/logo.svg",
		ContactEmail: "hello@theboolean.in",
		Metrics: Metrics{
			ProjectsCompleted: 150,
			HappyClients:      120,
			YearsExperience:   8,
			TeamMembers:       25,
		},
		Navigation: Navigation{
			ShowArticles:    true,
			ShowStories:     true,
			ShowServices:    true,
			ShowSocialMedia: true,
			ShowContact:     true,
		},
		SocialLinks: map[string]string{
			"linkedin":  "https://www.linkedin.com/company/theboolean",
			"instagram": "https://www.instagram.com/theboolean",
			"youtube":   "https://www.youtube.com/@theboolean",
		},
	}
}

// ThemeEditor is the subset of theme.Editor the manager needs.
type ThemeEditor interface {
	Published() theme.Config
	SetColor(ctx context.Context, role theme.Role, hex string) (theme.Config, error)
	Save(ctx context.Context) error
}

// Manager holds the working site config.
type Manager struct {
	store  configstore.Store
	themes ThemeEditor
	bus    plugin.Publisher
	logger *zap.Logger

	mu      sync.Mutex
	current SiteConfig
	// themeDirty is set when Update forwarded colors the theme has not
	// persisted yet.
	themeDirty bool
}

// NewManager returns a Manager starting from Default(). bus may be nil.
func NewManager(store configstore.Store, themes ThemeEditor, bus plugin.Publisher, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, themes: themes, bus: bus, logger: logger, current: Default()}
}

// Load reads the persisted document, falling back to defaults on any error.
func (m *Manager) Load(ctx context.Context) SiteConfig {
	cfg := Default()

	raw, err := m.store.Load(ctx, configstore.KeySite)
	switch {
	case errors.Is(err, configstore.ErrNotFound):
	case err != nil:
		m.logger.Warn("load site config failed, using defaults", zap.Error(err))
	default:
		var saved SiteConfig
		if err := json.Unmarshal(raw, &saved); err != nil {
			m.logger.Warn("saved site config is not valid JSON, using defaults", zap.Error(err))
			break
		}
		saved.ColorScheme = nil
		cfg = saved
	}

	m.mu.Lock()
	m.current = cfg
	m.mu.Unlock()
	return m.Current()
}

// Current returns a copy with colorScheme derived from the published theme.
func (m *Manager) Current() SiteConfig {
	m.mu.Lock()
	cfg := m.current.clone()
	m.mu.Unlock()

	cfg.ColorScheme = m.scheme()
	return cfg
}

func (m *Manager) scheme() *ColorScheme {
	if m.themes == nil {
		return nil
	}
	c := m.themes.Published().Colors
	return &ColorScheme{
		Primary:   color.HSLToHex(c.Primary),
		Secondary: color.HSLToHex(c.Secondary),
		Accent:    color.HSLToHex(c.Accent),
	}
}

// Update applies fn to a copy of the working config. Changed colorScheme
// entries are forwarded to the theme editor's working copy; nothing is
// persisted or published until Save.
func (m *Manager) Update(ctx context.Context, fn func(*SiteConfig)) (SiteConfig, error) {
	before := m.Current()
	next := before.clone()
	fn(&next)
	if err := next.Validate(); err != nil {
		return before, err
	}

	forwarded := false
	if next.ColorScheme != nil && before.ColorScheme != nil && m.themes != nil {
		changes := []struct {
			role     theme.Role
			old, new string
		}{
			{theme.RolePrimary, before.ColorScheme.Primary, next.ColorScheme.Primary},
			{theme.RoleSecondary, before.ColorScheme.Secondary, next.ColorScheme.Secondary},
			{theme.RoleAccent, before.ColorScheme.Accent, next.ColorScheme.Accent},
		}
		for _, c := range changes {
			if sameHex(c.old, c.new) {
				continue
			}
			if _, err := m.themes.SetColor(ctx, c.role, c.new); err != nil {
				return before, fmt.Errorf("forward %s to theme: %w", c.role, err)
			}
			forwarded = true
		}
	}

	next.ColorScheme = nil
	m.mu.Lock()
	m.current = next
	m.themeDirty = m.themeDirty || forwarded
	m.mu.Unlock()
	return m.Current(), nil
}

// Save persists the working config without its colorScheme. When Update
// forwarded colors, the theme's working copy is saved first; if that fails
// the site document is not written either.
func (m *Manager) Save(ctx context.Context) error {
	m.mu.Lock()
	cfg := m.current.clone()
	dirty := m.themeDirty
	m.mu.Unlock()
	cfg.ColorScheme = nil

	if dirty {
		if err := m.themes.Save(ctx); err != nil {
			m.logger.Error("theme save for colorScheme failed", zap.Error(err))
			return fmt.Errorf("%w: theme: %w", ErrSaveFailed, err)
		}
		m.mu.Lock()
		m.themeDirty = false
		m.mu.Unlock()
	}

	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrSaveFailed, err)
	}
	if err := m.store.Save(ctx, configstore.KeySite, raw); err != nil {
		m.logger.Error("site config save failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	m.logger.Info("site config saved", zap.String("site_name", cfg.SiteName))
	if m.bus != nil {
		err := m.bus.Publish(ctx, plugin.Event{Topic: event.TopicSiteSaved, Source: "siteconfig", Payload: m.Current()})
		if err != nil {
			m.logger.Warn("site event publish failed", zap.String("topic", event.TopicSiteSaved), zap.Error(err))
		}
	}
	return nil
}

func sameHex(a, b string) bool {
	x, errA := color.ParseHex(a)
	y, errB := color.ParseHex(b)
	return errA == nil && errB == nil && x == y
}
