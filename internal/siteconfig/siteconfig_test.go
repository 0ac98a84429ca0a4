package siteconfig

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebooleanin/techstory-weaver/internal/configstore"
	"github.com/thebooleanin/techstory-weaver/internal/event"
	"github.com/thebooleanin/techstory-weaver/internal/theme"
	"github.com/thebooleanin/techstory-weaver/pkg/color"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func newManager(t *testing.T) (*Manager, *theme.Editor, *configstore.MemoryStore) {
	t.Helper()
	store := configstore.NewMemoryStore()
	logger := zaptest.NewLogger(t)
	ed := theme.NewEditor(store, nil, logger)
	return NewManager(store, ed, nil, logger), ed, store
}

func TestManager_Load_Defaults(t *testing.T) {
	m, _, store := newManager(t)
	ctx := context.Background()

	cfg := m.Load(ctx)
	assert.Equal(t, "TheBoolean", cfg.SiteName)
	require.NotNil(t, cfg.ColorScheme)
	assert.Equal(t, "#9351f0", cfg.ColorScheme.Primary)

	store.Put(configstore.KeySite, []byte("]["))
	assert.Equal(t, Default().SiteName, m.Load(ctx).SiteName)
}

func TestManager_ColorSchemeFollowsTheme(t *testing.T) {
	m, ed, _ := newManager(t)
	ctx := context.Background()

	_, err := ed.ApplyPreset(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "#9351f0", m.Current().ColorScheme.Primary, "unsaved theme edits stay private")

	require.NoError(t, ed.Save(ctx))
	assert.Equal(t, "#3c83f6", m.Current().ColorScheme.Primary)
}

func TestManager_Update_ForwardsColorScheme(t *testing.T) {
	m, ed, _ := newManager(t)
	ctx := context.Background()

	cfg, err := m.Update(ctx, func(c *SiteConfig) {
		c.Tagline = "New tagline"
		c.ColorScheme.Accent = "#E6834D"
	})
	require.NoError(t, err)
	assert.Equal(t, "New tagline", cfg.Tagline)
	assert.Equal(t, "21 75% 60%", ed.Current().Colors.Accent)
	assert.Equal(t, theme.Default().Colors.Primary, ed.Current().Colors.Primary, "unchanged roles are not rewritten")
}

func TestManager_Save_PersistsForwardedColors(t *testing.T) {
	m, _, store := newManager(t)
	ctx := context.Background()
	m.Load(ctx)

	_, err := m.Update(ctx, func(c *SiteConfig) { c.ColorScheme.Primary = "#e6834d" })
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx))
	want := m.Current().ColorScheme.Primary
	assert.LessOrEqual(t, hexDrift(t, want, "#e6834d"), 2)

	logger := zaptest.NewLogger(t)
	ed := theme.NewEditor(store, nil, logger)
	ed.Load(ctx)
	fresh := NewManager(store, ed, nil, logger)
	assert.Equal(t, want, fresh.Load(ctx).ColorScheme.Primary)
	assert.Equal(t, "21 75% 60%", ed.Current().Colors.Primary)
}

func TestManager_Save_ThemeFailureSkipsSiteDocument(t *testing.T) {
	m, ed, store := newManager(t)
	ctx := context.Background()

	_, err := m.Update(ctx, func(c *SiteConfig) {
		c.Tagline = "Not yet"
		c.ColorScheme.Accent = "#10b981"
	})
	require.NoError(t, err)

	boom := errors.New("disk full")
	store.FailSaves(boom)
	err = m.Save(ctx)
	require.ErrorIs(t, err, ErrSaveFailed)
	require.ErrorIs(t, err, theme.ErrSaveFailed)
	assert.Equal(t, theme.Default(), ed.Published())

	store.FailSaves(nil)
	_, err = store.Load(ctx, configstore.KeySite)
	require.ErrorIs(t, err, configstore.ErrNotFound)

	require.NoError(t, m.Save(ctx), "forwarded colors are retried on the next save")
	assert.Equal(t, "160 84% 39%", ed.Published().Colors.Accent)
}

func hexDrift(t *testing.T, a, b string) int {
	t.Helper()
	x, err := color.ParseHex(a)
	require.NoError(t, err)
	y, err := color.ParseHex(b)
	require.NoError(t, err)
	d := 0
	for _, p := range [][2]uint8{{x.R, y.R}, {x.G, y.G}, {x.B, y.B}} {
		d = max(d, abs(int(p[0])-int(p[1])))
	}
	return d
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestManager_Update_Validates(t *testing.T) {
	m, _, _ := newManager(t)
	ctx := context.Background()

	tests := map[string]func(*SiteConfig){
		"empty name":     func(c *SiteConfig) { c.SiteName = "" },
		"bad email":      func(c *SiteConfig) { c.ContactEmail = "nope" },
		"negative":       func(c *SiteConfig) { c.Metrics.TeamMembers = -1 },
		"bad social url": func(c *SiteConfig) { c.SocialLinks["x"] = "javascript:alert(1)" },
		"bad hex":        func(c *SiteConfig) { c.ColorScheme.Primary = "purple" },
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Update(ctx, fn)
			require.ErrorIs(t, err, ErrInvalid)
			assert.Equal(t, Default().SiteName, m.Current().SiteName)
			assert.Equal(t, Default().SocialLinks, m.Current().SocialLinks)
		})
	}
}

func TestManager_Save_RoundtripWithoutColorScheme(t *testing.T) {
	m, ed, store := newManager(t)
	ctx := context.Background()

	_, err := m.Update(ctx, func(c *SiteConfig) {
		c.Metrics.ProjectsCompleted = 321
		c.Navigation.ShowStories = false
	})
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx))

	raw, err := store.Load(ctx, configstore.KeySite)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "colorScheme")

	fresh := NewManager(store, ed, nil, zaptest.NewLogger(t))
	assert.Equal(t, m.Current(), fresh.Load(ctx))
}

func TestManager_Save_Failure(t *testing.T) {
	m, _, store := newManager(t)
	boom := errors.New("read-only")
	store.FailSaves(boom)

	err := m.Save(context.Background())
	require.ErrorIs(t, err, ErrSaveFailed)
	require.ErrorIs(t, err, boom)
}

func TestManager_Current_ReturnsCopy(t *testing.T) {
	m, _, _ := newManager(t)
	cfg := m.Current()
	cfg.SocialLinks["linkedin"] = "https://evil.example"
	assert.Equal(t, Default().SocialLinks["linkedin"], m.Current().SocialLinks["linkedin"])
}

type refusingBus struct{ err error }

func (b refusingBus) Publish(context.Context, plugin.Event) error { return b.err }

func TestManager_Save_LogsPublishFailure(t *testing.T) {
	store := configstore.NewMemoryStore()
	core, logs := observer.New(zap.WarnLevel)
	logger := zap.New(core)
	ed := theme.NewEditor(store, nil, logger)
	m := NewManager(store, ed, refusingBus{err: errors.New("bus closed")}, logger)

	require.NoError(t, m.Save(context.Background()), "the document is stored even when the event is lost")
	_, err := store.Load(context.Background(), configstore.KeySite)
	require.NoError(t, err)

	entries := logs.FilterMessage("site event publish failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, event.TopicSiteSaved, entries[0].ContextMap()["topic"])
	assert.Equal(t, "bus closed", entries[0].ContextMap()["error"])
}
