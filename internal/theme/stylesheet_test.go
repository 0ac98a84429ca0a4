package theme

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebooleanin/techstory-weaver/internal/configstore"
	"github.com/thebooleanin/techstory-weaver/internal/event"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"go.uber.org/zap/zaptest"
)

func TestRenderCSS(t *testing.T) {
	css := RenderCSS(Default())
	assert.Contains(t, css, "--primary: 265 84% 63%;")
	assert.Contains(t, css, "--foreground: 240 10% 4%;")
	assert.Contains(t, css, "color-scheme: light;")
	assert.NotContains(t, css, "prefers-color-scheme")
	assert.NotContains(t, css, "data-theme")

	cfg := Default()
	cfg.DarkMode = DarkMode{Enabled: true, Default: true, Auto: true}
	css = RenderCSS(cfg)
	assert.Contains(t, css, "color-scheme: dark;")
	assert.Contains(t, css, "prefers-color-scheme: dark")
	assert.Contains(t, css, `.dark, [data-theme="dark"] { color-scheme: dark; }`)
}

func TestStyleSheet_ServeHTTP(t *testing.T) {
	s := NewStyleSheet(Default())

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/theme.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "light", rec.Header().Get("X-Theme-Mode"))
	assert.Equal(t, s.CSS(), rec.Body.String())
	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)

	req := httptest.NewRequest(http.MethodGet, "/theme.css", nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	dark := Default()
	dark.DarkMode.Default = true
	s.Apply(context.Background(), StageSaved, dark)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code, "new theme changes the ETag")
	assert.Equal(t, "dark", rec.Header().Get("X-Theme-Mode"))
}

func TestStyleSheet_IgnoresUnsavedEdits(t *testing.T) {
	ctx := context.Background()
	store := configstore.NewMemoryStore()
	css := NewStyleSheet(Default())
	ed := NewEditor(store, nil, zaptest.NewLogger(t), css)
	ed.Load(ctx)
	ed.SetLivePreview(ctx, true)

	_, err := ed.SetColor(ctx, RolePrimary, "#E6834D")
	require.NoError(t, err)
	_, err = ed.ApplyPreset(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, RenderCSS(Default()), css.CSS(), "public stylesheet shows only the persisted theme")

	require.NoError(t, ed.Save(ctx))
	assert.Equal(t, RenderCSS(ed.Current()), css.CSS())

	ed.Reset(ctx)
	assert.NotEqual(t, RenderCSS(Default()), css.CSS(), "reset is unsaved")

	store.FailSaves(errors.New("disk full"))
	require.ErrorIs(t, ed.Save(ctx), ErrSaveFailed)
	assert.NotEqual(t, RenderCSS(Default()), css.CSS(), "failed save does not publish")
}

func TestBroadcaster_PublishesPreviewAndSaved(t *testing.T) {
	logger := zaptest.NewLogger(t)
	bus := event.NewBus(logger)

	got := make(chan plugin.Event, 4)
	bus.SubscribeAll(func(_ context.Context, e plugin.Event) { got <- e })

	ed := NewEditor(configstore.NewMemoryStore(), nil, logger, NewBroadcaster(bus, logger))
	ctx := context.Background()
	ed.Load(ctx)
	ed.SetLivePreview(ctx, true)
	require.NoError(t, ed.Save(ctx))

	var topics []string
	for len(topics) < 2 {
		select {
		case e := <-got:
			topics = append(topics, e.Topic)
			u, ok := e.Payload.(Update)
			require.True(t, ok)
			assert.Equal(t, Default(), u.Theme)
			assert.Equal(t, RenderCSS(Default()), u.CSS)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for theme events")
		}
	}
	assert.Equal(t, []string{event.TopicThemePreview, event.TopicThemeSaved}, topics)
}
