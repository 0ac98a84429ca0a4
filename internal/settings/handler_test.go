package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebooleanin/techstory-weaver/internal/auth"
	"github.com/thebooleanin/techstory-weaver/internal/configstore"
	"github.com/thebooleanin/techstory-weaver/internal/siteconfig"
	"github.com/thebooleanin/techstory-weaver/internal/theme"
	"go.uber.org/zap/zaptest"
)

type testEnv struct {
	mux    *http.ServeMux
	store  *configstore.MemoryStore
	themes *theme.Editor
	css    *theme.StyleSheet
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := configstore.NewMemoryStore()
	css := theme.NewStyleSheet(theme.Default())
	themes := theme.NewEditor(store, theme.NewCatalog(), logger, css)
	site := siteconfig.NewManager(store, themes, nil, logger)

	mux := http.NewServeMux()
	NewHandler(themes, site, css, logger).RegisterRoutes(mux)
	return &testEnv{mux: mux, store: store, themes: themes, css: css}
}

// do sends a request as role; an empty role sends it anonymously.
func (e *testEnv) do(method, path string, role auth.Role, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: "u1", Username: "tester", Role: string(role)}))
	}
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func TestGetTheme(t *testing.T) {
	env := setup(t)

	w := env.do("GET", "/api/v1/settings/theme", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, theme.Default(), decode[theme.Config](t, w))
}

func TestSetColor_HexThenSave(t *testing.T) {
	env := setup(t)

	w := env.do("PATCH", "/api/v1/settings/theme/colors/primary", auth.RoleEditor, ColorRequest{Hex: "#E6834D"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "21 75% 60%", decode[theme.Config](t, w).Colors.Primary)

	_, err := env.store.Load(context.Background(), configstore.KeyTheme)
	assert.ErrorIs(t, err, configstore.ErrNotFound, "edits are not persisted before save")

	w = env.do("POST", "/api/v1/settings/theme/save", auth.RoleEditor, nil)
	require.Equal(t, http.StatusOK, w.Code)

	raw, err := env.store.Load(context.Background(), configstore.KeyTheme)
	require.NoError(t, err)
	var saved theme.Config
	require.NoError(t, json.Unmarshal(raw, &saved))
	assert.Equal(t, "21 75% 60%", saved.Colors.Primary)
	assert.Contains(t, env.css.CSS(), "--primary: 21 75% 60%;")
}

func TestSetColor_Validation(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"hsl", "/api/v1/settings/theme/colors/accent", ColorRequest{HSL: "20 76.4% 57%"}, http.StatusOK},
		{"unknown role", "/api/v1/settings/theme/colors/muted", ColorRequest{Hex: "#ffffff"}, http.StatusNotFound},
		{"bad hex", "/api/v1/settings/theme/colors/primary", ColorRequest{Hex: "#12"}, http.StatusBadRequest},
		{"bad hsl", "/api/v1/settings/theme/colors/primary", ColorRequest{HSL: "red"}, http.StatusBadRequest},
		{"both", "/api/v1/settings/theme/colors/primary", ColorRequest{Hex: "#fff", HSL: "0 0% 100%"}, http.StatusBadRequest},
		{"neither", "/api/v1/settings/theme/colors/primary", ColorRequest{}, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do("PATCH", tc.path, auth.RoleEditor, tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestMutations_RequireEditor(t *testing.T) {
	env := setup(t)

	mutations := []struct{ method, path string }{
		{"PUT", "/api/v1/settings/theme"},
		{"PATCH", "/api/v1/settings/theme/colors/primary"},
		{"PUT", "/api/v1/settings/theme/preview"},
		{"POST", "/api/v1/settings/theme/presets/1/apply"},
		{"POST", "/api/v1/settings/theme/reset"},
		{"POST", "/api/v1/settings/theme/save"},
		{"PUT", "/api/v1/settings/site"},
	}
	for _, m := range mutations {
		t.Run(m.method+" "+m.path, func(t *testing.T) {
			assert.Equal(t, http.StatusUnauthorized, env.do(m.method, m.path, "", nil).Code)
			assert.Equal(t, http.StatusForbidden, env.do(m.method, m.path, auth.RoleViewer, nil).Code)
		})
	}
}

func TestPresets_ListAndApply(t *testing.T) {
	env := setup(t)

	presets := decode[[]PresetResponse](t, env.do("GET", "/api/v1/settings/theme/presets", "", nil))
	require.Len(t, presets, 6)
	assert.Equal(t, "Modern Purple", presets[0].Name)
	assert.Equal(t, "#9351f0", presets[0].Swatches[theme.RolePrimary])
	assert.Equal(t, "Dark Mode", presets[5].Name)
	assert.True(t, presets[5].IsDark)

	w := env.do("POST", "/api/v1/settings/theme/presets/1/apply", auth.RoleEditor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cfg := decode[theme.Config](t, w)
	assert.Equal(t, "Tech Blue", cfg.Name)
	assert.Equal(t, "217 91% 60%", cfg.Colors.Primary)

	assert.Equal(t, http.StatusNotFound, env.do("POST", "/api/v1/settings/theme/presets/6/apply", auth.RoleEditor, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do("POST", "/api/v1/settings/theme/presets/-1/apply", auth.RoleEditor, nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do("POST", "/api/v1/settings/theme/presets/x/apply", auth.RoleEditor, nil).Code)
}

func TestPreview_EditsStayOffPublicSurfaces(t *testing.T) {
	env := setup(t)
	before := env.css.CSS()

	w := env.do("PUT", "/api/v1/settings/theme/preview", auth.RoleEditor, PreviewRequest{Enabled: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[PreviewRequest](t, env.do("GET", "/api/v1/settings/theme/preview", "", nil)).Enabled)

	env.do("PATCH", "/api/v1/settings/theme/colors/primary", auth.RoleEditor, ColorRequest{Hex: "#3b82f6"})
	env.do("POST", "/api/v1/settings/theme/presets/5/apply", auth.RoleEditor, nil)
	assert.Equal(t, before, env.css.CSS(), "live preview does not reach /theme.css")

	anon := decode[theme.Config](t, env.do("GET", "/api/v1/settings/theme", "", nil))
	assert.Equal(t, theme.Default(), anon, "anonymous readers see the saved theme")
	site := decode[siteconfig.SiteConfig](t, env.do("GET", "/api/v1/settings/site", "", nil))
	assert.Equal(t, "#9351f0", site.ColorScheme.Primary)

	working := decode[theme.Config](t, env.do("GET", "/api/v1/settings/theme", auth.RoleViewer, nil))
	assert.Equal(t, "Dark Mode", working.Name)

	require.Equal(t, http.StatusOK, env.do("POST", "/api/v1/settings/theme/save", auth.RoleEditor, nil).Code)
	assert.NotEqual(t, before, env.css.CSS())
	assert.Equal(t, "Dark Mode", decode[theme.Config](t, env.do("GET", "/api/v1/settings/theme", "", nil)).Name)
}

func TestReset_KeepsStorage(t *testing.T) {
	env := setup(t)

	env.do("POST", "/api/v1/settings/theme/presets/2/apply", auth.RoleEditor, nil)
	require.Equal(t, http.StatusOK, env.do("POST", "/api/v1/settings/theme/save", auth.RoleEditor, nil).Code)

	w := env.do("POST", "/api/v1/settings/theme/reset", auth.RoleEditor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, theme.Default(), decode[theme.Config](t, w))

	raw, err := env.store.Load(context.Background(), configstore.KeyTheme)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Corporate Green")
}

func TestSave_FailureIsProblem(t *testing.T) {
	env := setup(t)
	env.store.FailSaves(errors.New("disk full"))

	w := env.do("POST", "/api/v1/settings/theme/save", auth.RoleEditor, nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	p := decode[SettingsProblemDetail](t, w)
	assert.Equal(t, problemSaveFailed, p.Type)
	assert.Contains(t, p.Detail, "disk full")
}

func TestPutTheme(t *testing.T) {
	env := setup(t)

	next := theme.Default()
	next.Colors.Primary = "142 71% 45%"
	next.DarkMode = theme.DarkMode{Enabled: true, Default: true}
	w := env.do("PUT", "/api/v1/settings/theme", auth.RoleAdmin, next)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[theme.Config](t, w).IsDark())

	_, err := env.store.Load(context.Background(), configstore.KeyTheme)
	require.NoError(t, err)

	next.Colors.Secondary = "#ffffff"
	w = env.do("PUT", "/api/v1/settings/theme", auth.RoleAdmin, next)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "240 5% 96%", env.themes.Current().Colors.Secondary)
}

func TestSite_GetAndPut(t *testing.T) {
	env := setup(t)

	site := decode[siteconfig.SiteConfig](t, env.do("GET", "/api/v1/settings/site", "", nil))
	assert.Equal(t, "TheBoolean", site.SiteName)
	require.NotNil(t, site.ColorScheme)
	assert.Equal(t, "#9351f0", site.ColorScheme.Primary)

	site.Tagline = "Stories that ship"
	site.ColorScheme.Primary = "#E6834D"
	w := env.do("PUT", "/api/v1/settings/site", auth.RoleEditor, site)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[siteconfig.SiteConfig](t, w)
	assert.Equal(t, "Stories that ship", got.Tagline)
	assert.Equal(t, "#e6824c", got.ColorScheme.Primary)
	assert.Equal(t, "21 75% 60%", env.themes.Published().Colors.Primary, "colorScheme edits are saved with the theme")

	rawTheme, err := env.store.Load(context.Background(), configstore.KeyTheme)
	require.NoError(t, err)
	assert.Contains(t, string(rawTheme), "21 75% 60%")

	raw, err := env.store.Load(context.Background(), configstore.KeySite)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "colorScheme")

	site.ColorScheme.Accent = "#10b981"
	env.store.FailSaves(errors.New("disk full"))
	w = env.do("PUT", "/api/v1/settings/site", auth.RoleEditor, site)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, problemSaveFailed, decode[SettingsProblemDetail](t, w).Type)
	env.store.FailSaves(nil)

	site.SiteName = ""
	assert.Equal(t, http.StatusBadRequest, env.do("PUT", "/api/v1/settings/site", auth.RoleEditor, site).Code)
}

func TestThemeCSS(t *testing.T) {
	env := setup(t)

	w := env.do("GET", "/theme.css", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "--primary: 265 84% 63%;")
}

func TestConvert(t *testing.T) {
	env := setup(t)

	tests := []struct {
		name  string
		query string
		want  ConvertResponse
	}{
		{"hex", "?hex=%23E6834D", ConvertResponse{Hex: "#e6834d", HSL: "21 75% 60%", Outcome: "ok"}},
		{"hsl", "?hsl=217+91%25+60%25", ConvertResponse{Hex: "#3c83f6", HSL: "217 91% 60%", Outcome: "ok"}},
		{"bad hex", "?hex=zzz", ConvertResponse{Hex: "#9351f0", HSL: "265 84% 63%", Outcome: "fallback"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do("GET", "/api/v1/color/convert"+tc.query, "", nil)
			require.Equal(t, http.StatusOK, w.Code)
			got := decode[ConvertResponse](t, w)
			assert.Equal(t, tc.want.HSL, got.HSL)
			assert.Equal(t, tc.want.Outcome, got.Outcome)
			if tc.name != "hex" {
				assert.Equal(t, tc.want.Hex, got.Hex)
			}
		})
	}

	assert.Equal(t, http.StatusBadRequest, env.do("GET", "/api/v1/color/convert", "", nil).Code)
}
