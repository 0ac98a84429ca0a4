// Package settings provides HTTP handlers for the theme, site configuration
// and color conversion endpoints.
package settings

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/thebooleanin/techstory-weaver/internal/auth"
	"github.com/thebooleanin/techstory-weaver/internal/siteconfig"
	"github.com/thebooleanin/techstory-weaver/internal/theme"
	"github.com/thebooleanin/techstory-weaver/pkg/color"
	"go.uber.org/zap"
)

// Problem types written by this package.
const (
	problemSettings   = "https://theboolean.in/problems/settings-error"
	problemSaveFailed = "https://theboolean.in/problems/save-failed"
)

// SettingsProblemDetail represents an RFC 7807 error response for settings endpoints.
// @Description RFC 7807 Problem Details error response.
type SettingsProblemDetail struct {
	Type   string `json:"type" example:"https://theboolean.in/problems/save-failed"`
	Title  string `json:"title" example:"Internal Server Error"`
	Status int    `json:"status" example:"500"`
	Detail string `json:"detail" example:"theme save failed"`
}

// ColorRequest sets one theme color. Exactly one of Hex and HSL is given.
// @Description Request body for changing a single theme color.
type ColorRequest struct {
	Hex string `json:"hex,omitempty" example:"#E6834D"`
	HSL string `json:"hsl,omitempty" example:"21 75% 60%"`
}

// PreviewRequest toggles live preview.
// @Description Request body for enabling or disabling live preview.
type PreviewRequest struct {
	Enabled bool `json:"enabled" example:"true"`
}

// PresetResponse is one catalog entry with ready-to-render hex swatches.
// @Description A predefined theme and its hex swatches.
type PresetResponse struct {
	Index    int                   `json:"index" example:"1"`
	Name     string                `json:"name" example:"Tech Blue"`
	Colors   theme.Colors          `json:"colors"`
	IsDark   bool                  `json:"isDark" example:"false"`
	Swatches map[theme.Role]string `json:"swatches"`
}

// ConvertResponse is the result of a color conversion.
// @Description Both forms of a color and whether the input was usable.
type ConvertResponse struct {
	Hex     string `json:"hex" example:"#e6834d"`
	HSL     string `json:"hsl" example:"21 75% 60%"`
	Outcome string `json:"outcome" example:"ok"`
}

// Handler provides HTTP handlers for settings endpoints.
type Handler struct {
	themes *theme.Editor
	site   *siteconfig.Manager
	css    *theme.StyleSheet
	logger *zap.Logger
}

// NewHandler creates a settings Handler.
func NewHandler(themes *theme.Editor, site *siteconfig.Manager, css *theme.StyleSheet, logger *zap.Logger) *Handler {
	return &Handler{themes: themes, site: site, css: css, logger: logger}
}

// RegisterRoutes registers settings-related routes on the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Theme endpoints (literal paths before wildcard)
	mux.HandleFunc("GET /api/v1/settings/theme", h.handleGetTheme)
	mux.HandleFunc("PUT /api/v1/settings/theme", h.handlePutTheme)
	mux.HandleFunc("PATCH /api/v1/settings/theme/colors/{role}", h.handleSetColor)
	mux.HandleFunc("GET /api/v1/settings/theme/preview", h.handleGetPreview)
	mux.HandleFunc("PUT /api/v1/settings/theme/preview", h.handleSetPreview)
	mux.HandleFunc("GET /api/v1/settings/theme/presets", h.handleListPresets)
	mux.HandleFunc("POST /api/v1/settings/theme/presets/{index}/apply", h.handleApplyPreset)
	mux.HandleFunc("POST /api/v1/settings/theme/reset", h.handleReset)
	mux.HandleFunc("POST /api/v1/settings/theme/save", h.handleSave)

	mux.HandleFunc("GET /api/v1/settings/site", h.handleGetSite)
	mux.HandleFunc("PUT /api/v1/settings/site", h.handlePutSite)

	mux.HandleFunc("GET /api/v1/color/convert", h.handleConvert)
	mux.Handle("GET /theme.css", h.css)
}

// handleGetTheme returns the saved theme to anonymous callers and the
// working copy to signed-in users.
//
//	@Summary		Get theme
//	@Description	Returns the saved theme. Authenticated callers get the working theme, including unsaved edits.
//	@Tags			theme
//	@Produce		json
//	@Success		200	{object}	theme.Config
//	@Router			/settings/theme [get]
func (h *Handler) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) == nil {
		writeJSON(w, http.StatusOK, h.themes.Published())
		return
	}
	writeJSON(w, http.StatusOK, h.themes.Current())
}

// handlePutTheme replaces and persists the whole theme.
//
//	@Summary		Replace theme
//	@Description	Replace the theme with a validated configuration and persist it.
//	@Tags			theme
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		theme.Config			true	"Theme"
//	@Success		200		{object}	theme.Config
//	@Failure		400		{object}	SettingsProblemDetail	"Validation error"
//	@Failure		401		{object}	SettingsProblemDetail	"Unauthorized"
//	@Failure		403		{object}	SettingsProblemDetail	"Forbidden"
//	@Failure		500		{object}	SettingsProblemDetail	"Save failed"
//	@Router			/settings/theme [put]
func (h *Handler) handlePutTheme(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleEditor) {
		return
	}

	var req theme.Config
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSettingsError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := h.themes.Replace(r.Context(), req); err != nil {
		writeSettingsError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.themes.Save(r.Context()); err != nil {
		writeSaveFailed(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.themes.Current())
}

// handleSetColor changes one color role.
//
//	@Summary		Set theme color
//	@Description	Set one color role from a hex or HSL value. Applied immediately when live preview is on; not persisted until save.
//	@Tags			theme
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			role	path		string					true	"Color role"	Enums(primary, secondary, accent, background, foreground)
//	@Param			request	body		ColorRequest			true	"New color"
//	@Success		200		{object}	theme.Config
//	@Failure		400		{object}	SettingsProblemDetail	"Invalid color"
//	@Failure		404		{object}	SettingsProblemDetail	"Unknown role"
//	@Router			/settings/theme/colors/{role} [patch]
func (h *Handler) handleSetColor(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleEditor) {
		return
	}

	role, err := theme.ParseRole(r.PathValue("role"))
	if err != nil {
		writeSettingsError(w, http.StatusNotFound, err.Error())
		return
	}

	var req ColorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSettingsError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var cfg theme.Config
	switch {
	case req.Hex != "" && req.HSL != "":
		writeSettingsError(w, http.StatusBadRequest, "give either hex or hsl, not both")
		return
	case req.Hex != "":
		if !color.IsHex(req.Hex) {
			writeSettingsError(w, http.StatusBadRequest, "hex must be #rgb or #rrggbb")
			return
		}
		cfg, err = h.themes.SetColor(r.Context(), role, req.Hex)
	case req.HSL != "":
		if !color.IsHSL(req.HSL) {
			writeSettingsError(w, http.StatusBadRequest, "hsl must be an \"H S% L%\" triple")
			return
		}
		cfg, err = h.themes.SetColorHSL(r.Context(), role, req.HSL)
	default:
		writeSettingsError(w, http.StatusBadRequest, "hex or hsl is required")
		return
	}
	if err != nil {
		h.logger.Error("set theme color", zap.String("role", string(role)), zap.Error(err))
		writeSettingsError(w, http.StatusInternalServerError, "failed to set color")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// handleGetPreview reports whether live preview is on.
//
//	@Summary		Get live preview
//	@Tags			theme
//	@Produce		json
//	@Success		200	{object}	PreviewRequest
//	@Router			/settings/theme/preview [get]
func (h *Handler) handleGetPreview(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, PreviewRequest{Enabled: h.themes.LivePreview()})
}

// handleSetPreview toggles live preview.
//
//	@Summary		Set live preview
//	@Description	When enabled, every theme edit is pushed to the preview stream immediately. The public stylesheet changes only on save.
//	@Tags			theme
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		PreviewRequest	true	"Live preview flag"
//	@Success		200		{object}	PreviewRequest
//	@Failure		400		{object}	SettingsProblemDetail
//	@Router			/settings/theme/preview [put]
func (h *Handler) handleSetPreview(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleEditor) {
		return
	}

	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSettingsError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	h.themes.SetLivePreview(r.Context(), req.Enabled)
	writeJSON(w, http.StatusOK, req)
}

// handleListPresets returns the predefined themes in catalog order.
//
//	@Summary		List theme presets
//	@Tags			theme
//	@Produce		json
//	@Success		200	{array}	PresetResponse
//	@Router			/settings/theme/presets [get]
func (h *Handler) handleListPresets(w http.ResponseWriter, _ *http.Request) {
	presets := h.themes.Presets()
	out := make([]PresetResponse, len(presets))
	for i, p := range presets {
		out[i] = PresetResponse{
			Index:    i,
			Name:     p.Name,
			Colors:   p.Colors,
			IsDark:   p.IsDark,
			Swatches: p.Swatches(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleApplyPreset copies a preset into the working theme.
//
//	@Summary		Apply theme preset
//	@Description	Replace the working colors with a preset and set the default dark flag to the preset's.
//	@Tags			theme
//	@Produce		json
//	@Security		BearerAuth
//	@Param			index	path		int	true	"Preset index"
//	@Success		200		{object}	theme.Config
//	@Failure		400		{object}	SettingsProblemDetail
//	@Failure		404		{object}	SettingsProblemDetail	"No preset at index"
//	@Router			/settings/theme/presets/{index}/apply [post]
func (h *Handler) handleApplyPreset(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleEditor) {
		return
	}

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeSettingsError(w, http.StatusBadRequest, "index must be an integer")
		return
	}
	cfg, err := h.themes.ApplyPreset(r.Context(), index)
	if errors.Is(err, theme.ErrPresetNotFound) {
		writeSettingsError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeSettingsError(w, http.StatusInternalServerError, "failed to apply preset")
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// handleReset reinstates the default theme in memory.
//
//	@Summary		Reset theme
//	@Description	Discard unsaved edits and reinstate the default preset. Nothing is persisted.
//	@Tags			theme
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	theme.Config
//	@Router			/settings/theme/reset [post]
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleEditor) {
		return
	}
	writeJSON(w, http.StatusOK, h.themes.Reset(r.Context()))
}

// handleSave persists the working theme.
//
//	@Summary		Save theme
//	@Tags			theme
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	theme.Config
//	@Failure		500	{object}	SettingsProblemDetail	"Save failed"
//	@Router			/settings/theme/save [post]
func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleEditor) {
		return
	}
	if err := h.themes.Save(r.Context()); err != nil {
		writeSaveFailed(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.themes.Current())
}

// handleGetSite returns the site configuration.
//
//	@Summary		Get site config
//	@Description	Returns the site configuration. colorScheme is derived from the saved theme.
//	@Tags			site
//	@Produce		json
//	@Success		200	{object}	siteconfig.SiteConfig
//	@Router			/settings/site [get]
func (h *Handler) handleGetSite(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.site.Current())
}

// handlePutSite replaces and persists the site configuration. Changed
// colorScheme entries are forwarded to the theme and saved with it.
//
//	@Summary		Replace site config
//	@Tags			site
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		siteconfig.SiteConfig	true	"Site config"
//	@Success		200		{object}	siteconfig.SiteConfig
//	@Failure		400		{object}	SettingsProblemDetail	"Validation error"
//	@Failure		500		{object}	SettingsProblemDetail	"Save failed"
//	@Router			/settings/site [put]
func (h *Handler) handlePutSite(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleEditor) {
		return
	}

	var req siteconfig.SiteConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSettingsError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := h.site.Update(r.Context(), func(c *siteconfig.SiteConfig) { *c = req })
	if errors.Is(err, siteconfig.ErrInvalid) {
		writeSettingsError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("update site config", zap.Error(err))
		writeSettingsError(w, http.StatusInternalServerError, "failed to update site config")
		return
	}
	if err := h.site.Save(r.Context()); err != nil {
		writeSaveFailed(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.site.Current())
}

// handleConvert converts between hex and HSL.
//
//	@Summary		Convert color
//	@Description	Convert a hex color to HSL or an HSL triple to hex. Malformed input yields the fallback color with outcome "fallback".
//	@Tags			color
//	@Produce		json
//	@Param			hex	query		string	false	"Hex color"	example(#E6834D)
//	@Param			hsl	query		string	false	"HSL triple"
//	@Success		200	{object}	ConvertResponse
//	@Failure		400	{object}	SettingsProblemDetail
//	@Router			/color/convert [get]
func (h *Handler) handleConvert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hex, hsl := q.Get("hex"), q.Get("hsl")

	switch {
	case hex != "" && hsl == "":
		conv := color.ConvertHexToHSL(hex)
		writeJSON(w, http.StatusOK, ConvertResponse{
			Hex:     color.HSLToHex(conv.Value),
			HSL:     conv.Value,
			Outcome: conv.Outcome.String(),
		})
	case hsl != "" && hex == "":
		conv := color.ConvertHSLToHex(hsl)
		writeJSON(w, http.StatusOK, ConvertResponse{
			Hex:     conv.Value,
			HSL:     color.HexToHSL(conv.Value),
			Outcome: conv.Outcome.String(),
		})
	default:
		writeSettingsError(w, http.StatusBadRequest, "exactly one of hex or hsl is required")
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeSettingsError writes an RFC 7807 problem response.
func writeSettingsError(w http.ResponseWriter, status int, detail string) {
	writeProblem(w, problemSettings, status, detail)
}

// writeSaveFailed writes the 500 problem for a failed persist.
func writeSaveFailed(w http.ResponseWriter, err error) {
	writeProblem(w, problemSaveFailed, http.StatusInternalServerError, err.Error())
}

func writeProblem(w http.ResponseWriter, typ string, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   typ,
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
