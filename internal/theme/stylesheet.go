package theme

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"sync"
)

// Stage says which copy of the theme an Applier is handed.
type Stage int

const (
	// StagePreview is the unsaved working copy, sent on each edit while
	// live preview is on and when a save fails.
	StagePreview Stage = iota
	// StageLoaded is the persisted theme read by Load.
	StageLoaded
	// StageSaved is the theme a successful Save just persisted.
	StageSaved
)

func (s Stage) String() string {
	switch s {
	case StagePreview:
		return "preview"
	case StageLoaded:
		return "loaded"
	case StageSaved:
		return "saved"
	default:
		return "unknown"
	}
}

// Published reports whether the stage carries the persisted theme.
func (s Stage) Published() bool { return s == StageLoaded || s == StageSaved }

// Applier receives the theme as it moves through the editor. Appliers
// visible to the public must ignore StagePreview.
type Applier interface {
	Apply(ctx context.Context, stage Stage, cfg Config)
}

// RenderCSS renders the theme as custom properties on :root. Values are
// the raw HSL triples so consumers can write hsl(var(--primary)).
func RenderCSS(cfg Config) string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, r := range Roles {
		b.WriteString("  --")
		b.WriteString(string(r))
		b.WriteString(": ")
		b.WriteString(cfg.Colors.Get(r))
		b.WriteString(";\n")
	}
	b.WriteString("  color-scheme: ")
	b.WriteString(cfg.Mode())
	b.WriteString(";\n}\n")

	if cfg.IsDark() {
		b.WriteString(".dark, [data-theme=\"dark\"] { color-scheme: dark; }\n")
	}
	if cfg.DarkMode.Enabled && cfg.DarkMode.Auto {
		b.WriteString("@media (prefers-color-scheme: dark) {\n  :root { color-scheme: dark; }\n}\n")
	}
	return b.String()
}

// StyleSheet caches the CSS of the published theme and serves it at
// /theme.css. Previews never reach it.
type StyleSheet struct {
	mu   sync.RWMutex
	css  string
	mode string
	etag string
}

var _ Applier = (*StyleSheet)(nil)

// NewStyleSheet returns a StyleSheet primed with cfg.
func NewStyleSheet(cfg Config) *StyleSheet {
	s := &StyleSheet{}
	s.render(cfg)
	return s
}

// Apply re-renders on loaded and saved themes only.
func (s *StyleSheet) Apply(_ context.Context, stage Stage, cfg Config) {
	if !stage.Published() {
		return
	}
	s.render(cfg)
}

func (s *StyleSheet) render(cfg Config) {
	css := RenderCSS(cfg)
	sum := sha256.Sum256([]byte(css))

	s.mu.Lock()
	s.css = css
	s.mode = cfg.Mode()
	s.etag = `"` + hex.EncodeToString(sum[:8]) + `"`
	s.mu.Unlock()
}

// CSS returns the cached stylesheet.
func (s *StyleSheet) CSS() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.css
}

// ServeHTTP writes the cached stylesheet with an ETag so browsers
// revalidate cheaply.
func (s *StyleSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	css, mode, etag := s.css, s.mode, s.etag
	s.mu.RUnlock()

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Theme-Mode", mode)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(css))
}
