package dashboard

import (
	"io/fs"
	"net/http"
	"strings"
)

// Paths owned by the server; the SPA fallback must not shadow them.
var reservedPrefixes = []string{"/api/", "/swagger/"}

var reservedPaths = map[string]bool{
	"/healthz":   true,
	"/readyz":    true,
	"/metrics":   true,
	"/theme.css": true,
}

// Handler returns an http.Handler that serves the built dashboard and site
// bundle. Any path that is not a static file and not a server route gets
// index.html so client-side routing can take over.
func Handler() http.Handler {
	if distFS == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "dashboard not available (dev mode)", http.StatusNotFound)
		})
	}

	subFS, err := fs.Sub(distFS, "dist")
	if err != nil {
		panic("dashboard: failed to create sub filesystem: " + err.Error())
	}
	return newHandler(subFS)
}

func newHandler(root fs.FS) http.Handler {
	fileServer := http.FileServer(http.FS(root))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reserved(r.URL.Path) {
			http.NotFound(w, r)
			return
		}

		path := strings.TrimPrefix(r.URL.Path, "/")
		if path == "" {
			path = "index.html"
		}

		if f, err := root.Open(path); err == nil {
			f.Close()
			// Vite emits content-hashed names under assets/.
			if strings.HasPrefix(path, "assets/") {
				w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			} else {
				w.Header().Set("Cache-Control", "no-cache")
			}
			fileServer.ServeHTTP(w, r)
			return
		}

		// File not found -- serve index.html for client-side routing
		w.Header().Set("Cache-Control", "no-cache")
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}

func reserved(path string) bool {
	if reservedPaths[path] {
		return true
	}
	for _, p := range reservedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
