package server

import "net/http"

// ReadOnlyMiddleware rejects mutating requests while the site is frozen,
// e.g. during a content migration. GET, HEAD and OPTIONS pass through.
func ReadOnlyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			w.Header().Set("Allow", "GET, HEAD, OPTIONS")
			MethodNotAllowed(w, "site is in read-only mode", r.URL.Path)
		}
	})
}
