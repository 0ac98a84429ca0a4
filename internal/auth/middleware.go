package auth

import (
	"context"
	"net/http"
	"strings"
)

// authUserKey is a context key for the authenticated user.
type authUserKey struct{}

// UserFromContext returns the authenticated user from the request context.
// Returns nil if the request is not authenticated.
func UserFromContext(ctx context.Context) *Claims {
	if c, ok := ctx.Value(authUserKey{}).(*Claims); ok {
		return c
	}
	return nil
}

// WithClaims returns ctx carrying c. Used by the WebSocket handler, which
// authenticates from a query parameter.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, authUserKey{}, c)
}

// Auth endpoints reachable without a token.
var publicPaths = map[string]bool{
	"/api/v1/auth/login":        true,
	"/api/v1/auth/refresh":      true,
	"/api/v1/auth/logout":       true,
	"/api/v1/auth/setup":        true,
	"/api/v1/auth/setup/status": true,
}

// PublicRule reports whether an anonymous request may reach its handler.
type PublicRule func(r *http.Request) bool

// PublicReads lets anonymous GET requests under any of prefixes through.
func PublicReads(prefixes ...string) PublicRule {
	return func(r *http.Request) bool {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			return false
		}
		for _, p := range prefixes {
			if r.URL.Path == p || strings.HasPrefix(r.URL.Path, strings.TrimSuffix(p, "/")+"/") {
				return true
			}
		}
		return false
	}
}

// PublicPosts lets anonymous POST requests to exactly paths through.
func PublicPosts(paths ...string) PublicRule {
	return func(r *http.Request) bool {
		if r.Method != http.MethodPost {
			return false
		}
		for _, p := range paths {
			if r.URL.Path == p {
				return true
			}
		}
		return false
	}
}

// AuthMiddleware validates JWT access tokens on API routes. Non-API paths,
// the WebSocket endpoints and public auth paths are skipped. A request that
// carries a token must present a valid one; a request without a token is
// allowed only when a public rule matches, and reaches the handler with no
// claims in its context.
func AuthMiddleware(tokens *TokenService, public ...PublicRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") ||
				strings.HasPrefix(r.URL.Path, "/api/v1/ws/") ||
				publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				for _, allow := range public {
					if allow(r) {
						next.ServeHTTP(w, r)
						return
					}
				}
			}
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}

			claims, err := tokens.ValidateAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired access token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole writes a 401 or 403 problem and returns false unless the
// caller holds at least min.
func RequireRole(w http.ResponseWriter, r *http.Request, min Role) bool {
	user := UserFromContext(r.Context())
	if user == nil {
		writeAuthError(w, http.StatusUnauthorized, "authentication required")
		return false
	}
	if !user.Can(min) {
		writeAuthError(w, http.StatusForbidden, string(min)+" role required")
		return false
	}
	return true
}
