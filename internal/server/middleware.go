package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/thebooleanin/techstory-weaver/internal/ratelimit"
	"github.com/thebooleanin/techstory-weaver/internal/version"
	"go.uber.org/zap"
)

var (
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "theboolean_http_requests_total",
		Help: "HTTP requests by method, matched route and status.",
	}, []string{"method", "route", "status"})
	httpLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "theboolean_http_request_duration_seconds",
		Help:    "HTTP request latency by method and matched route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(httpRequests, httpLatency)
}

// contentSecurityPolicy lets inline theme variables through and allows
// media from a CDN; everything else is same-origin.
const contentSecurityPolicy = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; " +
	"img-src 'self' data: https:; media-src 'self' https:; font-src 'self'; connect-src 'self' ws: wss:"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain wraps handler so that mw[0] sees the request first.
func Chain(handler http.Handler, mw ...Middleware) http.Handler {
	for i := range mw {
		handler = mw[len(mw)-1-i](handler)
	}
	return handler
}

// pathSet is a lookup of exact request paths.
type pathSet map[string]struct{}

func newPathSet(paths []string) pathSet {
	s := make(pathSet, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

func (s pathSet) has(r *http.Request) bool {
	_, ok := s[r.URL.Path]
	return ok
}

type requestIDKey struct{}

// RequestID returns the ID RequestIDMiddleware stored in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestIDMiddleware reuses an inbound X-Request-ID or mints one, echoes
// it on the response and stores it in the request context.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// LoggingMiddleware records every request in the Prometheus metrics and
// logs those whose path is not in quiet.
func LoggingMiddleware(logger *zap.Logger, quiet []string) Middleware {
	skip := newPathSet(quiet)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			began := time.Now()
			next.ServeHTTP(rec, r)
			elapsed := time.Since(began)

			route := routeLabel(r)
			httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.code())).Inc()
			httpLatency.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

			if skip.has(r) {
				return
			}
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.code()),
				zap.Duration("duration", elapsed),
				zap.String("remote", r.RemoteAddr),
				zap.String("request_id", RequestID(r.Context())),
			)
		})
	}
}

// routeLabel keeps IDs and slugs out of metric labels by using the mux
// pattern that matched.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}

// SecurityHeadersMiddleware sets the browser hardening headers.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Content-Security-Policy", contentSecurityPolicy)
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// VersionHeaderMiddleware stamps X-TheBoolean-Version on every response.
func VersionHeaderMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-TheBoolean-Version", version.Short())
		next.ServeHTTP(w, r)
	})
}

// RecoveryMiddleware turns a handler panic into a logged 500 problem.
func RecoveryMiddleware(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				logger.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("request_id", RequestID(r.Context())),
				)
				InternalError(w, "an unexpected error occurred", r.URL.Path)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware charges each request to the bucket of the client
// proxies resolves. Paths in exempt pass through uncharged.
func RateLimitMiddleware(limiter *ratelimit.Limiter, proxies *ratelimit.Proxies, exempt []string) Middleware {
	skip := newPathSet(exempt)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !skip.has(r) && !limiter.Allow(proxies.ClientIP(r)) {
				RateLimited(w, "rate limit exceeded", r.URL.Path)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder remembers the first status code written.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController and the
// websocket upgrade.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// code reports 200 when the handler wrote nothing at all.
func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

// newRequestID returns 16 random bytes hex-encoded.
func newRequestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
