package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebooleanin/techstory-weaver/internal/ratelimit"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func serve(h http.Handler, method, path string, edit ...func(*http.Request)) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, http.NoBody)
	for _, fn := range edit {
		fn(r)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func from(addr string, xff ...string) func(*http.Request) {
	return func(r *http.Request) {
		r.RemoteAddr = addr
		for _, v := range xff {
			r.Header.Add("X-Forwarded-For", v)
		}
	}
}

func TestRequestID_MintsOrReuses(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	w := serve(h, "GET", "/")
	assert.Len(t, seen, 32)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	w = serve(h, "GET", "/", func(r *http.Request) { r.Header.Set("X-Request-ID", "trace-7") })
	assert.Equal(t, "trace-7", seen)
	assert.Equal(t, "trace-7", w.Header().Get("X-Request-ID"))

	assert.NotEqual(t, newRequestID(), newRequestID())
}

func TestLogging_QuietPathsStillCounted(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/forms/{form}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	mux.Handle("GET /healthz", okHandler)
	h := LoggingMiddleware(zap.New(core), []string{"/healthz"})(mux)

	w := serve(h, "POST", "/api/v1/forms/contact")
	assert.Equal(t, http.StatusCreated, w.Code)
	serve(h, "GET", "/healthz")

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1, "healthz is not logged")
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/v1/forms/contact", fields["path"])
	assert.EqualValues(t, http.StatusCreated, fields["status"])
}

func TestSecurityAndVersionHeaders(t *testing.T) {
	w := serve(SecurityHeadersMiddleware(VersionHeaderMiddleware(okHandler)), "GET", "/")

	for header, want := range map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": contentSecurityPolicy,
		"Referrer-Policy":         "strict-origin-when-cross-origin",
	} {
		assert.Equal(t, want, w.Header().Get(header), header)
	}
	assert.Contains(t, contentSecurityPolicy, "style-src 'self' 'unsafe-inline'")
	assert.NotEmpty(t, w.Header().Get("X-TheBoolean-Version"))
}

func TestRecovery_WritesProblem(t *testing.T) {
	h := RecoveryMiddleware(zaptest.NewLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("nil theme")
	}))

	w := serve(h, "GET", "/theme.css")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	w = serve(RecoveryMiddleware(zaptest.NewLogger(t))(okHandler), "GET", "/")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_PerClient(t *testing.T) {
	h := RateLimitMiddleware(ratelimit.New(1, 1), nil, []string{"/healthz"})(okHandler)

	assert.Equal(t, http.StatusOK, serve(h, "GET", "/api/v1/articles", from("10.0.0.1:9999")).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(h, "GET", "/api/v1/articles", from("10.0.0.1:9999")).Code)
	assert.Equal(t, http.StatusOK, serve(h, "GET", "/api/v1/articles", from("10.0.0.2:9999")).Code)

	for range 5 {
		assert.Equal(t, http.StatusOK, serve(h, "GET", "/healthz", from("10.0.0.1:9999")).Code)
	}
}

func TestRateLimit_SpoofedForwardedForIgnored(t *testing.T) {
	h := RateLimitMiddleware(ratelimit.New(1, 1), nil, nil)(okHandler)

	assert.Equal(t, http.StatusOK, serve(h, "GET", "/", from("203.0.113.9:1", "198.51.100.1")).Code)
	w := serve(h, "GET", "/", from("203.0.113.9:1", "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code, "a new X-Forwarded-For value must not buy a new bucket")
}

func TestRateLimit_TrustedProxyForwardsClient(t *testing.T) {
	proxies, err := ratelimit.ParseProxies([]string{"10.0.0.0/8"})
	require.NoError(t, err)
	h := RateLimitMiddleware(ratelimit.New(1, 1), proxies, nil)(okHandler)

	assert.Equal(t, http.StatusOK, serve(h, "GET", "/", from("10.0.0.1:1", "198.51.100.1")).Code)
	assert.Equal(t, http.StatusOK, serve(h, "GET", "/", from("10.0.0.1:1", "198.51.100.2")).Code,
		"clients behind the proxy get their own buckets")
	assert.Equal(t, http.StatusTooManyRequests, serve(h, "GET", "/", from("10.0.0.1:1", "1.1.1.1, 198.51.100.1")).Code,
		"prepending hops does not escape the bucket")
}

func TestChain_FirstIsOutermost(t *testing.T) {
	var trace []string
	tag := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				trace = append(trace, name+">")
				next.ServeHTTP(w, r)
				trace = append(trace, "<"+name)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		trace = append(trace, "handler")
	}), tag("a"), tag("b"))

	serve(h, "GET", "/")
	assert.Equal(t, []string{"a>", "b>", "handler", "<b", "<a"}, trace)
}

func TestStatusRecorder_FirstCodeWins(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	assert.Equal(t, http.StatusOK, rec.code(), "nothing written")

	rec.WriteHeader(http.StatusCreated)
	rec.WriteHeader(http.StatusNotFound)
	assert.Equal(t, http.StatusCreated, rec.code())

	implicit := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	_, _ = implicit.Write([]byte("body"))
	assert.Equal(t, http.StatusOK, implicit.code())

	inner := httptest.NewRecorder()
	assert.Equal(t, http.ResponseWriter(inner), (&statusRecorder{ResponseWriter: inner}).Unwrap())
}

func TestRouteLabel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/articles/{id}", func(http.ResponseWriter, *http.Request) {})

	req := httptest.NewRequest("GET", "/api/v1/articles/550e8400", http.NoBody)
	mux.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "GET /api/v1/articles/{id}", routeLabel(req))

	unmatched := httptest.NewRequest("GET", "/nowhere", http.NoBody)
	mux.ServeHTTP(httptest.NewRecorder(), unmatched)
	assert.Equal(t, "unmatched", routeLabel(unmatched))
}
