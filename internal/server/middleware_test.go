package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidgate/internal/observability/logging"
)

func TestRequestIDMiddlewarePreservesIncomingID(t *testing.T) {
	t.Parallel()

	handler := requestIDMiddlewareWithGenerator(slog.Default(), func() string { return "generated" }, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, _ := logging.RequestIDFromContext(r.Context())
		if requestID != "incoming" {
			t.Fatalf("expected request id to be preserved, got %q", requestID)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "incoming")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Header().Get("X-Request-Id") != "incoming" {
		t.Fatalf("expected response header to carry request id, got %q", rr.Header().Get("X-Request-Id"))
	}
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	t.Parallel()

	handler := requestIDMiddlewareWithGenerator(slog.Default(), func() string { return "generated" }, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Header().Get("X-Request-Id") != "generated" {
		t.Fatalf("expected generated request id, got %q", rr.Header().Get("X-Request-Id"))
	}
}

func TestLoggingMiddlewareEmitsRequestMetadata(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{AddSource: false}))

	handlerChain := loggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/mux-playback/a1", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	handlerChain.ServeHTTP(httptest.NewRecorder(), req)

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("failed to unmarshal log line: %v", err)
	}
	if payload["path"] != "/api/mux-playback/a1" {
		t.Fatalf("expected path to be logged, got %v", payload["path"])
	}
	if payload["status"] != float64(http.StatusNoContent) {
		t.Fatalf("expected status 204, got %v", payload["status"])
	}
	if payload["remote_ip"] != "203.0.113.7" {
		t.Fatalf("expected the first forwarded IP, got %v", payload["remote_ip"])
	}
}

func TestSecurityHeadersMiddlewareUsesDefaults(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	middleware := securityHeadersMiddleware(SecurityConfig{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	middleware.ServeHTTP(rec, req)

	res := rec.Result()
	if got := res.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("unexpected X-Frame-Options %q", got)
	}
	if got := res.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("unexpected X-Content-Type-Options %q", got)
	}
	if got := res.Header.Get("Referrer-Policy"); got != "no-referrer" {
		t.Fatalf("unexpected Referrer-Policy %q", got)
	}
	if got := res.Header.Get("Content-Security-Policy"); got != defaultContentSecurityPolicy {
		t.Fatalf("unexpected Content-Security-Policy %q", got)
	}
}

func TestSecurityHeadersCanBeOverridden(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	cfg := SecurityConfig{
		ContentSecurityPolicy: "default-src 'self' https://cdn.example.com",
		FrameOptions:          "SAMEORIGIN",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
	middleware := securityHeadersMiddleware(cfg, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	middleware.ServeHTTP(rec, req)

	res := rec.Result()
	if got := res.Header.Get("Content-Security-Policy"); got != cfg.ContentSecurityPolicy {
		t.Fatalf("unexpected Content-Security-Policy %q", got)
	}
	if got := res.Header.Get("X-Frame-Options"); got != "SAMEORIGIN" {
		t.Fatalf("unexpected X-Frame-Options %q", got)
	}
	if got := res.Header.Get("Referrer-Policy"); got != cfg.ReferrerPolicy {
		t.Fatalf("unexpected Referrer-Policy %q", got)
	}
}

func TestCORSMiddlewareAllowsConfiguredOrigin(t *testing.T) {
	t.Parallel()

	policy, err := newCORSPolicy(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}})
	if err != nil {
		t.Fatalf("newCORSPolicy: %v", err)
	}
	middleware := corsMiddleware(policy, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/mux-playback/a1", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("unexpected Access-Control-Allow-Origin %q", got)
	}
}

func TestCORSMiddlewareBlocksUnknownOrigin(t *testing.T) {
	t.Parallel()

	policy, err := newCORSPolicy(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}})
	if err != nil {
		t.Fatalf("newCORSPolicy: %v", err)
	}
	middleware := corsMiddleware(policy, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run for a blocked origin")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/mux-playback/a1", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	t.Parallel()

	policy, err := newCORSPolicy(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}})
	if err != nil {
		t.Fatalf("newCORSPolicy: %v", err)
	}
	middleware := corsMiddleware(policy, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/mux-asset/delete", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Fatalf("expected allowed methods on preflight")
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, X-Admin-Token" {
		t.Fatalf("unexpected allow headers %q", got)
	}
}

func TestCORSPolicyRejectsInvalidOrigins(t *testing.T) {
	t.Parallel()

	if _, err := newCORSPolicy(CORSConfig{AllowedOrigins: []string{"no-scheme.example.com"}}); err == nil {
		t.Fatalf("expected an error for an origin without a scheme")
	}
}

func TestRateLimitMiddlewareGlobalLimit(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{GlobalRPS: 1, GlobalBurst: 1})
	middleware := rateLimitMiddleware(rl, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	middleware.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/mux-playback/a1", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	middleware.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/mux-playback/a1", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request should be limited, got %d", second.Code)
	}
}

func TestRateLimitMiddlewareThrottlesAdminDeletes(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{AdminLimit: 1, AdminWindow: time.Minute})
	middleware := rateLimitMiddleware(rl, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	newDelete := func() *http.Request {
		req := httptest.NewRequest(http.MethodDelete, "/api/mux-asset/a1", nil)
		req.RemoteAddr = "198.51.100.9:4242"
		return req
	}

	first := httptest.NewRecorder()
	middleware.ServeHTTP(first, newDelete())
	if first.Code != http.StatusOK {
		t.Fatalf("first delete should pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	middleware.ServeHTTP(second, newDelete())
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second delete should be limited, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("limited responses should advertise Retry-After")
	}

	// Reads stay unaffected by the admin budget.
	read := httptest.NewRecorder()
	middleware.ServeHTTP(read, httptest.NewRequest(http.MethodGet, "/api/mux-playback/a1", nil))
	if read.Code != http.StatusOK {
		t.Fatalf("reads should not be throttled, got %d", read.Code)
	}
}

func TestIsAdminRequest(t *testing.T) {
	cases := []struct {
		method string
		path   string
		want   bool
	}{
		{http.MethodDelete, "/api/mux-asset/a1", true},
		{http.MethodPost, "/api/mux-asset/delete", true},
		{http.MethodGet, "/api/mux-playback/a1", false},
		{http.MethodPost, "/api/mux-upload", false},
		{http.MethodGet, "/api/mux-asset/a1", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if got := isAdminRequest(req); got != tc.want {
			t.Fatalf("isAdminRequest(%s %s) = %v, want %v", tc.method, tc.path, got, tc.want)
		}
	}
}

func TestExtractClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:9999"
	if got := extractClientIP(req); got != "192.0.2.1" {
		t.Fatalf("expected remote addr host, got %q", got)
	}

	req.Header.Set("X-Real-IP", "198.51.100.2")
	if got := extractClientIP(req); got != "198.51.100.2" {
		t.Fatalf("expected X-Real-IP, got %q", got)
	}

	req.Header.Set("X-Forwarded-For", "203.0.113.3, 10.0.0.1")
	if got := extractClientIP(req); got != "203.0.113.3" {
		t.Fatalf("expected first X-Forwarded-For entry, got %q", got)
	}
}
