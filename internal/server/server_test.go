package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"vidgate/internal/api"
	"vidgate/internal/mux"
	"vidgate/internal/observability/metrics"
	"vidgate/internal/playback"
)

type stubPlatform struct {
	assets map[string]mux.Asset
}

func stubNotFound() error {
	return &mux.APIError{StatusCode: http.StatusNotFound, Message: "not found"}
}

func (s *stubPlatform) CreateUpload(context.Context, mux.CreateUploadParams) (mux.Upload, error) {
	return mux.Upload{ID: "u1", URL: "https://storage.example.com/put"}, nil
}

func (s *stubPlatform) GetUpload(context.Context, string) (mux.Upload, error) {
	return mux.Upload{}, stubNotFound()
}

func (s *stubPlatform) GetAsset(_ context.Context, id string) (mux.Asset, error) {
	asset, ok := s.assets[id]
	if !ok {
		return mux.Asset{}, stubNotFound()
	}
	return asset, nil
}

func (s *stubPlatform) CreatePlaybackID(context.Context, string, mux.Policy) (mux.PlaybackID, error) {
	return mux.PlaybackID{}, stubNotFound()
}

func (s *stubPlatform) GetPlaybackID(context.Context, string) (mux.PlaybackIDRef, error) {
	return mux.PlaybackIDRef{}, stubNotFound()
}

func (s *stubPlatform) DeleteAsset(_ context.Context, id string) error {
	if _, ok := s.assets[id]; !ok {
		return stubNotFound()
	}
	delete(s.assets, id)
	return nil
}

func (s *stubPlatform) Ping(context.Context) error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	platform := &stubPlatform{assets: map[string]mux.Asset{
		"a1": {ID: "a1", Status: mux.AssetStatusReady, PlaybackIDs: []mux.PlaybackID{{ID: "p1", Policy: mux.PolicyPublic}}},
	}}
	resolver, err := playback.NewResolver(playback.Config{
		Platform: platform,
		Logger:   logger,
		Metrics:  metrics.New(),
	})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	handler := api.NewHandler(resolver, platform)
	handler.AdminToken = "admin-secret"
	handler.Logger = logger

	srv, err := New(handler, Config{
		Addr:    "127.0.0.1:0",
		Logger:  logger,
		Metrics: metrics.New(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func (s *Server) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestServerRoutesPlayback(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.serve(httptest.NewRequest(http.MethodGet, "/api/mux-playback/a1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["playbackUrl"] != "https://stream.mux.com/p1.m3u8" {
		t.Fatalf("unexpected body %v", body)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a request id header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers on API responses")
	}
}

func TestServerRoutesHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.serve(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}

	rec = srv.serve(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Content-Type") == "" {
		t.Fatalf("metrics should declare a content type")
	}
}

func TestServerRoutesDeleteVariants(t *testing.T) {
	srv := newTestServer(t)

	// The specific delete route wins over the id-parameterized one.
	req := httptest.NewRequest(http.MethodDelete, "/api/mux-asset/a1", nil)
	req.Header.Set("X-Admin-Token", "admin-secret")
	rec := srv.serve(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete by id: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/mux-asset/delete", nil)
	rec = srv.serve(req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET on the delete route should be 405, got %d", rec.Code)
	}
}

func TestServerShutdownWithoutStart(t *testing.T) {
	srv := newTestServer(t)
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
