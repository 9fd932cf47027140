package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"vidgate/internal/mux"
	"vidgate/internal/playback"
)

// PlatformClient is the full platform surface the handlers need: the
// resolver's read/delete operations plus direct upload creation.
type PlatformClient interface {
	playback.Platform
	CreateUpload(ctx context.Context, params mux.CreateUploadParams) (mux.Upload, error)
}

// Pinger is implemented by dependencies that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler bundles the dependencies shared by all endpoints.
type Handler struct {
	Resolver         *playback.Resolver
	Platform         PlatformClient
	AdminToken       string
	UploadCORSOrigin string
	UploadPolicy     mux.Policy
	RateLimitStore   Pinger
	Logger           *slog.Logger
}

func NewHandler(resolver *playback.Resolver, platform PlatformClient) *Handler {
	return &Handler{
		Resolver:     resolver,
		Platform:     platform,
		UploadPolicy: mux.PolicyPublic,
		Logger:       slog.Default(),
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: status})
}

// WriteError is an exported helper for returning JSON API errors.
func WriteError(w http.ResponseWriter, status int, err error) {
	writeError(w, status, err)
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, errors.New("method "+r.Method+" not allowed"))
	return false
}
