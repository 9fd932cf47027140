package api

import (
	"errors"
	"net/http"
	"strings"

	"vidgate/internal/mux"
	"vidgate/internal/playback"
)

type playbackReadyResponse struct {
	PlaybackURL string `json:"playbackUrl"`
	AssetID     string `json:"assetId,omitempty"`
	PlaybackID  string `json:"playbackId,omitempty"`
}

type processingResponse struct {
	Processing bool           `json:"processing"`
	AssetID    string         `json:"assetId,omitempty"`
	Asset      *assetResponse `json:"asset,omitempty"`
	Encoding   bool           `json:"encoding,omitempty"`
}

type assetResponse struct {
	ID          string               `json:"id"`
	Status      string               `json:"status"`
	PlaybackIDs []playbackIDResponse `json:"playbackIds,omitempty"`
}

type playbackIDResponse struct {
	ID     string `json:"id"`
	Policy string `json:"policy"`
}

func newAssetResponse(asset mux.Asset) *assetResponse {
	resp := &assetResponse{ID: asset.ID, Status: asset.Status}
	if len(asset.PlaybackIDs) > 0 {
		ids := make([]playbackIDResponse, 0, len(asset.PlaybackIDs))
		for _, pb := range asset.PlaybackIDs {
			ids = append(ids, playbackIDResponse{ID: pb.ID, Policy: string(pb.Policy)})
		}
		resp.PlaybackIDs = ids
	}
	return resp
}

// writeResolution maps a Resolution onto the wire. Transient absence is a 200
// with processing:true rather than a 404, so a frontend polling right after
// submission never sees a premature not-found.
func writeResolution(w http.ResponseWriter, res playback.Resolution) {
	switch res.Kind {
	case playback.KindPlaybackReady:
		writeJSON(w, http.StatusOK, playbackReadyResponse{
			PlaybackURL: res.PlaybackURL,
			AssetID:     res.AssetID,
			PlaybackID:  res.PlaybackID,
		})
	case playback.KindProcessing, playback.KindNotFound:
		resp := processingResponse{Processing: true, AssetID: res.AssetID, Encoding: res.Encoding}
		if res.Asset != nil {
			resp.Asset = newAssetResponse(*res.Asset)
		}
		writeJSON(w, http.StatusOK, resp)
	default:
		status := res.StatusCode
		if status <= 0 {
			status = http.StatusInternalServerError
		}
		writeError(w, status, errors.New(res.Message))
	}
}

func pathParam(r *http.Request, prefix string) string {
	return strings.TrimSpace(strings.TrimPrefix(r.URL.Path, prefix))
}

// Playback resolves an ambiguous identifier (upload handle or asset handle)
// to a public playback URL.
func (h *Handler) Playback(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	id := pathParam(r, "/api/mux-playback/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("id is required"))
		return
	}
	writeResolution(w, h.Resolver.Resolve(r.Context(), id, false))
}

// SignedPlaybackByID mints a signed playback URL for a known playback ID.
func (h *Handler) SignedPlaybackByID(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	playbackID := pathParam(r, "/api/mux-signed-playback/")
	if playbackID == "" {
		writeError(w, http.StatusBadRequest, errors.New("playback id is required"))
		return
	}
	if !h.Resolver.SigningEnabled() {
		writeError(w, http.StatusBadRequest, errors.New("signed playback requested but signing keys are not configured"))
		return
	}
	url, err := h.Resolver.SignedPlaybackURL(playbackID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, playbackReadyResponse{PlaybackURL: url})
}

// PlaybackByAsset materializes a public playback URL for a known asset ID.
func (h *Handler) PlaybackByAsset(w http.ResponseWriter, r *http.Request) {
	h.playbackByAsset(w, r, "/api/mux-playback-by-asset/", false)
}

// SignedPlaybackByAsset materializes a signed playback URL for a known asset ID.
func (h *Handler) SignedPlaybackByAsset(w http.ResponseWriter, r *http.Request) {
	h.playbackByAsset(w, r, "/api/mux-signed-playback-by-asset/", true)
}

func (h *Handler) playbackByAsset(w http.ResponseWriter, r *http.Request, prefix string, signed bool) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	assetID := pathParam(r, prefix)
	if assetID == "" {
		writeError(w, http.StatusBadRequest, errors.New("asset id is required"))
		return
	}
	if signed && !h.Resolver.SigningEnabled() {
		writeError(w, http.StatusBadRequest, errors.New("signed playback requested but signing keys are not configured"))
		return
	}
	asset, err := h.Platform.GetAsset(r.Context(), assetID)
	if err != nil {
		if mux.IsNotFound(err) {
			writeJSON(w, http.StatusOK, processingResponse{Processing: true, AssetID: assetID})
			return
		}
		writeError(w, mux.StatusCode(err), err)
		return
	}
	writeResolution(w, h.Resolver.Materialize(r.Context(), asset, signed))
}
