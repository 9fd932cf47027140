package api

import (
	"errors"
	"net/http"

	"vidgate/internal/mux"
	"vidgate/internal/playback"
)

type deleteRequest struct {
	AssetID     string `json:"assetId"`
	PlaybackID  string `json:"playbackId"`
	PlaybackURL string `json:"playbackUrl"`
	AdminToken  string `json:"adminToken"`
}

type deleteResponse struct {
	OK             bool   `json:"ok"`
	AssetID        string `json:"assetId,omitempty"`
	AlreadyDeleted bool   `json:"alreadyDeleted,omitempty"`
}

// DeleteAsset removes the asset addressed by path identifier. Deleting an
// asset that is already gone reports success so callers can retry safely.
func (h *Handler) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodDelete) {
		return
	}
	assetID := pathParam(r, "/api/mux-asset/")
	if assetID == "" {
		writeError(w, http.StatusBadRequest, errors.New("asset id is required"))
		return
	}
	if status, err := h.authorizeAdmin(r, ""); err != nil {
		writeError(w, status, err)
		return
	}
	result, err := h.Resolver.DeleteByIdentifier(r.Context(), playback.DeleteRequest{AssetID: assetID})
	if err != nil {
		h.logDeleteFailure(r, assetID, err)
		writeError(w, mux.StatusCode(err), errors.New("failed to delete asset"))
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{OK: true, AlreadyDeleted: result.AlreadyDeleted})
}

// DeleteByIdentifier accepts any one of assetId, playbackId, or playbackUrl
// and resolves it to the owning asset before deleting.
func (h *Handler) DeleteByIdentifier(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req deleteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if status, err := h.authorizeAdmin(r, req.AdminToken); err != nil {
		writeError(w, status, err)
		return
	}
	result, err := h.Resolver.DeleteByIdentifier(r.Context(), playback.DeleteRequest{
		AssetID:     req.AssetID,
		PlaybackID:  req.PlaybackID,
		PlaybackURL: req.PlaybackURL,
	})
	if err != nil {
		if errors.Is(err, playback.ErrMissingIdentifiers) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		h.logDeleteFailure(r, req.AssetID, err)
		writeError(w, mux.StatusCode(err), errors.New("failed to delete asset"))
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{
		OK:             true,
		AssetID:        result.AssetID,
		AlreadyDeleted: result.AlreadyDeleted,
	})
}

func (h *Handler) logDeleteFailure(r *http.Request, assetID string, err error) {
	if h.Logger == nil {
		return
	}
	h.Logger.Error("asset deletion failed",
		"assetId", assetID,
		"path", r.URL.Path,
		"error", err,
	)
}
