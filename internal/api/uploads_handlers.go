package api

import (
	"errors"
	"net/http"

	"vidgate/internal/mux"
)

type createUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	UploadID  string `json:"uploadId"`
}

type uploadStatusResponse struct {
	UploadID string `json:"uploadId"`
	Status   string `json:"status,omitempty"`
	AssetID  string `json:"assetId,omitempty"`
}

// CreateUpload provisions a direct upload target on the platform and hands
// the browser-facing PUT URL back to the frontend.
func (h *Handler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	policy := h.UploadPolicy
	if policy == "" {
		policy = mux.PolicyPublic
	}
	if policy == mux.PolicySigned && !h.Resolver.SigningEnabled() {
		writeError(w, http.StatusBadRequest, errors.New("signed upload policy requires signing keys"))
		return
	}
	upload, err := h.Platform.CreateUpload(r.Context(), mux.CreateUploadParams{
		CORSOrigin: h.UploadCORSOrigin,
		Policy:     policy,
	})
	if err != nil {
		writeError(w, mux.StatusCode(err), err)
		return
	}
	h.logger().Info("direct upload created", "upload_id", upload.ID)
	writeJSON(w, http.StatusOK, createUploadResponse{UploadURL: upload.URL, UploadID: upload.ID})
}

// UploadStatus passes the raw upload record through, mapping a platform 404
// to processing:true. Kept as a debugging aid for the frontend.
func (h *Handler) UploadStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	uploadID := pathParam(r, "/api/mux-upload-status/")
	if uploadID == "" {
		writeError(w, http.StatusBadRequest, errors.New("upload id is required"))
		return
	}
	upload, err := h.Platform.GetUpload(r.Context(), uploadID)
	if err != nil {
		if mux.IsNotFound(err) {
			writeJSON(w, http.StatusOK, processingResponse{Processing: true})
			return
		}
		writeError(w, mux.StatusCode(err), err)
		return
	}
	writeJSON(w, http.StatusOK, uploadStatusResponse{
		UploadID: upload.ID,
		Status:   upload.Status,
		AssetID:  upload.AssetID,
	})
}
