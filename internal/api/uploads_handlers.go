package api

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"masterpieces-api/internal/storage"
)

type uploadRequest struct {
	File string `json:"file"`
	Type string `json:"type"`
}

// Upload stores a base64-encoded file in object storage and returns its
// public CDN URL.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req uploadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.File == "" {
		writeError(w, http.StatusBadRequest, errors.New("file is required"))
		return
	}
	data, declaredType := stripDataURI(req.File)
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		h.metrics().UploadObserved("rejected")
		writeError(w, http.StatusBadRequest, errors.New("invalid base64 encoding"))
		return
	}
	contentType := req.Type
	if contentType == "" {
		contentType = declaredType
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if h.Objects == nil || !h.Objects.Enabled() {
		writeError(w, http.StatusInternalServerError, errors.New("object storage is not configured"))
		return
	}
	key, err := storage.NewObjectKey(contentType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	ref, err := h.Objects.Upload(r.Context(), key, contentType, raw)
	if err != nil {
		h.metrics().UploadObserved("failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.metrics().UploadObserved("ok")
	writeJSON(w, http.StatusOK, map[string]string{
		"url":         ref.URL,
		"uploaded_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
