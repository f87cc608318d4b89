package api

import (
	"errors"
	"net/http"

	"masterpieces-api/internal/vision"
)

type analyzeRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// Analyze estimates price, material, and size from a product photo.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.ImageBase64 == "" {
		writeError(w, http.StatusBadRequest, errors.New("image_base64 is required"))
		return
	}
	if h.Vision == nil || !h.Vision.Enabled() {
		writeError(w, http.StatusInternalServerError, errors.New("vision analysis is not configured"))
		return
	}
	data, mediaType := stripDataURI(req.ImageBase64)
	analysis, err := h.Vision.AnalyzeProductPhoto(r.Context(), data, mediaType)
	if err != nil {
		switch {
		case errors.Is(err, vision.ErrUpstream):
			h.metrics().VisionObserved("upstream_error")
		case errors.Is(err, vision.ErrParse):
			h.metrics().VisionObserved("parse_error")
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.metrics().VisionObserved("ok")
	writeJSON(w, http.StatusOK, analysis)
}
