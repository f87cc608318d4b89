package api

import (
	"errors"
	"net/http"
	"time"

	"masterpieces-api/internal/models"
	"masterpieces-api/internal/storage"
)

type videoRequest struct {
	URL         *string `json:"url"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type videoResponse struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func newVideoResponse(video models.Video) videoResponse {
	return videoResponse{
		ID:          video.ID,
		URL:         video.URL,
		Title:       video.Title,
		Description: video.Description,
		CreatedAt:   video.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Videos handles the landing-page video list: list, create, delete.
func (h *Handler) Videos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listVideos(w, r)
	case http.MethodPost:
		h.createVideo(w, r)
	case http.MethodDelete:
		h.deleteVideo(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (h *Handler) listVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.Store.ListVideos(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	responses := make([]videoResponse, 0, len(videos))
	for _, video := range videos {
		responses = append(responses, newVideoResponse(video))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) createVideo(w http.ResponseWriter, r *http.Request) {
	var req videoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.URL == nil || *req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}
	params := storage.CreateVideoParams{URL: *req.URL}
	if req.Title != nil {
		params.Title = *req.Title
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	video, err := h.Store.CreateVideo(r.Context(), params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, newVideoResponse(video))
}

func (h *Handler) deleteVideo(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Store.DeleteVideo(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("video not found"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
	})
}
