package api

import (
	"errors"
	"net/http"
	"time"

	"masterpieces-api/internal/models"
	"masterpieces-api/internal/storage"
)

const seededTestMediaURL = "https://example.com/video.mp4"

type mediaRequest struct {
	URL         *string `json:"url"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	MediaType   *string `json:"media_type"`
	Category    *string `json:"category"`
	Location    *string `json:"location"`
	Year        *int    `json:"year"`
}

type mediaResponse struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaType   string `json:"media_type"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Year        *int   `json:"year"`
	CreatedAt   string `json:"created_at"`
}

func newMediaResponse(item models.MediaItem) mediaResponse {
	return mediaResponse{
		ID:          item.ID,
		URL:         item.URL,
		Title:       item.Title,
		Description: item.Description,
		MediaType:   item.MediaType,
		Category:    item.Category,
		Location:    item.Location,
		Year:        item.Year,
		CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Media handles the workshop gallery: list, create, partial update, delete.
func (h *Handler) Media(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listMedia(w, r)
	case http.MethodPost:
		h.createMedia(w, r)
	case http.MethodPut:
		h.updateMedia(w, r)
	case http.MethodDelete:
		h.deleteMedia(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)
	}
}

func (h *Handler) listMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListMedia(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	responses := make([]mediaResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, newMediaResponse(item))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) createMedia(w http.ResponseWriter, r *http.Request) {
	var req mediaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.URL == nil || *req.URL == "" {
		writeError(w, http.StatusBadRequest, errors.New("url is required"))
		return
	}
	params := storage.CreateMediaParams{
		URL:       *req.URL,
		MediaType: "photo",
		Year:      req.Year,
	}
	if req.Title != nil {
		params.Title = *req.Title
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.MediaType != nil && *req.MediaType != "" {
		params.MediaType = *req.MediaType
	}
	if req.Category != nil {
		params.Category = *req.Category
	}
	if req.Location != nil {
		params.Location = *req.Location
	}
	item, err := h.Store.CreateMedia(r.Context(), params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMediaResponse(item))
}

func (h *Handler) updateMedia(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req mediaRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	item, err := h.Store.UpdateMedia(r.Context(), id, storage.MediaUpdate{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		MediaType:   req.MediaType,
		Category:    req.Category,
		Location:    req.Location,
		Year:        req.Year,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNoFields):
			writeError(w, http.StatusBadRequest, errors.New("no fields to update"))
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, errors.New("media item not found"))
		default:
			writeError(w, http.StatusInternalServerError, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, newMediaResponse(item))
}

func (h *Handler) deleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Store.DeleteMedia(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, errors.New("media item not found"))
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

// Cleanup removes the seeded placeholder gallery rows left over from the
// initial import.
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	deleted, err := h.Store.DeleteMediaByURL(r.Context(), seededTestMediaURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"deleted": deleted,
	})
}
