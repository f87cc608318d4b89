package api

import (
	"errors"
	"net/http"
	"time"

	"masterpieces-api/internal/models"
	"masterpieces-api/internal/storage"
)

type masterRequest struct {
	ID           *int64  `json:"id"`
	Name         *string `json:"name"`
	Role         *string `json:"role"`
	Description  *string `json:"description"`
	PhotoURL     *string `json:"photo_url"`
	DisplayOrder *int    `json:"display_order"`
}

type masterResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Role         string  `json:"role"`
	Description  string  `json:"description"`
	PhotoURL     *string `json:"photo_url"`
	DisplayOrder int     `json:"display_order"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func newMasterResponse(master models.Master) masterResponse {
	return masterResponse{
		ID:           master.ID,
		Name:         master.Name,
		Role:         master.Role,
		Description:  master.Description,
		PhotoURL:     master.PhotoURL,
		DisplayOrder: master.DisplayOrder,
		CreatedAt:    master.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    master.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Masters handles craftsperson profiles: list, partial update, delete.
// Profiles are seeded by migration; the admin panel only edits them.
func (h *Handler) Masters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listMasters(w, r)
	case http.MethodPut:
		h.updateMaster(w, r)
	case http.MethodDelete:
		h.deleteMaster(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (h *Handler) listMasters(w http.ResponseWriter, r *http.Request) {
	masters, err := h.Store.ListMasters(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	responses := make([]masterResponse, 0, len(masters))
	for _, master := range masters {
		responses = append(responses, newMasterResponse(master))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) updateMaster(w http.ResponseWriter, r *http.Request) {
	var req masterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.ID == nil {
		writeError(w, http.StatusBadRequest, errors.New("id is required"))
		return
	}
	err := h.Store.UpdateMaster(r.Context(), *req.ID, storage.MasterUpdate{
		Name:         req.Name,
		Role:         req.Role,
		Description:  req.Description,
		PhotoURL:     req.PhotoURL,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		if errors.Is(err, storage.ErrNoFields) {
			writeError(w, http.StatusBadRequest, errors.New("no fields to update"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) deleteMaster(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.Store.DeleteMaster(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
