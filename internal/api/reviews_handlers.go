package api

import (
	"errors"
	"net/http"
	"time"

	"masterpieces-api/internal/models"
	"masterpieces-api/internal/storage"
)

const defaultReviewCity = "Красноярск"

type reviewRequest struct {
	ID            *int64  `json:"id"`
	Name          *string `json:"name"`
	City          *string `json:"city"`
	ProductNumber *string `json:"product_number"`
	ProductName   *string `json:"product_name"`
	Rating        *int    `json:"rating"`
	Text          *string `json:"text"`
	Published     *bool   `json:"published"`
}

type reviewResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	City          string `json:"city"`
	ProductNumber string `json:"product_number"`
	ProductName   string `json:"product_name"`
	Rating        int    `json:"rating"`
	Text          string `json:"text"`
	Published     bool   `json:"published"`
	CreatedAt     string `json:"created_at"`
}

func newReviewResponse(review models.Review) reviewResponse {
	return reviewResponse{
		ID:            review.ID,
		Name:          review.Name,
		City:          review.City,
		ProductNumber: review.ProductNumber,
		ProductName:   review.ProductName,
		Rating:        review.Rating,
		Text:          review.Text,
		Published:     review.Published,
		CreatedAt:     review.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Reviews handles customer reviews: public listing, submission, moderation.
func (h *Handler) Reviews(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listReviews(w, r)
	case http.MethodPost:
		h.createReview(w, r)
	case http.MethodPatch:
		h.moderateReview(w, r)
	case http.MethodDelete:
		h.deleteReview(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete)
	}
}

func (h *Handler) listReviews(w http.ResponseWriter, r *http.Request) {
	includeUnpublished := r.URL.Query().Get("admin") == "1"
	reviews, err := h.Store.ListReviews(r.Context(), includeUnpublished)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	responses := make([]reviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, newReviewResponse(review))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	if req.Text == nil || *req.Text == "" {
		writeError(w, http.StatusBadRequest, errors.New("text is required"))
		return
	}
	rating := 5
	if req.Rating != nil {
		rating = *req.Rating
	}
	if rating < 1 || rating > 5 {
		writeError(w, http.StatusBadRequest, errors.New("rating must be between 1 and 5"))
		return
	}
	params := storage.CreateReviewParams{
		Name:   *req.Name,
		City:   defaultReviewCity,
		Rating: rating,
		Text:   *req.Text,
	}
	if req.City != nil && *req.City != "" {
		params.City = *req.City
	}
	if req.ProductNumber != nil {
		params.ProductNumber = *req.ProductNumber
	}
	if req.ProductName != nil {
		params.ProductName = *req.ProductName
	}
	id, err := h.Store.CreateReview(r.Context(), params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      id,
		"success": true,
	})
}

func (h *Handler) moderateReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.ID == nil {
		writeError(w, http.StatusBadRequest, errors.New("id is required"))
		return
	}
	if req.Published == nil {
		writeError(w, http.StatusBadRequest, errors.New("published is required"))
		return
	}
	if err := h.Store.SetReviewPublished(r.Context(), *req.ID, *req.Published); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.ID == nil {
		writeError(w, http.StatusBadRequest, errors.New("id is required"))
		return
	}
	if err := h.Store.DeleteReview(r.Context(), *req.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
