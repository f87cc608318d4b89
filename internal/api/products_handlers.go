package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"masterpieces-api/internal/models"
	"masterpieces-api/internal/storage"
)

type productRequest struct {
	ID           *int64   `json:"id"`
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	InStock      *bool    `json:"in_stock"`
	DisplayOrder *int     `json:"display_order"`
	PhotoBase64  *string  `json:"photo_base64"`
	PhotoURL     *string  `json:"photo_url"`
}

type productResponse struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price"`
	PhotoURL     *string  `json:"photo_url"`
	InStock      bool     `json:"in_stock"`
	DisplayOrder int      `json:"display_order"`
	CreatedAt    string   `json:"created_at"`
}

func newProductResponse(product models.Product) productResponse {
	return productResponse{
		ID:           product.ID,
		Name:         product.Name,
		Description:  product.Description,
		Price:        product.Price,
		PhotoURL:     product.PhotoURL,
		InStock:      product.InStock,
		DisplayOrder: product.DisplayOrder,
		CreatedAt:    product.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// Products handles the product catalog: list, create, partial update, delete.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listProducts(w, r)
	case http.MethodPost:
		h.createProduct(w, r)
	case http.MethodPut:
		h.updateProduct(w, r)
	case http.MethodDelete:
		h.deleteProduct(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Store.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	responses := make([]productResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, newProductResponse(product))
	}
	writeJSON(w, http.StatusOK, responses)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.Name == nil || *req.Name == "" {
		writeError(w, http.StatusBadRequest, errors.New("name is required"))
		return
	}
	params := storage.CreateProductParams{
		Name:    *req.Name,
		Price:   req.Price,
		InStock: true,
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.InStock != nil {
		params.InStock = *req.InStock
	}
	if req.DisplayOrder != nil {
		params.DisplayOrder = *req.DisplayOrder
	}
	if req.PhotoBase64 != nil && *req.PhotoBase64 != "" {
		photoURL, err := h.uploadProductPhoto(r.Context(), *req.PhotoBase64)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		params.PhotoURL = photoURL
	} else if req.PhotoURL != nil && *req.PhotoURL != "" {
		params.PhotoURL = req.PhotoURL
	}
	id, err := h.Store.CreateProduct(r.Context(), params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":        id,
		"photo_url": params.PhotoURL,
	})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.ID == nil {
		writeError(w, http.StatusBadRequest, errors.New("id is required"))
		return
	}
	update := storage.ProductUpdate{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		PhotoURL:     req.PhotoURL,
		InStock:      req.InStock,
		DisplayOrder: req.DisplayOrder,
	}
	if req.PhotoBase64 != nil && *req.PhotoBase64 != "" {
		photoURL, err := h.uploadProductPhoto(r.Context(), *req.PhotoBase64)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if photoURL != nil {
			update.PhotoURL = photoURL
		}
	}
	if err := h.Store.UpdateProduct(r.Context(), *req.ID, update); err != nil {
		if errors.Is(err, storage.ErrNoFields) {
			writeError(w, http.StatusBadRequest, errors.New("no fields to update"))
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"photo_url": update.PhotoURL,
	})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if req.ID == nil {
		writeError(w, http.StatusBadRequest, errors.New("id is required"))
		return
	}
	if err := h.Store.DeleteProduct(r.Context(), *req.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// uploadProductPhoto decodes the base64 payload and stores it. Decode
// failures are the caller's 400; storage failures leave the photo URL empty
// and creation proceeds, matching the storefront's tolerance for a missing
// image.
func (h *Handler) uploadProductPhoto(ctx context.Context, payload string) (*string, error) {
	data, mediaType := stripDataURI(payload)
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, errors.New("invalid base64 encoding")
	}
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	if h.Objects == nil || !h.Objects.Enabled() {
		h.metrics().UploadObserved("rejected")
		return nil, nil
	}
	key, err := storage.NewObjectKey(mediaType)
	if err != nil {
		return nil, err
	}
	ref, err := h.Objects.Upload(ctx, key, mediaType, raw)
	if err != nil {
		h.metrics().UploadObserved("failed")
		h.logger().Warn("product photo upload failed", "error", err)
		return nil, nil
	}
	h.metrics().UploadObserved("ok")
	return &ref.URL, nil
}

type bulkRenameRequest struct {
	NewName string `json:"new_name"`
	Pattern string `json:"pattern"`
}

// BulkRenameProducts renames every product whose name matches the pattern.
// Defaults target placeholder rows imported from the photo archive.
func (h *Handler) BulkRenameProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	req := bulkRenameRequest{NewName: "Ваза", Pattern: "photo_%"}
	if r.Body != nil && r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
			return
		}
		if req.NewName == "" {
			req.NewName = "Ваза"
		}
		if req.Pattern == "" {
			req.Pattern = "photo_%"
		}
	}
	updated, err := h.Store.BulkRenameProducts(r.Context(), req.NewName, req.Pattern)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"updated_count": updated,
	})
}
