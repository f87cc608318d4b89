package api

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"masterpieces-api/internal/storage"
)

func TestCreateProductRequiresName(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Products, http.MethodPost, "http://localhost/api/products", map[string]interface{}{
		"description": "без имени",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateAndListProducts(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Products, http.MethodPost, "http://localhost/api/products", map[string]interface{}{
		"name":          "Ваза",
		"price":         3500,
		"display_order": 1,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]interface{}
	decodeBody(t, rec, &created)
	if created["id"] == nil {
		t.Fatal("expected generated id")
	}
	if created["photo_url"] != nil {
		t.Fatalf("expected null photo_url without upload, got %v", created["photo_url"])
	}

	rec = doJSON(t, handler.Products, http.MethodGet, "http://localhost/api/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list []productResponse
	decodeBody(t, rec, &list)
	if len(list) != 1 {
		t.Fatalf("expected 1 product, got %d", len(list))
	}
	if list[0].Name != "Ваза" || list[0].Price == nil || *list[0].Price != 3500 {
		t.Fatalf("unexpected listing: %+v", list[0])
	}
	if !list[0].InStock {
		t.Fatal("expected in_stock to default to true")
	}
}

func TestCreateProductRejectsBadBase64(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Products, http.MethodPost, "http://localhost/api/products", map[string]interface{}{
		"name":         "Ваза",
		"photo_base64": "not-valid-base64!!!",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad base64, got %d", rec.Code)
	}
}

func TestCreateProductSurvivesUploadFailure(t *testing.T) {
	handler, _ := newTestHandler(t)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()
	parsed, _ := url.Parse(backend.URL)
	handler.Objects = storage.NewUploader(storage.ObjectStorageConfig{
		Endpoint: parsed.Host, Bucket: "files", AccessKey: "k", SecretKey: "s",
		PublicBaseURL: "https://cdn.example.net/p/a/bucket",
	})

	photo := base64.StdEncoding.EncodeToString([]byte("img"))
	rec := doJSON(t, handler.Products, http.MethodPost, "http://localhost/api/products", map[string]interface{}{
		"name":         "Ваза",
		"photo_base64": photo,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected creation to proceed despite upload failure, got %d", rec.Code)
	}
	var created map[string]interface{}
	decodeBody(t, rec, &created)
	if created["photo_url"] != nil {
		t.Fatalf("expected null photo_url after failed upload, got %v", created["photo_url"])
	}
}

func TestUpdateProductPartial(t *testing.T) {
	handler, store := newTestHandler(t)
	id := createTestProduct(t, store)

	rec := doJSON(t, handler.Products, http.MethodPut, "http://localhost/api/products", map[string]interface{}{
		"id": id,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", rec.Code)
	}

	rec = doJSON(t, handler.Products, http.MethodPut, "http://localhost/api/products", map[string]interface{}{
		"id":       id,
		"in_stock": false,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	if resp["success"] != true {
		t.Fatalf("expected success true, got %v", resp)
	}
}

func TestDeleteProductIdempotent(t *testing.T) {
	handler, store := newTestHandler(t)
	id := createTestProduct(t, store)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, handler.Products, http.MethodDelete, "http://localhost/api/products", map[string]interface{}{"id": id})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on delete attempt %d, got %d", i+1, rec.Code)
		}
	}
}

func TestBulkRenameDefaults(t *testing.T) {
	handler, store := newTestHandler(t)
	for _, name := range []string{"photo_01", "photo_02", "Кувшин"} {
		if _, err := store.CreateProduct(context.Background(), storage.CreateProductParams{Name: name, InStock: true}); err != nil {
			t.Fatalf("CreateProduct returned error: %v", err)
		}
	}

	rec := doJSON(t, handler.BulkRenameProducts, http.MethodPost, "http://localhost/api/products/bulk-rename", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	if resp["updated_count"] != float64(2) {
		t.Fatalf("expected 2 renamed, got %v", resp["updated_count"])
	}
}

func createTestProduct(t *testing.T, store *storage.MemoryRepository) int64 {
	t.Helper()
	id, err := store.CreateProduct(context.Background(), storage.CreateProductParams{Name: "Ваза", InStock: true})
	if err != nil {
		t.Fatalf("CreateProduct returned error: %v", err)
	}
	return id
}
