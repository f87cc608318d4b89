package api

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"masterpieces-api/internal/storage"
)

func TestCreateMediaRequiresURL(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Media, http.MethodPost, "http://localhost/api/media", map[string]interface{}{
		"title": "Обжиг",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateMediaDefaultsToPhoto(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Media, http.MethodPost, "http://localhost/api/media", map[string]interface{}{
		"url":   "https://cdn.example.net/gallery/1.jpg",
		"title": "Мастерская",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created mediaResponse
	decodeBody(t, rec, &created)
	if created.MediaType != "photo" {
		t.Fatalf("expected media_type photo, got %q", created.MediaType)
	}
	if created.ID == 0 {
		t.Fatal("expected generated id")
	}
}

func TestUpdateMediaNotFound(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Media, http.MethodPut, "http://localhost/api/media?id=42", map[string]interface{}{
		"title": "Новое",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateMediaPartial(t *testing.T) {
	handler, store := newTestHandler(t)
	id := createTestMedia(t, store, "https://cdn.example.net/gallery/2.jpg")
	target := "http://localhost/api/media?id=" + strconv.FormatInt(id, 10)

	rec := doJSON(t, handler.Media, http.MethodPut, target, map[string]interface{}{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty update, got %d", rec.Code)
	}

	rec = doJSON(t, handler.Media, http.MethodPut, target, map[string]interface{}{
		"location": "Красноярск",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated mediaResponse
	decodeBody(t, rec, &updated)
	if updated.Location != "Красноярск" {
		t.Fatalf("expected location updated, got %q", updated.Location)
	}
	if updated.URL != "https://cdn.example.net/gallery/2.jpg" {
		t.Fatalf("expected url untouched, got %q", updated.URL)
	}
}

func TestDeleteMediaStrictNotFound(t *testing.T) {
	handler, store := newTestHandler(t)
	id := createTestMedia(t, store, "https://cdn.example.net/gallery/3.jpg")
	target := "http://localhost/api/media?id=" + strconv.FormatInt(id, 10)

	rec := doJSON(t, handler.Media, http.MethodDelete, target, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	if resp["success"] != true {
		t.Fatalf("expected success true, got %v", resp)
	}

	rec = doJSON(t, handler.Media, http.MethodDelete, target, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
}

func TestDeleteMediaRequiresID(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Media, http.MethodDelete, "http://localhost/api/media", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without id, got %d", rec.Code)
	}
}

func TestCleanupDeletesSeededRows(t *testing.T) {
	handler, store := newTestHandler(t)
	createTestMedia(t, store, seededTestMediaURL)
	createTestMedia(t, store, seededTestMediaURL)
	createTestMedia(t, store, "https://cdn.example.net/gallery/keep.jpg")

	rec := doJSON(t, handler.Cleanup, http.MethodPost, "http://localhost/api/cleanup", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]interface{}
	decodeBody(t, rec, &resp)
	if resp["deleted"] != float64(2) {
		t.Fatalf("expected 2 deleted, got %v", resp["deleted"])
	}

	remaining, err := store.ListMedia(context.Background())
	if err != nil {
		t.Fatalf("ListMedia returned error: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("expected 1 remaining item, got %d", len(remaining))
	}
}

func createTestMedia(t *testing.T, store *storage.MemoryRepository, url string) int64 {
	t.Helper()
	item, err := store.CreateMedia(context.Background(), storage.CreateMediaParams{URL: url, MediaType: "photo"})
	if err != nil {
		t.Fatalf("CreateMedia returned error: %v", err)
	}
	return item.ID
}
