package api

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"masterpieces-api/internal/storage"
)

func newS3TestUploader(t *testing.T, backend http.HandlerFunc) storage.Uploader {
	t.Helper()
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	parsed, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse backend url: %v", err)
	}
	return storage.NewUploader(storage.ObjectStorageConfig{
		Endpoint:      parsed.Host,
		Region:        "ru-central1",
		Bucket:        "files",
		AccessKey:     "test-access",
		SecretKey:     "test-secret",
		PublicBaseURL: "https://cdn.example.net/p/a/bucket",
	})
}

func TestUploadRequiresFile(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Upload, http.MethodPost, "http://localhost/api/upload", map[string]interface{}{
		"type": "image/png",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadRejectsBadBase64(t *testing.T) {
	handler, _ := newTestHandler(t)
	handler.Objects = newS3TestUploader(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := doJSON(t, handler.Upload, http.MethodPost, "http://localhost/api/upload", map[string]interface{}{
		"file": "@@@not base64@@@",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadWithoutStorageConfigured(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := doJSON(t, handler.Upload, http.MethodPost, "http://localhost/api/upload", map[string]interface{}{
		"file": base64.StdEncoding.EncodeToString([]byte("img")),
	})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without object storage, got %d", rec.Code)
	}
}

func TestUploadStoresObjectAndReturnsCDNURL(t *testing.T) {
	handler, _ := newTestHandler(t)
	var gotPath, gotContentType string
	handler.Objects = newS3TestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	})

	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-bytes"))
	rec := doJSON(t, handler.Upload, http.MethodPost, "http://localhost/api/upload", map[string]interface{}{
		"file": payload,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)
	if !strings.HasPrefix(resp["url"], "https://cdn.example.net/p/a/bucket/projects/") {
		t.Fatalf("expected CDN URL, got %q", resp["url"])
	}
	if !strings.HasSuffix(resp["url"], ".png") {
		t.Fatalf("expected .png extension from data URI type, got %q", resp["url"])
	}
	if resp["uploaded_at"] == "" {
		t.Fatal("expected uploaded_at timestamp")
	}
	if !strings.HasPrefix(gotPath, "/files/projects/") {
		t.Fatalf("expected bucket-prefixed object path, got %q", gotPath)
	}
	if gotContentType != "image/png" {
		t.Fatalf("expected content type from data URI, got %q", gotContentType)
	}
}

func TestUploadDataURIAndBarePayloadsStoreSameBytes(t *testing.T) {
	handler, _ := newTestHandler(t)
	var bodies [][]byte
	handler.Objects = newS3TestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read upload body: %v", err)
		}
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusOK)
	})

	image := []byte("jpeg-bytes-\x00\x01\x02")
	encoded := base64.StdEncoding.EncodeToString(image)
	for _, payload := range []string{encoded, "data:image/jpeg;base64," + encoded} {
		rec := doJSON(t, handler.Upload, http.MethodPost, "http://localhost/api/upload", map[string]interface{}{
			"file": payload,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	if len(bodies) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(bodies))
	}
	if !bytes.Equal(bodies[0], bodies[1]) {
		t.Fatalf("expected identical stored bytes, got %q and %q", bodies[0], bodies[1])
	}
	if !bytes.Equal(bodies[0], image) {
		t.Fatalf("expected stored bytes to match the source image, got %q", bodies[0])
	}
}

func TestUploadExplicitTypeWins(t *testing.T) {
	handler, _ := newTestHandler(t)
	var gotContentType string
	handler.Objects = newS3TestUploader(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	})

	rec := doJSON(t, handler.Upload, http.MethodPost, "http://localhost/api/upload", map[string]interface{}{
		"file": "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("clip")),
		"type": "image/webp",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotContentType != "image/webp" {
		t.Fatalf("expected explicit type to win, got %q", gotContentType)
	}
}
