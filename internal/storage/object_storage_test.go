package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestNewUploaderFallsBackToNoop(t *testing.T) {
	cases := []ObjectStorageConfig{
		{},
		{Endpoint: "storage.example.net"},
		{Bucket: "files"},
	}
	for _, cfg := range cases {
		uploader := NewUploader(cfg)
		if uploader.Enabled() {
			t.Fatalf("expected disabled uploader for config %+v", cfg)
		}
		ref, err := uploader.Upload(context.Background(), "projects/a.jpg", "image/jpeg", []byte("x"))
		if err != nil || ref.URL != "" {
			t.Fatalf("expected silent noop upload, got ref=%+v err=%v", ref, err)
		}
	}
}

func TestUploadSignsAndBuildsPublicURL(t *testing.T) {
	var captured *http.Request
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	parsed, err := url.Parse(backend.URL)
	if err != nil {
		t.Fatalf("parse backend url: %v", err)
	}
	uploader := NewUploader(ObjectStorageConfig{
		Endpoint:      parsed.Host,
		Bucket:        "files",
		AccessKey:     "AKIAEXAMPLE",
		SecretKey:     "secret",
		Region:        "ru-central1",
		PublicBaseURL: "https://cdn.example.net/projects/acct/bucket",
	})
	if !uploader.Enabled() {
		t.Fatal("expected enabled uploader")
	}

	ref, err := uploader.Upload(context.Background(), "projects/abc123.jpg", "image/jpeg", []byte("payload"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if captured == nil {
		t.Fatal("expected upload request to reach backend")
	}
	if captured.Method != http.MethodPut {
		t.Fatalf("expected PUT, got %s", captured.Method)
	}
	if captured.URL.Path != "/files/projects/abc123.jpg" {
		t.Fatalf("unexpected object path %q", captured.URL.Path)
	}
	authz := captured.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "AWS4-HMAC-SHA256 Credential=AKIAEXAMPLE/") {
		t.Fatalf("unexpected Authorization header %q", authz)
	}
	if !strings.Contains(authz, "/ru-central1/s3/aws4_request") {
		t.Fatalf("expected region scope in Authorization header, got %q", authz)
	}
	if captured.Header.Get("x-amz-content-sha256") == "" {
		t.Fatal("expected payload hash header")
	}
	if ref.URL != "https://cdn.example.net/projects/acct/bucket/projects/abc123.jpg" {
		t.Fatalf("unexpected public URL %q", ref.URL)
	}
}

func TestDeletePropagatesBackendFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer backend.Close()

	parsed, _ := url.Parse(backend.URL)
	uploader := NewUploader(ObjectStorageConfig{
		Endpoint:  parsed.Host,
		Bucket:    "files",
		AccessKey: "k",
		SecretKey: "s",
	})
	if err := uploader.Delete(context.Background(), "projects/abc.jpg"); err == nil {
		t.Fatal("expected error for non-2xx delete")
	}
}

func TestNewObjectKey(t *testing.T) {
	cases := map[string]string{
		"image/jpeg": "jpg",
		"image/png":  "png",
		"image/webp": "webp",
		"video/mp4":  "mp4",
		"video/webm": "webm",
		"":           "jpg",
		"text/plain": "jpg",
	}
	seen := make(map[string]bool)
	for contentType, ext := range cases {
		key, err := NewObjectKey(contentType)
		if err != nil {
			t.Fatalf("NewObjectKey(%q) returned error: %v", contentType, err)
		}
		if !strings.HasPrefix(key, "projects/") || !strings.HasSuffix(key, "."+ext) {
			t.Fatalf("NewObjectKey(%q) = %q, want projects/<hex>.%s", contentType, key, ext)
		}
		base := strings.TrimSuffix(strings.TrimPrefix(key, "projects/"), "."+ext)
		if len(base) != 32 {
			t.Fatalf("expected 32-hex-char key body, got %q", base)
		}
		if seen[key] {
			t.Fatalf("duplicate key generated: %q", key)
		}
		seen[key] = true
	}
}
