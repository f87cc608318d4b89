package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"masterpieces-api/internal/auth"
	"masterpieces-api/internal/notify"
	"masterpieces-api/internal/observability/metrics"
	"masterpieces-api/internal/storage"
	"masterpieces-api/internal/vision"
)

// Handler carries the collaborators shared by all endpoint handlers.
type Handler struct {
	Store    storage.Repository
	Sessions *auth.SessionManager
	Objects  storage.Uploader
	Vision   *vision.Client
	Notifier *notify.Notifier
	Metrics  *metrics.Recorder
	Logger   *slog.Logger
}

// NewHandler constructs a Handler with the provided collaborators. Nil
// optional collaborators degrade the matching endpoints gracefully.
func NewHandler(store storage.Repository, sessions *auth.SessionManager) *Handler {
	return &Handler{
		Store:    store,
		Sessions: sessions,
		Objects:  storage.NewUploader(storage.ObjectStorageConfig{}),
		Metrics:  metrics.Default(),
		Logger:   slog.Default(),
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *Handler) metrics() *metrics.Recorder {
	if h.Metrics != nil {
		return h.Metrics
	}
	return metrics.Default()
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// WriteError is an exported helper for returning JSON API errors.
func WriteError(w http.ResponseWriter, status int, err error) {
	writeError(w, status, err)
}

var errMethodNotAllowed = errors.New("Method not allowed")

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
}

// decodeJSON decodes the request body into dest. Unknown fields are
// tolerated; storefront clients send extra keys.
func decodeJSON(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dest)
}

// ExtractToken pulls the bearer token from the X-Authorization header.
func ExtractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("X-Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("bearer "):])
	}
	return header
}

// queryID parses the id query parameter.
func queryID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("id"))
	if raw == "" {
		return 0, errors.New("id query parameter is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.New("id must be an integer")
	}
	return id, nil
}

// stripDataURI removes an optional data-URI prefix ("data:...;base64,") from
// a base64 payload and reports the declared media type when present.
func stripDataURI(payload string) (data, mediaType string) {
	trimmed := strings.TrimSpace(payload)
	if !strings.HasPrefix(trimmed, "data:") {
		return trimmed, ""
	}
	idx := strings.Index(trimmed, ",")
	if idx < 0 {
		return trimmed, ""
	}
	meta := trimmed[len("data:"):idx]
	if semi := strings.Index(meta, ";"); semi >= 0 {
		meta = meta[:semi]
	}
	return trimmed[idx+1:], meta
}
