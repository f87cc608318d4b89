package api

import (
	"errors"
	"net/http"
	"time"

	"masterpieces-api/internal/auth"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// Auth handles admin login (POST) and token verification (GET).
func (h *Handler) Auth(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.login(w, r)
	case http.MethodGet:
		h.verifyToken(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	token, expiresAt, err := h.Sessions.Issue(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"success": false,
				"error":   "Неверный пароль",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339Nano),
	})
}

func (h *Handler) verifyToken(w http.ResponseWriter, r *http.Request) {
	valid, err := h.Sessions.Verify(ExtractToken(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !valid {
		writeJSON(w, http.StatusUnauthorized, map[string]bool{"valid": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}
