// File: internal/handlers/auth_handlers.go
package handlers

import (
	"net/http"
	"time"

	"github.com/iyunix/go-chatfront/internal/auth"
	"github.com/iyunix/go-chatfront/internal/logging"
)

// AuthHandler serves /api/auth: status, login and logout for the single
// shared secret.
type AuthHandler struct {
	verifier  *auth.Verifier
	secretKey []byte
	ttl       time.Duration
	secure    bool
	logger    logging.Logger
}

func NewAuthHandler(verifier *auth.Verifier, secretKey []byte, ttl time.Duration, secure bool, logger logging.Logger) *AuthHandler {
	return &AuthHandler{verifier: verifier, secretKey: secretKey, ttl: ttl, secure: secure, logger: logger}
}

// Status reports whether the request carries a valid auth cookie.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"authenticated": auth.RequestAuthenticated(r, h.secretKey),
	})
}

// Login checks the password and sets the auth cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !h.verifier.Verify(req.Password) {
		h.logger.Warn("login failed", "remote", r.RemoteAddr)
		writeError(w, "Invalid password", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(h.secretKey, h.ttl)
	if err != nil {
		h.logger.Error("token generation failed", "error", err)
		writeError(w, "Could not create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, auth.NewCookie(token, h.ttl, h.secure))
	h.logger.Info("login succeeded", "remote", r.RemoteAddr)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout clears the auth cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearCookie(h.secure))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
