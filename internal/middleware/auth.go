package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iyunix/go-chatfront/internal/auth"
	"github.com/iyunix/go-chatfront/internal/logging"
)

// RequireAuth rejects requests without a valid auth cookie with a JSON 401.
// An invalid cookie is cleared.
func RequireAuth(secretKey []byte, secure bool, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil || cookie.Value == "" {
				logger.Debug("missing auth cookie", "path", r.URL.Path)
				unauthorized(w)
				return
			}

			if err := auth.ValidateToken(cookie.Value, secretKey); err != nil {
				logger.Warn("invalid auth token", "path", r.URL.Path, "error", err)
				http.SetCookie(w, auth.ClearCookie(secure))
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
