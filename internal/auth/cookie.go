// File: internal/auth/cookie.go
package auth

import (
	"net/http"
	"time"
)

// CookieName holds the signed session token.
const CookieName = "auth"

// NewCookie builds the HTTP-only auth cookie for token.
func NewCookie(token string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the auth cookie.
func ClearCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// RequestAuthenticated reports whether r carries a valid auth cookie.
func RequestAuthenticated(r *http.Request, secretKey []byte) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return ValidateToken(cookie.Value, secretKey) == nil
}
