package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-chatfront/internal/auth"
	"github.com/iyunix/go-chatfront/internal/logging"
	"github.com/iyunix/go-chatfront/internal/ratelimit"
)

var (
	nop = &logging.NoOpLogger{}
	ok  = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
)

func TestRequireAuth(t *testing.T) {
	key := []byte("mw-key")
	h := RequireAuth(key, false, nop)(ok)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: "garbage"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.Less(t, rec.Result().Cookies()[0].MaxAge, 0)

	token, err := auth.GenerateJWT(key, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.AddCookie(auth.NewCookie(token, time.Hour, false))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoverPanic(t *testing.T) {
	h := RecoverPanic(nop)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() { h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil)) })
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
}

func TestLoggingMiddleware_AssignsRequestID(t *testing.T) {
	var seen string
	h := LoggingMiddleware(nop)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "given", seen)
}

func TestResponseWriter_ForwardsFlush(t *testing.T) {
	h := LoggingMiddleware(nop)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, isFlusher := w.(http.Flusher)
		require.True(t, isFlusher)
		_, _ = w.Write([]byte("data"))
		f.Flush()
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, rec.Flushed)
}

func TestRateLimit_LoginThrottling(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultLoginConfig(2))
	defer limiter.Close()

	status := http.StatusUnauthorized
	login := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) })
	h := RateLimitMiddleware(limiter, "login", nop)(AuthSuccessMiddleware(limiter, "login", nop)(login))

	do := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth", nil)
		req.RemoteAddr = "10.1.1.1:1234"
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, do().Code)
	assert.Equal(t, http.StatusUnauthorized, do().Code)
	rec := do()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"banned":true`)
}

func TestRateLimit_SuccessResets(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultLoginConfig(2))
	defer limiter.Close()

	status := http.StatusUnauthorized
	login := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(status) })
	h := RateLimitMiddleware(limiter, "login", nop)(AuthSuccessMiddleware(limiter, "login", nop)(login))
	do := func() int {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth", nil)
		req.RemoteAddr = "10.2.2.2:1"
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	do()
	status = http.StatusOK
	assert.Equal(t, http.StatusOK, do())
	status = http.StatusUnauthorized
	assert.Equal(t, http.StatusUnauthorized, do())
	assert.Equal(t, http.StatusUnauthorized, do())
}
