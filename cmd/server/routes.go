// File: cmd/server/routes.go
package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-chatfront/internal/auth"
	"github.com/iyunix/go-chatfront/internal/handlers"
	"github.com/iyunix/go-chatfront/internal/logging"
	"github.com/iyunix/go-chatfront/internal/middleware"
	"github.com/iyunix/go-chatfront/internal/ratelimit"
	"github.com/iyunix/go-chatfront/internal/services/ai"
)

type routerDeps struct {
	Logger       logging.Logger
	Verifier     *auth.Verifier
	SecretKey    []byte
	CookieTTL    time.Duration
	Secure       bool
	AI           ai.Service
	DefaultModel string
	LoginLimiter *ratelimit.MemoryRateLimiter
}

func newRouter(d routerDeps) *mux.Router {
	authHandler := handlers.NewAuthHandler(d.Verifier, d.SecretKey, d.CookieTTL, d.Secure, d.Logger)
	chatHandler := handlers.NewChatHandler(d.AI, d.Logger)
	modelsHandler := &handlers.ModelsHandler{AIService: d.AI, DefaultModel: d.DefaultModel}

	r := mux.NewRouter()
	r.Use(middleware.RecoverPanic(d.Logger))
	r.Use(middleware.LoggingMiddleware(d.Logger))

	// --- Public Routes ---
	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/log", handlers.LogFrontendEvent).Methods(http.MethodPost)
	r.HandleFunc("/api/models", modelsHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/api/auth", authHandler.Status).Methods(http.MethodGet)
	r.HandleFunc("/api/auth", authHandler.Logout).Methods(http.MethodDelete)

	login := middleware.RateLimitMiddleware(d.LoginLimiter, "login", d.Logger)(
		middleware.AuthSuccessMiddleware(d.LoginLimiter, "login", d.Logger)(
			http.HandlerFunc(authHandler.Login)))
	r.Handle("/api/auth", login).Methods(http.MethodPost)

	// --- Protected Routes ---
	requireAuth := middleware.RequireAuth(d.SecretKey, d.Secure, d.Logger)
	r.Handle("/api/chat", requireAuth(http.HandlerFunc(chatHandler.Stream))).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not found"}`))
	})
	return r
}
