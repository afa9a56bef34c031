// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-chatfront/internal/auth"
	"github.com/iyunix/go-chatfront/internal/config"
	"github.com/iyunix/go-chatfront/internal/logging"
	"github.com/iyunix/go-chatfront/internal/ratelimit"
	"github.com/iyunix/go-chatfront/internal/services/ai"
)

func main() {
	logger := logging.NewLogger("server")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	verifier, err := auth.NewVerifier(cfg.AuthPassword)
	if err != nil {
		logger.Error("failed to prepare password verifier", "error", err)
		os.Exit(1)
	}
	if !verifier.Configured() {
		logger.Warn("AUTH_PASSWORD is not set; every login will be rejected")
	}

	aiConfig := cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		logger.Warn("AI configuration incomplete", "error", err)
	}
	aiService := ai.NewService(aiConfig, logger)

	limiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultLoginConfig(cfg.LoginMaxAttempts))
	defer limiter.Close()

	router := newRouter(routerDeps{
		Logger:       logger,
		Verifier:     verifier,
		SecretKey:    []byte(cfg.JWTSecretKey),
		CookieTTL:    cfg.AuthCookieTTL,
		Secure:       cfg.IsProduction(),
		AI:           aiService,
		DefaultModel: cfg.DefaultModel,
		LoginLimiter: limiter,
	})

	// --- Server Configuration ---
	// WriteTimeout stays zero: chat responses are long-lived streams.
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr, "environment", cfg.Environment, "default_model", cfg.DefaultModel)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
