package handlers

import (
	"log/slog"
	"net/http"
	"strings"
)

// FrontendLogPayload is an event reported by a chat client.
type FrontendLogPayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Context any    `json:"context,omitempty"`
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFrontendEvent records a client-side event in the server log.
func LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var payload FrontendLogPayload
	if err := decodeJSON(w, r, &payload); err != nil || payload.Message == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	slog.Log(r.Context(), slogLevel(payload.Level), "CLIENT_LOG",
		slog.String("message", payload.Message),
		slog.Any("context", payload.Context),
		slog.String("remote", r.RemoteAddr),
	)

	w.WriteHeader(http.StatusNoContent)
}

// Health is the liveness check.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
