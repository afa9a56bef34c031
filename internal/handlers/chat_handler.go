// File: internal/handlers/chat_handler.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/iyunix/go-chatfront/internal/domain"
	"github.com/iyunix/go-chatfront/internal/logging"
	"github.com/iyunix/go-chatfront/internal/middleware"
	"github.com/iyunix/go-chatfront/internal/services/ai"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Messages []domain.Message `json:"messages"`
	Model    string           `json:"model"`
}

type ChatHandler struct {
	AIService ai.Service
	logger    logging.Logger
}

func NewChatHandler(svc ai.Service, logger logging.Logger) *ChatHandler {
	return &ChatHandler{AIService: svc, logger: logger}
}

// Stream relays the model's reply as server-sent events: one delta event
// per fragment, then done or error.
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, "messages are required", http.StatusBadRequest)
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	sse.flusher.Flush()

	requestID := middleware.RequestID(r.Context())
	model, err := h.AIService.StreamConversation(r.Context(), req.Model, req.Messages, func(delta string) error {
		return sse.send(EventDelta, map[string]string{"text": delta})
	})
	if err != nil {
		if r.Context().Err() != nil {
			h.logger.Info("client went away mid-stream", "request_id", requestID, "model", model.ID)
			return
		}
		h.logger.Error("chat stream failed", "request_id", requestID, "model", model.ID, "error", err)
		_ = sse.send(EventError, map[string]string{"error": clientMessage(err)})
		return
	}

	_ = sse.send(EventDone, map[string]string{"model": model.ID})
}

// clientMessage keeps upstream details out of the response.
func clientMessage(err error) string {
	var aiErr *ai.AIError
	if errors.As(err, &aiErr) {
		switch aiErr.Type {
		case ai.ErrTypeConfig:
			return "The selected model is not available on this server."
		case ai.ErrTypeValidation:
			return aiErr.Message
		}
	}
	return "The model failed to respond. Please try again."
}

// ModelsHandler serves the model registry.
type ModelsHandler struct {
	AIService    ai.Service
	DefaultModel string
}

func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models":  h.AIService.Models(),
		"default": ai.Resolve(h.DefaultModel, ai.FallbackModel).ID,
	})
}
