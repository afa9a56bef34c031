// File: internal/services/ai/interface.go
package ai

import (
	"context"

	"github.com/iyunix/go-chatfront/internal/domain"
)

// ChatMessage is one message in the provider's wire form.
type ChatMessage struct {
	Role    string
	Content string
}

// CompletionProvider talks to one upstream.
type CompletionProvider interface {
	GetCompletion(ctx context.Context, model string, messages []ChatMessage) (string, error)
	StreamChat(ctx context.Context, model string, messages []ChatMessage, onDelta func(string) error) error
}

// Service routes a conversation to the model it names.
type Service interface {
	StreamConversation(ctx context.Context, modelID string, messages []domain.Message, onDelta func(string) error) (Model, error)
	Models() []ModelStatus
}

// ModelStatus is a registry entry plus whether its provider has a key.
type ModelStatus struct {
	Model
	Available bool `json:"available"`
}
