// File: internal/services/ai/service.go
package ai

import (
	"context"
	"strings"

	"github.com/iyunix/go-chatfront/internal/domain"
	"github.com/iyunix/go-chatfront/internal/logging"
)

type service struct {
	config    *Config
	providers map[ProviderName]CompletionProvider
	logger    logging.Logger
}

// NewService builds one OpenAI-compatible provider per configured key.
func NewService(config *Config, logger logging.Logger) Service {
	providers := make(map[ProviderName]CompletionProvider)
	for name, pc := range config.Providers {
		if pc.APIKey == "" {
			continue
		}
		providers[name] = NewOpenAIProvider(pc)
	}
	return NewServiceWithProviders(config, providers, logger)
}

// NewServiceWithProviders wires explicit providers, for tests and
// diagnostics.
func NewServiceWithProviders(config *Config, providers map[ProviderName]CompletionProvider, logger logging.Logger) Service {
	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	return &service{config: config, providers: providers, logger: logger}
}

// ToChatMessages flattens the conversation to role + text, behind the
// system prompt. Messages without text are skipped.
func ToChatMessages(systemPrompt string, messages []domain.Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages)+1)
	if strings.TrimSpace(systemPrompt) != "" {
		out = append(out, ChatMessage{Role: string(domain.RoleSystem), Content: systemPrompt})
	}
	for _, m := range messages {
		if !m.Role.IsValid() {
			continue
		}
		text := m.Text()
		if text == "" {
			continue
		}
		out = append(out, ChatMessage{Role: string(m.Role), Content: text})
	}
	return out
}

func (s *service) StreamConversation(ctx context.Context, modelID string, messages []domain.Message, onDelta func(string) error) (Model, error) {
	model := Resolve(modelID, s.config.DefaultModel)
	if model.ID != modelID {
		s.logger.Debug("model fallback", "requested", modelID, "using", model.ID)
	}

	provider, ok := s.providers[model.Provider]
	if !ok {
		return model, &AIError{
			Type:      ErrTypeConfig,
			Operation: "streaming",
			Model:     model.ID,
			Message:   "no API key configured for provider " + string(model.Provider),
		}
	}

	chat := ToChatMessages(s.config.SystemPrompt, messages)
	if len(chat) == 0 || chat[len(chat)-1].Role == string(domain.RoleSystem) {
		return model, &AIError{Type: ErrTypeValidation, Operation: "streaming", Model: model.ID, Message: "conversation has no messages"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	s.logger.Info("streaming completion", "model", model.ID, "provider", string(model.Provider), "messages", len(chat))
	if err := provider.StreamChat(ctx, model.Upstream, chat, onDelta); err != nil {
		s.logger.Error("stream completion failed", "model", model.ID, "error", err)
		return model, err
	}
	return model, nil
}

func (s *service) Models() []ModelStatus {
	models := Models()
	out := make([]ModelStatus, 0, len(models))
	for _, m := range models {
		_, ok := s.providers[m.Provider]
		out = append(out, ModelStatus{Model: m, Available: ok})
	}
	return out
}
