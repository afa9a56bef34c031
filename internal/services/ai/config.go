// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

// ProviderConfig is one OpenAI-compatible upstream.
type ProviderConfig struct {
	APIKey  string
	BaseURL string
}

type Config struct {
	Providers map[ProviderName]ProviderConfig

	// Model used when a request names an unknown or empty model.
	DefaultModel string
	SystemPrompt string

	Timeout time.Duration
}

func (c *Config) Validate() error {
	if _, ok := lookup(c.DefaultModel); !ok {
		return fmt.Errorf("default model %q is not in the registry", c.DefaultModel)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	configured := 0
	for _, p := range c.Providers {
		if p.APIKey != "" {
			configured++
		}
	}
	if configured == 0 {
		return fmt.Errorf("at least one of OPENAI_API_KEY, DEEPSEEK_API_KEY, GEMINI_API_KEY is required")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Providers: map[ProviderName]ProviderConfig{
			ProviderOpenAI:   {},
			ProviderDeepSeek: {BaseURL: "https://api.deepseek.com/"},
			ProviderGemini:   {BaseURL: "https://generativelanguage.googleapis.com/v1beta/openai/"},
		},
		DefaultModel: FallbackModel,
		SystemPrompt: "You are a helpful assistant.",
		Timeout:      5 * time.Minute,
	}
}
