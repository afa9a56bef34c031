// File: internal/services/chat/config.go
package chat

import (
	"fmt"
	"time"
)

type Config struct {
	// Model sent with every request unless SetModel overrides it.
	DefaultModel string

	// Upper bound on one send, first byte to completion.
	StreamTimeout time.Duration

	// Bound on the completion save, which runs after the stream context
	// may already be done.
	SaveTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.DefaultModel == "" {
		return fmt.Errorf("default_model is required")
	}
	if c.StreamTimeout <= 0 {
		return fmt.Errorf("stream_timeout must be positive")
	}
	if c.SaveTimeout <= 0 {
		return fmt.Errorf("save_timeout must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		DefaultModel:  "deepseek-chat",
		StreamTimeout: 120 * time.Second,
		SaveTimeout:   5 * time.Second,
	}
}
