// File: cmd/diagnostic/llm_diagnostic.go
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/iyunix/go-chatfront/internal/config"
	"github.com/iyunix/go-chatfront/internal/services/ai"
)

// Sends one short prompt to every registry model whose provider has a key
// and reports which upstreams answer.
func main() {
	fmt.Println("🚀 Checking configured model providers...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ configuration error: %v\n", err)
		os.Exit(1)
	}
	aiCfg := cfg.AIConfig()

	failed := 0
	for _, m := range ai.Models() {
		pc := aiCfg.Providers[m.Provider]
		if pc.APIKey == "" {
			fmt.Printf("⏭️  %-18s skipped (no %s key)\n", m.ID, m.Provider)
			continue
		}

		provider := ai.NewOpenAIProvider(pc)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		start := time.Now()
		reply, err := provider.GetCompletion(ctx, m.Upstream, []ai.ChatMessage{
			{Role: "system", Content: aiCfg.SystemPrompt},
			{Role: "user", Content: "Reply with the single word: pong"},
		})
		cancel()

		if err != nil {
			failed++
			fmt.Printf("❌ %-18s %v\n", m.ID, err)
			continue
		}
		fmt.Printf("✅ %-18s %s (%s)\n", m.ID, reply, time.Since(start).Round(time.Millisecond))
	}

	if failed > 0 {
		os.Exit(1)
	}
}
