// File: internal/services/ai/registry.go
package ai

// ProviderName identifies an upstream API.
type ProviderName string

const (
	ProviderOpenAI   ProviderName = "openai"
	ProviderDeepSeek ProviderName = "deepseek"
	ProviderGemini   ProviderName = "gemini"
)

// FallbackModel serves requests for unknown or missing model ids.
const FallbackModel = "gpt-5-mini"

// Model maps a public model id to the upstream that serves it.
type Model struct {
	ID       string       `json:"id"`
	Label    string       `json:"label"`
	Provider ProviderName `json:"provider"`
	// Upstream is the model name sent to the provider.
	Upstream string `json:"-"`
}

var registry = []Model{
	{ID: "gpt-5-mini", Label: "gpt-5-mini (OpenAI)", Provider: ProviderOpenAI, Upstream: "gpt-5-mini"},
	{ID: "deepseek-chat", Label: "DeepSeek V3.2", Provider: ProviderDeepSeek, Upstream: "deepseek-chat"},
	{ID: "gemini-2.5-flash", Label: "gemini-2.5-flash", Provider: ProviderGemini, Upstream: "models/gemini-2.5-flash"},
}

// Models lists the registry in display order.
func Models() []Model {
	out := make([]Model, len(registry))
	copy(out, registry)
	return out
}

func lookup(id string) (Model, bool) {
	for _, m := range registry {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}

// Resolve returns the model for id, or the fallback model when id is
// unknown or empty.
func Resolve(id, fallback string) Model {
	if m, ok := lookup(id); ok {
		return m
	}
	if m, ok := lookup(fallback); ok {
		return m
	}
	m, _ := lookup(FallbackModel)
	return m
}
