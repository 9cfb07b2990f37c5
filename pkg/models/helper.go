package models

import (
	"context"
	"fmt"
)

// NewLLMProvider builds a model adapter by provider name. Only the
// Anthropic and dummy providers speak the native tool-use protocol; the
// others satisfy the plain Agent contract.
func NewLLMProvider(ctx context.Context, provider string, model string) (Agent, error) {
	switch provider {
	case "anthropic", "claude":
		return NewAnthropicLLM(model), nil
	case "openai":
		return NewOpenAILLM(model), nil
	case "gemini", "google":
		return NewGeminiLLM(ctx, model)
	case "ollama":
		return NewOllamaLLM(model)
	case "dummy":
		return NewDummyLLM(""), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
