package ai

import (
	"context"
	"fmt"

	"github.com/v0xg/formfill/internal/form"
)

// Provider suggests default answers for form fields
type Provider interface {
	Suggest(ctx context.Context, pageURL string, fields []form.Descriptor) (map[string]string, error)
}

// NewProvider creates a new AI provider based on the provider name
func NewProvider(name, model string) (Provider, error) {
	switch name {
	case "claude", "anthropic":
		return NewClaudeProvider(model)
	case "openai", "gpt":
		return NewOpenAIProvider(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: claude, openai)", name)
	}
}
