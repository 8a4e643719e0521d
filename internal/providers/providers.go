package providers

import (
	"context"
)

// Config represents the configuration for an LLM provider
type Config struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	Prompt       string
}

// Provider defines the interface for an LLM provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context, config Config) (string, error)

// ExtractText calls f
func (f ProviderFunc) ExtractText(ctx context.Context, config Config) (string, error) {
	return f(ctx, config)
}
