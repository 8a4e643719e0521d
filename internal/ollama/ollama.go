package ollama

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lehigh-university-libraries/lotcataloger/internal/providers"
)

// Ollama is a provider for Ollama
type Ollama struct {
	client *resty.Client
}

// New returns a new Ollama provider using OLLAMA_URL or OLLAMA_HOST
func New() *Ollama {
	ollamaURL := os.Getenv("OLLAMA_URL")
	if ollamaURL == "" {
		ollamaURL = os.Getenv("OLLAMA_HOST")
	}
	if ollamaURL == "" {
		ollamaURL = "http://localhost:11434"
	}
	return NewWithURL(ollamaURL)
}

// NewWithURL returns a provider for the Ollama server at url
func NewWithURL(url string) *Ollama {
	return &Ollama{
		client: resty.New().
			SetBaseURL(url).
			SetTimeout(10*time.Minute).
			SetHeader("Content-Type", "application/json"),
	}
}

type generateRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

// ExtractText extracts text from the given prompt using Ollama
func (o *Ollama) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	var response struct {
		Response string `json:"response"`
	}

	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Model:  config.Model,
			System: config.SystemPrompt,
			Prompt: config.Prompt,
			Stream: false,
			Options: map[string]any{
				"temperature": config.Temperature,
			},
		}).
		SetResult(&response).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode(), resp.String())
	}

	return response.Response, nil
}
