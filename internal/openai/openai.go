package openai

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/lehigh-university-libraries/lotcataloger/internal/providers"
)

const defaultBaseURL = "https://api.openai.com/v1"

// OpenAI is a provider for OpenAI
type OpenAI struct {
	client *resty.Client
	apiKey string
}

// New returns a new OpenAI provider.
// It reads OPENAI_API_KEY and, if set, OPENAI_BASE_URL.
func New() *OpenAI {
	baseURL := os.Getenv("OPENAI_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return NewWithBaseURL(baseURL, os.Getenv("OPENAI_API_KEY"))
}

// NewWithBaseURL returns a provider talking to an OpenAI compatible endpoint
func NewWithBaseURL(baseURL, apiKey string) *OpenAI {
	return &OpenAI{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(5*time.Minute).
			SetHeader("Content-Type", "application/json"),
		apiKey: apiKey,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ExtractText extracts text from the given prompt using OpenAI
func (o *OpenAI) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if o.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	var messages []message
	if config.SystemPrompt != "" {
		messages = append(messages, message{Role: "system", Content: config.SystemPrompt})
	}
	messages = append(messages, message{Role: "user", Content: config.Prompt})

	var response chatResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetAuthToken(o.apiKey).
		SetBody(chatRequest{
			Model:       config.Model,
			Messages:    messages,
			Temperature: config.Temperature,
		}).
		SetResult(&response).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode(), resp.String())
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices returned from OpenAI")
	}

	return response.Choices[0].Message.Content, nil
}
