package vertex

import (
	"context"
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/lotcataloger/internal/providers"
	"google.golang.org/genai"
)

// Vertex is a provider for Gemini models served through the google.golang.org/genai SDK.
// With GOOGLE_CLOUD_PROJECT set it uses the Vertex AI backend, otherwise the
// Gemini API with GEMINI_API_KEY.
type Vertex struct {
	clientConfig *genai.ClientConfig
}

// New returns a new Vertex provider configured from the environment
func New() *Vertex {
	cc := &genai.ClientConfig{}
	if project := os.Getenv("GOOGLE_CLOUD_PROJECT"); project != "" {
		location := os.Getenv("GOOGLE_CLOUD_LOCATION")
		if location == "" {
			location = "us-central1"
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = project
		cc.Location = location
	} else {
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return NewWithConfig(cc)
}

// NewWithConfig returns a provider using cc as given
func NewWithConfig(cc *genai.ClientConfig) *Vertex {
	return &Vertex{clientConfig: cc}
}

// ExtractText extracts text from the given prompt
func (v *Vertex) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if v.clientConfig.Backend == genai.BackendGeminiAPI && v.clientConfig.APIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY or GOOGLE_CLOUD_PROJECT must be set")
	}

	client, err := genai.NewClient(ctx, v.clientConfig)
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	gc := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(config.Temperature)),
	}
	if config.SystemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(config.SystemPrompt, genai.RoleUser)
	}

	result, err := client.Models.GenerateContent(ctx, config.Model, genai.Text(config.Prompt), gc)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	return result.Text(), nil
}
