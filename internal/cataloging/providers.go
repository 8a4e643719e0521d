package cataloging

import (
	"fmt"

	"github.com/lehigh-university-libraries/lotcataloger/internal/gemini"
	"github.com/lehigh-university-libraries/lotcataloger/internal/ollama"
	"github.com/lehigh-university-libraries/lotcataloger/internal/openai"
	"github.com/lehigh-university-libraries/lotcataloger/internal/providers"
	"github.com/lehigh-university-libraries/lotcataloger/internal/vertex"
)

// NewProvider returns the LLM provider registered under name
func NewProvider(name string) (providers.Provider, error) {
	switch name {
	case "openai":
		return openai.New(), nil
	case "ollama":
		return ollama.New(), nil
	case "gemini":
		return gemini.New(), nil
	case "vertex":
		return vertex.New(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
