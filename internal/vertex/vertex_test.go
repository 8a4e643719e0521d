package vertex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/lotcataloger/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	t.Setenv("GEMINI_API_KEY", "abc")
	v := New()
	assert.Equal(t, genai.BackendGeminiAPI, v.clientConfig.Backend)
	assert.Equal(t, "abc", v.clientConfig.APIKey)

	t.Setenv("GOOGLE_CLOUD_PROJECT", "auction-house")
	t.Setenv("GOOGLE_CLOUD_LOCATION", "")
	v = New()
	assert.Equal(t, genai.BackendVertexAI, v.clientConfig.Backend)
	assert.Equal(t, "auction-house", v.clientConfig.Project)
	assert.Equal(t, "us-central1", v.clientConfig.Location)
}

func TestExtractTextRequiresCredentials(t *testing.T) {
	v := NewWithConfig(&genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	_, err := v.ExtractText(context.Background(), providers.Config{Model: "gemini-2.0-flash", Prompt: "x"})
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestExtractText(t *testing.T) {
	var request map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent") {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Brass carriage clock"}]}}]}`))
	}))
	defer srv.Close()

	v := NewWithConfig(&genai.ClientConfig{
		Backend:     genai.BackendGeminiAPI,
		APIKey:      "test-key",
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	text, err := v.ExtractText(context.Background(), providers.Config{
		Model:        "gemini-2.0-flash",
		Temperature:  0.3,
		SystemPrompt: "You are a cataloger.",
		Prompt:       "Describe lot 4",
	})
	require.NoError(t, err)
	assert.Equal(t, "Brass carriage clock", text)

	raw, err := json.Marshal(request)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Describe lot 4")
	assert.Contains(t, string(raw), "You are a cataloger.")
}

func TestExtractTextEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	v := NewWithConfig(&genai.ClientConfig{
		Backend:     genai.BackendGeminiAPI,
		APIKey:      "test-key",
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	_, err := v.ExtractText(context.Background(), providers.Config{Model: "gemini-2.0-flash", Prompt: "x"})
	assert.ErrorContains(t, err, "no response")
}
