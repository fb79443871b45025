package providers

import (
	"net/http"
	"strings"

	"github.com/deckforge/deckforge/llm"
)

// OllamaProvider targets a local Ollama server through its OpenAI-compatible
// endpoint. No authentication is required.
type OllamaProvider struct {
	OpenAIProvider // shared request/response format
}

func init() {
	llm.RegisterProvider(&OllamaProvider{})
}

// Name returns the provider identifier.
func (o *OllamaProvider) Name() string {
	return "ollama"
}

// RequiresKey reports that Ollama runs without credentials.
func (o *OllamaProvider) RequiresKey() bool {
	return false
}

// BuildURL constructs the chat-completions endpoint with the local default.
func (o *OllamaProvider) BuildURL(endpoint llm.Endpoint) string {
	baseURL := endpoint.URL
	if baseURL == "" {
		baseURL = "http://localhost:11434/v1"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	if strings.HasSuffix(baseURL, "/chat/completions") {
		return baseURL
	}
	return baseURL + "/chat/completions"
}

// SetHeaders is a no-op; Ollama needs no auth headers.
func (o *OllamaProvider) SetHeaders(_ *http.Request, _ llm.Endpoint) {}
