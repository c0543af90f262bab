// Package llm provides the generation collaborator: a provider-agnostic
// client that turns a prompt into a stream of text tokens. Retrieval decides
// what context the model sees; this package only carries tokens back.
package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// TokenFunc receives each generated token in order. Returning an error stops
// the stream.
type TokenFunc func(token string) error

// Request is a single generation request.
type Request struct {
	System      string  // system prompt (optional)
	Prompt      string  // user prompt
	MaxTokens   int     // 0 = provider default
	Temperature float64 // 0 = deterministic
}

// Provider is the interface for streaming LLM completions.
type Provider interface {
	// Stream sends the request and invokes fn once per generated token
	// until the model finishes, the context is cancelled, or fn errors.
	Stream(ctx context.Context, req Request, fn TokenFunc) error
	// Name returns a human-readable provider name (e.g. "openai/gpt-4o-mini").
	Name() string
}

// Config holds provider configuration.
type Config struct {
	Provider string `yaml:"provider"` // "openai" (OpenAI-compatible endpoints)
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"` // empty = read MUNINN_AI_API_KEY / OPENAI_API_KEY
}

// NewProvider creates a Provider from the given config. The "openai"
// provider speaks the OpenAI-compatible chat completions protocol, which
// also covers OpenRouter and local runtimes like Ollama via base_url.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("MUNINN_AI_API_KEY")
		}
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		baseURL := strings.TrimRight(cfg.BaseURL, "/")
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
		return &openaiProvider{apiKey: key, model: model, baseURL: baseURL}, nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
