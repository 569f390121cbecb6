// Package llm provides the language-model clients. The model is a black box
// to the rest of the system: text in, text out, or a provider error.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client is the interface the pipeline depends on.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ErrProvider marks failures originating at the model provider (missing
// credential, rate limit, network fault). Callers treat these as step-local.
var ErrProvider = errors.New("llm provider error")

// Config selects and configures a provider.
type Config struct {
	Provider       string // "gemini" or "openai"
	APIKey         string
	Model          string
	BaseURL        string
	TimeoutSeconds int
}

// New constructs a client from config. A missing API key is a configuration
// error, fatal at startup rather than at first call.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: api key not configured")
	}
	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiClient(cfg), nil
	case "openai":
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
