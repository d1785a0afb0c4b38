package ai

import (
	"context"
	"strings"
)

// Groq exposes an OpenAI-compatible API, so the provider is the
// openai one pointed at Groq's endpoint.
const defaultGroqBaseURL = "https://api.groq.com/openai/v1"

type groqConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
}

type groqProvider struct {
	inner *openAIProvider
}

func (p *groqProvider) Name() string {
	return "groq"
}

func (p *groqProvider) Complete(ctx context.Context, model string, messages []Message, maxTokens int, temperature float32) (string, error) {
	return p.inner.Complete(ctx, model, messages, maxTokens, temperature)
}

func createGroqFactory(args interface{}) (IChatProvider, error) {
	cfg := &groqConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultGroqBaseURL
	}
	return &groqProvider{inner: &openAIProvider{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: baseURL,
	}}, nil
}

func init() {
	Register("groq", createGroqFactory)
}
