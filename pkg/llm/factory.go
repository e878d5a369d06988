package llm

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/config"
)

// Default endpoints per provider when ai.base_url is empty.
const (
	GeminiOpenAIEndpoint = "https://generativelanguage.googleapis.com/v1beta/openai/"
	OpenAIEndpoint       = "https://api.openai.com/v1"
)

// Default models per provider when ai.model is empty.
var defaultModels = map[string]string{
	config.ProviderGemini:    "gemini-2.0-flash",
	config.ProviderOpenAI:    "gpt-4o-mini",
	config.ProviderAnthropic: "claude-3-5-haiku-latest",
}

// NewClientFromConfig builds the client for the configured provider. It
// returns ErrNotConfigured when no credential is set, which callers treat as
// "publish without refinement".
func NewClientFromConfig(cfg *config.AIConfig, logger *zap.Logger) (LLMClient, error) {
	if !cfg.IsConfigured() {
		return nil, ErrNotConfigured
	}

	model := cfg.Model
	if model == "" {
		model = defaultModels[cfg.Provider]
	}

	clientCfg := &Config{
		Endpoint:  cfg.BaseURL,
		Model:     model,
		APIKey:    cfg.Key(),
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.Timeout,
	}

	switch cfg.Provider {
	case config.ProviderAnthropic:
		client, err := NewAnthropicClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil
	case config.ProviderGemini, config.ProviderOpenAI:
		if clientCfg.Endpoint == "" {
			clientCfg.Endpoint = GeminiOpenAIEndpoint
			if cfg.Provider == config.ProviderOpenAI {
				clientCfg.Endpoint = OpenAIEndpoint
			}
		}
		client, err := NewOpenAIClient(clientCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
