package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/config"
)

func TestNewClientFromConfig_NotConfigured(t *testing.T) {
	client, err := NewClientFromConfig(&config.AIConfig{Provider: config.ProviderGemini, Model: "gemini-2.0-flash"}, zap.NewNop())
	assert.Nil(t, client)
	assert.True(t, errors.Is(err, ErrNotConfigured))
}

func TestNewClientFromConfig_Providers(t *testing.T) {
	tests := []struct {
		name         string
		cfg          config.AIConfig
		wantEndpoint string
		anthropic    bool
	}{
		{
			name:         "gemini defaults to the OpenAI compatibility endpoint",
			cfg:          config.AIConfig{Provider: config.ProviderGemini, GeminiAPIKey: "k", Model: "gemini-2.0-flash"},
			wantEndpoint: GeminiOpenAIEndpoint,
		},
		{
			name:         "openai",
			cfg:          config.AIConfig{Provider: config.ProviderOpenAI, APIKey: "k", Model: "gpt-4o-mini"},
			wantEndpoint: OpenAIEndpoint,
		},
		{
			name:         "explicit base url wins",
			cfg:          config.AIConfig{Provider: config.ProviderOpenAI, APIKey: "k", Model: "llama3", BaseURL: "http://localhost:11434/v1"},
			wantEndpoint: "http://localhost:11434/v1",
		},
		{
			name:      "anthropic",
			cfg:       config.AIConfig{Provider: config.ProviderAnthropic, APIKey: "k", Model: "claude-3-5-haiku-latest"},
			anthropic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClientFromConfig(&tt.cfg, zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.Model, client.GetModel())
			if tt.anthropic {
				assert.IsType(t, &AnthropicClient{}, client)
				return
			}
			assert.IsType(t, &OpenAIClient{}, client)
			assert.Equal(t, tt.wantEndpoint, client.GetEndpoint())
		})
	}
}

func TestNewClientFromConfig_DefaultModelFollowsProvider(t *testing.T) {
	tests := map[string]string{
		config.ProviderGemini:    "gemini-2.0-flash",
		config.ProviderOpenAI:    "gpt-4o-mini",
		config.ProviderAnthropic: "claude-3-5-haiku-latest",
	}

	for provider, want := range tests {
		t.Run(provider, func(t *testing.T) {
			client, err := NewClientFromConfig(&config.AIConfig{Provider: provider, APIKey: "k"}, zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, want, client.GetModel())
		})
	}
}

func TestNewClientFromConfig_UnknownProvider(t *testing.T) {
	_, err := NewClientFromConfig(&config.AIConfig{Provider: "cohere", APIKey: "k", Model: "m"}, zap.NewNop())
	assert.Error(t, err)
}
