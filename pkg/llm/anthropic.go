package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// DefaultAnthropicMaxTokens is used when Config.MaxTokens is zero; the
// Messages API requires an explicit limit.
const DefaultAnthropicMaxTokens = 1024

// AnthropicClient generates completions through the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	target target
	log    callLogger
}

// NewAnthropicClient creates a client. Endpoint is optional.
func NewAnthropicClient(cfg *Config, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required: %w", ErrNotConfigured)
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}

	opts := []anthropic.ClientOption{anthropic.WithHTTPClient(newHTTPClient(cfg.Timeout))}
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(strings.TrimSuffix(cfg.Endpoint, "/")))
	}

	t := target{model: cfg.Model, endpoint: cfg.Endpoint, maxTokens: cfg.MaxTokens}
	if t.maxTokens == 0 {
		t.maxTokens = DefaultAnthropicMaxTokens
	}
	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		target: t,
		log:    callLogger{logger: logger.Named("llm-anthropic"), target: t},
	}, nil
}

// GenerateResponse sends prompt as a single user message.
func (c *AnthropicClient) GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64) (*GenerateResponseResult, error) {
	temp := float32(temperature)

	call := c.log.begin(ctx, prompt, temperature)
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:       anthropic.Model(c.target.model),
		MaxTokens:   c.target.maxTokens,
		System:      systemMessage,
		Temperature: &temp,
		Messages: []anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: []anthropic.MessageContent{{Type: "text", Text: &prompt}},
		}},
	})
	if err != nil {
		return nil, call.fail(err)
	}

	content := extractText(resp)
	if content == "" {
		return nil, c.target.empty("no text content in response")
	}

	result := &GenerateResponseResult{
		Content:          content,
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	}
	call.done(result)
	return result, nil
}

func (c *AnthropicClient) GetModel() string { return c.target.model }

// GetEndpoint returns the configured endpoint, empty for the public API.
func (c *AnthropicClient) GetEndpoint() string { return c.target.endpoint }

func extractText(resp anthropic.MessagesResponse) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			sb.WriteString(*block.Text)
		}
	}
	return sb.String()
}
