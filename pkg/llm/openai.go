package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient talks to OpenAI-compatible chat completion endpoints. Gemini is
// reached through its OpenAI compatibility layer.
type OpenAIClient struct {
	client *openai.Client
	target target
	log    callLogger
}

// NewOpenAIClient requires an endpoint and a model. The key may be empty for
// local endpoints.
func NewOpenAIClient(cfg *Config, logger *zap.Logger) (*OpenAIClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	oc.HTTPClient = newHTTPClient(cfg.Timeout)

	t := target{model: cfg.Model, endpoint: cfg.Endpoint, maxTokens: cfg.MaxTokens}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(oc),
		target: t,
		log:    callLogger{logger: logger.Named("llm"), target: t},
	}, nil
}

func (c *OpenAIClient) GenerateResponse(ctx context.Context, prompt, systemMessage string, temperature float64) (*GenerateResponseResult, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.target.model,
		Temperature: float32(temperature),
		MaxTokens:   c.target.maxTokens,
	}
	if systemMessage != "" {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemMessage})
	}
	req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	call := c.log.begin(ctx, prompt, temperature)
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, call.fail(err)
	}
	if len(resp.Choices) == 0 {
		return nil, c.target.empty("no choices in response")
	}

	result := &GenerateResponseResult{
		Content:          StripThinking(resp.Choices[0].Message.Content),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	call.done(result)
	return result, nil
}

func (c *OpenAIClient) GetModel() string    { return c.target.model }
func (c *OpenAIClient) GetEndpoint() string { return c.target.endpoint }
