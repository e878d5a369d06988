package llm

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Config holds what every provider client needs.
type Config struct {
	Endpoint  string        // Base URL; optional for Anthropic
	Model     string        // e.g. "gemini-2.0-flash"
	APIKey    string        // Optional for local endpoints
	MaxTokens int           // 0 leaves the provider default
	Timeout   time.Duration // 0 leaves the transport default
}

// target identifies the model a client calls.
type target struct {
	model     string
	endpoint  string
	maxTokens int
}

// classify attaches the target to a provider error.
func (t target) classify(err error) *Error {
	llmErr := ClassifyError(err)
	llmErr.Model = t.model
	llmErr.Endpoint = t.endpoint
	return llmErr
}

func (t target) empty(message string) *Error {
	return emptyResponseError(message, t.model, t.endpoint)
}

// callLogger logs one request per provider call with its run id and timing.
type callLogger struct {
	logger *zap.Logger
	target target
}

type call struct {
	logger *zap.Logger
	target target
	start  time.Time
}

func (l callLogger) begin(ctx context.Context, prompt string, temperature float64) call {
	logger := l.logger.With(zap.String("model", l.target.model), zap.String("run_id", RunIDFromContext(ctx)))
	logger.Debug("LLM request",
		zap.Int("prompt_len", len(prompt)),
		zap.Float64("temperature", temperature))
	return call{logger: logger, target: l.target, start: time.Now()}
}

func (c call) fail(err error) error {
	llmErr := c.target.classify(err)
	c.logger.Error("LLM request failed",
		zap.String("error_type", string(llmErr.Type)),
		zap.Duration("elapsed", time.Since(c.start)),
		zap.Error(err))
	return llmErr
}

func (c call) done(result *GenerateResponseResult) {
	c.logger.Info("LLM request completed",
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("completion_tokens", result.CompletionTokens),
		zap.Duration("elapsed", time.Since(c.start)))
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &contextAwareTransport{base: http.DefaultTransport},
	}
}
