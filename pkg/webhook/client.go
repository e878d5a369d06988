// Package webhook delivers review cards and confirmations to the chat relay.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/logging"
)

// DefaultTimeout is the maximum time to wait for the relay to accept a message.
const DefaultTimeout = 30 * time.Second

// Sender posts one message. Implemented by Client; services depend on this.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// Client posts messages to a single relay URL. Delivery is attempted once.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a relay client. The URL is a secret and is only logged sanitized.
func NewClient(url string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook url is required: %w", apperrors.ErrConfiguration)
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("webhook"),
	}, nil
}

// Send posts msg as JSON. Transport failures and non-2xx responses wrap
// apperrors.ErrDelivery.
func (c *Client) Send(ctx context.Context, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request", apperrors.ErrDelivery)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		sanitized := logging.SanitizeError(err)
		c.logger.Error("Webhook request failed",
			zap.String("url", logging.SanitizeURL(c.url)),
			zap.String("error", sanitized))
		return fmt.Errorf("%w: %s", apperrors.ErrDelivery, sanitized)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Webhook returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", logging.TruncateString(string(respBody), logging.MaxTextLogLength)))
		return fmt.Errorf("%w: relay returned status %d", apperrors.ErrDelivery, resp.StatusCode)
	}

	c.logger.Info("Webhook message delivered",
		zap.Int("status", resp.StatusCode),
		zap.Int("attachments", len(msg.Attachments)))
	return nil
}

var _ Sender = (*Client)(nil)
