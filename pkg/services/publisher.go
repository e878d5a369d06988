package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/llm"
	"github.com/Ezzyro/Airtable-Test/pkg/webhook"
)

// Publisher delivers review cards and confirmations through the webhook relay.
type Publisher struct {
	sender webhook.Sender
	now    func() time.Time
	logger *zap.Logger
}

// NewPublisher creates a Publisher. sender may be nil when no relay is
// configured; publishing a review card then fails with ErrConfiguration.
func NewPublisher(sender webhook.Sender, now func() time.Time, logger *zap.Logger) *Publisher {
	if now == nil {
		now = time.Now
	}
	return &Publisher{
		sender: sender,
		now:    now,
		logger: logger.Named("publisher"),
	}
}

// Configured reports whether a relay is available.
func (p *Publisher) Configured() bool {
	return p.sender != nil
}

// PublishReview sends the approve/reject/modify card. Failures wrap apperrors.ErrDelivery.
func (p *Publisher) PublishReview(ctx context.Context, intakeID, summary string) error {
	if p.sender == nil {
		return fmt.Errorf("webhook url is not set: %w", apperrors.ErrConfiguration)
	}
	if err := p.sender.Send(ctx, webhook.NewReviewCard(intakeID, summary, p.now())); err != nil {
		p.logger.Error("Failed to publish review card",
			zap.String("run_id", llm.RunIDFromContext(ctx)),
			zap.String("intake_id", intakeID),
			zap.Error(err))
		return fmt.Errorf("failed to send review card for %s: %w", intakeID, err)
	}
	return nil
}

// Confirm sends a plain text confirmation. It is best-effort: a missing relay
// or a delivery failure is logged and reported as false.
func (p *Publisher) Confirm(ctx context.Context, text string) bool {
	if p.sender == nil {
		return false
	}
	if err := p.sender.Send(ctx, webhook.NewTextMessage(text)); err != nil {
		p.logger.Warn("Failed to send confirmation", zap.Error(err))
		return false
	}
	return true
}

// Ping sends the connectivity probe card.
func (p *Publisher) Ping(ctx context.Context) error {
	if p.sender == nil {
		return fmt.Errorf("webhook url is not set: %w", apperrors.ErrConfiguration)
	}
	return p.sender.Send(ctx, webhook.NewTestMessage(p.now()))
}
