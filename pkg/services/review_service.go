package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/models"
	"github.com/Ezzyro/Airtable-Test/pkg/repositories"
)

// ReviewService writes a reviewer's decision back to the intake record.
type ReviewService interface {
	Respond(ctx context.Context, req models.ReviewRequest) (*models.ReviewResult, error)
}

type reviewService struct {
	intakes   repositories.IntakeRepository
	publisher *Publisher
	logger    *zap.Logger
}

// NewReviewService creates a ReviewService.
func NewReviewService(intakes repositories.IntakeRepository, publisher *Publisher, logger *zap.Logger) ReviewService {
	return &reviewService{
		intakes:   intakes,
		publisher: publisher,
		logger:    logger.Named("review-service"),
	}
}

var _ ReviewService = (*reviewService)(nil)

func (s *reviewService) Respond(ctx context.Context, req models.ReviewRequest) (*models.ReviewResult, error) {
	action, ok := models.ParseReviewAction(req.Action)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidAction, req.Action)
	}
	if action == models.ReviewActionModify && strings.TrimSpace(req.ModifiedText) == "" {
		return nil, fmt.Errorf("modified text is required: %w", apperrors.ErrInvalidInput)
	}

	intake, err := s.intakes.FindByIntakeID(ctx, req.IntakeID)
	if err != nil {
		return nil, err
	}

	var (
		summary *string
		status  models.SummaryStatus
		message string
	)
	switch action {
	case models.ReviewActionApprove:
		summary, status, message = &req.Summary, models.SummaryStatusApproved, "Approved summary"
	case models.ReviewActionReject:
		status, message = models.SummaryStatusRejected, "Rejected summary"
	case models.ReviewActionModify:
		summary, status, message = &req.ModifiedText, models.SummaryStatusApproved, "Modified and approved summary"
	}

	if err := s.intakes.UpdateSummary(ctx, intake.RecordID, summary, status); err != nil {
		s.logger.Error("Failed to persist review decision",
			zap.String("intake_id", req.IntakeID),
			zap.String("action", string(action)),
			zap.Error(err))
		return nil, err
	}
	s.logger.Info(message,
		zap.String("intake_id", req.IntakeID),
		zap.String("action", string(action)))

	s.publisher.Confirm(ctx, fmt.Sprintf("Status summary %s for Intake ID: %s", action.PastTense(), req.IntakeID))

	return &models.ReviewResult{
		Success:  true,
		Message:  message,
		IntakeID: req.IntakeID,
		Action:   string(action),
	}, nil
}
