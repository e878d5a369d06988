package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/llm"
	"github.com/Ezzyro/Airtable-Test/pkg/models"
	"github.com/Ezzyro/Airtable-Test/pkg/repositories"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

// StatusPendingApproval is the only successful outcome of processing an intake.
const StatusPendingApproval = "pending_approval"

// StoreResolver opens the tabular store, failing with apperrors.ErrConfiguration
// when credentials are absent. Implemented by *tabular.LazyStore.
type StoreResolver interface {
	Resolve() (tabular.Store, error)
}

// ProcessResult is returned once a review card has been published.
type ProcessResult struct {
	Status           string                              `json:"status"`
	Summary          string                              `json:"summary"`
	LatestByCategory map[models.NoteCategory]models.Note `json:"latestByCategory,omitempty"`
	RunID            string                              `json:"runId"`
}

// IntakeProcessor turns an intake's notes into a summary and posts it for review.
type IntakeProcessor interface {
	Process(ctx context.Context, intakeID string) (*ProcessResult, error)
}

type intakeProcessor struct {
	resolver  StoreResolver
	intakes   repositories.IntakeRepository
	notes     repositories.StatusNoteRepository
	composer  *Composer
	refiner   *Refiner
	publisher *Publisher
	logger    *zap.Logger
}

// NewIntakeProcessor creates an IntakeProcessor. resolver may be nil when the
// repositories are backed by an already opened store.
func NewIntakeProcessor(
	resolver StoreResolver,
	intakes repositories.IntakeRepository,
	notes repositories.StatusNoteRepository,
	composer *Composer,
	refiner *Refiner,
	publisher *Publisher,
	logger *zap.Logger,
) IntakeProcessor {
	return &intakeProcessor{
		resolver:  resolver,
		intakes:   intakes,
		notes:     notes,
		composer:  composer,
		refiner:   refiner,
		publisher: publisher,
		logger:    logger.Named("intake-processor"),
	}
}

var _ IntakeProcessor = (*intakeProcessor)(nil)

func (p *intakeProcessor) Process(ctx context.Context, intakeID string) (*ProcessResult, error) {
	runID := uuid.NewString()
	ctx = llm.WithRunID(ctx, runID)
	logger := p.logger.With(zap.String("run_id", runID), zap.String("intake_id", intakeID))
	logger.Info("Processing intake")

	if p.resolver != nil {
		if _, err := p.resolver.Resolve(); err != nil {
			logger.Error("Tabular store unavailable", zap.Error(err))
			return nil, fmt.Errorf("failed to open tabular store: %w", err)
		}
	}

	intake, err := p.intakes.FindByIntakeID(ctx, intakeID)
	if err != nil {
		logger.Error("Failed to fetch intake", zap.Error(err))
		return nil, err
	}

	notes, err := p.notes.ListByIntake(ctx, intakeID, false)
	if err != nil {
		logger.Error("Failed to fetch status notes", zap.Error(err))
		return nil, err
	}
	logger.Debug("Fetched status notes", zap.Int("count", len(notes)))

	latest := LatestByCategory(notes)
	summary := p.refiner.Refine(ctx, p.composer.Compose(notes))

	if err := p.publisher.PublishReview(ctx, intakeID, summary); err != nil {
		return nil, err
	}

	// The card is already out; a failed status write only loses the pending marker.
	if err := p.intakes.UpdateSummary(ctx, intake.RecordID, &summary, models.SummaryStatusPendingReview); err != nil {
		logger.Warn("Failed to mark intake pending review", zap.Error(err))
	}

	logger.Info("Review card published", zap.Int("summary_length", len(summary)))
	return &ProcessResult{
		Status:           StatusPendingApproval,
		Summary:          summary,
		LatestByCategory: latest,
		RunID:            runID,
	}, nil
}
