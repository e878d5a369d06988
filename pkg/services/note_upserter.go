package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/dates"
	"github.com/Ezzyro/Airtable-Test/pkg/models"
	"github.com/Ezzyro/Airtable-Test/pkg/repositories"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

// CreationStrategy produces the intake link for a new status note row.
// Strategies are tried in order until a create succeeds.
type CreationStrategy interface {
	Name() string
	// Link returns the link value to write, or false when the strategy does
	// not apply to this intake.
	Link(ctx context.Context, intakeID string) (tabular.LinkValue, bool, error)
}

// ProjectReferenceStrategy links by the record ID of the intake's project row.
type ProjectReferenceStrategy struct {
	Projects repositories.ProjectRepository
}

func (ProjectReferenceStrategy) Name() string { return "project_reference" }

func (s ProjectReferenceStrategy) Link(ctx context.Context, intakeID string) (tabular.LinkValue, bool, error) {
	project, err := s.Projects.FindByIntakeID(ctx, intakeID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return tabular.LinkValue{}, false, nil
	}
	if err != nil {
		return tabular.LinkValue{}, false, err
	}
	return tabular.LinkValue{RecordID: project.RecordID, Name: intakeID}, true, nil
}

// BareNameStrategy links by the intake id alone and lets the store resolve it.
type BareNameStrategy struct{}

func (BareNameStrategy) Name() string { return "bare_name" }

func (BareNameStrategy) Link(_ context.Context, intakeID string) (tabular.LinkValue, bool, error) {
	return tabular.LinkValue{Name: intakeID}, true, nil
}

// DefaultCreationStrategies tries the project reference first, then the bare name.
func DefaultCreationStrategies(projects repositories.ProjectRepository) []CreationStrategy {
	return []CreationStrategy{ProjectReferenceStrategy{Projects: projects}, BareNameStrategy{}}
}

// Per-category upsert results.
const (
	UpsertSkipped = "skipped"
	UpsertUpdated = "updated"
	UpsertCreated = "created"
	UpsertFailed  = "failed"
)

// CategoryOutcome records what happened to one category.
type CategoryOutcome struct {
	Category string `json:"category"`
	Result   string `json:"result"`
	Strategy string `json:"strategy,omitempty"`
	RecordID string `json:"recordId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// UpsertReport carries the named outputs consumed by the invoking automation.
type UpsertReport struct {
	IntakeID           string            `json:"IntakeID"`
	TodaysDate         string            `json:"todaysDate"`
	Accomplishment     string            `json:"accomplishment"`
	Dependency         string            `json:"dependency"`
	Blocker            string            `json:"blocker"`
	InternalNote       string            `json:"internalNote"`
	PlannedActions     string            `json:"plannedActions"`
	ProcessingComplete bool              `json:"processingComplete"`
	Outcomes           []CategoryOutcome `json:"outcomes"`
}

// Count returns how many categories ended with result.
func (r *UpsertReport) Count(result string) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Result == result {
			n++
		}
	}
	return n
}

// NoteUpserter writes one intake's daily status fields as status note rows,
// keeping at most one row per category per day.
type NoteUpserter interface {
	Upsert(ctx context.Context, recordRef, rawPayload string) (*UpsertReport, error)
}

type noteUpserter struct {
	notes      repositories.StatusNoteRepository
	strategies []CreationStrategy
	logger     *zap.Logger
}

// NewNoteUpserter creates a NoteUpserter with the given creation strategies.
func NewNoteUpserter(notes repositories.StatusNoteRepository, strategies []CreationStrategy, logger *zap.Logger) NoteUpserter {
	return &noteUpserter{
		notes:      notes,
		strategies: strategies,
		logger:     logger.Named("note-upserter"),
	}
}

var _ NoteUpserter = (*noteUpserter)(nil)

func (u *noteUpserter) Upsert(ctx context.Context, recordRef, rawPayload string) (*UpsertReport, error) {
	intakeID, err := IntakeIDFromRecordRef(recordRef)
	if err != nil {
		return nil, err
	}
	payload, err := ParseIntakePayload(rawPayload)
	if err != nil {
		return nil, err
	}
	logger := u.logger.With(zap.String("intake_id", intakeID))
	logger.Info("Working with intake", zap.String("todays_date", payload.TodaysDate))

	existing, err := u.notes.ListByIntake(ctx, intakeID, true)
	if err != nil {
		return nil, err
	}
	latest := LatestByCategory(existing)
	logger.Debug("Found existing status notes", zap.Int("count", len(existing)))

	report := &UpsertReport{
		IntakeID:       intakeID,
		TodaysDate:     payload.TodaysDate,
		Accomplishment: payload.Summary.Accomplishment,
		Dependency:     payload.Summary.Dependency,
		Blocker:        payload.Summary.Blockers,
		InternalNote:   payload.Summary.InternalNote,
		PlannedActions: payload.Summary.PlannedAction,
	}

	for _, category := range models.AllNoteCategories {
		outcome := u.upsertCategory(ctx, intakeID, category, payload, latest)
		report.Outcomes = append(report.Outcomes, outcome)

		fields := []zap.Field{zap.String("category", outcome.Category), zap.String("result", outcome.Result)}
		if outcome.Strategy != "" {
			fields = append(fields, zap.String("strategy", outcome.Strategy))
		}
		if outcome.Result == UpsertFailed {
			logger.Warn("Status note upsert failed", append(fields, zap.String("error", outcome.Error))...)
		} else {
			logger.Info("Status note processed", fields...)
		}
	}

	report.ProcessingComplete = true
	return report, nil
}

func (u *noteUpserter) upsertCategory(
	ctx context.Context,
	intakeID string,
	category models.NoteCategory,
	payload *IntakePayload,
	latest map[models.NoteCategory]models.Note,
) CategoryOutcome {
	outcome := CategoryOutcome{Category: category.Label()}
	text := payload.Text(category)
	if text == "" {
		outcome.Result = UpsertSkipped
		return outcome
	}

	if current, ok := latest[category]; ok && dates.SameDay(payload.Today, current.AddedOn) {
		if err := u.notes.UpdateText(ctx, current.RecordID, text); err != nil {
			outcome.Result, outcome.Error = UpsertFailed, err.Error()
			return outcome
		}
		outcome.Result, outcome.RecordID = UpsertUpdated, current.RecordID
		return outcome
	}

	var lastErr error
	for _, strategy := range u.strategies {
		link, ok, err := strategy.Link(ctx, intakeID)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", strategy.Name(), err)
			continue
		}
		if !ok {
			continue
		}
		note, err := u.notes.Create(ctx, repositories.NewStatusNote{Link: link, Category: category, Text: text})
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", strategy.Name(), err)
			u.logger.Debug("Creation strategy failed",
				zap.String("category", category.Label()),
				zap.String("strategy", strategy.Name()),
				zap.Error(err))
			continue
		}
		outcome.Result, outcome.Strategy, outcome.RecordID = UpsertCreated, strategy.Name(), note.RecordID
		return outcome
	}

	if lastErr == nil {
		lastErr = errors.New("no creation strategy applied")
	}
	outcome.Result, outcome.Error = UpsertFailed, lastErr.Error()
	return outcome
}
