package repositories

import (
	"context"
	"fmt"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/models"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

// IntakeRepository provides data access for submitted intake requests.
type IntakeRepository interface {
	FindByIntakeID(ctx context.Context, intakeID string) (*models.IntakeRecord, error)
	// UpdateSummary sets the review status and, when summary is non-nil, the
	// summary text. A nil summary leaves the stored text untouched.
	UpdateSummary(ctx context.Context, recordID string, summary *string, status models.SummaryStatus) error
}

type intakeRepository struct {
	store tabular.Store
}

// NewIntakeRepository creates a new IntakeRepository.
func NewIntakeRepository(store tabular.Store) IntakeRepository {
	return &intakeRepository{store: store}
}

var _ IntakeRepository = (*intakeRepository)(nil)

func (r *intakeRepository) FindByIntakeID(ctx context.Context, intakeID string) (*models.IntakeRecord, error) {
	if err := tabular.ValidateFilterValue(intakeID); err != nil {
		return nil, err
	}

	records, err := r.store.Select(ctx, TableIntakes, tabular.Query{
		Filter: tabular.Eq(FieldIntakeID, intakeID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch intake %s: %w", intakeID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no record found for Intake ID %s: %w", intakeID, apperrors.ErrNotFound)
	}

	rec := records[0]
	intake := &models.IntakeRecord{
		RecordID:            rec.ID,
		IntakeID:            intakeID,
		ProjectName:         stringField(rec, FieldProjectName),
		StatusSummaryStatus: models.SummaryStatus(stringField(rec, FieldStatusSummaryStatus)),
	}
	if v, ok := rec.Fields[FieldStatusSummary]; ok && v != nil {
		s := tabular.CellString(v)
		intake.StatusSummary = &s
	}
	return intake, nil
}

func (r *intakeRepository) UpdateSummary(ctx context.Context, recordID string, summary *string, status models.SummaryStatus) error {
	fields := tabular.Fields{FieldStatusSummaryStatus: string(status)}
	if summary != nil {
		fields[FieldStatusSummary] = *summary
	}
	if err := r.store.Update(ctx, TableIntakes, recordID, fields); err != nil {
		return fmt.Errorf("failed to update intake record %s: %w", recordID, err)
	}
	return nil
}
