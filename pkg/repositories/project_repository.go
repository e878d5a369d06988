package repositories

import (
	"context"
	"fmt"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/models"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

// ProjectRepository provides data access for project rows, the link targets of status notes.
type ProjectRepository interface {
	FindByIntakeID(ctx context.Context, intakeID string) (*models.ProjectRecord, error)
}

type projectRepository struct {
	store tabular.Store
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(store tabular.Store) ProjectRepository {
	return &projectRepository{store: store}
}

var _ ProjectRepository = (*projectRepository)(nil)

func (r *projectRepository) FindByIntakeID(ctx context.Context, intakeID string) (*models.ProjectRecord, error) {
	if err := tabular.ValidateFilterValue(intakeID); err != nil {
		return nil, err
	}

	records, err := r.store.Select(ctx, TableProjects, tabular.Query{
		Filter: tabular.Eq(FieldIntakeID, intakeID),
		Fields: []string{FieldIntakeID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project for %s: %w", intakeID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no project with Intake ID %s: %w", intakeID, apperrors.ErrNotFound)
	}
	return &models.ProjectRecord{RecordID: records[0].ID, IntakeID: intakeID}, nil
}
