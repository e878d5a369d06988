package repositories

import (
	"context"
	"fmt"

	"github.com/Ezzyro/Airtable-Test/pkg/models"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

// IssueRepository provides read access to the issue sync table.
type IssueRepository interface {
	// ListAll returns every issue record, following pagination.
	ListAll(ctx context.Context) ([]models.IssueRecord, error)
}

type issueRepository struct {
	store tabular.Store
}

// NewIssueRepository creates a new IssueRepository.
func NewIssueRepository(store tabular.Store) IssueRepository {
	return &issueRepository{store: store}
}

var _ IssueRepository = (*issueRepository)(nil)

func (r *issueRepository) ListAll(ctx context.Context) ([]models.IssueRecord, error) {
	records, err := r.store.Select(ctx, TableIssues, tabular.Query{
		Fields:   []string{FieldIssueKey, FieldParent, FieldComments},
		AllPages: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues: %w", err)
	}

	issues := make([]models.IssueRecord, 0, len(records))
	for _, rec := range records {
		parent := rec.Fields[FieldParent]
		issue := models.IssueRecord{
			RecordID:   rec.ID,
			IssueKey:   stringField(rec, FieldIssueKey),
			ParentText: tabular.CellString(parent),
			Comments:   stringField(rec, FieldComments),
		}
		for _, link := range tabular.Links(parent) {
			issue.ParentRefs = append(issue.ParentRefs, models.ParentRef{ID: link.RecordID, Name: link.Name})
		}
		issues = append(issues, issue)
	}
	return issues, nil
}
