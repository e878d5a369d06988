package repositories

import (
	"context"
	"fmt"

	"github.com/Ezzyro/Airtable-Test/pkg/models"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

// NewStatusNote is the input for creating a status note row.
type NewStatusNote struct {
	// Link is written to the "Intake ID" column: by project record ID when set,
	// by intake name otherwise.
	Link     tabular.LinkValue
	Category models.NoteCategory
	Text     string
}

// StatusNoteRepository provides data access for status note rows.
type StatusNoteRepository interface {
	// ListByIntake returns the notes linked to an intake, in store order.
	// Unrecognized categories are kept with an empty Category. Notes whose
	// "Added On" cannot be parsed carry a zero AddedOn.
	ListByIntake(ctx context.Context, intakeID string, allPages bool) ([]models.Note, error)
	Create(ctx context.Context, note NewStatusNote) (*models.Note, error)
	UpdateText(ctx context.Context, recordID, text string) error
}

type statusNoteRepository struct {
	store tabular.Store
}

// NewStatusNoteRepository creates a new StatusNoteRepository.
func NewStatusNoteRepository(store tabular.Store) StatusNoteRepository {
	return &statusNoteRepository{store: store}
}

var _ StatusNoteRepository = (*statusNoteRepository)(nil)

var noteFields = []string{FieldIntakeID, FieldNoteCategory, FieldNotes, FieldAddedOn, FieldAddedBy}

func (r *statusNoteRepository) ListByIntake(ctx context.Context, intakeID string, allPages bool) ([]models.Note, error) {
	if err := tabular.ValidateFilterValue(intakeID); err != nil {
		return nil, err
	}

	records, err := r.store.Select(ctx, TableStatusNotes, tabular.Query{
		Filter:   tabular.Eq(FieldIntakeID, intakeID),
		Fields:   noteFields,
		AllPages: allPages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch status notes for %s: %w", intakeID, err)
	}

	notes := make([]models.Note, 0, len(records))
	for _, rec := range records {
		notes = append(notes, noteFromRecord(rec))
	}
	return notes, nil
}

func (r *statusNoteRepository) Create(ctx context.Context, note NewStatusNote) (*models.Note, error) {
	rec, err := r.store.Create(ctx, TableStatusNotes, tabular.Fields{
		FieldIntakeID:     []tabular.LinkValue{note.Link},
		FieldNoteCategory: note.Category.Label(),
		FieldNotes:        note.Text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s note: %w", note.Category.Label(), err)
	}
	created := noteFromRecord(*rec)
	return &created, nil
}

func (r *statusNoteRepository) UpdateText(ctx context.Context, recordID, text string) error {
	if err := r.store.Update(ctx, TableStatusNotes, recordID, tabular.Fields{FieldNotes: text}); err != nil {
		return fmt.Errorf("failed to update status note %s: %w", recordID, err)
	}
	return nil
}

func noteFromRecord(rec tabular.Record) models.Note {
	label := stringField(rec, FieldNoteCategory)
	category, _ := models.ParseNoteCategory(label)
	when, _ := addedOn(rec)
	return models.Note{
		RecordID: rec.ID,
		Category: category,
		Text:     stringField(rec, FieldNotes),
		AddedOn:  when,
		AddedBy:  stringField(rec, FieldAddedBy),
	}
}
