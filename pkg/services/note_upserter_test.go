package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/repositories"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

func newUpserter(store *countingStore) NoteUpserter {
	return NewNoteUpserter(
		repositories.NewStatusNoteRepository(store),
		DefaultCreationStrategies(repositories.NewProjectRepository(store)),
		zap.NewNop(),
	)
}

func payloadFor(date, blockers string) string {
	return `{"version":1,"todaysDate":"` + date + `","summary":{"Blockers":"` + blockers + `"}}`
}

func outcomeFor(t *testing.T, report *UpsertReport, category string) CategoryOutcome {
	t.Helper()
	for _, o := range report.Outcomes {
		if o.Category == category {
			return o
		}
	}
	t.Fatalf("no outcome for %s", category)
	return CategoryOutcome{}
}

func TestUpsert_SameDayUpdatesInsteadOfDuplicating(t *testing.T) {
	store := newCountingStore(day(17))
	store.Seed(repositories.TableProjects, tabular.Record{ID: "recProject", Fields: tabular.Fields{
		repositories.FieldIntakeID: "DATA-1",
	}})
	u := newUpserter(store)

	report, err := u.Upsert(context.Background(), "DATA-1|recA", payloadFor("2024-01-17", "API down"))
	require.NoError(t, err)
	first := outcomeFor(t, report, "Blocker / Challenge")
	assert.Equal(t, UpsertCreated, first.Result)
	assert.Equal(t, "project_reference", first.Strategy)

	report, err = u.Upsert(context.Background(), "DATA-1|recA", payloadFor("2024-01-17", "API still down"))
	require.NoError(t, err)
	second := outcomeFor(t, report, "Blocker / Challenge")
	assert.Equal(t, UpsertUpdated, second.Result)
	assert.Equal(t, first.RecordID, second.RecordID)

	rows := store.Records(repositories.TableStatusNotes)
	require.Len(t, rows, 1)
	assert.Equal(t, "API still down", rows[0].Fields[repositories.FieldNotes])
	assert.Equal(t, []tabular.LinkValue{{RecordID: "recProject", Name: "DATA-1"}}, rows[0].Fields[repositories.FieldIntakeID])
}

func TestUpsert_NewDayCreatesRowAndKeepsYesterday(t *testing.T) {
	store := newCountingStore(day(17))
	store.Seed(repositories.TableStatusNotes, tabular.Record{ID: "recYesterday", Fields: tabular.Fields{
		repositories.FieldIntakeID:     []any{map[string]any{"name": "DATA-1"}},
		repositories.FieldNoteCategory: "Blocker / Challenge",
		repositories.FieldNotes:        "API down",
		repositories.FieldAddedOn:      "2024-01-16",
	}})
	u := newUpserter(store)

	report, err := u.Upsert(context.Background(), "DATA-1", payloadFor("2024-01-17", "API flaky"))
	require.NoError(t, err)
	outcome := outcomeFor(t, report, "Blocker / Challenge")
	assert.Equal(t, UpsertCreated, outcome.Result)
	assert.Equal(t, "bare_name", outcome.Strategy, "no project row resolves")

	rows := store.Records(repositories.TableStatusNotes)
	require.Len(t, rows, 2)
	assert.Equal(t, "API down", rows[0].Fields[repositories.FieldNotes])
	assert.Equal(t, "API flaky", rows[1].Fields[repositories.FieldNotes])
}

func TestUpsert_FallsBackToBareNameWhenReferenceCreateFails(t *testing.T) {
	store := newCountingStore(day(17))
	store.Seed(repositories.TableProjects, tabular.Record{ID: "recProject", Fields: tabular.Fields{
		repositories.FieldIntakeID: "DATA-1",
	}})
	store.failCreate = func(fields tabular.Fields) error {
		links := tabular.Links(fields[repositories.FieldIntakeID])
		if len(links) == 1 && links[0].RecordID != "" {
			return errors.New("INVALID_VALUE_FOR_COLUMN")
		}
		return nil
	}
	u := newUpserter(store)

	report, err := u.Upsert(context.Background(), "DATA-1", payloadFor("2024-01-17", "API down"))
	require.NoError(t, err)
	outcome := outcomeFor(t, report, "Blocker / Challenge")
	assert.Equal(t, UpsertCreated, outcome.Result)
	assert.Equal(t, "bare_name", outcome.Strategy)
	assert.Equal(t, 2, store.creates)
}

func TestUpsert_CategoryFailureDoesNotStopOthers(t *testing.T) {
	store := newCountingStore(day(17))
	store.failCreate = func(fields tabular.Fields) error {
		if fields[repositories.FieldNoteCategory] == "Accomplishment" {
			return errors.New("boom")
		}
		return nil
	}
	u := newUpserter(store)

	raw := `{"version":1,"todaysDate":"2024-01-17","summary":{"Accomplishment":"Shipped v2","Planned Action":"Launch Jan 30"}}`
	report, err := u.Upsert(context.Background(), "DATA-1", raw)
	require.NoError(t, err)

	failed := outcomeFor(t, report, "Accomplishment")
	assert.Equal(t, UpsertFailed, failed.Result)
	assert.Contains(t, failed.Error, "bare_name")
	assert.Equal(t, UpsertCreated, outcomeFor(t, report, "Planned Action").Result)
	assert.Equal(t, UpsertSkipped, outcomeFor(t, report, "Dependency").Result)
	assert.Equal(t, 1, report.Count(UpsertFailed))
	assert.Equal(t, 3, report.Count(UpsertSkipped))
	assert.True(t, report.ProcessingComplete)
}

func TestUpsert_ReportCarriesNamedOutputs(t *testing.T) {
	store := newCountingStore(time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC))
	u := newUpserter(store)

	raw := `{"version":1,"todaysDate":"2024-01-17","summary":{"Accomplishment":"a","Dependency":"d","Blockers":"b","Internal Note":"i","Planned Action":"p"}}`
	report, err := u.Upsert(context.Background(), "DATA-1|x", raw)
	require.NoError(t, err)

	assert.Equal(t, "DATA-1", report.IntakeID)
	assert.Equal(t, "2024-01-17", report.TodaysDate)
	assert.Equal(t, "a", report.Accomplishment)
	assert.Equal(t, "d", report.Dependency)
	assert.Equal(t, "b", report.Blocker)
	assert.Equal(t, "i", report.InternalNote)
	assert.Equal(t, "p", report.PlannedActions)
	assert.Equal(t, 5, report.Count(UpsertCreated))
}

func TestUpsert_InvalidInput(t *testing.T) {
	u := newUpserter(newCountingStore(day(17)))

	_, err := u.Upsert(context.Background(), "", payloadFor("2024-01-17", "x"))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	_, err = u.Upsert(context.Background(), "DATA-1", "{")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestCreationStrategies(t *testing.T) {
	store := newCountingStore(day(17))
	projects := repositories.NewProjectRepository(store)

	strategies := DefaultCreationStrategies(projects)
	require.Len(t, strategies, 2)
	assert.Equal(t, "project_reference", strategies[0].Name())
	assert.Equal(t, "bare_name", strategies[1].Name())

	_, ok, err := strategies[0].Link(context.Background(), "DATA-1")
	require.NoError(t, err)
	assert.False(t, ok, "skipped without a project row")

	link, ok, err := strategies[1].Link(context.Background(), "DATA-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, tabular.LinkValue{Name: "DATA-1"}, link)
}
