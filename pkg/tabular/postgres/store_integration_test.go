//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
	"github.com/Ezzyro/Airtable-Test/pkg/testhelpers"
)

func newTestStore(t *testing.T, tables ...string) *Store {
	t.Helper()
	pg := testhelpers.SharedPostgres(t)
	store := New(pg.DB.Pool, zap.NewNop())
	for _, table := range tables {
		require.NoError(t, store.Truncate(context.Background(), table))
	}
	return store
}

func TestStore_CreateSelectUpdate(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "Submitted Requests")

	created, err := store.Create(ctx, "Submitted Requests", tabular.Fields{
		"Intake ID":    "DATA COE - 10035",
		"Project Name": "Apollo",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedTime.IsZero())

	_, err = store.Create(ctx, "Submitted Requests", tabular.Fields{"Intake ID": "OTHER"})
	require.NoError(t, err)

	records, err := store.Select(ctx, "Submitted Requests", tabular.Query{
		Filter: tabular.Eq("Intake ID", "DATA COE - 10035"),
		Fields: []string{"Project Name"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, created.ID, records[0].ID)
	assert.Equal(t, tabular.Fields{"Project Name": "Apollo"}, records[0].Fields)

	require.NoError(t, store.Update(ctx, "Submitted Requests", created.ID, tabular.Fields{
		"Status Summary":        "All good",
		"Status Summary Status": "Approved",
	}))
	records, err = store.Select(ctx, "Submitted Requests", tabular.Query{Filter: tabular.Eq("Intake ID", "DATA COE - 10035")})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Approved", records[0].Fields["Status Summary Status"])
	assert.Equal(t, "Apollo", records[0].Fields["Project Name"], "update merges fields")
}

func TestStore_UpdateMissingRecord(t *testing.T) {
	store := newTestStore(t, "Submitted Requests")
	err := store.Update(context.Background(), "Submitted Requests", "recmissing", tabular.Fields{"x": 1})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestStore_FilterMatchesLinkedRecordName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "Status Notes")

	_, err := store.Create(ctx, "Status Notes", tabular.Fields{
		"Intake ID":     []tabular.LinkValue{{RecordID: "recProject", Name: "I-1"}},
		"Note Category": "Accomplishment",
	})
	require.NoError(t, err)
	_, err = store.Create(ctx, "Status Notes", tabular.Fields{
		"Intake ID":     tabular.LinkValue{Name: "I-2"},
		"Note Category": "Accomplishment",
	})
	require.NoError(t, err)

	records, err := store.Select(ctx, "Status Notes", tabular.Query{Filter: tabular.Eq("Intake ID", "I-1")})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []tabular.LinkValue{{RecordID: "recProject", Name: "I-1"}}, tabular.Links(records[0].Fields["Intake ID"]))

	records, err = store.Select(ctx, "Status Notes", tabular.Query{Filter: tabular.Eq("Intake ID", "I-2")})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStore_FirstPageUnlessAllPages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, "JIRA Sync")

	for i := 0; i < PageSize+5; i++ {
		_, err := store.Create(ctx, "JIRA Sync", tabular.Fields{"Issue Key": i})
		require.NoError(t, err)
	}

	first, err := store.Select(ctx, "JIRA Sync", tabular.Query{})
	require.NoError(t, err)
	assert.Len(t, first, PageSize)

	all, err := store.Select(ctx, "JIRA Sync", tabular.Query{AllPages: true})
	require.NoError(t, err)
	assert.Len(t, all, PageSize+5)
}
