// Package repositories maps the automation's entities onto the tables and
// columns of the tabular store. Table and column names live only in this file.
package repositories

import (
	"time"

	"github.com/Ezzyro/Airtable-Test/pkg/dates"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

// Tables.
const (
	TableIntakes     = "Submitted Requests"
	TableStatusNotes = "Status Notes"
	TableProjects    = "Projects"
	TableIssues      = "JIRA Sync"
)

// Columns.
const (
	FieldIntakeID            = "Intake ID"
	FieldProjectName         = "Project Name"
	FieldStatusSummary       = "Status Summary"
	FieldStatusSummaryStatus = "Status Summary Status"

	FieldNoteCategory = "Note Category"
	FieldNotes        = "Notes"
	FieldAddedOn      = "Added On"
	FieldAddedBy      = "Added By"

	FieldIssueKey = "Issue Key"
	FieldParent   = "Parent"
	FieldComments = "Comments"
)

func stringField(rec tabular.Record, name string) string {
	return tabular.CellString(rec.Fields[name])
}

// addedOn reads the "Added On" column, falling back to the row's creation time
// when the column is empty. Rows where neither is usable report false.
func addedOn(rec tabular.Record) (time.Time, bool) {
	if raw := stringField(rec, FieldAddedOn); raw != "" {
		return dates.Parse(raw)
	}
	if !rec.CreatedTime.IsZero() {
		return rec.CreatedTime, true
	}
	return time.Time{}, false
}
