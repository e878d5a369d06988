package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NoteCategory is the closed set of status note categories.
type NoteCategory string

const (
	CategoryAccomplishment NoteCategory = "accomplishment"
	CategoryPlannedAction  NoteCategory = "planned_action"
	CategoryDependency     NoteCategory = "dependency"
	CategoryBlocker        NoteCategory = "blocker"
	CategoryInternalNote   NoteCategory = "internal_note"
)

// AllNoteCategories lists the categories in the order they are processed.
var AllNoteCategories = []NoteCategory{
	CategoryAccomplishment,
	CategoryPlannedAction,
	CategoryDependency,
	CategoryBlocker,
	CategoryInternalNote,
}

// categoryLabels maps each category to the label stored in the "Note Category" column.
var categoryLabels = map[NoteCategory]string{
	CategoryAccomplishment: "Accomplishment",
	CategoryPlannedAction:  "Planned Action",
	CategoryDependency:     "Dependency",
	CategoryBlocker:        "Blocker / Challenge",
	CategoryInternalNote:   "Internal Note",
}

// categoryAliases holds alternate spellings seen in the store and in intake payloads.
var categoryAliases = map[string]NoteCategory{
	"blockers / challenges": CategoryBlocker,
	"blocker/challenge":     CategoryBlocker,
	"blockers":              CategoryBlocker,
	"planned actions":       CategoryPlannedAction,
	"accomplishments":       CategoryAccomplishment,
	"dependencies":          CategoryDependency,
	"internal notes":        CategoryInternalNote,
}

// foldLabel builds a Caser per call; Casers are not safe for concurrent use.
func foldLabel(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(s))
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

// Label returns the store label for the category.
func (c NoteCategory) Label() string {
	return categoryLabels[c]
}

// Valid reports whether c is one of the five recognized categories.
func (c NoteCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseNoteCategory maps a store label to its category. Matching ignores case,
// Unicode width variants and repeated whitespace.
func ParseNoteCategory(label string) (NoteCategory, bool) {
	folded := foldLabel(label)
	if folded == "" {
		return "", false
	}
	for c, l := range categoryLabels {
		if foldLabel(l) == folded {
			return c, true
		}
	}
	c, ok := categoryAliases[folded]
	return c, ok
}

// Note is a single timestamped status update.
type Note struct {
	RecordID string       `json:"record_id,omitempty"`
	Category NoteCategory `json:"category"`
	Text     string       `json:"text"`
	AddedOn  time.Time    `json:"added_on"`
	AddedBy  string       `json:"added_by,omitempty"`
}
