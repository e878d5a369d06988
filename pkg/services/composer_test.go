package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ezzyro/Airtable-Test/pkg/config"
	"github.com/Ezzyro/Airtable-Test/pkg/models"
)

func TestCompose_NoValidNotes(t *testing.T) {
	c := NewComposer(nil)

	assert.Equal(t, NoValidUpdates, c.Compose(nil))
	assert.Equal(t, NoValidUpdates, c.Compose([]models.Note{
		note(models.CategoryAccomplishment, "undated", time.Time{}),
	}))
}

func TestCompose_NoSectionContent(t *testing.T) {
	c := NewComposer(nil)

	got := c.Compose([]models.Note{note(models.CategoryDependency, "vendor contract", day(17))})

	assert.Equal(t, "Status Summary (as of Jan 17)\n\n"+NoRecentUpdates, got)
}

func TestCompose_RecentUpdatesAndBlockers(t *testing.T) {
	c := NewComposer(nil)

	got := c.Compose([]models.Note{
		note(models.CategoryAccomplishment, "Shipped v2", day(17)),
		note(models.CategoryBlocker, "API down", day(17)),
	})

	assert.Equal(t, "Status Summary (as of Jan 17)\n\n"+
		"Recent Updates:\n* Jan 17: Shipped v2\n\n"+
		"Current Blockers:\n* Jan 17: API down\n", got)
}

func TestCompose_RecentUpdatesMergeInternalNotesNewestFirst(t *testing.T) {
	c := NewComposer(nil)

	got := c.Compose([]models.Note{
		note(models.CategoryAccomplishment, "a1", day(10)),
		note(models.CategoryInternalNote, "i1", day(12)),
		note(models.CategoryAccomplishment, "a2", day(14)),
	})

	assert.Contains(t, got, "Recent Updates:\n* Jan 14: a2\n* Jan 12: i1\n* Jan 10: a1\n")
}

func TestCompose_SectionCaps(t *testing.T) {
	c := NewComposer(nil)

	var notes []models.Note
	for i := 1; i <= 10; i++ {
		notes = append(notes,
			note(models.CategoryAccomplishment, fmt.Sprintf("done %d", i), day(i+10)),
			note(models.CategoryInternalNote, fmt.Sprintf("internal %d", i), day(i+10)),
			note(models.CategoryBlocker, fmt.Sprintf("blocked %d", i), day(i+10)),
			note(models.CategoryPlannedAction, fmt.Sprintf("ETA for step %d", i), day(i+10)),
		)
	}

	got := c.Compose(notes)

	assert.Equal(t, 3, countSectionLines(got, "Recent Updates:"))
	assert.Equal(t, 2, countSectionLines(got, "Current Blockers:"))
	assert.Equal(t, 2, countSectionLines(got, "Next Steps:"))
}

func TestCompose_Idempotent(t *testing.T) {
	c := NewComposer(nil)
	notes := []models.Note{
		note(models.CategoryAccomplishment, "Shipped v2", day(17)),
		note(models.CategoryPlannedAction, "Launch Jan 30", day(16)),
		note(models.CategoryBlocker, "API down", day(15)),
	}

	assert.Equal(t, c.Compose(notes), c.Compose(notes))
}

func TestMentionedDateRule(t *testing.T) {
	latest := day(17)
	rule := MentionedDateRule{}

	tests := []struct {
		name string
		note models.Note
		want bool
	}{
		{"future date", note(models.CategoryPlannedAction, "Go-live Jan 24", day(15)), true},
		{"future date next year", note(models.CategoryPlannedAction, "Review March 3rd, 2025", day(15)), true},
		{"past date", note(models.CategoryPlannedAction, "Kickoff Jan 5", day(15)), false},
		{"eta keyword", note(models.CategoryPlannedAction, "ETA pending vendor", day(15)), true},
		{"too old", note(models.CategoryPlannedAction, "Go-live Jan 24", day(5)), false},
		{"no date", note(models.CategoryPlannedAction, "Keep going", day(16)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rule.Qualifies(tt.note, latest))
		})
	}
	assert.Equal(t, "Next Steps", rule.Heading())
}

func TestFutureAddedOnRule(t *testing.T) {
	rule := FutureAddedOnRule{Now: func() time.Time { return day(17) }}

	assert.True(t, rule.Qualifies(note(models.CategoryPlannedAction, "x", day(18)), day(17)))
	assert.False(t, rule.Qualifies(note(models.CategoryPlannedAction, "x", day(17)), day(17)))

	got := NewComposer(rule).Compose([]models.Note{
		note(models.CategoryPlannedAction, "scheduled", day(20)),
		note(models.CategoryPlannedAction, "past", day(10)),
	})
	assert.Contains(t, got, "Planned Actions:\n* Jan 20: scheduled\n")
	assert.NotContains(t, got, "past")
}

func TestNextStepRuleFor(t *testing.T) {
	rule, err := NextStepRuleFor(config.NextStepMentionedDate, nil)
	require.NoError(t, err)
	assert.IsType(t, MentionedDateRule{}, rule)

	rule, err = NextStepRuleFor(config.NextStepFutureAddedOn, time.Now)
	require.NoError(t, err)
	assert.IsType(t, FutureAddedOnRule{}, rule)

	_, err = NextStepRuleFor("random", nil)
	assert.Error(t, err)
}

// countSectionLines counts the bullet lines following heading.
func countSectionLines(digest, heading string) int {
	_, after, found := strings.Cut(digest, heading+"\n")
	if !found {
		return 0
	}
	n := 0
	for _, line := range strings.Split(after, "\n") {
		if !strings.HasPrefix(line, "* ") {
			break
		}
		n++
	}
	return n
}
