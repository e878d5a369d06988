package services

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Ezzyro/Airtable-Test/pkg/config"
	"github.com/Ezzyro/Airtable-Test/pkg/dates"
	"github.com/Ezzyro/Airtable-Test/pkg/models"
)

// Digest text used when there is nothing to summarize.
const (
	NoValidUpdates  = "No valid status updates available."
	NoRecentUpdates = "No recent updates available."
)

// Per-section line caps.
const (
	MaxRecentUpdates = 3
	MaxBlockers      = 2
	MaxNextSteps     = 2
)

// NextStepWindowDays bounds how old a planned action may be, relative to the
// newest note, for MentionedDateRule to consider it.
const NextStepWindowDays = 7

// NextStepRule decides which planned actions appear in the digest's last section.
type NextStepRule interface {
	Heading() string
	// Qualifies reports whether a planned action belongs in the section.
	// latest is the AddedOn of the newest valid note.
	Qualifies(note models.Note, latest time.Time) bool
}

// MentionedDateRule keeps recent planned actions that mention a calendar date
// after the newest note, or an ETA.
type MentionedDateRule struct{}

func (MentionedDateRule) Heading() string { return "Next Steps" }

func (MentionedDateRule) Qualifies(note models.Note, latest time.Time) bool {
	if !dates.WithinLastDays(note.AddedOn, latest, NextStepWindowDays) {
		return false
	}
	if _, ok := dates.ExtractFutureDate(note.Text, latest); ok {
		return true
	}
	return strings.Contains(strings.ToLower(note.Text), "eta")
}

// FutureAddedOnRule keeps planned actions dated after the processing time.
type FutureAddedOnRule struct {
	Now func() time.Time
}

func (FutureAddedOnRule) Heading() string { return "Planned Actions" }

func (r FutureAddedOnRule) Qualifies(note models.Note, _ time.Time) bool {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	return note.AddedOn.After(now())
}

// NextStepRuleFor returns the rule configured by summary.next_step_rule.
func NextStepRuleFor(name string, now func() time.Time) (NextStepRule, error) {
	switch name {
	case "", config.NextStepMentionedDate:
		return MentionedDateRule{}, nil
	case config.NextStepFutureAddedOn:
		return FutureAddedOnRule{Now: now}, nil
	default:
		return nil, fmt.Errorf("unknown next step rule %q", name)
	}
}

// Composer renders notes into the plain-text digest.
type Composer struct {
	rule NextStepRule
}

// NewComposer creates a Composer. A nil rule uses MentionedDateRule.
func NewComposer(rule NextStepRule) *Composer {
	if rule == nil {
		rule = MentionedDateRule{}
	}
	return &Composer{rule: rule}
}

// Compose builds the digest. Notes without an AddedOn are discarded; the rest
// are ordered newest first, keeping input order on ties.
func (c *Composer) Compose(notes []models.Note) string {
	valid := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if !n.AddedOn.IsZero() {
			valid = append(valid, n)
		}
	}
	if len(valid) == 0 {
		return NoValidUpdates
	}
	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].AddedOn.After(valid[j].AddedOn)
	})
	latest := valid[0].AddedOn

	var recent, blockers, nextSteps []models.Note
	for _, n := range valid {
		switch n.Category {
		case models.CategoryInternalNote, models.CategoryAccomplishment:
			recent = append(recent, n)
		case models.CategoryBlocker:
			blockers = append(blockers, n)
		case models.CategoryPlannedAction:
			if c.rule.Qualifies(n, latest) {
				nextSteps = append(nextSteps, n)
			}
		}
	}

	var sections []string
	for _, s := range []struct {
		heading string
		notes   []models.Note
		limit   int
	}{
		{"Recent Updates", recent, MaxRecentUpdates},
		{"Current Blockers", blockers, MaxBlockers},
		{c.rule.Heading(), nextSteps, MaxNextSteps},
	} {
		if len(s.notes) > 0 {
			sections = append(sections, renderSection(s.heading, s.notes, s.limit))
		}
	}

	body := NoRecentUpdates
	if len(sections) > 0 {
		body = strings.Join(sections, "\n")
	}
	return fmt.Sprintf("Status Summary (as of %s)\n\n%s", dates.Format(latest), body)
}

func renderSection(heading string, notes []models.Note, limit int) string {
	if len(notes) > limit {
		notes = notes[:limit]
	}
	var sb strings.Builder
	sb.WriteString(heading)
	sb.WriteString(":\n")
	for _, n := range notes {
		fmt.Fprintf(&sb, "* %s: %s\n", dates.Format(n.AddedOn), n.Text)
	}
	return sb.String()
}
