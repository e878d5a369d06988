package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/dates"
	"github.com/Ezzyro/Airtable-Test/pkg/models"
)

// IntakePayloadVersion is the current trigger payload version.
const IntakePayloadVersion = 1

// PayloadSummary holds the five free-text status fields of a payload.
type PayloadSummary struct {
	Accomplishment string `yaml:"Accomplishment" json:"Accomplishment"`
	Dependency     string `yaml:"Dependency" json:"Dependency"`
	Blockers       string `yaml:"Blockers" json:"Blockers"`
	InternalNote   string `yaml:"Internal Note" json:"Internal Note"`
	PlannedAction  string `yaml:"Planned Action" json:"Planned Action"`
}

// IntakePayload is the upserter's trigger payload:
//
//	{"version":1,"todaysDate":"2024-01-17","summary":{"Accomplishment":"...", ...}}
type IntakePayload struct {
	Version    int            `yaml:"version" json:"version"`
	TodaysDate string         `yaml:"todaysDate" json:"todaysDate"`
	Summary    PayloadSummary `yaml:"summary" json:"summary"`

	// Today is TodaysDate parsed.
	Today time.Time `yaml:"-" json:"-"`
}

// legacyIntakePayload is the pre-versioning producer format.
type legacyIntakePayload struct {
	TodaysDate string         `yaml:"Todays Date"`
	Summary    PayloadSummary `yaml:"summary"`
}

// Text returns the payload text for a category.
func (p *IntakePayload) Text(c models.NoteCategory) string {
	switch c {
	case models.CategoryAccomplishment:
		return p.Summary.Accomplishment
	case models.CategoryPlannedAction:
		return p.Summary.PlannedAction
	case models.CategoryDependency:
		return p.Summary.Dependency
	case models.CategoryBlocker:
		return p.Summary.Blockers
	case models.CategoryInternalNote:
		return p.Summary.InternalNote
	default:
		return ""
	}
}

var (
	legacySummaryOpen  = regexp.MustCompile(`"summary":\s*"\{`)
	legacySummaryClose = regexp.MustCompile(`\}"`)
)

// ParseIntakePayload decodes a versioned payload, falling back to the legacy
// producer format (a "Todays Date" key and the summary object serialized as a
// quoted string with raw newlines). Failures wrap apperrors.ErrInvalidInput.
func ParseIntakePayload(raw string) (*IntakePayload, error) {
	var p IntakePayload
	versionedErr := yaml.Unmarshal([]byte(raw), &p)
	if versionedErr == nil && p.Version != 0 && p.Version != IntakePayloadVersion {
		return nil, fmt.Errorf("unsupported payload version %d: %w", p.Version, apperrors.ErrInvalidInput)
	}
	if versionedErr != nil || p.TodaysDate == "" {
		legacy, err := parseLegacyPayload(raw)
		if err != nil {
			if versionedErr == nil {
				versionedErr = errors.New("missing todaysDate")
			}
			return nil, fmt.Errorf("payload is neither versioned (%v) nor legacy (%v): %w",
				versionedErr, err, apperrors.ErrInvalidInput)
		}
		p = IntakePayload{
			Version:    IntakePayloadVersion,
			TodaysDate: legacy.TodaysDate,
			Summary:    legacy.Summary,
		}
	}

	today, ok := dates.Parse(p.TodaysDate)
	if !ok {
		return nil, fmt.Errorf("todaysDate %q is not a date: %w", p.TodaysDate, apperrors.ErrInvalidInput)
	}
	p.Today = today
	p.Summary = PayloadSummary{
		Accomplishment: cleanPayloadText(p.Summary.Accomplishment),
		Dependency:     cleanPayloadText(p.Summary.Dependency),
		Blockers:       cleanPayloadText(p.Summary.Blockers),
		InternalNote:   cleanPayloadText(p.Summary.InternalNote),
		PlannedAction:  cleanPayloadText(p.Summary.PlannedAction),
	}
	return &p, nil
}

func parseLegacyPayload(raw string) (*legacyIntakePayload, error) {
	cleaned := legacySummaryOpen.ReplaceAllString(raw, `"summary": {`)
	cleaned = legacySummaryClose.ReplaceAllString(cleaned, `}`)
	cleaned = strings.TrimSpace(strings.ReplaceAll(cleaned, "\n", ""))

	var legacy legacyIntakePayload
	if err := yaml.Unmarshal([]byte(cleaned), &legacy); err != nil {
		return nil, err
	}
	if legacy.TodaysDate == "" {
		return nil, errors.New("missing \"Todays Date\"")
	}
	return &legacy, nil
}

func cleanPayloadText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// IntakeIDFromRecordRef extracts the intake id from a "<intakeId>|..." record reference.
func IntakeIDFromRecordRef(ref string) (string, error) {
	id, _, _ := strings.Cut(ref, "|")
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("record reference %q has no intake id: %w", ref, apperrors.ErrInvalidInput)
	}
	return id, nil
}
