// Package dates provides the date parsing, formatting and extraction helpers used
// when composing status digests. None of these functions return errors; failures
// are reported through sentinel values.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// InvalidDate is rendered in place of a date that could not be parsed.
const InvalidDate = "Invalid Date"

var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Parse parses the date formats produced by the tabular store and by people
// typing dates into payloads. The second return value is false when nothing matched.
func Parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Format renders t as a short month and day, e.g. "Jan 17".
func Format(t time.Time) string {
	if t.IsZero() {
		return InvalidDate
	}
	return t.Format("Jan 2")
}

// FormatString parses s and renders it with Format.
func FormatString(s string) string {
	t, ok := Parse(s)
	if !ok {
		return InvalidDate
	}
	return Format(t)
}

// WithinLastDays reports whether t falls on or after ref minus the given number of days.
func WithinLastDays(t, ref time.Time, days int) bool {
	if t.IsZero() {
		return false
	}
	return !t.Before(ref.AddDate(0, 0, -days))
}

// SameDay reports whether a and b fall on the same calendar day in a's location.
func SameDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var mentionedDatePattern = regexp.MustCompile(
	`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// ExtractFutureDate scans text for a month-name and day mention and returns the
// first one that falls strictly after ref's calendar day. A mention without a
// year is assumed to be in ref's year.
func ExtractFutureDate(text string, ref time.Time) (time.Time, bool) {
	if text == "" || ref.IsZero() {
		return time.Time{}, false
	}
	refDay := StartOfDay(ref)

	for _, m := range mentionedDatePattern.FindAllStringSubmatch(text, -1) {
		month, ok := monthsByPrefix[strings.ToLower(m[1])[:3]]
		if !ok {
			continue
		}
		day, err := strconv.Atoi(m[2])
		if err != nil || day < 1 || day > 31 {
			continue
		}
		year := ref.Year()
		if m[3] != "" {
			if year, err = strconv.Atoi(m[3]); err != nil {
				continue
			}
		}

		candidate := time.Date(year, month, day, 0, 0, 0, 0, ref.Location())
		// time.Date normalizes Feb 30 into March; reject those.
		if candidate.Day() != day || candidate.Month() != month {
			continue
		}
		if candidate.After(refDay) {
			return candidate, true
		}
	}
	return time.Time{}, false
}
