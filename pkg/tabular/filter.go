package tabular

import (
	"fmt"
	"strings"
	"unicode"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/jsonutil"
)

// Filter is an exact-equality predicate on one column. For linked-record
// columns it matches when any linked record's display name equals Value.
type Filter struct {
	Field string
	Value string
}

// Eq builds a Filter.
func Eq(field, value string) *Filter {
	return &Filter{Field: field, Value: value}
}

// Formula renders the filter as an Airtable formula, e.g. {Intake ID} = 'DATA-1'.
func (f *Filter) Formula() string {
	value := strings.ReplaceAll(f.Value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return fmt.Sprintf("{%s} = '%s'", f.Field, value)
}

// Matches reports whether a row's fields satisfy the filter.
func (f *Filter) Matches(fields Fields) bool {
	if f == nil {
		return true
	}
	v, ok := fields[f.Field]
	if !ok {
		return f.Value == ""
	}
	for _, link := range Links(v) {
		if link.Name == f.Value {
			return true
		}
	}
	return CellString(v) == f.Value
}

// ValidateFilterValue rejects identifiers that cannot safely be embedded in a
// filter expression: empty values, control characters, and quoted values that
// libinjection recognizes as an injection attempt. Other quotes are escaped by
// Formula.
func ValidateFilterValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("identifier is empty: %w", apperrors.ErrInvalidInput)
	}
	for _, r := range value {
		if unicode.IsControl(r) {
			return fmt.Errorf("identifier contains control characters: %w", apperrors.ErrInvalidInput)
		}
	}
	if !strings.ContainsAny(value, `'"`) {
		return nil
	}
	if isSQLi, fingerprint := libinjection.IsSQLi(value); isSQLi {
		return &InjectionError{Value: value, Fingerprint: fingerprint}
	}
	return nil
}

// InjectionError is returned for identifiers libinjection flags. It matches
// apperrors.ErrInvalidInput.
type InjectionError struct {
	Value       string
	Fingerprint string
}

func (e *InjectionError) Error() string {
	return fmt.Sprintf("identifier rejected (pattern %s)", e.Fingerprint)
}

func (e *InjectionError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// CellString renders a cell the way the store displays it.
func CellString(v any) string {
	switch val := v.(type) {
	case LinkValue:
		if val.Name != "" {
			return val.Name
		}
		return val.RecordID
	case []LinkValue:
		parts := make([]string, 0, len(val))
		for _, l := range val {
			parts = append(parts, CellString(l))
		}
		return strings.Join(parts, ", ")
	default:
		return jsonutil.CellText(v)
	}
}

// Links interprets a cell as linked records. Plain strings and numbers are not links.
func Links(v any) []LinkValue {
	switch val := v.(type) {
	case LinkValue:
		return []LinkValue{val}
	case []LinkValue:
		return val
	case map[string]any:
		l := LinkValue{RecordID: jsonutil.ObjectField(val, "id"), Name: jsonutil.ObjectField(val, "name")}
		if l.RecordID == "" && l.Name == "" {
			return nil
		}
		return []LinkValue{l}
	case []any:
		var links []LinkValue
		for _, item := range val {
			links = append(links, Links(item)...)
		}
		return links
	default:
		return nil
	}
}
