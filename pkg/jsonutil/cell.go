// Package jsonutil renders loosely typed JSON cell values from the tabular store.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// objectLabelKeys are tried in order when an object cell is shown as text.
// Collaborators carry a name, linked records an id.
var objectLabelKeys = []string{"name", "id", "email"}

// CellText renders a decoded cell the way the spreadsheet shows it. Numbers
// drop trailing zeros, objects show their label, lists join with ", " and nil
// is empty.
func CellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case map[string]any:
		for _, key := range objectLabelKeys {
			if s := ObjectField(val, key); s != "" {
				return s
			}
		}
		raw, _ := json.Marshal(val)
		return string(raw)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := CellText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(val, ", ")
	default:
		return fmt.Sprint(val)
	}
}

// ObjectField returns the string stored under key when v is an object.
func ObjectField(v any, key string) string {
	obj, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	s, _ := obj[key].(string)
	return s
}
