// Package codec normalizes stored and submitted answer values into comparable
// canonical forms. Stored data comes from a spreadsheet and may carry legacy
// shapes; every coercion here degrades to the type's zero value instead of
// failing.
package codec

import (
	"strconv"
	"strings"

	"github.com/eztechnick/exam-portal/internal/models"
)

// Canonical is the comparison form for free-text answers: surrounding
// whitespace trimmed, lower-cased. Equality on this form is exact; there is
// no fuzzy matching.
func Canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AsString coerces a raw submitted value to its string form. Lists join with
// commas, which is how the legacy client stringified arrays before comparing
// categorical answers.
func AsString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			parts = append(parts, AsString(it))
		}
		return strings.Join(parts, ",")
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// CorrectList derives the canonical enumeration key from a stored answer key.
// List keys canonicalize element-wise (empties kept: they count toward the
// per-item value). String keys split on commas. Anything else is empty.
func CorrectList(key models.AnswerKey) []string {
	if key.IsList {
		out := make([]string, 0, len(key.List))
		for _, item := range key.List {
			out = append(out, Canonical(item))
		}
		return out
	}
	if strings.TrimSpace(key.Text) == "" {
		return nil
	}
	parts := strings.Split(key.Text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, Canonical(p))
	}
	return out
}

// SubmittedList derives the canonical enumeration submission. Lists
// canonicalize element-wise; strings split on commas or newlines. Empty
// items are dropped either way.
func SubmittedList(v any) []string {
	switch t := v.(type) {
	case []string:
		return canonicalNonEmpty(t)
	case []any:
		items := make([]string, 0, len(t))
		for _, it := range t {
			items = append(items, AsString(it))
		}
		return canonicalNonEmpty(items)
	case string:
		parts := strings.FieldsFunc(t, func(r rune) bool {
			return r == ',' || r == '\n'
		})
		return canonicalNonEmpty(parts)
	default:
		return nil
	}
}

// SubmittedMap derives the left-to-right mapping of a matching submission.
// Non-string values are dropped; they can never match a stored right side.
func SubmittedMap(v any) map[string]string {
	switch t := v.(type) {
	case map[string]string:
		return t
	case map[string]any:
		out := make(map[string]string, len(t))
		for left, right := range t {
			if s, ok := right.(string); ok {
				out[left] = s
			}
		}
		return out
	default:
		return nil
	}
}

func canonicalNonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		c := Canonical(item)
		if c == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}
