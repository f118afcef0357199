package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type QuestionType string

// Question type labels match the spreadsheet backend exactly; they are stored
// verbatim in the Questions sheet and must round-trip unchanged.
const (
	TrueFalse      QuestionType = "True or False"
	MultipleChoice QuestionType = "Multiple Choice"
	Identification QuestionType = "Identification"
	Enumeration    QuestionType = "Enumeration"
	Matching       QuestionType = "Matching Type"
	Essay          QuestionType = "Essay"
)

func AllQuestionTypes() []QuestionType {
	return []QuestionType{TrueFalse, MultipleChoice, Identification, Enumeration, Matching, Essay}
}

func (t QuestionType) Valid() bool {
	for _, vt := range AllQuestionTypes() {
		if t == vt {
			return true
		}
	}
	return false
}

// MatchingPair is one left/right pair of a matching question. Left values are
// unique within a question and serve as the lookup key when scoring.
type MatchingPair struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

type Question struct {
	ID            string         `json:"id"`
	Subject       string         `json:"subject" validate:"required"`
	Type          QuestionType   `json:"type" validate:"required,question_type"`
	QuestionText  string         `json:"questionText" validate:"required"`
	ImageURL      string         `json:"imageUrl,omitempty"`
	Options       []string       `json:"options,omitempty"`
	MatchingPairs []MatchingPair `json:"matchingPairs,omitempty"`
	CorrectAnswer AnswerKey      `json:"correctAnswer"`
	Points        Points         `json:"points"`
}

type Subject struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	QuestionCount int    `json:"questionCount"`
}

// Points tolerates the numeric slop of spreadsheet storage: the cell may hold
// a number, a numeric string, or garbage. Garbage scores as 0.
type Points float64

func (p *Points) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*p = Points(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*p = 0
			return nil
		}
		*p = Points(f)
		return nil
	}
	*p = 0
	return nil
}

// Value returns the point worth, clamped to non-negative.
func (p Points) Value() float64 {
	if p < 0 {
		return 0
	}
	return float64(p)
}

// AnswerKey is a question's stored correct answer. Legacy rows make the wire
// shape unpredictable: a plain string, a JSON array, a JSON-encoded array
// inside a string, or an object. Malformed JSON never fails decoding; the
// value is kept as an opaque string instead.
type AnswerKey struct {
	Text   string
	List   []string
	IsList bool
}

func NewAnswerKey(text string) AnswerKey {
	return AnswerKey{Text: text}
}

func NewAnswerKeyList(items []string) AnswerKey {
	return AnswerKey{List: items, IsList: true}
}

func (k *AnswerKey) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*k = AnswerKey{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*k = keyFromString(s)
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*k = AnswerKey{Text: string(data)}
		return nil
	}
	switch v := raw.(type) {
	case []any:
		*k = AnswerKey{List: stringifyAll(v), IsList: true}
	case float64:
		*k = AnswerKey{Text: strconv.FormatFloat(v, 'f', -1, 64)}
	case bool:
		*k = AnswerKey{Text: strconv.FormatBool(v)}
	default:
		// Objects have no defined key shape; keep the raw JSON as text.
		*k = AnswerKey{Text: string(data)}
	}
	return nil
}

// keyFromString mirrors the backend's own fallback: strings that look like
// JSON arrays are parsed, anything else (including malformed JSON) stays an
// opaque string.
func keyFromString(s string) AnswerKey {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "[") {
		var items []any
		if err := json.Unmarshal([]byte(t), &items); err == nil {
			return AnswerKey{List: stringifyAll(items), IsList: true}
		}
	}
	return AnswerKey{Text: s}
}

func (k AnswerKey) MarshalJSON() ([]byte, error) {
	if k.IsList {
		return json.Marshal(k.List)
	}
	return json.Marshal(k.Text)
}

// Single flattens the key to one string for single-answer question types.
// A list key joins with commas, matching how the legacy client stringified
// arrays before comparing.
func (k AnswerKey) Single() string {
	if k.IsList {
		return strings.Join(k.List, ",")
	}
	return k.Text
}

// IsZero reports whether no correct answer is stored (Essay, Matching).
func (k AnswerKey) IsZero() bool {
	return !k.IsList && k.Text == ""
}

func stringifyAll(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch v := it.(type) {
		case string:
			out = append(out, v)
		case nil:
			out = append(out, "")
		case float64:
			out = append(out, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			out = append(out, strconv.FormatBool(v))
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	return out
}
