package validator

import (
	"strings"

	apperrors "github.com/eztechnick/exam-portal/internal/errors"
	"github.com/eztechnick/exam-portal/internal/models"
)

// ValidateQuestion checks a question's content against its declared type
// before it is written to the store. The spreadsheet accepts anything, so
// this is the only gate keeping unscoreable questions out.
func (v *Validator) ValidateQuestion(q *models.Question) error {
	if err := v.Validate(q); err != nil {
		return err
	}

	var errs apperrors.ValidationErrors

	if q.Points.Value() <= 0 {
		errs = append(errs, *apperrors.NewValidationError("points", "must be a positive number", float64(q.Points)))
	}

	switch q.Type {
	case models.TrueFalse:
		answer := strings.ToUpper(strings.TrimSpace(q.CorrectAnswer.Single()))
		if answer != "TRUE" && answer != "FALSE" {
			errs = append(errs, *apperrors.NewValidationError("correctAnswer", "must be TRUE or FALSE", q.CorrectAnswer.Single()))
		}
	case models.MultipleChoice:
		options := nonBlank(q.Options)
		if len(options) < 2 {
			errs = append(errs, *apperrors.NewValidationError("options", "needs at least two options", len(options)))
		}
		answer := q.CorrectAnswer.Single()
		if strings.TrimSpace(answer) == "" {
			errs = append(errs, *apperrors.NewValidationError("correctAnswer", "is required", nil))
		} else if !contains(options, answer) {
			errs = append(errs, *apperrors.NewValidationError("correctAnswer", "must be one of the options", answer))
		}
	case models.Identification:
		if strings.TrimSpace(q.CorrectAnswer.Single()) == "" {
			errs = append(errs, *apperrors.NewValidationError("correctAnswer", "is required", nil))
		}
	case models.Enumeration:
		items := q.CorrectAnswer.List
		if !q.CorrectAnswer.IsList {
			items = strings.Split(q.CorrectAnswer.Text, ",")
		}
		if len(nonBlank(items)) == 0 {
			errs = append(errs, *apperrors.NewValidationError("correctAnswer", "needs at least one item", nil))
		}
	case models.Matching:
		complete := 0
		seen := make(map[string]bool, len(q.MatchingPairs))
		for _, pair := range q.MatchingPairs {
			left := strings.TrimSpace(pair.Left)
			right := strings.TrimSpace(pair.Right)
			if left == "" || right == "" {
				continue
			}
			if seen[left] {
				errs = append(errs, *apperrors.NewValidationError("matchingPairs", "left values must be unique", pair.Left))
				continue
			}
			seen[left] = true
			complete++
		}
		if complete == 0 {
			errs = append(errs, *apperrors.NewValidationError("matchingPairs", "needs at least one complete pair", len(q.MatchingPairs)))
		}
	case models.Essay:
		// No key to validate; essays are manually graded.
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			out = append(out, item)
		}
	}
	return out
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
