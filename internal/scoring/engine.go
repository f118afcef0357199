// Package scoring grades one exam submission against its question set.
package scoring

import (
	"log/slog"
	"math"
	"slices"

	"github.com/eztechnick/exam-portal/internal/codec"
	"github.com/eztechnick/exam-portal/internal/models"
)

// Score is one submission's outcome. Earned is rounded once, at the session
// total; per-question partial credit stays fractional so multi-part questions
// don't compound rounding error.
type Score struct {
	Earned float64 `json:"earned"`
	Total  float64 `json:"total"`
}

type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Score grades every question independently. Total accrues each question's
// points whether or not it was answered or even scorable; a question that
// fails to score contributes 0 earned rather than aborting the pass.
func (e *Engine) Score(questions []models.Question, answers models.AnswerMap) Score {
	var earned, total float64
	for _, q := range questions {
		total += q.Points.Value()
		earned += e.scoreQuestion(q, answers[q.ID])
	}
	return Score{Earned: math.Round(earned), Total: total}
}

// scoreQuestion returns the earned value in [0, points] for a single
// question. Panics from malformed data are contained here: the question
// scores 0 and the rest of the submission still grades.
func (e *Engine) scoreQuestion(q models.Question, raw any) (earned float64) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("scoring failed for question",
				"question_id", q.ID,
				"question_type", string(q.Type),
				"panic", r)
			earned = 0
		}
	}()

	if raw == nil {
		return 0
	}
	if s, ok := raw.(string); ok && s == "" {
		return 0
	}

	points := q.Points.Value()
	switch q.Type {
	case models.TrueFalse, models.MultipleChoice:
		// Categorical tokens compare raw, not canonicalized.
		if codec.AsString(raw) == q.CorrectAnswer.Single() {
			return points
		}
		return 0
	case models.Identification:
		if codec.Canonical(codec.AsString(raw)) == codec.Canonical(q.CorrectAnswer.Single()) {
			return points
		}
		return 0
	case models.Matching:
		return scoreMatching(q, raw, points)
	case models.Enumeration:
		return scoreEnumeration(q, raw, points)
	default:
		// Essay, and any unknown type, is manual-grading only.
		return 0
	}
}

func scoreMatching(q models.Question, raw any, points float64) float64 {
	totalPairs := len(q.MatchingPairs)
	if totalPairs == 0 {
		return 0
	}
	submitted := codec.SubmittedMap(raw)
	correct := 0
	for _, pair := range q.MatchingPairs {
		if submitted[pair.Left] == pair.Right {
			correct++
		}
	}
	return points * float64(correct) / float64(totalPairs)
}

// scoreEnumeration consumes a pool of correct items greedily: each submitted
// item removes at most one matching pool entry, so repeating one correct
// answer can't earn credit beyond its count in the key.
func scoreEnumeration(q models.Question, raw any, points float64) float64 {
	correct := codec.CorrectList(q.CorrectAnswer)
	if len(correct) == 0 {
		return 0
	}
	pool := slices.Clone(correct)
	valid := 0
	for _, item := range codec.SubmittedList(raw) {
		idx := slices.Index(pool, item)
		if idx == -1 {
			continue
		}
		valid++
		pool = slices.Delete(pool, idx, idx+1)
	}
	return float64(valid) * (points / float64(len(correct)))
}
