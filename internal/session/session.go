// Package session governs the lifecycle of one exam attempt: subject
// selection, question load, answer collection, submit confirmation, scoring,
// persistence, and result display.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/eztechnick/exam-portal/internal/models"
	"github.com/eztechnick/exam-portal/internal/scoring"
)

type Status string

// Attempt lifecycle. NotStarted has no stored session: an attempt only
// materializes once a name is given and a non-empty question set loads.
// Submitted is terminal; the only exit is discarding the whole session.
const (
	StatusInProgress     Status = "in_progress"
	StatusConfirmPending Status = "confirm_pending"
	StatusSubmitting     Status = "submitting"
	StatusSubmitted      Status = "submitted"
)

var (
	ErrEmptyStudentName   = errors.New("student name is required")
	ErrNoQuestions        = errors.New("no questions found for subject")
	ErrSessionNotFound    = errors.New("exam session not found")
	ErrUnknownQuestion    = errors.New("question is not part of this exam")
	ErrSubmissionInFlight = errors.New("submission already in progress")
	ErrAlreadySubmitted   = errors.New("exam already submitted")
)

// Session is one in-progress exam attempt. It exclusively owns its question
// set and answer mapping; a reload or discard loses both by design. All
// mutation goes through the Manager under mu.
type Session struct {
	mu sync.Mutex

	id          string
	studentName string
	subject     string
	questions   []models.Question
	answers     models.AnswerMap
	status      Status
	startedAt   time.Time

	confirmTimer *time.Timer
	score        *scoring.Score
	resultStatus models.ResultStatus
	torn         bool
}

// View is an immutable snapshot of a session handed to callers. Correct
// answers are stripped from the questions; scoring happens server-side.
type View struct {
	ID           string              `json:"id"`
	StudentName  string              `json:"studentName"`
	Subject      string              `json:"subject"`
	Status       Status              `json:"status"`
	StartedAt    time.Time           `json:"startedAt"`
	Questions    []QuestionView      `json:"questions"`
	Answers      models.AnswerMap    `json:"answers"`
	Score        *scoring.Score      `json:"score,omitempty"`
	ResultStatus models.ResultStatus `json:"resultStatus,omitempty"`
}

// QuestionView is a question as shown to the taker: everything except the
// answer key.
type QuestionView struct {
	ID            string                `json:"id"`
	Type          models.QuestionType   `json:"type"`
	QuestionText  string                `json:"questionText"`
	ImageURL      string                `json:"imageUrl,omitempty"`
	Options       []string              `json:"options,omitempty"`
	MatchingPairs []models.MatchingPair `json:"matchingPairs,omitempty"`
	Points        models.Points         `json:"points"`
	// Slots tells the taker how many enumeration inputs to render.
	Slots int `json:"slots,omitempty"`
}

// view must be called with s.mu held.
func (s *Session) view() *View {
	qs := make([]QuestionView, 0, len(s.questions))
	for _, q := range s.questions {
		qv := QuestionView{
			ID:            q.ID,
			Type:          q.Type,
			QuestionText:  q.QuestionText,
			ImageURL:      q.ImageURL,
			Options:       q.Options,
			MatchingPairs: q.MatchingPairs,
			Points:        q.Points,
		}
		if q.Type == models.Enumeration && q.CorrectAnswer.IsList {
			qv.Slots = len(q.CorrectAnswer.List)
		}
		qs = append(qs, qv)
	}

	answers := make(models.AnswerMap, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}

	return &View{
		ID:           s.id,
		StudentName:  s.studentName,
		Subject:      s.subject,
		Status:       s.status,
		StartedAt:    s.startedAt,
		Questions:    qs,
		Answers:      answers,
		Score:        s.score,
		ResultStatus: s.resultStatus,
	}
}

// hasQuestion must be called with s.mu held.
func (s *Session) hasQuestion(questionID string) bool {
	for _, q := range s.questions {
		if q.ID == questionID {
			return true
		}
	}
	return false
}
