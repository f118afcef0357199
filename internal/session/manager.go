package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eztechnick/exam-portal/internal/events"
	"github.com/eztechnick/exam-portal/internal/models"
	"github.com/eztechnick/exam-portal/internal/scoring"
)

// DefaultConfirmWindow is how long a pending confirmation stays armed before
// reverting to in-progress on its own.
const DefaultConfirmWindow = 5 * time.Second

// QuestionSource loads a subject's question set.
type QuestionSource interface {
	GetQuestions(ctx context.Context, subject string) ([]models.Question, error)
}

// ResultSink persists a finished submission. The call carries no client-side
// deadline: an unresolved call leaves the session in Submitting until the
// collaborator responds.
type ResultSink interface {
	SubmitExam(ctx context.Context, result models.ExamResult) error
}

// Manager owns all live sessions. Each browser session maps to one Session;
// nothing is shared across attempts.
type Manager struct {
	questions QuestionSource
	results   ResultSink
	engine    *scoring.Engine
	publisher events.EventPublisher
	logger    *slog.Logger

	confirmWindow time.Duration
	now           func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

type Option func(*Manager)

// WithConfirmWindow overrides the confirmation window, mainly for tests.
func WithConfirmWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.confirmWindow = d
		}
	}
}

// WithClock overrides the timestamp source, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(
	questions QuestionSource,
	results ResultSink,
	engine *scoring.Engine,
	publisher events.EventPublisher,
	logger *slog.Logger,
	opts ...Option,
) *Manager {
	m := &Manager{
		questions:     questions,
		results:       results,
		engine:        engine,
		publisher:     publisher,
		logger:        logger,
		confirmWindow: DefaultConfirmWindow,
		now:           time.Now,
		sessions:      make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start transitions NotStarted -> InProgress. It requires a non-empty display
// name and a successfully loaded non-empty question list; on any failure no
// session exists and the caller surfaces the reason.
func (m *Manager) Start(ctx context.Context, studentName, subject string) (*View, error) {
	name := strings.TrimSpace(studentName)
	if name == "" {
		return nil, ErrEmptyStudentName
	}

	qs, err := m.questions.GetQuestions(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for %q: %w", subject, err)
	}
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}

	s := &Session{
		id:          uuid.NewString(),
		studentName: name,
		subject:     subject,
		questions:   qs,
		answers:     make(models.AnswerMap),
		status:      StatusInProgress,
		startedAt:   m.now(),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	m.logger.Info("exam session started",
		"session_id", s.id,
		"subject", subject,
		"question_count", len(qs))

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

func (m *Manager) Get(id string) (*View, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(), nil
}

// SetAnswer records the raw answer for exactly one question. Completeness is
// never validated; unanswered questions simply stay absent from the mapping.
// Edits are accepted while in progress or awaiting confirmation, and rejected
// once a submission is in flight.
func (m *Manager) SetAnswer(id, questionID string, value any) error {
	s, err := m.lookup(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusSubmitting:
		return ErrSubmissionInFlight
	case StatusSubmitted:
		return ErrAlreadySubmitted
	}
	if !s.hasQuestion(questionID) {
		return ErrUnknownQuestion
	}
	s.answers[questionID] = value
	return nil
}

// Submit drives the two-step submission. The first call arms the
// confirmation window (InProgress -> ConfirmPending); a second call before
// the window expires commits (ConfirmPending -> Submitting -> Submitted).
// If the window lapses first, the session reverts to InProgress on its own.
func (m *Manager) Submit(ctx context.Context, id string) (*View, error) {
	s, err := m.lookup(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	switch s.status {
	case StatusSubmitting:
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case StatusSubmitted:
		s.mu.Unlock()
		return nil, ErrAlreadySubmitted
	case StatusInProgress:
		s.status = StatusConfirmPending
		s.confirmTimer = time.AfterFunc(m.confirmWindow, func() {
			m.revertConfirm(s)
		})
		view := s.view()
		s.mu.Unlock()
		m.logger.Info("submission confirmation armed", "session_id", id)
		return view, nil
	}

	// ConfirmPending: this is the terminal submit action. Cancel the
	// auto-revert before anything else so it cannot race the transition.
	if s.confirmTimer != nil {
		s.confirmTimer.Stop()
		s.confirmTimer = nil
	}
	s.status = StatusSubmitting
	questions := s.questions
	answers := make(models.AnswerMap, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	s.mu.Unlock()

	return m.finishSubmit(ctx, s, questions, answers)
}

// finishSubmit runs outside the session lock; the Submitting status is the
// mutual-exclusion guard that keeps this at-most-one-in-flight.
func (m *Manager) finishSubmit(ctx context.Context, s *Session, questions []models.Question, answers models.AnswerMap) (*View, error) {
	score := m.engine.Score(questions, answers)
	result := assembleResult(s.studentName, s.subject, questions, answers, score, m.now())

	err := m.results.SubmitExam(ctx, result)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.torn {
		// Session was discarded while the call was in flight; no transition
		// after teardown.
		return nil, ErrSessionNotFound
	}

	if err != nil {
		s.status = StatusInProgress
		m.logger.Error("exam submission failed",
			"session_id", s.id,
			"subject", s.subject,
			"error", err)
		return s.view(), fmt.Errorf("failed to submit exam: %w", err)
	}

	s.status = StatusSubmitted
	s.score = &score
	s.resultStatus = result.Status

	m.logger.Info("exam submitted",
		"session_id", s.id,
		"subject", s.subject,
		"score", score.Earned,
		"total", score.Total,
		"result_status", string(result.Status))

	m.publishSubmitted(result)

	return s.view(), nil
}

// Discard tears the session down from any state and clears all session data.
// A pending confirmation timer is cancelled; an in-flight submission finds
// the session gone and leaves no trace.
func (m *Manager) Discard(id string) error {
	s, err := m.lookup(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.confirmTimer != nil {
		s.confirmTimer.Stop()
		s.confirmTimer = nil
	}
	s.torn = true
	s.mu.Unlock()

	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()

	m.logger.Info("exam session discarded", "session_id", id)
	return nil
}

func (m *Manager) lookup(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// revertConfirm fires when the confirmation window lapses without a second
// submit. It is a no-op unless the session is still awaiting confirmation.
func (m *Manager) revertConfirm(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn || s.status != StatusConfirmPending {
		return
	}
	s.status = StatusInProgress
	s.confirmTimer = nil
	m.logger.Info("submission confirmation expired", "session_id", s.id)
}

func (m *Manager) publishSubmitted(result models.ExamResult) {
	if m.publisher == nil {
		return
	}
	event := events.NewExamSubmittedEvent(uuid.NewString(), result)
	if err := m.publisher.PublishExamSubmitted(context.Background(), event); err != nil {
		m.logger.Error("failed to publish exam submitted event",
			"result_id", result.ID,
			"error", err)
	}
}
