package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eztechnick/exam-portal/internal/cache"
	"github.com/eztechnick/exam-portal/internal/events"
	"github.com/eztechnick/exam-portal/internal/models"
	"github.com/eztechnick/exam-portal/internal/scoring"
	"github.com/eztechnick/exam-portal/internal/session"
	"github.com/eztechnick/exam-portal/internal/validator"
)

// Store is the full surface of the spreadsheet-backed script endpoint.
// *gasclient.Client satisfies it; tests mock it.
type Store interface {
	GetSubjects(ctx context.Context) ([]models.Subject, error)
	GetQuestions(ctx context.Context, subject string) ([]models.Question, error)
	SaveQuestion(ctx context.Context, question models.Question) error
	DeleteQuestion(ctx context.Context, id, subject string) error
	SubmitExam(ctx context.Context, result models.ExamResult) error
	GetResults(ctx context.Context, subject string) ([]models.ExamResult, error)
	AddSubject(ctx context.Context, name string) error
	DeleteSubject(ctx context.Context, name string) error
	CheckAdmin(ctx context.Context, password string) error
}

const (
	cacheKeySubjects       = "exam:subjects"
	cacheKeyQuestionPrefix = "exam:questions:"
)

type StartExamRequest struct {
	StudentName string `json:"studentName" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
}

type AnswerRequest struct {
	Value any `json:"value"`
}

// ExamService is the student-facing surface: subject discovery plus the
// session lifecycle.
type ExamService interface {
	Subjects(ctx context.Context) ([]models.Subject, error)
	Start(ctx context.Context, req *StartExamRequest) (*session.View, error)
	Get(ctx context.Context, sessionID string) (*session.View, error)
	SetAnswer(ctx context.Context, sessionID, questionID string, value any) error
	Submit(ctx context.Context, sessionID string) (*session.View, error)
	Discard(ctx context.Context, sessionID string) error
}

type examService struct {
	store     Store
	cache     cache.CacheService
	cacheTTL  time.Duration
	sessions  *session.Manager
	validator *validator.Validator
	logger    *slog.Logger
}

func NewExamService(
	store Store,
	cacheService cache.CacheService,
	cacheTTL time.Duration,
	publisher events.EventPublisher,
	validator *validator.Validator,
	logger *slog.Logger,
	sessionOpts ...session.Option,
) ExamService {
	s := &examService{
		store:     store,
		cache:     cacheService,
		cacheTTL:  cacheTTL,
		validator: validator,
		logger:    logger,
	}
	engine := scoring.NewEngine(logger)
	s.sessions = session.NewManager(s, store, engine, publisher, logger, sessionOpts...)
	return s
}

func (s *examService) Subjects(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	err := s.cache.Get(ctx, cacheKeySubjects, &subjects)
	if err == nil {
		return subjects, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("subject cache read failed", "error", err)
	}

	subjects, err = s.store.GetSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load subjects: %w", err)
	}
	if err := s.cache.Set(ctx, cacheKeySubjects, subjects, s.cacheTTL); err != nil {
		s.logger.Warn("subject cache write failed", "error", err)
	}
	return subjects, nil
}

// GetQuestions is the session manager's QuestionSource: a read-through cache
// over the store, keyed per subject.
func (s *examService) GetQuestions(ctx context.Context, subject string) ([]models.Question, error) {
	key := cacheKeyQuestionPrefix + subject
	var questions []models.Question
	err := s.cache.Get(ctx, key, &questions)
	if err == nil {
		return questions, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("question cache read failed", "subject", subject, "error", err)
	}

	questions, err = s.store.GetQuestions(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, questions, s.cacheTTL); err != nil {
		s.logger.Warn("question cache write failed", "subject", subject, "error", err)
	}
	return questions, nil
}

func (s *examService) Start(ctx context.Context, req *StartExamRequest) (*session.View, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.sessions.Start(ctx, req.StudentName, req.Subject)
}

func (s *examService) Get(ctx context.Context, sessionID string) (*session.View, error) {
	return s.sessions.Get(sessionID)
}

func (s *examService) SetAnswer(ctx context.Context, sessionID, questionID string, value any) error {
	return s.sessions.SetAnswer(sessionID, questionID, value)
}

func (s *examService) Submit(ctx context.Context, sessionID string) (*session.View, error) {
	return s.sessions.Submit(ctx, sessionID)
}

func (s *examService) Discard(ctx context.Context, sessionID string) error {
	return s.sessions.Discard(sessionID)
}
