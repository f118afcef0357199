package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eztechnick/exam-portal/internal/cache"
	"github.com/eztechnick/exam-portal/internal/gasclient"
	"github.com/eztechnick/exam-portal/internal/models"
	"github.com/eztechnick/exam-portal/internal/validator"
)

// TokenIssuer is the iss claim on admin tokens.
const TokenIssuer = "exam-portal"

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AdminService covers everything behind the shared-secret gate: question and
// subject authoring plus result review and export.
type AdminService interface {
	Login(ctx context.Context, password string) (*LoginResponse, error)
	Questions(ctx context.Context, subject string) ([]models.Question, error)
	SaveQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, id, subject string) error
	AddSubject(ctx context.Context, name string) error
	DeleteSubject(ctx context.Context, name string) error
	Results(ctx context.Context, subject string) ([]models.ExamResult, error)
	ExportResults(ctx context.Context, subject, format string) (*Export, error)
}

type adminService struct {
	store     Store
	cache     cache.CacheService
	validator *validator.Validator
	logger    *slog.Logger

	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAdminService(
	store Store,
	cacheService cache.CacheService,
	validator *validator.Validator,
	logger *slog.Logger,
	jwtSecret string,
	tokenTTL time.Duration,
) AdminService {
	return &adminService{
		store:     store,
		cache:     cacheService,
		validator: validator,
		logger:    logger,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Login checks the shared secret against the backend, which is the only
// authority on it, and issues a short-lived bearer token on success.
func (s *adminService) Login(ctx context.Context, password string) (*LoginResponse, error) {
	if err := s.store.CheckAdmin(ctx, password); err != nil {
		var be *gasclient.BackendError
		if errors.As(err, &be) {
			s.logger.Warn("admin login rejected", "reason", be.Message)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("admin check failed: %w", err)
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    TokenIssuer,
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign admin token: %w", err)
	}

	s.logger.Info("admin login succeeded", "expires_at", expiresAt)
	return &LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Questions returns the authoring view of a subject's sheet, answer keys
// included. It reads the store directly so edits show up immediately.
func (s *adminService) Questions(ctx context.Context, subject string) ([]models.Question, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ErrSubjectRequired
	}
	questions, err := s.store.GetQuestions(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for %q: %w", subject, err)
	}
	return questions, nil
}

func (s *adminService) SaveQuestion(ctx context.Context, question *models.Question) error {
	if question.ID == "" {
		question.ID = strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	if err := s.validator.ValidateQuestion(question); err != nil {
		return err
	}

	if err := s.store.SaveQuestion(ctx, *question); err != nil {
		return fmt.Errorf("failed to save question %s: %w", question.ID, err)
	}

	s.invalidate(ctx, question.Subject)
	s.logger.Info("question saved",
		"question_id", question.ID,
		"subject", question.Subject,
		"question_type", string(question.Type))
	return nil
}

func (s *adminService) DeleteQuestion(ctx context.Context, id, subject string) error {
	if strings.TrimSpace(id) == "" {
		return ValidationErrors{{Field: "id", Message: "is required"}}
	}
	if err := s.store.DeleteQuestion(ctx, id, subject); err != nil {
		return fmt.Errorf("failed to delete question %s: %w", id, err)
	}
	s.invalidate(ctx, subject)
	s.logger.Info("question deleted", "question_id", id, "subject", subject)
	return nil
}

func (s *adminService) AddSubject(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrSubjectRequired
	}
	if err := s.store.AddSubject(ctx, name); err != nil {
		return fmt.Errorf("failed to add subject %q: %w", name, err)
	}
	s.invalidate(ctx, name)
	s.logger.Info("subject added", "subject", name)
	return nil
}

// DeleteSubject removes the subject and, on the backend's side, every
// question filed under it.
func (s *adminService) DeleteSubject(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrSubjectRequired
	}
	if err := s.store.DeleteSubject(ctx, name); err != nil {
		return fmt.Errorf("failed to delete subject %q: %w", name, err)
	}
	s.invalidate(ctx, name)
	// Renamed or re-cased copies of the subject key may linger.
	if err := s.cache.DeletePattern(ctx, cacheKeyQuestionPrefix+"*"); err != nil {
		s.logger.Warn("failed to sweep question caches", "error", err)
	}
	s.logger.Info("subject deleted", "subject", name)
	return nil
}

// Results returns stored results newest-first; the backend keeps only the 5
// most recent per subject.
func (s *adminService) Results(ctx context.Context, subject string) ([]models.ExamResult, error) {
	results, err := s.store.GetResults(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	return results, nil
}

func (s *adminService) invalidate(ctx context.Context, subject string) {
	if err := s.cache.Delete(ctx, cacheKeySubjects); err != nil {
		s.logger.Warn("failed to invalidate subject cache", "error", err)
	}
	if err := s.cache.Delete(ctx, cacheKeyQuestionPrefix+subject); err != nil {
		s.logger.Warn("failed to invalidate question cache", "subject", subject, "error", err)
	}
}
