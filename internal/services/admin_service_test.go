package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/eztechnick/exam-portal/internal/cache"
	"github.com/eztechnick/exam-portal/internal/gasclient"
	"github.com/eztechnick/exam-portal/internal/models"
	"github.com/eztechnick/exam-portal/internal/validator"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetSubjects(ctx context.Context) ([]models.Subject, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Subject), args.Error(1)
}

func (m *MockStore) GetQuestions(ctx context.Context, subject string) ([]models.Question, error) {
	args := m.Called(ctx, subject)
	return args.Get(0).([]models.Question), args.Error(1)
}

func (m *MockStore) SaveQuestion(ctx context.Context, question models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockStore) DeleteQuestion(ctx context.Context, id, subject string) error {
	args := m.Called(ctx, id, subject)
	return args.Error(0)
}

func (m *MockStore) SubmitExam(ctx context.Context, result models.ExamResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockStore) GetResults(ctx context.Context, subject string) ([]models.ExamResult, error) {
	args := m.Called(ctx, subject)
	return args.Get(0).([]models.ExamResult), args.Error(1)
}

func (m *MockStore) AddSubject(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockStore) DeleteSubject(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockStore) CheckAdmin(ctx context.Context, password string) error {
	args := m.Called(ctx, password)
	return args.Error(0)
}

// recordingCache tracks deleted keys so invalidation can be asserted.
type recordingCache struct {
	cache.CacheService
	deleted []string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{CacheService: cache.NewNoopCache()}
}

func (c *recordingCache) Delete(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	return nil
}

func newAdminService(store Store, cacheService cache.CacheService) AdminService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAdminService(store, cacheService, validator.New(), logger, "test-secret", time.Hour)
}

func validQuestion() *models.Question {
	return &models.Question{
		ID:            "123",
		Subject:       "Geography",
		Type:          models.Identification,
		QuestionText:  "Capital of France?",
		CorrectAnswer: models.NewAnswerKey("Paris"),
		Points:        5,
	}
}

func TestAdminService_Login(t *testing.T) {
	t.Run("issues a verifiable token", func(t *testing.T) {
		store := new(MockStore)
		store.On("CheckAdmin", mock.Anything, "correct-horse").Return(nil)
		svc := newAdminService(store, cache.NewNoopCache())

		resp, err := svc.Login(context.Background(), "correct-horse")
		require.NoError(t, err)
		assert.True(t, resp.ExpiresAt.After(time.Now()))

		claims := &jwt.RegisteredClaims{}
		token, err := jwt.ParseWithClaims(resp.Token, claims, func(t *jwt.Token) (any, error) {
			return []byte("test-secret"), nil
		})
		require.NoError(t, err)
		assert.True(t, token.Valid)
		assert.Equal(t, TokenIssuer, claims.Issuer)
		assert.Equal(t, "admin", claims.Subject)
	})

	t.Run("backend rejection is invalid credentials", func(t *testing.T) {
		store := new(MockStore)
		store.On("CheckAdmin", mock.Anything, "wrong").
			Return(&gasclient.BackendError{Action: "checkAdmin", Message: "Invalid password"})
		svc := newAdminService(store, cache.NewNoopCache())

		_, err := svc.Login(context.Background(), "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unreachable backend is not invalid credentials", func(t *testing.T) {
		store := new(MockStore)
		store.On("CheckAdmin", mock.Anything, "correct-horse").
			Return(errors.New("connection refused"))
		svc := newAdminService(store, cache.NewNoopCache())

		_, err := svc.Login(context.Background(), "correct-horse")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAdminService_SaveQuestion(t *testing.T) {
	t.Run("persists and invalidates caches", func(t *testing.T) {
		store := new(MockStore)
		store.On("SaveQuestion", mock.Anything, mock.AnythingOfType("models.Question")).Return(nil)
		rc := newRecordingCache()
		svc := newAdminService(store, rc)

		q := validQuestion()
		require.NoError(t, svc.SaveQuestion(context.Background(), q))
		store.AssertExpectations(t)
		assert.Contains(t, rc.deleted, "exam:subjects")
		assert.Contains(t, rc.deleted, "exam:questions:Geography")
	})

	t.Run("assigns an id when missing", func(t *testing.T) {
		store := new(MockStore)
		store.On("SaveQuestion", mock.Anything, mock.AnythingOfType("models.Question")).Return(nil)
		svc := newAdminService(store, cache.NewNoopCache())

		q := validQuestion()
		q.ID = ""
		require.NoError(t, svc.SaveQuestion(context.Background(), q))
		assert.NotEmpty(t, q.ID)
	})

	t.Run("rejects invalid content without touching the store", func(t *testing.T) {
		store := new(MockStore)
		svc := newAdminService(store, cache.NewNoopCache())

		q := validQuestion()
		q.CorrectAnswer = models.AnswerKey{}
		err := svc.SaveQuestion(context.Background(), q)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		store.AssertNotCalled(t, "SaveQuestion", mock.Anything, mock.Anything)
	})
}

func TestAdminService_DeleteQuestion(t *testing.T) {
	t.Run("requires an id", func(t *testing.T) {
		svc := newAdminService(new(MockStore), cache.NewNoopCache())
		err := svc.DeleteQuestion(context.Background(), "  ", "Geography")
		assert.True(t, IsValidation(err))
	})

	t.Run("deletes and invalidates", func(t *testing.T) {
		store := new(MockStore)
		store.On("DeleteQuestion", mock.Anything, "123", "Geography").Return(nil)
		rc := newRecordingCache()
		svc := newAdminService(store, rc)

		require.NoError(t, svc.DeleteQuestion(context.Background(), "123", "Geography"))
		store.AssertExpectations(t)
		assert.Contains(t, rc.deleted, "exam:questions:Geography")
	})
}

func TestAdminService_Subjects(t *testing.T) {
	t.Run("blank names rejected", func(t *testing.T) {
		svc := newAdminService(new(MockStore), cache.NewNoopCache())
		assert.ErrorIs(t, svc.AddSubject(context.Background(), " "), ErrSubjectRequired)
		assert.ErrorIs(t, svc.DeleteSubject(context.Background(), ""), ErrSubjectRequired)
	})

	t.Run("add and delete pass through", func(t *testing.T) {
		store := new(MockStore)
		store.On("AddSubject", mock.Anything, "History").Return(nil)
		store.On("DeleteSubject", mock.Anything, "History").Return(nil)
		svc := newAdminService(store, cache.NewNoopCache())

		require.NoError(t, svc.AddSubject(context.Background(), "History"))
		require.NoError(t, svc.DeleteSubject(context.Background(), "History"))
		store.AssertExpectations(t)
	})
}

func TestAdminService_Questions(t *testing.T) {
	t.Run("requires a subject", func(t *testing.T) {
		svc := newAdminService(new(MockStore), cache.NewNoopCache())
		_, err := svc.Questions(context.Background(), "")
		assert.ErrorIs(t, err, ErrSubjectRequired)
	})

	t.Run("reads the store directly", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetQuestions", mock.Anything, "Geography").
			Return([]models.Question{*validQuestion()}, nil)
		svc := newAdminService(store, cache.NewNoopCache())

		questions, err := svc.Questions(context.Background(), "Geography")
		require.NoError(t, err)
		require.Len(t, questions, 1)
		assert.Equal(t, "Paris", questions[0].CorrectAnswer.Single())
	})
}

func storedResults() []models.ExamResult {
	return []models.ExamResult{
		{
			ID:          "1741944413000",
			StudentName: "Ana",
			Subject:     "Geography",
			Score:       7,
			TotalPoints: 10,
			Timestamp:   "2025-03-14T09:26:53Z",
			Status:      models.ResultGraded,
		},
	}
}

func TestAdminService_ExportResults(t *testing.T) {
	store := new(MockStore)
	store.On("GetResults", mock.Anything, "Geography").Return(storedResults(), nil)
	store.On("GetResults", mock.Anything, "").Return(storedResults(), nil)
	svc := newAdminService(store, cache.NewNoopCache())

	t.Run("csv carries the result columns", func(t *testing.T) {
		export, err := svc.ExportResults(context.Background(), "Geography", "csv")
		require.NoError(t, err)
		assert.Equal(t, "text/csv", export.ContentType)
		assert.True(t, strings.HasPrefix(export.Filename, "results-geography-"))
		assert.True(t, strings.HasSuffix(export.Filename, ".csv"))

		body := string(export.Data)
		assert.Contains(t, body, "Student Name")
		assert.Contains(t, body, "Ana")
		assert.Contains(t, body, "graded")
	})

	t.Run("xlsx is the default format", func(t *testing.T) {
		export, err := svc.ExportResults(context.Background(), "", "")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(export.Filename, "results-"))
		assert.True(t, strings.HasSuffix(export.Filename, ".xlsx"))
		assert.NotEmpty(t, export.Data)
	})

	t.Run("unknown format rejected", func(t *testing.T) {
		_, err := svc.ExportResults(context.Background(), "", "pdf")
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})
}
