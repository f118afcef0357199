package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eztechnick/exam-portal/internal/models"
	"github.com/eztechnick/exam-portal/internal/services"
	"github.com/eztechnick/exam-portal/internal/session"
)

const testSecret = "test-secret"

// stubExamService returns canned values; handler tests exercise routing and
// status mapping, not exam semantics.
type stubExamService struct {
	subjects    []models.Subject
	subjectsErr error
	view        *session.View
	err         error
}

func (s *stubExamService) Subjects(ctx context.Context) ([]models.Subject, error) {
	return s.subjects, s.subjectsErr
}

func (s *stubExamService) Start(ctx context.Context, req *services.StartExamRequest) (*session.View, error) {
	return s.view, s.err
}

func (s *stubExamService) Get(ctx context.Context, sessionID string) (*session.View, error) {
	return s.view, s.err
}

func (s *stubExamService) SetAnswer(ctx context.Context, sessionID, questionID string, value any) error {
	return s.err
}

func (s *stubExamService) Submit(ctx context.Context, sessionID string) (*session.View, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view, nil
}

func (s *stubExamService) Discard(ctx context.Context, sessionID string) error {
	return s.err
}

type stubAdminService struct {
	login     *services.LoginResponse
	questions []models.Question
	results   []models.ExamResult
	export    *services.Export
	err       error
}

func (s *stubAdminService) Login(ctx context.Context, password string) (*services.LoginResponse, error) {
	return s.login, s.err
}

func (s *stubAdminService) Questions(ctx context.Context, subject string) ([]models.Question, error) {
	return s.questions, s.err
}

func (s *stubAdminService) SaveQuestion(ctx context.Context, question *models.Question) error {
	return s.err
}

func (s *stubAdminService) DeleteQuestion(ctx context.Context, id, subject string) error {
	return s.err
}

func (s *stubAdminService) AddSubject(ctx context.Context, name string) error {
	return s.err
}

func (s *stubAdminService) DeleteSubject(ctx context.Context, name string) error {
	return s.err
}

func (s *stubAdminService) Results(ctx context.Context, subject string) ([]models.ExamResult, error) {
	return s.results, s.err
}

func (s *stubAdminService) ExportResults(ctx context.Context, subject, format string) (*services.Export, error) {
	return s.export, s.err
}

func newTestRouter(exams services.ExamService, admin services.AdminService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandlerManager(exams, admin, testSecret).SetupRoutes(router)
	return router
}

func adminToken(t *testing.T, issuer string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(&stubExamService{}, &stubAdminService{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestListSubjects(t *testing.T) {
	router := newTestRouter(&stubExamService{
		subjects: []models.Subject{{Name: "Geography", QuestionCount: 3}},
	}, &stubAdminService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Geography")
}

func TestStartSession_BadBodyRejected(t *testing.T) {
	router := newTestRouter(&stubExamService{}, &stubAdminService{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", strings.NewReader("not json"))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing session is 404", session.ErrSessionNotFound, http.StatusNotFound},
		{"empty name is 400", session.ErrEmptyStudentName, http.StatusBadRequest},
		{"in-flight submit is 409", session.ErrSubmissionInFlight, http.StatusConflict},
		{"already submitted is 409", session.ErrAlreadySubmitted, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(&stubExamService{err: tc.err}, &stubAdminService{})
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/abc/submit", nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestAdminLogin_InvalidCredentials(t *testing.T) {
	router := newTestRouter(&stubExamService{}, &stubAdminService{err: services.ErrInvalidCredentials})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuth(t *testing.T) {
	router := newTestRouter(&stubExamService{}, &stubAdminService{
		results: []models.ExamResult{{ID: "1", StudentName: "Ana"}},
	})

	request := func(authorization string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/results", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request("").Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, request("Token abc").Code)
	})

	t.Run("expired token", func(t *testing.T) {
		token := adminToken(t, services.TokenIssuer, -time.Minute)
		assert.Equal(t, http.StatusUnauthorized, request("Bearer "+token).Code)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token := adminToken(t, "someone-else", time.Hour)
		assert.Equal(t, http.StatusUnauthorized, request("Bearer "+token).Code)
	})

	t.Run("valid token passes through", func(t *testing.T) {
		token := adminToken(t, services.TokenIssuer, time.Hour)
		w := request("Bearer " + token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Ana")
	})
}

func TestExportResults_Download(t *testing.T) {
	router := newTestRouter(&stubExamService{}, &stubAdminService{
		export: &services.Export{
			Filename:    "results-20250314.csv",
			ContentType: "text/csv",
			Data:        []byte("ID,Student Name\n"),
		},
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/results/export?format=csv", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, services.TokenIssuer, time.Hour))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "results-20250314.csv")
}
