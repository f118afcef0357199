// Package gasclient is the request/response client for the spreadsheet-backed
// Apps Script web app that owns all persistence. Every call is a JSON POST
// with an action tag; the script answers {status, data?, message?}.
package gasclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/eztechnick/exam-portal/internal/models"
)

// DefaultScriptURL is the fallback deployment used when no endpoint is
// configured.
const DefaultScriptURL = "https://script.google.com/macros/s/AKfycbwEzTechReviewerDefaultDeployment/exec"

// EndpointResolver yields the script URL for the next call. Injecting the
// resolver keeps the endpoint an explicit capability instead of ambient
// global state, and lets an admin-configured override take effect without
// rebuilding the client.
type EndpointResolver func() string

// ErrInvalidResponse marks a reply that was not the script's JSON envelope
// (HTML error pages, mis-deployed scripts, sign-in redirects).
var ErrInvalidResponse = errors.New("invalid response from script endpoint")

// ErrUnreachable marks a transport failure before any reply arrived.
var ErrUnreachable = errors.New("script endpoint unreachable")

// BackendError is a failure the script itself reported.
type BackendError struct {
	Action  string
	Message string
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("script action %q failed", e.Action)
	}
	return fmt.Sprintf("script action %q failed: %s", e.Action, e.Message)
}

type response struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

type Client struct {
	httpClient *http.Client
	resolve    EndpointResolver
	logger     *slog.Logger
}

type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a client. The default http.Client follows redirects, which Apps
// Script deployments rely on, and sets no deadline: submission failure is
// detected only through the script's reply, never a client-side timeout.
func New(resolve EndpointResolver, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
		resolve:    resolve,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call posts {action, ...payload} and decodes the envelope. The body goes out
// as text/plain: a "simple" content type keeps Apps Script from requiring a
// CORS preflight it cannot answer.
func (c *Client) call(ctx context.Context, action string, payload map[string]any, out any) error {
	body := make(map[string]any, len(payload)+1)
	body["action"] = action
	for k, v := range payload {
		body[k] = v
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	url := c.resolve()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "text/plain")

	c.logger.Debug("calling script endpoint", "action", action, "url", url)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w for %s: %w", ErrUnreachable, action, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", action, err)
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.logger.Error("script endpoint returned non-JSON body",
			"action", action,
			"status_code", res.StatusCode)
		return fmt.Errorf("%w: action %s", ErrInvalidResponse, action)
	}

	if resp.Status != "success" {
		return &BackendError{Action: action, Message: resp.Message}
	}

	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to decode %s data: %w", action, err)
		}
	}
	return nil
}

func (c *Client) GetSubjects(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := c.call(ctx, "getSubjects", nil, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

func (c *Client) GetQuestions(ctx context.Context, subject string) ([]models.Question, error) {
	var questions []models.Question
	if err := c.call(ctx, "getQuestions", map[string]any{"subject": subject}, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (c *Client) SaveQuestion(ctx context.Context, question models.Question) error {
	return c.call(ctx, "saveQuestion", map[string]any{"question": question}, nil)
}

func (c *Client) DeleteQuestion(ctx context.Context, id, subject string) error {
	return c.call(ctx, "deleteQuestion", map[string]any{"id": id, "subject": subject}, nil)
}

func (c *Client) SubmitExam(ctx context.Context, result models.ExamResult) error {
	return c.call(ctx, "submitExam", map[string]any{"result": result}, nil)
}

// GetResults returns stored results newest-first. The backend caps retention
// at the 5 most recent per subject; an empty subject returns every subject.
func (c *Client) GetResults(ctx context.Context, subject string) ([]models.ExamResult, error) {
	payload := map[string]any{}
	if subject != "" {
		payload["subject"] = subject
	}
	var results []models.ExamResult
	if err := c.call(ctx, "getResults", payload, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (c *Client) AddSubject(ctx context.Context, name string) error {
	return c.call(ctx, "addSubject", map[string]any{"subject": name}, nil)
}

func (c *Client) DeleteSubject(ctx context.Context, name string) error {
	return c.call(ctx, "deleteSubject", map[string]any{"subject": name}, nil)
}

// CheckAdmin verifies the shared admin secret with the backend. Success is an
// empty success envelope; a wrong password comes back as a BackendError.
func (c *Client) CheckAdmin(ctx context.Context, password string) error {
	return c.call(ctx, "checkAdmin", map[string]any{"password": password}, nil)
}
