package services

import (
	"errors"

	apperrors "github.com/eztechnick/exam-portal/internal/errors"
	"github.com/eztechnick/exam-portal/internal/gasclient"
	"github.com/eztechnick/exam-portal/internal/session"
)

var (
	ErrInvalidCredentials = errors.New("incorrect admin password")
	ErrSubjectRequired    = errors.New("subject name is required")
	ErrUnknownFormat      = errors.New("unsupported export format")
)

// Use shared validation errors from the errors package.
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// IsNotFound reports whether the error names a missing session.
func IsNotFound(err error) bool {
	return errors.Is(err, session.ErrSessionNotFound)
}

// IsValidation reports input problems the caller can fix: blank names, bad
// question content, malformed requests.
func IsValidation(err error) bool {
	if errors.Is(err, session.ErrEmptyStudentName) ||
		errors.Is(err, session.ErrNoQuestions) ||
		errors.Is(err, session.ErrUnknownQuestion) ||
		errors.Is(err, ErrSubjectRequired) ||
		errors.Is(err, ErrUnknownFormat) {
		return true
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var single *ValidationError
	return errors.As(err, &single)
}

// IsConflict reports a submit action that the session's current state
// forbids.
func IsConflict(err error) bool {
	return errors.Is(err, session.ErrSubmissionInFlight) ||
		errors.Is(err, session.ErrAlreadySubmitted)
}

// IsUnavailable reports transport or endpoint failures: the store was
// unreachable or answered with something other than its JSON envelope. The
// session keeps its pre-failure state so the caller can retry.
func IsUnavailable(err error) bool {
	if errors.Is(err, gasclient.ErrInvalidResponse) || errors.Is(err, gasclient.ErrUnreachable) {
		return true
	}
	var be *gasclient.BackendError
	return errors.As(err, &be)
}
