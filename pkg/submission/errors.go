package submission

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formsubmit/pkg/validation"
)

// UnknownErrorMessage is surfaced when a rejection carries no messages.
const UnknownErrorMessage = "Unknown error"

var (
	// ErrValidationFailed matches errors returned when local validation
	// rejected the input and no submission was attempted.
	ErrValidationFailed = errors.New("submission: validation failed")
	// ErrSubmissionRejected matches errors returned when the submit function
	// failed.
	ErrSubmissionRejected = errors.New("submission: submission rejected")
	// ErrSubmissionInFlight is returned when a submit attempt arrives while a
	// previous submission is still pending.
	ErrSubmissionInFlight = errors.New("submission: submission already in flight")
	// ErrUnknownField is returned by SetField for names outside the form.
	ErrUnknownField = errors.New("submission: unknown field")
	// ErrNoSubmitFunc is returned when a valid record cannot be submitted
	// because the controller was built without a submit function.
	ErrNoSubmitFunc = errors.New("submission: submit function is not configured")
)

// Rejection is implemented by submit errors that carry user-facing
// validation messages.
type Rejection interface {
	error
	ValidationErrors() []string
}

// FieldRejection is implemented by submit errors that carry messages keyed by
// a field path ("email", "/body/email", "$.data.age", ...).
type FieldRejection interface {
	error
	FieldErrors() map[string][]string
}

// RejectedError is the canonical rejection returned by submit functions.
type RejectedError struct {
	Messages []string
	Fields   map[string][]string
	Cause    error
}

// Reject builds a RejectedError carrying the given messages.
func Reject(messages ...string) *RejectedError {
	return &RejectedError{Messages: messages}
}

func (e *RejectedError) Error() string {
	if e == nil {
		return "submission rejected"
	}
	msgs := normalizeMessages(e.Messages)
	if len(msgs) == 0 {
		if e.Cause != nil {
			return "submission rejected: " + e.Cause.Error()
		}
		return "submission rejected"
	}
	return "submission rejected: " + strings.Join(msgs, "; ")
}

func (e *RejectedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// ValidationErrors implements Rejection.
func (e *RejectedError) ValidationErrors() []string {
	if e == nil {
		return nil
	}
	return e.Messages
}

// FieldErrors implements FieldRejection.
func (e *RejectedError) FieldErrors() map[string][]string {
	if e == nil {
		return nil
	}
	return e.Fields
}

// ValidationError is returned by Submit when local validation failed.
type ValidationError struct {
	Issues []validation.Issue
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ErrValidationFailed.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// SubmissionError is returned by Submit when the submit function failed. The
// original error is available through errors.Unwrap / errors.As.
type SubmissionError struct {
	Messages []string
	Err      error
}

func (e *SubmissionError) Error() string {
	if e == nil || e.Err == nil {
		return ErrSubmissionRejected.Error()
	}
	return fmt.Sprintf("%s: %v", ErrSubmissionRejected.Error(), e.Err)
}

func (e *SubmissionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionRejected
}
