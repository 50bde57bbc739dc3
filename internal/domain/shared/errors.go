// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrStateTransition  = errors.New("invalid state transition")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrNotAvailable     = errors.New("not available")

	// Concurrency errors
	ErrActionInFlight = errors.New("action already in flight")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "session", "invite", "quiz", "reward"
	Op      string // Operation that failed, e.g., "Create", "Respond"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Session domain errors
var (
	ErrSessionNotFound    = NewDomainError("session", "Find", ErrNotFound, "session not found")
	ErrMissingTitle       = NewDomainError("session", "Validate", ErrEmptyValue, "session title is required")
	ErrMissingSchedule    = NewDomainError("session", "Validate", ErrEmptyValue, "session date and time are required")
	ErrMissingMeetingLink = NewDomainError("session", "Validate", ErrEmptyValue, "meeting link is required for video sessions")
	ErrMissingAddress     = NewDomainError("session", "Validate", ErrEmptyValue, "meeting address is required for in-person sessions")
	ErrInvalidSessionType = NewDomainError("session", "Validate", ErrInvalidInput, "invalid session type")
	ErrInvalidRatingValue = NewDomainError("session", "Rate", ErrValueOutOfRange, "rating must be between 1 and 5")
	ErrSessionActionBusy  = NewDomainError("session", "Mutate", ErrActionInFlight, "another action on this session is still pending")
)

// Invite domain errors
var (
	ErrInviteNotFound    = NewDomainError("invite", "Find", ErrNotFound, "invite not found")
	ErrInviteActionBusy  = NewDomainError("invite", "Respond", ErrActionInFlight, "invite response already in flight")
	ErrInvalidInviteKind = NewDomainError("invite", "Validate", ErrInvalidInput, "notification is not a session invite")
	ErrInvalidAction     = NewDomainError("invite", "Respond", ErrInvalidInput, "action must be accept or decline")
)

// Quiz domain errors
var (
	ErrQuizNotAvailable   = NewDomainError("quiz", "Open", ErrNotAvailable, "session has no quiz question set")
	ErrQuestionUnanswered = NewDomainError("quiz", "Next", ErrInvalidState, "current question has no answer")
	ErrQuizIncomplete     = NewDomainError("quiz", "Submit", ErrInvalidState, "all questions must be answered before submit")
	ErrQuizNotCompleted   = NewDomainError("quiz", "Score", ErrInvalidState, "quiz attempt is not completed")
	ErrInvalidQuestion    = NewDomainError("quiz", "Validate", ErrInvalidEntity, "quiz question is malformed")
	ErrTooManyQuestions   = NewDomainError("quiz", "Generate", ErrValueOutOfRange, "quiz question set exceeds the maximum size")
	ErrNotPDF             = NewDomainError("quiz", "Generate", ErrInvalidFormat, "only PDF documents can be used for question generation")
)

// Reward domain errors
var (
	ErrAlreadyClaimed  = NewDomainError("reward", "Claim", ErrAlreadyProcessed, "reward already claimed for this session")
	ErrClaimNotAllowed = NewDomainError("reward", "Claim", ErrInvalidState, "quiz must be passed before claiming")
	ErrClaimRejected   = NewDomainError("reward", "Claim", ErrExternalService, "reward ledger rejected the claim")
)

// External service errors
var (
	ErrPlatformUnavailable     = NewDomainError("platform", "Request", ErrServiceUnavailable, "platform API is unavailable")
	ErrPlatformTimeout         = NewDomainError("platform", "Request", ErrTimeout, "platform API request timeout")
	ErrPlatformInvalidResponse = NewDomainError("platform", "Parse", ErrInvalidFormat, "invalid response from platform API")
	ErrQuizGenerationFailed    = NewDomainError("platform", "GenerateQuestions", ErrExternalService, "question generation from document failed")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error. Validation errors
// are raised before any network call and never reach a collaborator.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsConflict checks if the error reports an already-processed action or a
// missing precondition (a repeated claim, a quiz that was never generated).
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed) ||
		errors.Is(err, ErrNotAvailable)
}

// IsExternalService checks if the error is from a remote collaborator.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
