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
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyProcessed = errors.New("already processed")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTimeout          = errors.New("operation timeout")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "badge", "streak", "leaderboard"
	Op      string // Operation that failed, e.g., "Evaluate", "Refresh"
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

// Stats domain errors
var (
	ErrUserStatsNotFound = NewDomainError("stats", "Find", ErrNotFound, "user stats not found")
	ErrStatsExist        = NewDomainError("stats", "Create", ErrAlreadyExists, "user stats already exist")
	ErrInvalidUserID     = NewDomainError("stats", "Validate", ErrInvalidID, "invalid user ID")
	ErrNegativeXP        = NewDomainError("stats", "Validate", ErrNegativeValue, "experience points cannot be negative")
)

// Badge domain errors
var (
	ErrBadgeNotFound          = NewDomainError("badge", "Find", ErrNotFound, "badge definition not found")
	ErrBadgeExists            = NewDomainError("badge", "Create", ErrAlreadyExists, "badge definition already exists")
	ErrDuplicateAward         = NewDomainError("badge", "Award", ErrAlreadyExists, "badge already awarded to user")
	ErrUnknownRequirementKind = NewDomainError("badge", "Evaluate", ErrInvalidInput, "unknown badge requirement kind")
)

// Streak domain errors
var (
	ErrActivityInFuture = NewDomainError("streak", "Update", ErrInvalidInput, "activity date cannot be in the future")
)

// Leaderboard domain errors
var (
	ErrLeaderboardNotFound = NewDomainError("leaderboard", "Find", ErrNotFound, "leaderboard not found")
	ErrInvalidBoardType    = NewDomainError("leaderboard", "Validate", ErrInvalidInput, "invalid leaderboard type")
	ErrInvalidPeriod       = NewDomainError("leaderboard", "Validate", ErrInvalidInput, "invalid leaderboard period")
	ErrInvalidRank         = NewDomainError("leaderboard", "Validate", ErrValueOutOfRange, "invalid rank")
)

// Celebration domain errors
var (
	ErrCelebrationNotFound = NewDomainError("celebration", "Find", ErrNotFound, "celebration not found")
	ErrEmptyPayload        = NewDomainError("celebration", "Enqueue", ErrEmptyValue, "celebration payload cannot be empty")
)

// Event pipeline errors
var (
	ErrInvalidEvent = NewDomainError("pipeline", "Validate", ErrInvalidInput, "malformed event payload")
)

// External collaborator errors
var (
	ErrNotificationFailed = NewDomainError("notifier", "Send", ErrExternalService, "failed to deliver notification")
	ErrFeedAppendFailed   = NewDomainError("feed", "Append", ErrExternalService, "failed to append feed event")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsDuplicateAward checks for the expected concurrent double-award race.
// Callers swallow this: the badge is already held, which is the desired
// end state.
func IsDuplicateAward(err error) bool {
	return errors.Is(err, ErrDuplicateAward)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsRetryable checks if the operation can be retried. All pipeline stages are
// idempotent, so store-level failures are safe to replay.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrConcurrentModification)
}
