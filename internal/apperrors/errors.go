// Package apperrors defines the error taxonomy surfaced at the API boundary.
// Transient errors (duplicate, persistence) are distinguished from permanent
// ones (validation, invalid transition) so clients can decide whether to
// offer a retry.
package apperrors

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports malformed input or a missing required field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation creates a field-level validation error
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports an unknown request id
type NotFoundError struct {
	RequestID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("request %s not found", e.RequestID)
}

// NewNotFound creates a not-found error for a request id
func NewNotFound(requestID string) *NotFoundError {
	return &NotFoundError{RequestID: requestID}
}

// InvalidTransitionError reports an action that is not legal from the
// request's current status
type InvalidTransitionError struct {
	RequestID     string
	CurrentStatus string
	Action        string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s request %s in status %q", e.Action, e.RequestID, e.CurrentStatus)
}

// NewInvalidTransition creates an invalid-transition error
func NewInvalidTransition(requestID, currentStatus, action string) *InvalidTransitionError {
	return &InvalidTransitionError{RequestID: requestID, CurrentStatus: currentStatus, Action: action}
}

// DuplicateActionError reports a dedup guard hit; callers retry after the
// remaining window
type DuplicateActionError struct {
	RetryAfter time.Duration
}

func (e *DuplicateActionError) Error() string {
	return fmt.Sprintf("duplicate action in progress, retry after %d seconds", e.RetryAfterSeconds())
}

// RetryAfterSeconds returns the wait time rounded up to whole seconds
func (e *DuplicateActionError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// NewDuplicateAction creates a duplicate-action error
func NewDuplicateAction(retryAfter time.Duration) *DuplicateActionError {
	return &DuplicateActionError{RetryAfter: retryAfter}
}

// PersistenceError wraps a transaction or database failure
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistence wraps a database error
func NewPersistence(err error) *PersistenceError {
	return &PersistenceError{Err: err}
}

// Classification helpers for the HTTP boundary

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a NotFoundError
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError
func IsInvalidTransition(err error) bool {
	var target *InvalidTransitionError
	return errors.As(err, &target)
}

// IsDuplicateAction reports whether err is a DuplicateActionError
func IsDuplicateAction(err error) bool {
	var target *DuplicateActionError
	return errors.As(err, &target)
}
