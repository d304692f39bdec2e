// Package errors provides the error taxonomy for WatchOut.
// It defines ValidationError (fixable by the user), PersistenceError (store
// read/write failures that are logged and never block the caller) and a set
// of sentinels for common conditions.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors for common conditions.
var (
	ErrReminderNotFound  = errors.New("reminder not found")
	ErrAmbiguousID       = errors.New("multiple reminders match the given ID")
	ErrPermissionDenied  = errors.New("notification permission denied")
	ErrDaemonNotRunning  = errors.New("daemon is not running")
	ErrInvalidFrequency  = errors.New("invalid frequency")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrFireTimeInPast    = errors.New("fire time is in the past")
	ErrUnknownBackend    = errors.New("unknown storage backend")
	ErrInvalidWebhook    = errors.New("invalid webhook configuration")
	ErrNotificationLimit = errors.New("notification rate limit exceeded")
	ErrStoreLocked       = errors.New("store is locked by another process")
	ErrStoreCorrupted    = errors.New("store is corrupted")
)

// ValidationError represents an input the user can fix, such as an empty
// title. It is surfaced to the caller and never auto-corrected.
type ValidationError struct {
	Field      string // The field that failed validation
	Message    string // What happened
	Suggestion string // How to fix it
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message, suggestion string) *ValidationError {
	return &ValidationError{
		Field:      field,
		Message:    message,
		Suggestion: suggestion,
	}
}

// PersistenceError represents a failed read or write of a stored document.
type PersistenceError struct {
	Op    string // "load" or "save"
	Key   string // The document key
	Cause error  // The underlying error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %q: %v", e.Op, e.Key, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(op, key string, cause error) *PersistenceError {
	return &PersistenceError{
		Op:    op,
		Key:   key,
		Cause: cause,
	}
}

// IsValidation checks if an error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence checks if an error is a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

// AsValidation extracts a ValidationError from an error chain.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}

// Join returns an error that wraps the given errors.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted additional context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
