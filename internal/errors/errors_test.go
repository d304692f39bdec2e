package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// =============================================================================
// ValidationError Tests
// =============================================================================

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("title", "must not be empty", "give the reminder a title")
	assert.Equal(t, "title", err.Field)
	assert.Equal(t, "title: must not be empty", err.Error())
}

func TestValidationErrorWithoutField(t *testing.T) {
	err := &ValidationError{Message: "bad input"}
	assert.Equal(t, "bad input", err.Error())
}

func TestIsValidation(t *testing.T) {
	t.Run("validation_error", func(t *testing.T) {
		assert.True(t, IsValidation(NewValidationError("title", "empty", "")))
	})

	t.Run("wrapped_validation_error", func(t *testing.T) {
		wrapped := fmt.Errorf("add: %w", NewValidationError("title", "empty", ""))
		assert.True(t, IsValidation(wrapped))

		ve, ok := AsValidation(wrapped)
		assert.True(t, ok)
		assert.Equal(t, "title", ve.Field)
	})

	t.Run("plain_error", func(t *testing.T) {
		assert.False(t, IsValidation(errors.New("plain")))
	})

	t.Run("nil_error", func(t *testing.T) {
		assert.False(t, IsValidation(nil))
	})
}

// =============================================================================
// PersistenceError Tests
// =============================================================================

func TestPersistenceError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewPersistenceError("save", "reminders", cause)

	assert.Equal(t, `failed to save "reminders": disk full`, err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsPersistence(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsPersistence(cause))
}

// =============================================================================
// Suggestion Tests
// =============================================================================

func TestGetSuggestion(t *testing.T) {
	t.Run("sentinel", func(t *testing.T) {
		assert.Contains(t, GetSuggestion(ErrReminderNotFound), "watchout list")
	})

	t.Run("wrapped_sentinel", func(t *testing.T) {
		err := fmt.Errorf("remove abc: %w", ErrReminderNotFound)
		assert.Contains(t, GetSuggestion(err), "watchout list")
	})

	t.Run("validation_suggestion", func(t *testing.T) {
		err := NewValidationError("description", "must not be empty", "describe what to do")
		assert.Equal(t, "describe what to do", GetSuggestion(err))
	})

	t.Run("unknown", func(t *testing.T) {
		assert.Empty(t, GetSuggestion(errors.New("something")))
		assert.Empty(t, GetSuggestion(nil))
	})
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ctx"))
	base := errors.New("base")
	assert.Equal(t, "ctx: base", Wrap(base, "ctx").Error())
	assert.Equal(t, "load 2: base", Wrapf(base, "load %d", 2).Error())
	assert.True(t, Is(Wrap(base, "ctx"), base))
}
