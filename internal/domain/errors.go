package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// ErrInvalidRating marks a rating outside the allowed set for the
	// record's regime. Callers re-prompt; the engine never coerces.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrNoLearner marks a call made without a learner ID in the context.
	ErrNoLearner = errors.New("no learner in context")

	// ErrUnknownVocabulary marks a vocabulary id with no backing item.
	ErrUnknownVocabulary = errors.New("unknown vocabulary item")

	// ErrInvalidState marks review state that violates the model's
	// invariants (stability <= 0, difficulty outside [1,10], negative
	// elapsed time). Seeing it on read indicates storage corruption or a
	// migration bug.
	ErrInvalidState = errors.New("invalid review state")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
