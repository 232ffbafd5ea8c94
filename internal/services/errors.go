package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is the base error for any lookup that does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrPropertyNotFound is returned when no property has the given ID.
	ErrPropertyNotFound = fmt.Errorf("property %w", ErrNotFound)
	// ErrImageNotFound is returned when the property exists but has no image with the given key.
	ErrImageNotFound = fmt.Errorf("image %w", ErrNotFound)
	// ErrInvalidID is returned when an ID is not a valid ObjectID.
	ErrInvalidID = errors.New("invalid property ID")
)

// ValidationError reports missing or malformed required input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
