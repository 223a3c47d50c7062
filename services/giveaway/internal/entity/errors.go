package entity

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrContentRejected     = errors.New("content rejected")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("state conflict")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// ContentRejectedError names the offending image by its 1-based position in
// the submission (1 is the primary image).
type ContentRejectedError struct {
	Position int
	Reason   string
}

func (e *ContentRejectedError) Error() string {
	if e.Position <= 1 {
		return fmt.Sprintf("image rejected: %s", e.Reason)
	}
	return fmt.Sprintf("image %d rejected: %s", e.Position, e.Reason)
}

func (e *ContentRejectedError) Unwrap() error { return ErrContentRejected }
