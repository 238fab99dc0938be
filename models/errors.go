package models

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map each kind onto one HTTP status.
var (
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// AppError is a client-facing error: Message is safe to return in a response.
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Is(target error) bool {
	return target == e.Kind
}

func newAppError(kind error, format string, args ...any) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ValidationError(format string, args ...any) error {
	return newAppError(ErrValidation, format, args...)
}

func AuthError(format string, args ...any) error {
	return newAppError(ErrUnauthorized, format, args...)
}

func ForbiddenError(format string, args ...any) error {
	return newAppError(ErrForbidden, format, args...)
}

func NotFoundError(format string, args ...any) error {
	return newAppError(ErrNotFound, format, args...)
}

func ConflictError(format string, args ...any) error {
	return newAppError(ErrConflict, format, args...)
}
