package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common sentinel errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)

// AppError represents an application-specific error with an HTTP status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// StageError marks an unrecoverable failure in a named pipeline stage. The
// run aborts before the store rebuild commits, so partial output is never
// published.
type StageError struct {
	Stage  string
	Record string // offending record code, when known
	Err    error
}

func (e *StageError) Error() string {
	if e.Record != "" {
		return fmt.Sprintf("stage %s failed on %s: %v", e.Stage, e.Record, e.Err)
	}
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err as a failure of the given stage.
func NewStageError(stage, record string, err error) *StageError {
	return &StageError{Stage: stage, Record: record, Err: err}
}

// MapError maps a common error to an AppError with an appropriate HTTP status code.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	// Check for existing AppError
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	// Map sentinel errors
	if errors.Is(err, ErrInvalidInput) {
		return NewAppError(http.StatusBadRequest, "Invalid request", err)
	}
	if errors.Is(err, ErrNotFound) {
		return NewAppError(http.StatusNotFound, "Resource not found", err)
	}

	// Default to internal server error
	return NewAppError(http.StatusInternalServerError, "Internal server error", err)
}
