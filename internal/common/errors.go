package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error classes the pipeline distinguishes. Only the first three ever reach
// the caller; degraded OCR and degraded storage are recovered in place.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrConversion    = errors.New("conversion failed")
	ErrUpstreamParse = errors.New("upstream response unparseable")
	ErrNotFound      = errors.New("resource not found")
	ErrDatabase      = errors.New("database error")
	ErrInternal      = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
