package errors

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeFetchFailed  = "FETCH_FAILED"
	ErrCodeSubmitFailed = "SUBMIT_FAILED"
	ErrCodeAudioFailed  = "AUDIO_FAILED"
	ErrCodeValidation   = "VALIDATION_ERROR"
)

// AppError normalizes every failure the session layer can observe.
// Fetch failures are recoverable by explicit retry, submit failures are
// logged only, audio failures surface a single notice.
type AppError struct {
	Code    string // Error code (e.g., "FETCH_FAILED")
	Message string // Human-readable error message
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewFetchError wraps a failed queue or quiz fetch
func NewFetchError(what string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeFetchFailed,
		Message: fmt.Sprintf("failed to fetch %s", what),
		Err:     err,
	}
}

// NewSubmitError wraps a failed best-effort submission
func NewSubmitError(what string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeSubmitFailed,
		Message: fmt.Sprintf("failed to submit %s", what),
		Err:     err,
	}
}

// NewAudioError wraps a failed audio resolution or playback
func NewAudioError(sourceKey string, err error) *AppError {
	return &AppError{
		Code:    ErrCodeAudioFailed,
		Message: fmt.Sprintf("audio failed for %q", sourceKey),
		Err:     err,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
	}
}

func hasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsFetchError reports whether err is a FETCH_FAILED error.
func IsFetchError(err error) bool { return hasCode(err, ErrCodeFetchFailed) }

// IsSubmitError reports whether err is a SUBMIT_FAILED error.
func IsSubmitError(err error) bool { return hasCode(err, ErrCodeSubmitFailed) }

// IsAudioError reports whether err is an AUDIO_FAILED error.
func IsAudioError(err error) bool { return hasCode(err, ErrCodeAudioFailed) }

// IsValidationError reports whether err is a VALIDATION_ERROR.
func IsValidationError(err error) bool { return hasCode(err, ErrCodeValidation) }
