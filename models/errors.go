package models

import "fmt"

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeNavigation           = "NAVIGATION_FAILED"
	ErrCodeRedirectNotCompleted = "REDIRECT_NOT_COMPLETED"
	ErrCodeNoContent            = "NO_CONTENT"
	ErrCodeTimeout              = "SESSION_TIMEOUT"
	ErrCodeBrowserCrash         = "BROWSER_CRASH"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInternal             = "INTERNAL_ERROR"
)

// SessionError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type SessionError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *SessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// NewSessionError creates a new SessionError.
func NewSessionError(code, message string, err error) *SessionError {
	return &SessionError{Code: code, Message: message, Err: err}
}

// Details returns the wrapped error's text, for the envelope's
// diagnostic field. Empty when nothing was wrapped.
func (e *SessionError) Details() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// AsSessionError normalizes any error into a *SessionError, wrapping
// unknown error types under ErrCodeInternal.
func AsSessionError(err error) *SessionError {
	if se, ok := err.(*SessionError); ok {
		return se
	}
	return NewSessionError(ErrCodeInternal, err.Error(), err)
}
