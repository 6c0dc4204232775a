package bgg

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode identifies one kind of failure in the closed BGG error taxonomy.
type ErrorCode string

const (
	CodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeInvalidGameID     ErrorCode = "INVALID_GAME_ID"
	CodeGameNotFound      ErrorCode = "GAME_NOT_FOUND"
	CodeAPIUnavailable    ErrorCode = "API_UNAVAILABLE"
	CodeNetworkError      ErrorCode = "NETWORK_ERROR"
	CodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	CodeInvalidResponse   ErrorCode = "INVALID_RESPONSE"
	CodeParseError        ErrorCode = "PARSE_ERROR"
)

// Sentinels for errors.Is checks. They match any *Error with the same code.
var (
	ErrRateLimitExceeded = &Error{Code: CodeRateLimitExceeded}
	ErrInvalidGameID     = &Error{Code: CodeInvalidGameID}
	ErrGameNotFound      = &Error{Code: CodeGameNotFound}
	ErrAPIUnavailable    = &Error{Code: CodeAPIUnavailable}
	ErrNetwork           = &Error{Code: CodeNetworkError}
	ErrSearchTimeout     = &Error{Code: CodeSearchTimeout}
	ErrInvalidResponse   = &Error{Code: CodeInvalidResponse}
	ErrParse             = &Error{Code: CodeParseError}
)

// Error is a classified BGG API error.
type Error struct {
	Code       ErrorCode
	Message    string
	StatusCode int           // HTTP status when the upstream answered
	RetryAfter time.Duration // only set for CodeRateLimitExceeded
	Cause      error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a sentinel with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Cause == nil && t.Code == e.Code
}

// CodeOf classifies err. Errors outside the taxonomy are reported as
// CodeNetworkError.
func CodeOf(err error) ErrorCode {
	var bggErr *Error
	if errors.As(err, &bggErr) {
		return bggErr.Code
	}
	return CodeNetworkError
}

// RetryAfterOf returns the retry hint carried by a rate-limit error.
func RetryAfterOf(err error) time.Duration {
	var bggErr *Error
	if errors.As(err, &bggErr) && bggErr.Code == CodeRateLimitExceeded {
		return bggErr.RetryAfter
	}
	return 0
}

// newRateLimitError creates a rate-limit error.
func newRateLimitError(message string, retryAfter time.Duration) *Error {
	return &Error{
		Code:       CodeRateLimitExceeded,
		Message:    message,
		StatusCode: 0,
		RetryAfter: retryAfter,
	}
}

// newInvalidGameIDError creates an error for a rejected game id.
func newInvalidGameIDError(message string) *Error {
	return &Error{
		Code:       CodeInvalidGameID,
		Message:    message,
		StatusCode: 400,
	}
}

// newNotFoundError creates a not-found error.
func newNotFoundError(message string) *Error {
	return &Error{
		Code:       CodeGameNotFound,
		Message:    message,
		StatusCode: 404,
	}
}

// newUnavailableError creates an error for an unhealthy upstream.
func newUnavailableError(message string, statusCode int) *Error {
	return &Error{
		Code:       CodeAPIUnavailable,
		Message:    message,
		StatusCode: statusCode,
	}
}

// newNetworkError creates a transport error.
func newNetworkError(message string, cause error) *Error {
	return &Error{
		Code:    CodeNetworkError,
		Message: message,
		Cause:   cause,
	}
}

// newTimeoutError creates a client-side timeout error.
func newTimeoutError(message string, cause error) *Error {
	return &Error{
		Code:    CodeSearchTimeout,
		Message: message,
		Cause:   cause,
	}
}

// newInvalidResponseError creates an error for a body that is not XML.
func newInvalidResponseError(message string, statusCode int) *Error {
	return &Error{
		Code:       CodeInvalidResponse,
		Message:    message,
		StatusCode: statusCode,
	}
}

// newParseError creates an XML parsing error.
func newParseError(message string, cause error) *Error {
	return &Error{
		Code:    CodeParseError,
		Message: message,
		Cause:   cause,
	}
}
