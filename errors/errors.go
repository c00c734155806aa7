package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError is the one error type handlers render. Message is what the client
// sees; Details and Cause stay server-side.
type AppError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Cause      error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithCause attaches cause and returns e.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail records one server-side detail and returns e.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

// New builds an AppError with an explicit status.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

func newCode(code ErrorCode, message string, cause error) *AppError {
	e := New(code, message, StatusOf(code))
	e.Cause = cause
	return e
}

// reason appends the cause text so the client sees what went wrong.
func reason(what string, cause error) string {
	if cause == nil {
		return what
	}
	return what + ": " + cause.Error()
}

// UploadFailed reports a malformed, truncated or unnamed upload.
func UploadFailed(what string, cause error) *AppError {
	return newCode(ErrCodeUploadFailed, reason(what, cause), cause)
}

// DecodeFailed reports audio the decoder cannot read.
func DecodeFailed(what string, cause error) *AppError {
	return newCode(ErrCodeDecodeFailed, reason(what, cause), cause)
}

// InferenceFailed reports a backend failure. diagnostic is passed through
// untouched; for whisper.cpp it carries the captured stderr.
func InferenceFailed(backend, diagnostic string, cause error) *AppError {
	return newCode(ErrCodeInferenceFailed, diagnostic, cause).WithDetail("backend", backend)
}

// ResultParseFailed reports backend output that is missing or misshapen.
func ResultParseFailed(what string, cause error) *AppError {
	return newCode(ErrCodeResultParseFailed, reason(what, cause), cause)
}

func ServiceUnavailable(service string) *AppError {
	msg := fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service)
	return newCode(ErrCodeServiceUnavailable, msg, nil).WithDetail("service", service)
}

func Timeout(operation string) *AppError {
	return newCode(ErrCodeTimeout, operation+" timed out", nil).WithDetail("operation", operation)
}

func Validation(message string) *AppError {
	return newCode(ErrCodeInvalidInput, message, nil)
}

// Internal wraps an unclassified failure, keeping its text as the message.
func Internal(cause error) *AppError {
	msg := "An unexpected error occurred."
	if cause != nil && strings.TrimSpace(cause.Error()) != "" {
		msg = cause.Error()
	}
	return newCode(ErrCodeInternal, msg, cause)
}

// Wrap returns the first AppError in err's chain, or err as Internal.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code,omitempty"`
}

// ToResponse renders the envelope, falling back to the code when the
// message is empty.
func (e *AppError) ToResponse() ErrorResponse {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	return ErrorResponse{Message: msg, Code: e.Code}
}
