package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorCode classifies a failed exchange.
type ErrorCode int

const (
	// ErrCodeTimeout means the deadline passed before a response arrived.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection means the upstream could not be reached.
	ErrCodeConnection
	// ErrCodeUnavailable is a 503: the upstream is up but not ready.
	ErrCodeUnavailable
	// ErrCodeClient is any other 4xx.
	ErrCodeClient
	// ErrCodeServer is any other 5xx.
	ErrCodeServer
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeUnavailable:
		return "unavailable"
	case ErrCodeClient:
		return "client"
	case ErrCodeServer:
		return "server"
	}
	return "unknown"
}

// Error describes a failed exchange. StatusCode is zero for transport failures.
type Error struct {
	Code       ErrorCode
	StatusCode int
	// Body is the upstream's response body, possibly empty.
	Body []byte
	Err  error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("httpclient: %s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether the same request could succeed later.
func (e *Error) Retryable() bool { return e.Code != ErrCodeClient }

// statusError returns nil below 400.
func statusError(status int, body []byte) *Error {
	if status < http.StatusBadRequest {
		return nil
	}
	e := &Error{StatusCode: status, Body: body}
	switch {
	case status == http.StatusServiceUnavailable:
		e.Code = ErrCodeUnavailable
	case status < http.StatusInternalServerError:
		e.Code = ErrCodeClient
	default:
		e.Code = ErrCodeServer
	}
	return e
}

func transportError(ctx context.Context, err error) *Error {
	var netErr net.Error
	if ctx.Err() != nil || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Code: ErrCodeTimeout, Err: err}
	}
	return &Error{Code: ErrCodeConnection, Err: err}
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
