package errors

import "net/http"

// ErrorCode is the machine-readable half of the error envelope.
type ErrorCode string

const (
	ErrCodeUploadFailed      ErrorCode = "UPLOAD_FAILED"
	ErrCodeDecodeFailed      ErrorCode = "DECODE_FAILED"
	ErrCodeInferenceFailed   ErrorCode = "INFERENCE_FAILED"
	ErrCodeResultParseFailed ErrorCode = "RESULT_PARSE_FAILED"

	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

type codeInfo struct {
	status    int
	retryable bool
}

// codes holds the default status for each code. UPLOAD_FAILED is also
// raised with 413 for oversized bodies.
var codes = map[ErrorCode]codeInfo{
	ErrCodeUploadFailed:       {http.StatusBadRequest, false},
	ErrCodeDecodeFailed:       {http.StatusBadRequest, false},
	ErrCodeInferenceFailed:    {http.StatusInternalServerError, false},
	ErrCodeResultParseFailed:  {http.StatusInternalServerError, false},
	ErrCodeServiceUnavailable: {http.StatusServiceUnavailable, true},
	ErrCodeTimeout:            {http.StatusGatewayTimeout, true},
	ErrCodeInvalidInput:       {http.StatusBadRequest, false},
	ErrCodeInternal:           {http.StatusInternalServerError, false},
}

// IsRetryableCode reports whether a client may resend the same request.
// The server never retries on its own.
func IsRetryableCode(code ErrorCode) bool { return codes[code].retryable }

// StatusOf returns the default HTTP status for code, 500 when unknown.
func StatusOf(code ErrorCode) int {
	if info, ok := codes[code]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}
