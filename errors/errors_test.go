package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"UploadFailed", UploadFailed("bad", nil), ErrCodeUploadFailed, http.StatusBadRequest, false},
		{"DecodeFailed", DecodeFailed("bad", nil), ErrCodeDecodeFailed, http.StatusBadRequest, false},
		{"InferenceFailed", InferenceFailed("model", "boom", nil), ErrCodeInferenceFailed, http.StatusInternalServerError, false},
		{"ResultParseFailed", ResultParseFailed("bad", nil), ErrCodeResultParseFailed, http.StatusInternalServerError, false},
		{"ServiceUnavailable", ServiceUnavailable("model"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"Timeout", Timeout("inference"), ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestNewKeepsExplicitStatus(t *testing.T) {
	err := New(ErrCodeUploadFailed, "too big", http.StatusRequestEntityTooLarge)
	if err.HTTPStatus != http.StatusRequestEntityTooLarge || err.Retryable {
		t.Errorf("unexpected %+v", err)
	}
	if !New(ErrCodeTimeout, "slow", http.StatusGatewayTimeout).Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestStatusOfUnknownCode(t *testing.T) {
	if got := StatusOf("NOPE"); got != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", got)
	}
}

func TestReasonIncludesCause(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	for _, err := range []*AppError{
		UploadFailed("read upload", cause),
		DecodeFailed("decode audio", cause),
		ResultParseFailed("parse result file", cause),
	} {
		if !strings.HasSuffix(err.Message, ": unexpected EOF") {
			t.Errorf("expected cause suffix, got %q", err.Message)
		}
		if !stderrors.Is(err, cause) {
			t.Errorf("%s: cause not reachable", err.Code)
		}
	}
	if got := UploadFailed("filename is required", nil).Message; got != "filename is required" {
		t.Errorf("expected bare reason, got %q", got)
	}
}

func TestInferenceFailedKeepsDiagnostic(t *testing.T) {
	diag := "whisper.cpp [1]:\nmodel load failed"
	err := InferenceFailed("whisper.cpp", diag, fmt.Errorf("exit status 1"))
	if err.Message != diag {
		t.Errorf("diagnostic should pass through verbatim, got %q", err.Message)
	}
	if err.Details["backend"] != "whisper.cpp" {
		t.Errorf("expected backend detail, got %v", err.Details)
	}
}

func TestInternal(t *testing.T) {
	cause := fmt.Errorf("disk full")
	if err := Internal(cause); err.Message != "disk full" || err.Cause != cause {
		t.Errorf("unexpected %+v", err)
	}
	if Internal(fmt.Errorf("  ")).Message == "" || Internal(nil).Message == "" {
		t.Error("expected a default message")
	}
}

func TestErrorString(t *testing.T) {
	if got := Validation("bad").Error(); got != "INVALID_INPUT: bad" {
		t.Errorf("got %q", got)
	}
	got := Timeout("inference").WithCause(fmt.Errorf("root cause")).Error()
	if !strings.Contains(got, "inference timed out") || !strings.Contains(got, "root cause") {
		t.Errorf("got %q", got)
	}
}

func TestWithDetail(t *testing.T) {
	err := (&AppError{}).WithDetail("stage", "decode")
	if err.Details["stage"] != "decode" {
		t.Errorf("expected stage=decode, got %v", err.Details)
	}
	if Timeout("x").WithDetail("a", 1).Details["operation"] != "x" {
		t.Error("existing details should be kept")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
	orig := DecodeFailed("bad wav", nil)
	if Wrap(fmt.Errorf("outer: %w", orig)) != orig {
		t.Error("Wrap should return the AppError from the chain unchanged")
	}
	got := Wrap(fmt.Errorf("something broke"))
	if got.Code != ErrCodeInternal || got.Message != "something broke" {
		t.Errorf("unexpected %+v", got)
	}
}

func TestIsAppError(t *testing.T) {
	appErr := Validation("x")
	if !IsAppError(appErr) || !IsAppError(fmt.Errorf("wrapped: %w", appErr)) {
		t.Error("expected AppError to be found")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error is not an AppError")
	}
}

func TestToResponse(t *testing.T) {
	resp := ResultParseFailed(`result file is missing "result"`, nil).ToResponse()
	if resp.Code != ErrCodeResultParseFailed || resp.Message == "" {
		t.Errorf("unexpected %+v", resp)
	}
	if got := New(ErrCodeInternal, "", 500).ToResponse().Message; got != string(ErrCodeInternal) {
		t.Errorf("expected code as message, got %q", got)
	}
}
