package resilience

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/kbukum/whisperd/errors"
)

// RetryConfig bounds how long Retry keeps trying.
type RetryConfig struct {
	// MaxAttempts counts the first call. Values below 1 mean one attempt.
	MaxAttempts int
	// InitialBackoff is the wait after the first failure; each later wait doubles.
	InitialBackoff time.Duration
	// MaxBackoff caps a single wait. Zero means no cap.
	MaxBackoff time.Duration
	// RetryIf reports whether err is worth another attempt. Nil retries
	// everything except context errors.
	RetryIf func(err error) bool
	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultRetryConfig makes three attempts starting at 100ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		RetryIf:        RetryIfTransient,
	}
}

// RetryIfTransient retries plain errors and AppErrors marked retryable
// (service unavailable, timeouts). Context errors and classified permanent
// failures stop immediately.
func RetryIfTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Retryable
	}
	return true
}

// Retry calls fn until it succeeds, RetryIf rejects its error, the attempts
// run out, or ctx ends. It returns the last error from fn, or ctx.Err() if
// the context ended while waiting.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = RetryIfTransient
	}
	attempts := max(cfg.MaxAttempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts || !retryIf(err) {
			return err
		}

		wait := backoff(cfg, attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// backoff returns the wait after the given failed attempt.
func backoff(cfg RetryConfig, attempt int) time.Duration {
	wait := cfg.InitialBackoff
	for i := 1; i < attempt; i++ {
		wait *= 2
		if cfg.MaxBackoff > 0 && wait >= cfg.MaxBackoff {
			return cfg.MaxBackoff
		}
	}
	if cfg.MaxBackoff > 0 && wait > cfg.MaxBackoff {
		return cfg.MaxBackoff
	}
	return wait
}
