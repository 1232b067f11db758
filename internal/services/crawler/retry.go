package crawler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"time"

	"github.com/ternarybob/arbor"
)

// RetryPolicy defines retry behavior with exponential backoff
type RetryPolicy struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// NewRetryPolicy creates the default fetch retry policy: three attempts
// with delays of base, base*2, base*4 between them.
func NewRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// ShouldRetry reports whether an attempt outcome warrants another try.
// Any non-2xx status and any network-level error is retryable; a nil
// error with a 2xx status is success.
func (p *RetryPolicy) ShouldRetry(attempt int, statusCode int, err error) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	if statusCode > 0 {
		return statusCode < 200 || statusCode >= 300
	}
	return isRetryableError(err)
}

// Backoff returns the delay before the given zero-based attempt is retried
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	backoff := float64(p.InitialBackoff) * math.Pow(p.BackoffMultiplier, float64(attempt))
	if backoff > float64(p.MaxBackoff) {
		backoff = float64(p.MaxBackoff)
	}
	return time.Duration(backoff)
}

// Execute runs fn up to MaxAttempts times, sleeping the backoff between
// attempts. fn reports the HTTP status (0 for transport errors) and the
// attempt error. Returns the final status and error once fn succeeds or
// attempts are exhausted.
func (p *RetryPolicy) Execute(ctx context.Context, logger arbor.ILogger, fn func() (int, error)) (int, error) {
	var lastErr error
	var statusCode int

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		statusCode, lastErr = fn()

		if lastErr == nil && statusCode >= 200 && statusCode < 300 {
			return statusCode, nil
		}

		if !p.ShouldRetry(attempt+1, statusCode, lastErr) && lastErr != nil {
			logger.Debug().
				Int("attempt", attempt+1).
				Int("status_code", statusCode).
				Err(lastErr).
				Msg("Non-retryable error, failing immediately")
			return statusCode, lastErr
		}

		if attempt < p.MaxAttempts-1 {
			backoff := p.Backoff(attempt)
			logger.Debug().
				Int("attempt", attempt+1).
				Int("status_code", statusCode).
				Err(lastErr).
				Dur("backoff", backoff).
				Msg("Retrying after backoff")

			select {
			case <-ctx.Done():
				return statusCode, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	logger.Warn().
		Int("max_attempts", p.MaxAttempts).
		Int("status_code", statusCode).
		Err(lastErr).
		Msg("All retry attempts exhausted")

	if lastErr == nil {
		lastErr = fmt.Errorf("unexpected status %d", statusCode)
	}
	return statusCode, lastErr
}

// isRetryableError reports whether a transport error is worth retrying
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
