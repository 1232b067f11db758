package crawler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func testPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        10 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestExecuteExactlyThreeAttemptsOnServerError(t *testing.T) {
	policy := testPolicy()
	attempts := 0

	status, err := policy.Execute(context.Background(), arbor.NewLogger(), func() (int, error) {
		attempts++
		return 500, errors.New("unexpected status 500")
	})

	assert.Equal(t, 3, attempts, "every 5xx response must be attempted exactly MaxAttempts times")
	assert.Equal(t, 500, status)
	assert.Error(t, err)
}

func TestExecuteSucceedsAfterTransientFailure(t *testing.T) {
	policy := testPolicy()
	attempts := 0

	status, err := policy.Execute(context.Background(), arbor.NewLogger(), func() (int, error) {
		attempts++
		if attempts < 3 {
			return 503, errors.New("unexpected status 503")
		}
		return 200, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, 3, attempts)
}

func TestExecuteDoesNotRetryCancelledContext(t *testing.T) {
	policy := testPolicy()
	attempts := 0

	_, err := policy.Execute(context.Background(), arbor.NewLogger(), func() (int, error) {
		attempts++
		return 0, context.Canceled
	})

	assert.Equal(t, 1, attempts, "context cancellation is not retryable")
	assert.Error(t, err)
}

func TestBackoffGrowsExponentially(t *testing.T) {
	policy := &RetryPolicy{
		MaxAttempts:       3,
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}

	assert.Equal(t, time.Second, policy.Backoff(0))
	assert.Equal(t, 2*time.Second, policy.Backoff(1))
	assert.Equal(t, 4*time.Second, policy.Backoff(2))
}

func TestBackoffCapped(t *testing.T) {
	policy := testPolicy()
	assert.Equal(t, policy.MaxBackoff, policy.Backoff(20))
}

func TestShouldRetryStatusCodes(t *testing.T) {
	policy := testPolicy()

	assert.True(t, policy.ShouldRetry(1, 500, nil))
	assert.True(t, policy.ShouldRetry(1, 404, nil))
	assert.False(t, policy.ShouldRetry(1, 200, nil))
	assert.False(t, policy.ShouldRetry(3, 500, nil), "attempts beyond the maximum never retry")
}
