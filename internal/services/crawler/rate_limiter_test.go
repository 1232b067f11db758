package crawler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterEnforcesMinimumInterval(t *testing.T) {
	interval := 50 * time.Millisecond
	limiter := NewRateLimiter(interval)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "https://example.com/a"))
	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "https://example.com/b"))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, interval, "second dispatch to the same domain must wait the full interval")
}

func TestRateLimiterIndependentDomains(t *testing.T) {
	limiter := NewRateLimiter(200 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "https://one.example.com/"))
	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "https://two.example.com/"))

	assert.Less(t, time.Since(start), 100*time.Millisecond, "different domains must not serialize")
}

func TestRateLimiterSerializesConcurrentCallers(t *testing.T) {
	interval := 30 * time.Millisecond
	limiter := NewRateLimiter(interval)
	ctx := context.Background()

	const calls = 4
	times := make(chan time.Time, calls)
	for i := 0; i < calls; i++ {
		go func() {
			_ = limiter.Wait(ctx, "https://example.com/")
			times <- time.Now()
		}()
	}

	var collected []time.Time
	for i := 0; i < calls; i++ {
		collected = append(collected, <-times)
	}

	for i := range collected {
		for j := range collected {
			if i == j {
				continue
			}
			gap := collected[i].Sub(collected[j])
			if gap < 0 {
				gap = -gap
			}
			assert.GreaterOrEqual(t, gap, interval-5*time.Millisecond, "concurrent dispatches to one domain must keep the interval")
		}
	}
}

func TestRateLimiterContextCancellation(t *testing.T) {
	limiter := NewRateLimiter(time.Minute)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "https://example.com/"))

	cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(cancelCtx, "https://example.com/")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetDomainInterval(t *testing.T) {
	limiter := NewRateLimiter(10 * time.Millisecond)

	limiter.SetDomainInterval("slow.example.com", 500*time.Millisecond)

	assert.Equal(t, 500*time.Millisecond, limiter.DomainInterval("slow.example.com"))
	assert.Equal(t, 10*time.Millisecond, limiter.DomainInterval("fast.example.com"))
}
