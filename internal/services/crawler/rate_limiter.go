package crawler

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"
)

// RateLimiter enforces a minimum interval between requests to the same
// domain. Workers targeting one host serialize at the configured interval
// while different hosts proceed independently.
type RateLimiter struct {
	domains         map[string]*domainState
	mu              sync.RWMutex
	defaultInterval time.Duration
}

// domainState tracks the last dispatch time for a single domain
type domainState struct {
	lastRequest time.Time
	interval    time.Duration
	mu          sync.Mutex
}

// NewRateLimiter creates a rate limiter with the given default minimum
// interval between requests per domain.
func NewRateLimiter(defaultInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		domains:         make(map[string]*domainState),
		defaultInterval: defaultInterval,
	}
}

// Wait blocks until a request to the URL's domain is permitted, or the
// context is cancelled. The domain's last-request timestamp is updated
// on return, so concurrent callers for one domain serialize here.
func (rl *RateLimiter) Wait(ctx context.Context, rawURL string) error {
	domain := domainOf(rawURL)
	if domain == "" {
		return nil
	}

	state := rl.stateFor(domain)

	state.mu.Lock()
	defer state.mu.Unlock()

	now := time.Now()
	nextAllowed := state.lastRequest.Add(state.interval)

	if now.Before(nextAllowed) {
		timer := time.NewTimer(nextAllowed.Sub(now))
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	state.lastRequest = time.Now()
	return nil
}

// SetDomainInterval overrides the minimum interval for one domain, used
// when robots.txt declares a crawl-delay longer than the default.
func (rl *RateLimiter) SetDomainInterval(domain string, interval time.Duration) {
	if interval <= 0 {
		return
	}

	state := rl.stateFor(strings.ToLower(domain))
	state.mu.Lock()
	state.interval = interval
	state.mu.Unlock()
}

// DomainInterval returns the effective interval for a domain
func (rl *RateLimiter) DomainInterval(domain string) time.Duration {
	rl.mu.RLock()
	state, exists := rl.domains[strings.ToLower(domain)]
	rl.mu.RUnlock()

	if !exists {
		return rl.defaultInterval
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.interval
}

func (rl *RateLimiter) stateFor(domain string) *domainState {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	state, exists := rl.domains[domain]
	if !exists {
		state = &domainState{interval: rl.defaultInterval}
		rl.domains[domain] = state
	}
	return state
}

// domainOf parses the host out of a URL
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
