package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/brightreply/scout/internal/common"
)

// FetchResult is the outcome of one successful page fetch
type FetchResult struct {
	URL         string
	FinalURL    string
	StatusCode  int
	Body        []byte
	ContentType string
	FetchedAt   time.Time
}

// Fetcher performs robots-aware, rate-limited HTTP GETs with retry.
// Request order per URL: robots.txt check, global throttle, per-domain
// interval wait, then the GET itself.
type Fetcher struct {
	httpClient    *http.Client
	logger        arbor.ILogger
	robots        *RobotsChecker
	rateLimiter   *RateLimiter
	globalLimiter *rate.Limiter
	retryPolicy   *RetryPolicy
	userAgent     string
	respectRobots bool
	maxBodySize   int64
}

// NewFetcher creates a fetcher from crawler configuration
func NewFetcher(logger arbor.ILogger, config *common.CrawlerConfig, robots *RobotsChecker, rateLimiter *RateLimiter) *Fetcher {
	retryPolicy := NewRetryPolicy()
	if config.MaxRetries > 0 {
		retryPolicy.MaxAttempts = config.MaxRetries
	}
	if config.RetryBackoff > 0 {
		retryPolicy.InitialBackoff = config.RetryBackoff
	}

	return &Fetcher{
		httpClient:    &http.Client{Timeout: config.RequestTimeout},
		logger:        logger,
		robots:        robots,
		rateLimiter:   rateLimiter,
		globalLimiter: rate.NewLimiter(rate.Limit(config.GlobalRate), 1),
		retryPolicy:   retryPolicy,
		userAgent:     config.UserAgent,
		respectRobots: config.RespectRobotsTxt,
		maxBodySize:   config.MaxBodySize,
	}
}

// Fetch downloads the page at rawURL. A robots.txt denial fails
// immediately with ErrRobotsDisallowed and is never retried; transport
// errors and non-2xx responses are retried per the policy, and exhaustion
// fails with ErrFetchExhausted wrapping the last error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if f.respectRobots {
		allowed, err := f.robots.IsAllowed(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("robots check for %s: %w", rawURL, err)
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, rawURL)
		}

		// Honor a declared crawl-delay when it is stricter than ours.
		domain := domainOf(rawURL)
		if delay := f.robots.CrawlDelay(domain); delay > f.rateLimiter.DomainInterval(domain) {
			f.rateLimiter.SetDomainInterval(domain, delay)
		}
	}

	var result *FetchResult
	statusCode, err := f.retryPolicy.Execute(ctx, f.logger, func() (int, error) {
		if err := f.globalLimiter.Wait(ctx); err != nil {
			return 0, err
		}
		if err := f.rateLimiter.Wait(ctx, rawURL); err != nil {
			return 0, err
		}

		fetched, status, err := f.doGet(ctx, rawURL)
		if err != nil {
			return status, err
		}
		result = fetched
		return status, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrFetchExhausted, rawURL, f.retryPolicy.MaxAttempts, err)
	}

	f.logger.Debug().
		Str("url", rawURL).
		Int("status", statusCode).
		Int("bytes", len(result.Body)).
		Msg("Page fetched")

	return result, nil
}

func (f *Fetcher) doGet(ctx context.Context, rawURL string) (*FetchResult, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}

	return &FetchResult{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FetchedAt:   time.Now(),
	}, resp.StatusCode, nil
}
