package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"github.com/ternarybob/arbor"
)

const (
	robotsTxtPath = "/robots.txt"

	// maxRobotsBody caps how much of a robots.txt response is read
	maxRobotsBody = 512 * 1024
)

// RobotsChecker fetches, parses, and caches robots.txt policies per host.
// A missing, errored, or unparseable robots.txt permits crawling: absence
// of a policy is not a block.
type RobotsChecker struct {
	httpClient *http.Client
	logger     arbor.ILogger
	userAgent  string
	cacheTTL   time.Duration
	cache      map[string]*robotsEntry
	mu         sync.RWMutex
}

// robotsEntry is a cached robots.txt verdict for one host
type robotsEntry struct {
	data      *robotstxt.RobotsData
	fetchedAt time.Time
	allowAll  bool
}

// NewRobotsChecker creates a new RobotsChecker
func NewRobotsChecker(logger arbor.ILogger, userAgent string, timeout, cacheTTL time.Duration) *RobotsChecker {
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}

	return &RobotsChecker{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		userAgent:  userAgent,
		cacheTTL:   cacheTTL,
		cache:      make(map[string]*robotsEntry),
	}
}

// IsAllowed reports whether the host's robots.txt permits the URL for the
// configured user agent. Fetch failures and non-2xx responses default to
// allowed.
func (r *RobotsChecker) IsAllowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("robots: parse url: %w", err)
	}

	host := strings.ToLower(parsed.Host)
	if host == "" {
		return false, fmt.Errorf("robots: url %q has no host", rawURL)
	}

	entry, ok := r.cached(host)
	if !ok {
		entry = r.fetchAndCache(ctx, parsed.Scheme, host)
	}

	if entry.allowAll {
		return true, nil
	}

	// Rules like "Disallow: /*?" match on the query string too.
	path := parsed.Path
	if parsed.RawQuery != "" {
		path += "?" + parsed.RawQuery
	}
	return entry.data.TestAgent(path, r.userAgent), nil
}

// CrawlDelay returns the crawl-delay declared for the configured user
// agent, or zero when none is cached for the host.
func (r *RobotsChecker) CrawlDelay(host string) time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.cache[strings.ToLower(host)]
	if !ok || entry.allowAll || entry.data == nil {
		return 0
	}

	group := entry.data.FindGroup(r.userAgent)
	if group == nil {
		return 0
	}
	return group.CrawlDelay
}

func (r *RobotsChecker) cached(host string) (*robotsEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.cache[host]
	if !ok || time.Since(entry.fetchedAt) > r.cacheTTL {
		return nil, false
	}
	return entry, true
}

func (r *RobotsChecker) fetchAndCache(ctx context.Context, scheme, host string) *robotsEntry {
	if scheme == "" {
		scheme = "https"
	}
	robotsURL := scheme + "://" + host + robotsTxtPath

	entry := &robotsEntry{fetchedAt: time.Now(), allowAll: true}

	body, statusCode, err := r.fetch(ctx, robotsURL)
	if err != nil {
		r.logger.Debug().Str("host", host).Err(err).Msg("robots.txt fetch failed, allowing all")
	} else if statusCode < 200 || statusCode >= 300 {
		r.logger.Debug().Str("host", host).Int("status", statusCode).Msg("robots.txt not available, allowing all")
	} else if data, parseErr := robotstxt.FromBytes(body); parseErr != nil {
		r.logger.Debug().Str("host", host).Err(parseErr).Msg("robots.txt unparseable, allowing all")
	} else {
		entry.data = data
		entry.allowAll = false
	}

	r.mu.Lock()
	r.cache[host] = entry
	r.mu.Unlock()

	return entry
}

func (r *RobotsChecker) fetch(ctx context.Context, robotsURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("robots: create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("robots: fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBody))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("robots: read body: %w", err)
	}
	return body, resp.StatusCode, nil
}
