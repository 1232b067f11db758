package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/common"
)

func testCrawlerConfig() *common.CrawlerConfig {
	return &common.CrawlerConfig{
		UserAgent:         "scout-test",
		RequestTimeout:    5 * time.Second,
		ProbeTimeout:      5 * time.Second,
		RobotsTimeout:     2 * time.Second,
		RobotsCacheTTL:    time.Hour,
		RequestsPerSecond: 1000,
		GlobalRate:        1000,
		Concurrency:       5,
		MaxRetries:        3,
		RetryBackoff:      time.Millisecond,
		RespectRobotsTxt:  true,
		MaxBodySize:       1 << 20,
	}
}

func newTestFetcher(config *common.CrawlerConfig) *Fetcher {
	logger := arbor.NewLogger()
	robots := NewRobotsChecker(logger, config.UserAgent, config.RobotsTimeout, config.RobotsCacheTTL)
	limiter := NewRateLimiter(time.Millisecond)
	return NewFetcher(logger, config, robots, limiter)
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "scout-test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, "<html><body>hello</body></html>")
	}))
	defer server.Close()

	fetcher := newTestFetcher(testCrawlerConfig())
	result, err := fetcher.Fetch(context.Background(), server.URL+"/page")

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, string(result.Body), "hello")
}

func TestFetchRobots404StillCrawls(t *testing.T) {
	var pageHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&pageHits, 1)
		fmt.Fprint(w, "content")
	}))
	defer server.Close()

	fetcher := newTestFetcher(testCrawlerConfig())
	_, err := fetcher.Fetch(context.Background(), server.URL+"/page")

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&pageHits))
}

func TestFetchRobotsDisallowedNotRetried(t *testing.T) {
	var pageHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /\n")
			return
		}
		atomic.AddInt32(&pageHits, 1)
	}))
	defer server.Close()

	fetcher := newTestFetcher(testCrawlerConfig())
	_, err := fetcher.Fetch(context.Background(), server.URL+"/page")

	assert.ErrorIs(t, err, ErrRobotsDisallowed)
	assert.Equal(t, int32(0), atomic.LoadInt32(&pageHits), "a robots denial must not reach the page")
}

func TestFetchExhaustedAfterThreeAttempts(t *testing.T) {
	var pageHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&pageHits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := newTestFetcher(testCrawlerConfig())
	_, err := fetcher.Fetch(context.Background(), server.URL+"/page")

	assert.ErrorIs(t, err, ErrFetchExhausted)
	assert.Equal(t, int32(3), atomic.LoadInt32(&pageHits), "a persistent 5xx must be attempted exactly three times")
}

func TestFetchSkipsRobotsWhenDisabled(t *testing.T) {
	var robotsHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&robotsHits, 1)
			fmt.Fprint(w, "User-agent: *\nDisallow: /\n")
			return
		}
		fmt.Fprint(w, "content")
	}))
	defer server.Close()

	config := testCrawlerConfig()
	config.RespectRobotsTxt = false
	fetcher := newTestFetcher(config)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/page")

	require.NoError(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&robotsHits))
}
