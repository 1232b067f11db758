package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newRobotsChecker() *RobotsChecker {
	return NewRobotsChecker(arbor.NewLogger(), "scout-test", 5*time.Second, time.Hour)
}

func TestRobotsMissingFileAllowsAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	checker := newRobotsChecker()
	allowed, err := checker.IsAllowed(context.Background(), server.URL+"/any/page")

	require.NoError(t, err)
	assert.True(t, allowed, "a 404 robots.txt must default to allow")
}

func TestRobotsDisallowRule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	checker := newRobotsChecker()
	ctx := context.Background()

	allowed, err := checker.IsAllowed(ctx, server.URL+"/public/page")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = checker.IsAllowed(ctx, server.URL+"/private/page")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRobotsDisallowMatchesQueryString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nDisallow: /*?\n")
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer server.Close()

	checker := newRobotsChecker()
	ctx := context.Background()

	allowed, err := checker.IsAllowed(ctx, server.URL+"/page")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = checker.IsAllowed(ctx, server.URL+"/page?session=1")
	require.NoError(t, err)
	assert.False(t, allowed, "a wildcard query rule must see the query string")
}

func TestRobotsUnreachableHostAllowsAll(t *testing.T) {
	checker := NewRobotsChecker(arbor.NewLogger(), "scout-test", 200*time.Millisecond, time.Hour)

	allowed, err := checker.IsAllowed(context.Background(), "http://127.0.0.1:1/page")

	require.NoError(t, err)
	assert.True(t, allowed, "an unreachable robots.txt must default to allow")
}

func TestRobotsResponseIsCached(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fetches++
			fmt.Fprint(w, "User-agent: *\nAllow: /\n")
		}
	}))
	defer server.Close()

	checker := newRobotsChecker()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := checker.IsAllowed(ctx, fmt.Sprintf("%s/page/%d", server.URL, i))
		require.NoError(t, err)
	}

	assert.Equal(t, 1, fetches, "robots.txt must be fetched once per host within the TTL")
}

func TestRobotsCrawlDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			fmt.Fprint(w, "User-agent: *\nCrawl-delay: 2\n")
		}
	}))
	defer server.Close()

	checker := newRobotsChecker()
	_, err := checker.IsAllowed(context.Background(), server.URL+"/page")
	require.NoError(t, err)

	host := server.Listener.Addr().String()
	assert.Equal(t, 2*time.Second, checker.CrawlDelay(host))
}

func TestRobotsMalformedURL(t *testing.T) {
	checker := newRobotsChecker()

	_, err := checker.IsAllowed(context.Background(), "not a url at all")
	assert.Error(t, err)
}
