package crawler

import "errors"

// Sentinel errors for the fetch pipeline. Callers classify per-URL
// failures with errors.Is against these.
var (
	// ErrInvalidURL - the URL is malformed or failed the validation probe
	ErrInvalidURL = errors.New("invalid url")

	// ErrRobotsDisallowed - robots.txt forbids crawling the URL. Never retried.
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")

	// ErrFetchExhausted - all retry attempts failed; wraps the last error
	ErrFetchExhausted = errors.New("fetch attempts exhausted")

	// ErrNoValidURLs - a scan job had no usable URLs after validation
	ErrNoValidURLs = errors.New("no valid urls to scan")
)
