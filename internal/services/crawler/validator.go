package crawler

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/brightreply/scout/internal/models"
)

// URLValidator normalizes a raw URL and probes it for reachability with
// a HEAD request. Validation is read-only: nothing is persisted.
type URLValidator struct {
	httpClient        *http.Client
	logger            arbor.ILogger
	userAgent         string
	rejectPrivateHost bool
}

// NewURLValidator creates a URL validator. When rejectPrivateHost is set,
// loopback and private-range hosts fail validation, which keeps production
// scans from probing internal infrastructure.
func NewURLValidator(logger arbor.ILogger, userAgent string, probeTimeout time.Duration, rejectPrivateHost bool) *URLValidator {
	if probeTimeout <= 0 {
		probeTimeout = 10 * time.Second
	}

	return &URLValidator{
		httpClient: &http.Client{
			Timeout: probeTimeout,
			// Follow redirects but keep the chain observable via the
			// final request URL.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				return nil
			},
		},
		logger:            logger,
		userAgent:         userAgent,
		rejectPrivateHost: rejectPrivateHost,
	}
}

// Validate normalizes rawURL and issues a HEAD probe. A malformed URL or
// non-2xx probe yields IsValid=false with the reason recorded; redirects
// set FinalURL and add a warning.
func (v *URLValidator) Validate(ctx context.Context, rawURL string) *models.ValidationResult {
	result := &models.ValidationResult{}

	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.NormalizedURL = normalized
	result.FinalURL = normalized

	parsed, _ := url.Parse(normalized)
	if v.rejectPrivateHost && isPrivateHost(parsed.Hostname()) {
		result.Errors = append(result.Errors, fmt.Sprintf("host %s resolves to a private or loopback address", parsed.Hostname()))
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, normalized, nil)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to build probe request: %v", err))
		return result
	}
	req.Header.Set("User-Agent", v.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("probe failed: %v", err))
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	finalURL := resp.Request.URL.String()
	if finalURL != normalized {
		result.FinalURL = finalURL
		result.Warnings = append(result.Warnings, fmt.Sprintf("redirected to %s", finalURL))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		result.Errors = append(result.Errors, fmt.Sprintf("probe returned HTTP %d", resp.StatusCode))
		return result
	}

	result.IsValid = true
	return result
}

// NormalizeURL parses rawURL as an absolute http(s) URL, defaulting the
// scheme to https when missing.
func NormalizeURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty url", ErrInvalidURL)
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}

	parsed.Fragment = ""
	parsed.Host = strings.ToLower(parsed.Host)
	return parsed.String(), nil
}

// isPrivateHost reports whether a hostname is loopback, link-local, or in
// a private range. Hostnames that fail to resolve are not treated as
// private; the probe will surface the failure instead.
func isPrivateHost(hostname string) bool {
	if hostname == "localhost" {
		return true
	}

	if ip := net.ParseIP(hostname); ip != nil {
		return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast()
	}

	addrs, err := net.LookupIP(hostname)
	if err != nil {
		return false
	}
	for _, ip := range addrs {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() {
			return true
		}
	}
	return false
}
