// Package httpds implements an HTTP datasource with built-in retry/backoff.
// It lets a job read its JSON input or its mapping CSV straight from a URL
// (an export endpoint, an artifact store) instead of a local file.
//
// Design goals:
//
//   - Keep a tiny, explicit API (Get, plus a Source for the pipeline).
//   - Handle transient failures with exponential backoff.
//   - Respect context cancellation during requests and backoff waits.
//   - Be easy to test by injecting a custom RoundTripper and wait function.
package httpds

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Config configures the HTTP datasource client.
//
// Zero values are given sensible defaults:
//   - Timeout:        30s
//   - MaxRetries:     3
//   - InitialBackoff: 200ms
//   - MaxBackoff:     5s
type Config struct {
	// Timeout is the per-request timeout applied at the http.Client level.
	Timeout time.Duration

	// MaxRetries is the number of retry attempts after the initial request.
	// MaxRetries=0 means "no retries" (only the initial attempt).
	MaxRetries int

	// InitialBackoff is the base backoff duration for the first retry.
	// Each subsequent retry doubles the previous backoff up to MaxBackoff.
	InitialBackoff time.Duration

	// MaxBackoff caps the exponential backoff duration.
	MaxBackoff time.Duration

	// Transport is an optional custom RoundTripper, mainly for tests. When
	// nil, http.DefaultTransport is used.
	Transport http.RoundTripper
}

// Client wraps an http.Client with retry and backoff behavior.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration

	// wait is injectable to make tests fast and deterministic.
	wait func(ctx context.Context, d time.Duration) error
}

// NewClient constructs a Client from Config, applying defaults for zero values.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}

	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		wait:           waitWithContext,
	}
}

// Get fetches the URL, retrying transient failures with exponential backoff.
//
// The returned *http.Response has a non-nil Body which the caller must close.
// A non-2xx, non-retryable status is returned as an error; callers never have
// to inspect StatusCode themselves.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	if url == "" {
		return nil, fmt.Errorf("httpds: url must not be empty")
	}

	attempts := c.maxRetries + 1
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		// Respect context cancellation before each attempt.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("httpds: build request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			// Network or transport-level error. Treat as retryable.
			lastErr = err
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil
		case isRetryableStatus(resp.StatusCode):
			_ = resp.Body.Close()
			lastErr = fmt.Errorf("httpds: retryable status %d from GET %s", resp.StatusCode, url)
		default:
			_ = resp.Body.Close()
			return nil, fmt.Errorf("httpds: status %d from GET %s", resp.StatusCode, url)
		}

		// If this was the last allowed attempt, return the last error.
		if attempt+1 >= attempts {
			return nil, lastErr
		}

		if err := c.wait(ctx, backoffDuration(c.initialBackoff, attempt, c.maxBackoff)); err != nil {
			return nil, err
		}
	}

	return nil, lastErr
}

// isRetryableStatus reports whether the given HTTP status code should trigger
// a retry. This is intentionally conservative: 5xx and 429 are treated as
// transient; everything else is considered final.
func isRetryableStatus(code int) bool {
	if code == http.StatusTooManyRequests {
		return true
	}
	return code >= 500 && code <= 599
}

// backoffDuration returns the exponential backoff duration for the given
// attempt number (0-based retry index), clamped to max.
func backoffDuration(initial time.Duration, attempt int, max time.Duration) time.Duration {
	d := initial
	if attempt > 0 {
		d = initial << attempt
	}
	if d > max {
		return max
	}
	return d
}

// waitWithContext sleeps for d, aborting early if ctx is canceled.
func waitWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
