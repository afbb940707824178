// Package transport performs rate-limited, timeout-bounded JSON fetches
// against provider APIs.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mangamux/mangamux/internal/ratelimit"
)

const (
	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 10 * time.Second
	// throttleBackoff is used when a 429/503 carries no Retry-After.
	throttleBackoff = 2 * time.Second
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Options customize a single fetch.
type Options struct {
	Timeout time.Duration
	Headers map[string]string
}

// Client is the shared JSON fetcher. All provider adapters go through a
// single Client so the per-host token buckets are actually shared.
type Client struct {
	httpClient HTTPDoer
	limiter    *ratelimit.HostLimiter
	timeout    time.Duration
}

// New creates a Client with the default per-host limiter.
func New() *Client {
	return &Client{
		httpClient: &http.Client{},
		limiter:    ratelimit.New(),
		timeout:    DefaultTimeout,
	}
}

// NewWithTimeout creates a Client with a custom default request timeout.
func NewWithTimeout(timeout time.Duration) *Client {
	c := New()
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

// NewWithLimiter creates a Client using the supplied limiter and HTTP
// doer; either may be nil to use the defaults.
func NewWithLimiter(limiter *ratelimit.HostLimiter, doer HTTPDoer) *Client {
	c := New()
	if limiter != nil {
		c.limiter = limiter
	}
	if doer != nil {
		c.httpClient = doer
	}
	return c
}

// FetchJSON performs a GET against rawURL and decodes the body into target.
// It waits for a rate-limit token, enforces the timeout, and retries
// exactly once on 429/503 honoring Retry-After. Retries take a fresh token.
func (c *Client) FetchJSON(ctx context.Context, rawURL string, opts Options, target any) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	host := parsed.Hostname()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	resp, err := c.attempt(ctx, host, rawURL, timeout, opts.Headers)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		delay := retryDelay(resp)
		_ = resp.Body.Close()
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return &TimeoutError{Host: host, URL: rawURL}
		}
		resp, err = c.attempt(ctx, host, rawURL, timeout, opts.Headers)
		if err != nil {
			return err
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Status: resp.StatusCode, Host: host, URL: rawURL}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response from %s: %w", host, err)
	}
	return nil
}

// attempt performs one rate-limited request and classifies failures.
func (c *Client) attempt(ctx context.Context, host, rawURL string, timeout time.Duration, headers map[string]string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx, host); err != nil {
		return nil, &NetworkError{Host: host, Message: err.Error()}
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, &TimeoutError{Host: host, URL: rawURL}
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &TimeoutError{Host: host, URL: rawURL}
		}
		return nil, &NetworkError{Host: host, Message: err.Error()}
	}

	// The body read happens in the caller; tie the cancel to body close.
	resp.Body = &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func retryDelay(resp *http.Response) time.Duration {
	if after := resp.Header.Get("Retry-After"); after != "" {
		if secs, err := strconv.Atoi(after); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return throttleBackoff
}

type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	c.cancel()
	return c.ReadCloser.Close()
}
