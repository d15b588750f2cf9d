// Package daemonapi is the HTTP client for the VPN daemon's local REST API.
package daemonapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
	"git.home.luguber.info/inful/vpndesk/internal/metrics"
	"git.home.luguber.info/inful/vpndesk/internal/retry"
	"git.home.luguber.info/inful/vpndesk/internal/version"
)

// Client talks to the daemon API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	policy     retry.Policy
	recorder   metrics.Recorder
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetryPolicy sets the backoff policy for idempotent requests.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// New creates a client for the daemon at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ferrors.ConfigError("invalid daemon API URL").
			WithCause(err).
			WithContext("url", baseURL).
			Build()
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		policy:     retry.DefaultPolicy(),
		recorder:   metrics.NoopRecorder{},
		userAgent:  "vpndesk/" + version.Version,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newRequest creates an HTTP request against the daemon with common headers.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(endpoint, "/")

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, ferrors.InternalError("failed to marshal request body").
				WithCause(err).
				WithContext("endpoint", endpoint).
				Build()
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, ferrors.DaemonError("failed to create request").
			WithCause(err).
			WithContext("method", method).
			WithContext("url", u.String()).
			Build()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// do executes a request and decodes a JSON response into result when non-nil.
func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ferrors.NetworkError("failed to reach daemon").
			WithCause(err).
			WithContext("method", req.Method).
			WithContext("url", req.URL.String()).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		limitedBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		bodyStr := strings.ReplaceAll(string(limitedBody), "\n", " ")

		b := ferrors.NewError(ferrors.CategoryDaemon, fmt.Sprintf("daemon API error: %s", resp.Status))
		switch {
		case resp.StatusCode == http.StatusNotFound:
			b = ferrors.NotFoundError(fmt.Sprintf("daemon API error: %s", resp.Status))
		case resp.StatusCode == http.StatusConflict:
			b = ferrors.NewError(ferrors.CategoryAlreadyExists, fmt.Sprintf("daemon API error: %s", resp.Status))
		case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
			b = b.Retryable()
		}
		return b.WithContext("status", resp.Status).
			WithContext("code", resp.StatusCode).
			WithContext("url", req.URL.String()).
			WithContext("response", bodyStr).
			Build()
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return ferrors.DaemonError("failed to decode daemon response").
				WithCause(err).
				WithContext("url", req.URL.String()).
				Build()
		}
	}
	return nil
}

// call issues one logical API call. Idempotent methods are retried with the
// client's policy; POST is attempted once.
func (c *Client) call(ctx context.Context, method, endpoint string, body, result any) error {
	start := time.Now()
	attempt := func(ctx context.Context) error {
		req, err := c.newRequest(ctx, method, endpoint, body)
		if err != nil {
			return err
		}
		return c.do(req, result)
	}

	var err error
	if method == http.MethodPost {
		err = attempt(ctx)
	} else {
		err = c.policy.Do(ctx, ferrors.IsRetryable, attempt)
	}
	c.recorder.ObserveAPIRequest(method+" "+routeLabel(endpoint), time.Since(start), err == nil)
	return err
}

// routeLabel collapses identity ids so metrics labels stay bounded.
func routeLabel(endpoint string) string {
	parts := strings.Split(strings.Trim(endpoint, "/"), "/")
	if len(parts) >= 2 && parts[0] == "identities" && parts[1] != "current" {
		parts[1] = ":id"
	}
	return "/" + strings.Join(parts, "/")
}
