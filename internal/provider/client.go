// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/resonance/internal/logging"
	"github.com/tomtom215/resonance/internal/metrics"
)

const (
	// maxBodyBytes bounds how much of a response body is read into memory.
	maxBodyBytes = 8 << 20

	// maxErrorBody bounds the body excerpt kept on a StatusError.
	maxErrorBody = 256

	defaultTimeout   = 15 * time.Second
	defaultUserAgent = "resonance/1.0"
)

// Acquirer is the rate limiter contract the client depends on.
type Acquirer interface {
	Acquire(ctx context.Context) error
}

// Config describes one provider endpoint.
type Config struct {
	// Name labels logs, metrics and the circuit breaker (e.g. "lastfm").
	Name string

	// BaseURL is prefixed to every request path.
	BaseURL string

	// Timeout bounds a single HTTP attempt. Default: 15s
	Timeout time.Duration

	// Retry is the backoff policy shared by every call to this provider.
	Retry RetryPolicy

	// Breaker configures the circuit breaker.
	Breaker BreakerSettings

	// UserAgent is sent on every request. Default: resonance/1.0
	UserAgent string
}

// Request is one GET call relative to the client's base URL.
type Request struct {
	Path   string
	Query  url.Values
	Header http.Header

	// Throttled lets an adapter recognize provider-specific throttling that
	// does not use HTTP 429, such as an error code inside a JSON body.
	Throttled func(status int, body []byte) bool
}

// Client is the resilient batch client used by every provider adapter.
//
// Each attempt first waits on the provider's rate limiter. Throttled
// responses, 5xx statuses and transport errors are retried according to the
// RetryPolicy. Other statuses fail immediately with a *StatusError. The whole
// exchange runs inside a circuit breaker so a failing provider is shed quickly.
type Client struct {
	name      string
	baseURL   string
	userAgent string

	httpClient *http.Client
	limiter    Acquirer
	retry      RetryPolicy
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithSleeper replaces the backoff sleep. Tests use it to record delays.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) { c.sleep = sleep }
}

// WithLogger replaces the component logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for one provider. The limiter is shared with
// nothing but this provider's calls.
func NewClient(cfg Config, limiter Acquirer, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	c := &Client{
		name:       cfg.Name,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		retry:      cfg.Retry.normalized(),
		logger:     logging.WithComponent("provider").With().Str("provider", cfg.Name).Logger(),
		sleep:      SleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = newBreaker(cfg.Name, cfg.Breaker, c.logger)
	return c
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// GetJSON performs req and decodes a successful body into out.
// out may be nil when only the status matters.
func (c *Client) GetJSON(ctx context.Context, req Request, out interface{}) error {
	start := time.Now()

	body, err := c.execute(func() ([]byte, error) {
		return c.fetch(ctx, req)
	})
	if err != nil {
		metrics.RecordProviderRequest(c.name, outcomeFor(err), time.Since(start))
		return err
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			metrics.RecordProviderRequest(c.name, "decode_error", time.Since(start))
			return fmt.Errorf("%s: decode response: %w", c.name, err)
		}
	}

	metrics.RecordProviderRequest(c.name, "success", time.Since(start))
	return nil
}

// fetch runs the attempt loop and returns the raw body of the first success.
func (c *Client) fetch(ctx context.Context, req Request) ([]byte, error) {
	attempts := c.retry.Attempts()

	var (
		lastStatus int
		lastErr    error
	)

	for attempt := 0; attempt < attempts; attempt++ {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		status, header, body, err := c.do(ctx, req)

		var (
			hint   time.Duration
			reason string
		)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastStatus, lastErr = 0, err
			reason = "transport"
		case status == http.StatusTooManyRequests || (req.Throttled != nil && req.Throttled(status, body)):
			lastStatus, lastErr = status, nil
			hint = c.retry.RetryAfter(header)
			reason = "throttled"
		case status >= 200 && status < 300:
			return body, nil
		case retryable(status):
			lastStatus, lastErr = status, nil
			reason = "server_error"
		default:
			return nil, &StatusError{Provider: c.name, StatusCode: status, Body: excerpt(body)}
		}

		if attempt == attempts-1 {
			break
		}

		delay := c.retry.Delay(attempt, hint)
		metrics.RecordProviderRetry(c.name, reason)

		event := c.logger.Warn().
			Str("path", req.Path).
			Str("reason", reason).
			Dur("retry_delay", delay).
			Int("attempt", attempt+1).
			Int("max_retries", attempts)
		if lastErr != nil {
			event = event.Err(lastErr)
		} else {
			event = event.Int("status", lastStatus)
		}
		event.Msg("Provider request failed, retrying")

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, &RateLimitExceededError{
		Provider:   c.name,
		Attempts:   attempts,
		LastStatus: lastStatus,
		LastErr:    lastErr,
	}
}

// do executes a single HTTP attempt and reads the bounded body.
func (c *Client) do(ctx context.Context, req Request) (int, http.Header, []byte, error) {
	reqURL := c.baseURL + req.Path

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("create request: %w", err)
	}

	if len(req.Query) > 0 {
		httpReq.URL.RawQuery = req.Query.Encode()
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// *url.Error embeds the full URL, including the Last.fm api_key.
		var ue *url.Error
		if errors.As(err, &ue) {
			ue.URL = logging.RedactURL(ue.URL)
		}
		return 0, nil, nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, resp.Header, body, nil
}

// excerpt trims a response body for inclusion in an error message.
func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

// outcomeFor maps an error onto the provider_requests_total outcome label.
func outcomeFor(err error) string {
	var (
		exhausted *RateLimitExceededError
		statusErr *StatusError
	)
	switch {
	case errors.As(err, &exhausted):
		return "exhausted"
	case errors.Is(err, ErrTransient):
		return "rejected"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.As(err, &statusErr):
		return "client_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
