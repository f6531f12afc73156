// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package provider

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Retry defaults.
const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 30 * time.Second
)

// RetryPolicy is the single source of backoff behaviour for every provider.
//
// MaxRetries is the total number of attempts a request gets. Throttled
// responses, server errors and transport errors all draw from that one budget.
// The wait after a failed attempt n (0-based) is InitialBackoff * 2^n, capped
// at MaxBackoff, unless the provider supplied a retry-after hint, which is
// honored as given.
type RetryPolicy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// now is used to turn HTTP-date hints into durations.
	now func() time.Time
}

// DefaultRetryPolicy returns the policy used when nothing is configured.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     DefaultMaxRetries,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
	}
}

// normalized fills zero fields with defaults.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxRetries <= 0 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = DefaultInitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = DefaultMaxBackoff
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// Attempts returns the total number of attempts a request may make.
func (p RetryPolicy) Attempts() int {
	return p.normalized().MaxRetries
}

// Delay returns how long to wait after failed attempt n (0-based).
// A positive hint overrides the exponential schedule.
func (p RetryPolicy) Delay(attempt int, hint time.Duration) time.Duration {
	p = p.normalized()
	if hint > 0 {
		return hint
	}
	if attempt < 0 {
		attempt = 0
	}

	delay := p.InitialBackoff
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if delay > p.MaxBackoff {
		return p.MaxBackoff
	}
	return delay
}

// RetryAfter parses a Retry-After header value, either delta-seconds or an
// HTTP date. It returns 0 when the header is absent or unusable.
func (p RetryPolicy) RetryAfter(h http.Header) time.Duration {
	p = p.normalized()

	value := strings.TrimSpace(h.Get("Retry-After"))
	if value == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}

	if when, err := http.ParseTime(value); err == nil {
		if until := when.Sub(p.now()); until > 0 {
			return until
		}
	}
	return 0
}

// retryable reports whether an HTTP status is worth another attempt.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
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
