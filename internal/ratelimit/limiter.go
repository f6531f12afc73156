// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

// Package ratelimit enforces a minimum interval between outbound calls to a
// single external provider.
//
// One Limiter is constructed per provider at startup and shared by every
// goroutine that talks to that provider. Acquire blocks the caller until the
// provider's interval has elapsed since the previous grant on the same
// instance. Two limiters never coordinate with each other.
//
// The implementation is a golang.org/x/time/rate token bucket with burst 1,
// which turns the bucket into a strict spacing guarantee: consecutive grants
// are at least 1/callsPerSecond apart, even after an idle period.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/resonance/internal/metrics"
)

// ErrInvalidRate is returned by New for a non-positive calls-per-second value.
var ErrInvalidRate = errors.New("ratelimit: calls per second must be positive")

// Limiter serializes calls to one provider at a fixed maximum rate.
type Limiter struct {
	mu sync.Mutex

	name     string
	interval time.Duration
	lim      *rate.Limiter

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	granted int64
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithSleeper replaces the context-aware sleep used while waiting for a slot.
// Tests pair it with WithClock so that sleeping advances the fake clock.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Limiter) { l.sleep = sleep }
}

// New creates a limiter for the named provider.
func New(name string, callsPerSecond float64, opts ...Option) (*Limiter, error) {
	if callsPerSecond <= 0 {
		return nil, fmt.Errorf("%w: %s=%v", ErrInvalidRate, name, callsPerSecond)
	}

	l := &Limiter{
		name:     name,
		interval: time.Duration(float64(time.Second) / callsPerSecond),
		lim:      rate.NewLimiter(rate.Limit(callsPerSecond), 1),
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Name returns the provider name this limiter guards.
func (l *Limiter) Name() string {
	return l.name
}

// Interval returns the minimum spacing between grants.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Acquire blocks until the caller may issue its call.
//
// The slot is reserved under the limiter's lock, so two concurrent callers
// can never both observe a free slot. The wait itself happens outside the
// lock. If ctx ends while waiting, the reservation is returned to the bucket
// and ctx.Err() is reported.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	now := l.now()
	r := l.lim.ReserveN(now, 1)
	if !r.OK() {
		l.mu.Unlock()
		return fmt.Errorf("ratelimit: %s: reservation refused", l.name)
	}
	delay := r.DelayFrom(now)
	l.granted++
	l.mu.Unlock()

	metrics.RateLimiterWait.WithLabelValues(l.name).Observe(delay.Seconds())

	if delay <= 0 {
		return nil
	}
	if err := l.sleep(ctx, delay); err != nil {
		r.CancelAt(l.now())
		l.mu.Lock()
		l.granted--
		l.mu.Unlock()
		return err
	}
	return nil
}

// Granted returns the number of successful acquisitions so far.
func (l *Limiter) Granted() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.granted
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
