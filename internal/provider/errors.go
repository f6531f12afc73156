// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransient marks failures that may succeed later: exhausted retries,
	// open circuit breakers, transport errors. Callers skip the item.
	ErrTransient = errors.New("provider: transient failure")

	// ErrNotFound is returned for HTTP 404 responses.
	ErrNotFound = errors.New("provider: not found")

	// ErrUnauthorized is returned for HTTP 401 and 403 responses.
	ErrUnauthorized = errors.New("provider: unauthorized")
)

// RateLimitExceededError is returned once the retry policy is exhausted.
// It wraps ErrTransient.
type RateLimitExceededError struct {
	Provider   string
	Attempts   int
	LastStatus int   // 0 when the last attempt failed before a response
	LastErr    error // transport error of the last attempt, if any
}

func (e *RateLimitExceededError) Error() string {
	if e.LastStatus != 0 {
		return fmt.Sprintf("%s: gave up after %d attempts (last status %d)", e.Provider, e.Attempts, e.LastStatus)
	}
	if e.LastErr != nil {
		return fmt.Sprintf("%s: gave up after %d attempts: %v", e.Provider, e.Attempts, e.LastErr)
	}
	return fmt.Sprintf("%s: gave up after %d attempts", e.Provider, e.Attempts)
}

// Unwrap exposes both the transient marker and the last transport error.
func (e *RateLimitExceededError) Unwrap() []error {
	if e.LastErr != nil {
		return []error{ErrTransient, e.LastErr}
	}
	return []error{ErrTransient}
}

// StatusError is a non-retryable HTTP failure.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Provider, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.StatusCode)
}

// Unwrap maps well-known statuses onto sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	default:
		return nil
	}
}

// IsRecoverable reports whether err should only cost the current item.
// A rejected credential or a finished context fails every later call as well,
// so those end the invocation instead.
func IsRecoverable(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, ErrUnauthorized) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// isBreakerNeutral reports whether err says nothing about provider health:
// a non-retryable status describes the request, and a finished context
// describes the caller.
func isBreakerNeutral(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}
