// Resonance - Music Recommendation Discovery and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/resonance

package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// virtualTime is a fake clock whose sleeper advances the clock instead of blocking.
type virtualTime struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newVirtualTime() *virtualTime {
	return &virtualTime{now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
}

func (v *virtualTime) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

func (v *virtualTime) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = v.now.Add(d)
	v.sleeps = append(v.sleeps, d)
	return nil
}

func (v *virtualTime) Advance(d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = v.now.Add(d)
}

func TestNew_RejectsInvalidRate(t *testing.T) {
	for _, cps := range []float64{0, -1} {
		if _, err := New("bad", cps); !errors.Is(err, ErrInvalidRate) {
			t.Errorf("New(%v) error = %v, want ErrInvalidRate", cps, err)
		}
	}
}

func TestLimiter_Interval(t *testing.T) {
	l, err := New("lastfm", 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := l.Interval(); got != 250*time.Millisecond {
		t.Errorf("Interval() = %v, want 250ms", got)
	}
	if l.Name() != "lastfm" {
		t.Errorf("Name() = %q, want lastfm", l.Name())
	}
}

func TestLimiter_SequentialSpacing(t *testing.T) {
	vt := newVirtualTime()
	const k = 4.0
	l, err := New("test", k, WithClock(vt.Now), WithSleeper(vt.Sleep))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := vt.Now()
	grants := make([]time.Time, 0, 6)
	for i := 0; i < 6; i++ {
		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire %d: %v", i, err)
		}
		grants = append(grants, vt.Now())
	}

	span := grants[len(grants)-1].Sub(start)
	minSpan := time.Duration(float64(len(grants)-1) / k * float64(time.Second))
	if span < minSpan {
		t.Errorf("span = %v, want >= %v", span, minSpan)
	}

	for i := 1; i < len(grants); i++ {
		if gap := grants[i].Sub(grants[i-1]); gap < l.Interval() {
			t.Errorf("gap between grant %d and %d = %v, want >= %v", i-1, i, gap, l.Interval())
		}
	}

	if l.Granted() != 6 {
		t.Errorf("Granted() = %d, want 6", l.Granted())
	}
}

func TestLimiter_FirstCallAfterIdleIsImmediate(t *testing.T) {
	vt := newVirtualTime()
	l, err := New("test", 2, WithClock(vt.Now), WithSleeper(vt.Sleep))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	vt.Advance(10 * time.Second)
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	if len(vt.sleeps) != 0 {
		t.Errorf("expected no waits after idle period, got %v", vt.sleeps)
	}
}

func TestLimiter_CanceledContext(t *testing.T) {
	l, err := New("test", 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("first Acquire: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Acquire with short deadline = %v, want DeadlineExceeded", err)
	}
	if l.Granted() != 1 {
		t.Errorf("Granted() = %d after canceled wait, want 1", l.Granted())
	}
}

func TestLimiter_ConcurrentCallersHonorInterval(t *testing.T) {
	const (
		k       = 20.0
		callers = 6
	)
	l, err := New("test", k)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
			}
		}()
	}
	wg.Wait()

	elapsed := time.Since(start)
	minSpan := time.Duration(float64(callers-1) / k * float64(time.Second))
	if elapsed < minSpan {
		t.Errorf("%d concurrent acquires took %v, want >= %v", callers, elapsed, minSpan)
	}
}
