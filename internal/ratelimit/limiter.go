// Package ratelimit enforces a minimum interval between outbound calls.
//
// A Limiter serializes the whole "wait, call, record completion" sequence
// under one mutex, so concurrent callers can never burst past the interval.
// The interval is measured from the completion of the previous call to the
// start of the next one.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/apicaller/internal/constants"
)

// Limiter spaces calls by a fixed minimum interval.
type Limiter struct {
	mu       sync.Mutex
	clock    clock.Clock
	interval time.Duration
	limiter  *rate.Limiter
	lastCall time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(l *Limiter) {
		if c != nil {
			l.clock = c
		}
	}
}

// New creates a limiter. An interval <= 0 disables waiting but calls are
// still serialized.
func New(interval time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		clock:    clock.New(),
		interval: interval,
	}

	for _, opt := range opts {
		opt(l)
	}

	l.limiter = l.newRateLimiter()

	return l
}

// Interval returns the configured minimum interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// LastCall returns the completion time of the most recent call, or the zero
// time if no call went through the limiter yet.
func (l *Limiter) LastCall() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.lastCall
}

// Do waits for the interval to elapse since the last completed call, runs fn
// and records its completion time, whether fn failed or not. It returns the
// time spent waiting. If ctx ends during the wait, fn is not run.
func (l *Limiter) Do(ctx context.Context, fn func() error) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	reservation := l.limiter.ReserveN(now, 1)
	wait := reservation.DelayFrom(now)

	if wait > 0 {
		err := l.sleep(ctx, wait)
		if err != nil {
			reservation.CancelAt(l.clock.Now())

			return 0, fmt.Errorf("waiting for rate limit: %w", err)
		}
	}

	err := fn()

	l.markCall(l.clock.Now())

	return wait, err
}

func (l *Limiter) sleep(ctx context.Context, d time.Duration) error {
	timer := l.clock.Timer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// markCall restarts the token bucket so the next token becomes available
// exactly one interval after t.
func (l *Limiter) markCall(t time.Time) {
	l.lastCall = t
	l.limiter = l.newRateLimiter()
	l.limiter.ReserveN(t, 1)
}

func (l *Limiter) newRateLimiter() *rate.Limiter {
	if l.interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}

	return rate.NewLimiter(rate.Every(l.interval), 1)
}

var (
	defaultMu      sync.RWMutex
	defaultLimiter = New(constants.DefaultCallInterval)
)

// Default returns the process-wide limiter shared by every caller that was
// not given its own limiter.
func Default() *Limiter {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultLimiter
}

// SetDefault replaces the process-wide limiter and returns the previous one.
// Callers without an explicit limiter use the new one from their next call.
func SetDefault(l *Limiter) *Limiter {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	previous := defaultLimiter
	if l != nil {
		defaultLimiter = l
	}

	return previous
}
