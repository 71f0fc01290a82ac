// internal/reliability/ratelimit.go
// Per-second and rolling-window rate limiters for news source pacing
package reliability

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// PerSecondLimiter enforces a minimum interval between successive Acquire
// returns, with optional random jitter to avoid thundering-herd effects when
// several schedulers start simultaneously. Concurrent callers serialise
// through the internal mutex, so arrival order into the backend matches
// acquisition order.
type PerSecondLimiter struct {
	limiter *rate.Limiter
	jitter  time.Duration
	mu      sync.Mutex
}

// NewPerSecondLimiter creates a limiter allowing maxPerSecond requests per
// second (e.g. 1.5 means one request every ~0.67s) plus uniform random
// jitter in [0, jitter] after each wait.
func NewPerSecondLimiter(maxPerSecond float64, jitter time.Duration) *PerSecondLimiter {
	return &PerSecondLimiter{
		limiter: rate.NewLimiter(rate.Limit(maxPerSecond), 1),
		jitter:  jitter,
	}
}

// Acquire blocks until the next request slot is available or ctx is done
func (l *PerSecondLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	if l.jitter > 0 {
		delay := time.Duration(rand.Int63n(int64(l.jitter)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// WindowLimiter is a rolling-window rate limiter (e.g. 30 requests per 15
// minutes). It tracks the monotonic timestamps of the last maxRequests
// acquisitions and blocks Acquire until the oldest falls out of the window.
type WindowLimiter struct {
	max        int
	window     time.Duration
	mu         sync.Mutex
	timestamps []time.Time
}

// NewWindowLimiter creates a limiter allowing maxRequests per window
func NewWindowLimiter(maxRequests int, window time.Duration) *WindowLimiter {
	return &WindowLimiter{
		max:    maxRequests,
		window: window,
	}
}

// prune drops timestamps that have fallen outside the window.
// Caller must hold the mutex.
func (l *WindowLimiter) prune(now time.Time) {
	kept := l.timestamps[:0]
	for _, t := range l.timestamps {
		if now.Sub(t) < l.window {
			kept = append(kept, t)
		}
	}
	l.timestamps = kept
}

// Acquire blocks until a request slot is available in the current window
func (l *WindowLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.prune(now)
	if len(l.timestamps) >= l.max {
		// Wait until the oldest request falls outside the window, with a
		// small safety margin against clock granularity.
		oldest := l.timestamps[0]
		wait := l.window - now.Sub(oldest) + 100*time.Millisecond
		if wait > 0 {
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		l.prune(time.Now())
	}
	l.timestamps = append(l.timestamps, time.Now())
	return nil
}

// ExhaustedInWindow reports whether the rolling window is currently full
func (l *WindowLimiter) ExhaustedInWindow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune(time.Now())
	return len(l.timestamps) >= l.max
}
