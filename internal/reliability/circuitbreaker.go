// internal/reliability/circuitbreaker.go
// Per-source circuit breaker: closed -> open -> half-open -> closed
package reliability

import (
	"sync"
	"time"

	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// Circuit breaker states
const (
	StateClosed   = "closed"
	StateOpen     = "open"
	StateHalfOpen = "half-open"
)

// CircuitBreaker tracks consecutive failures for one news source and
// temporarily halts queries to it once failures cross the threshold.
//
// State transitions:
//   - closed: requests pass through; failures increment the counter
//   - open: requests are short-circuited until resetTimeout elapses,
//     then the breaker moves to half-open and allows one test request
//   - half-open: a success closes the breaker, a failure reopens it
type CircuitBreaker struct {
	name             string
	failureThreshold int
	resetTimeout     time.Duration

	mu           sync.Mutex
	failureCount int
	lastFailure  time.Time
	state        string
}

// NewCircuitBreaker creates a breaker for the named source.
// failureThreshold <= 0 defaults to 5; resetTimeout <= 0 defaults to 60s.
func NewCircuitBreaker(name string, failureThreshold int, resetTimeout time.Duration) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 60 * time.Second
	}
	return &CircuitBreaker{
		name:             name,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		state:            StateClosed,
	}
}

// IsOpen reports whether requests should be skipped. When the reset timeout
// has elapsed in the open state, the breaker transitions to half-open and
// lets the next call through.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return false
	}
	if time.Since(cb.lastFailure) >= cb.resetTimeout {
		cb.state = StateHalfOpen
		logger.Info("circuit breaker testing recovery", "source", cb.name, "state", cb.state)
		return false
	}
	return true
}

// State returns the current breaker state for logging and status reporting
func (cb *CircuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// RecordSuccess resets the failure counter and closes the breaker
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		logger.Info("circuit breaker recovered", "source", cb.name)
	}
	cb.failureCount = 0
	cb.state = StateClosed
}

// RecordFailure increments the consecutive-failure counter and opens the
// breaker once the threshold is reached. A failure in half-open reopens
// immediately.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	cb.lastFailure = time.Now()
	if cb.state == StateHalfOpen || cb.failureCount >= cb.failureThreshold {
		cb.state = StateOpen
		logger.Warn("circuit breaker opened",
			"source", cb.name,
			"consecutive_failures", cb.failureCount,
		)
	}
}
