// internal/reliability/retry.go
// Exponential-backoff retry for the distinguished rate-limit signal
package reliability

import (
	"context"
	"math/rand"
	"time"

	apperrors "github.com/AIDMI-DataHub/heat-news-extraction/pkg/errors"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// retryPolicy describes the backoff schedule for HTTP 429 responses
type retryPolicy struct {
	maxAttempts int
	initialWait time.Duration
	maxWait     time.Duration
	maxJitter   time.Duration
}

// Only the rate-limit signal is retried; every other error returns to the
// caller unchanged on the first attempt.
var defaultRetryPolicy = retryPolicy{
	maxAttempts: 5,
	initialWait: 1 * time.Second,
	maxWait:     60 * time.Second,
	maxJitter:   5 * time.Second,
}

// WithRateLimitRetry runs fn with exponential backoff on the rate-limit
// signal: waits start at 1s and double up to a 60s cap, plus additive
// uniform jitter of up to 5s, for at most 5 attempts. After the final
// attempt the signal is returned to the caller.
func WithRateLimitRetry(ctx context.Context, source string, fn func() error) error {
	return retryWith(ctx, source, defaultRetryPolicy, fn)
}

func retryWith(ctx context.Context, source string, policy retryPolicy, fn func() error) error {
	wait := policy.initialWait
	var err error
	for attempt := 1; attempt <= policy.maxAttempts; attempt++ {
		err = fn()
		if err == nil || !apperrors.IsRateLimit(err) {
			return err
		}
		if attempt == policy.maxAttempts {
			break
		}
		delay := wait
		if policy.maxJitter > 0 {
			delay += time.Duration(rand.Int63n(int64(policy.maxJitter)))
		}
		logger.Warn("rate limited, backing off",
			"source", source,
			"attempt", attempt,
			"delay", delay.String(),
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		wait *= 2
		if wait > policy.maxWait {
			wait = policy.maxWait
		}
	}
	return err
}
