// internal/query/scheduler.go
// Rate-limit-aware source scheduling: budgets, limiters, breaker, retry
package query

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/reliability"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/sources"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// Skip reasons reported with Success=true (expected conditions, not failures)
const (
	ErrCircuitBreakerOpen  = "circuit_breaker_open"
	ErrBudgetExhausted     = "budget_exhausted"
	ErrUnsupportedLanguage = "unsupported_language"
)

// SourceScheduler wraps a news source with daily budget tracking, per-second
// pacing, rolling-window enforcement, a concurrency cap, language filtering,
// and an optional circuit breaker. Execute never returns failures as panics
// or errors: every outcome is a QueryResult.
type SourceScheduler struct {
	source             sources.Source
	name               string
	dailyLimit         int // 0 = unlimited
	perSecondLimiter   *reliability.PerSecondLimiter
	windowLimiter      *reliability.WindowLimiter
	supportedLanguages map[string]bool // nil = all languages
	breaker            *reliability.CircuitBreaker
	permits            *semaphore.Weighted

	mu         sync.Mutex
	dailyCount int
}

// SchedulerOption configures a SourceScheduler
type SchedulerOption func(*SourceScheduler)

// WithDailyLimit caps the number of requests per day (0 = unlimited)
func WithDailyLimit(limit int) SchedulerOption {
	return func(s *SourceScheduler) { s.dailyLimit = limit }
}

// WithPerSecondLimiter sets the per-request pacing gate
func WithPerSecondLimiter(l *reliability.PerSecondLimiter) SchedulerOption {
	return func(s *SourceScheduler) { s.perSecondLimiter = l }
}

// WithWindowLimiter sets the rolling-window gate
func WithWindowLimiter(l *reliability.WindowLimiter) SchedulerOption {
	return func(s *SourceScheduler) { s.windowLimiter = l }
}

// WithSupportedLanguages restricts the scheduler to a language set
func WithSupportedLanguages(langs []string) SchedulerOption {
	return func(s *SourceScheduler) {
		set := make(map[string]bool, len(langs))
		for _, lang := range langs {
			set[lang] = true
		}
		s.supportedLanguages = set
	}
}

// WithCircuitBreaker attaches a per-source circuit breaker
func WithCircuitBreaker(cb *reliability.CircuitBreaker) SchedulerOption {
	return func(s *SourceScheduler) { s.breaker = cb }
}

// WithConcurrency sets the maximum number of in-flight requests
func WithConcurrency(n int) SchedulerOption {
	return func(s *SourceScheduler) {
		if n < 1 {
			n = 1
		}
		s.permits = semaphore.NewWeighted(int64(n))
	}
}

// NewSourceScheduler wraps source with the given options
func NewSourceScheduler(source sources.Source, name string, opts ...SchedulerOption) *SourceScheduler {
	s := &SourceScheduler{
		source:  source,
		name:    name,
		permits: semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs q against the wrapped source. It never returns an error:
// transport and parse failures come back as Success=false, while expected
// skip conditions (open breaker, exhausted budget, unsupported language)
// come back as Success=true with a descriptive Error field.
func (s *SourceScheduler) Execute(ctx context.Context, q models.Query) models.QueryResult {
	// 1. Circuit breaker check - no request while the breaker is open
	if s.breaker != nil && s.breaker.IsOpen() {
		logger.Debug("scheduler: circuit breaker open, skipping", "source", s.name)
		return s.skipResult(q, ErrCircuitBreakerOpen)
	}

	// 2. Budget check - no request when the daily budget is spent
	if s.budgetExhausted() {
		logger.Debug("scheduler: budget exhausted, skipping", "source", s.name)
		return s.skipResult(q, ErrBudgetExhausted)
	}

	// 3. Language check
	if !s.SupportsLanguage(q.Language) {
		logger.Debug("scheduler: language not supported, skipping",
			"source", s.name, "language", q.Language)
		return s.skipResult(q, ErrUnsupportedLanguage)
	}

	// 4. Concurrency permit, then per-second gate, then window gate
	if err := s.permits.Acquire(ctx, 1); err != nil {
		return s.failResult(q, err)
	}
	defer s.permits.Release(1)

	if s.perSecondLimiter != nil {
		if err := s.perSecondLimiter.Acquire(ctx); err != nil {
			return s.failResult(q, err)
		}
	}
	if s.windowLimiter != nil {
		if err := s.windowLimiter.Acquire(ctx); err != nil {
			return s.failResult(q, err)
		}
	}

	// 5. Call the source under the rate-limit retry wrapper. The retry loop
	// reissues the identical request on the 429 signal, so the breaker only
	// sees a post-retry outcome and the limiters gate once per query.
	var articles []models.ArticleRef
	err := reliability.WithRateLimitRetry(ctx, s.name, func() error {
		var searchErr error
		articles, searchErr = s.source.Search(ctx, q.QueryString, q.Language, "IN", q.State, q.QueryString)
		return searchErr
	})

	// 6. The request counts against the budget whether or not it succeeded
	s.mu.Lock()
	s.dailyCount++
	s.mu.Unlock()

	if err != nil {
		if s.breaker != nil {
			s.breaker.RecordFailure()
		}
		logger.Warn("scheduler: query failed", "source", s.name, "query", q.QueryString, "error", err)
		return s.failResult(q, err)
	}

	// 7. Success
	if s.breaker != nil {
		s.breaker.RecordSuccess()
	}
	return models.QueryResult{
		Query:      q,
		SourceName: s.name,
		Articles:   articles,
		Success:    true,
	}
}

func (s *SourceScheduler) skipResult(q models.Query, reason string) models.QueryResult {
	return models.QueryResult{
		Query:      q,
		SourceName: s.name,
		Success:    true,
		Error:      reason,
	}
}

func (s *SourceScheduler) failResult(q models.Query, err error) models.QueryResult {
	return models.QueryResult{
		Query:      q,
		SourceName: s.name,
		Success:    false,
		Error:      err.Error(),
	}
}

func (s *SourceScheduler) budgetExhausted() bool {
	if s.dailyLimit <= 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dailyCount >= s.dailyLimit
}

// SupportsLanguage reports whether lang is accepted by this scheduler
func (s *SourceScheduler) SupportsLanguage(lang string) bool {
	return s.supportedLanguages == nil || s.supportedLanguages[lang]
}

// RemainingBudget returns the requests left today, or -1 when unlimited
func (s *SourceScheduler) RemainingBudget() int {
	if s.dailyLimit <= 0 {
		return -1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := s.dailyLimit - s.dailyCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Name returns the human-readable source name
func (s *SourceScheduler) Name() string {
	return s.name
}

// NewGoogleScheduler builds the Google News RSS scheduler: unlimited budget,
// 5 concurrent requests, ~1.5 requests per second with jitter.
func NewGoogleScheduler(source sources.Source, cb *reliability.CircuitBreaker) *SourceScheduler {
	return NewSourceScheduler(source, "google_news",
		WithPerSecondLimiter(reliability.NewPerSecondLimiter(1.5, 300*time.Millisecond)),
		WithConcurrency(5),
		WithCircuitBreaker(cb),
	)
}

// NewNewsDataScheduler builds the NewsData.io scheduler: 200 requests per
// day, 30 per 15-minute window, 10 per second, all 14 languages.
func NewNewsDataScheduler(source sources.Source, cb *reliability.CircuitBreaker) *SourceScheduler {
	return NewSourceScheduler(source, "newsdata",
		WithDailyLimit(200),
		WithPerSecondLimiter(reliability.NewPerSecondLimiter(10.0, 0)),
		WithWindowLimiter(reliability.NewWindowLimiter(30, 15*time.Minute)),
		WithSupportedLanguages([]string{"en", "hi", "ta", "te", "bn", "mr", "gu", "kn", "ml", "or", "pa", "as", "ur", "ne"}),
		WithCircuitBreaker(cb),
	)
}

// NewGNewsScheduler builds the GNews scheduler: 100 requests per day, 1 per
// second, 8 languages.
func NewGNewsScheduler(source sources.Source, cb *reliability.CircuitBreaker) *SourceScheduler {
	return NewSourceScheduler(source, "gnews",
		WithDailyLimit(100),
		WithPerSecondLimiter(reliability.NewPerSecondLimiter(1.0, 0)),
		WithSupportedLanguages([]string{"en", "hi", "bn", "ta", "te", "mr", "ml", "pa"}),
		WithCircuitBreaker(cb),
	)
}
