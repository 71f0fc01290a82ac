package query

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/reliability"
)

// mockSource counts calls and replays canned responses
type mockSource struct {
	mu       sync.Mutex
	calls    int
	articles []models.ArticleRef
	err      error
}

func (m *mockSource) Search(ctx context.Context, query, language, country, state, searchTerm string) ([]models.ArticleRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.articles, m.err
}

func (m *mockSource) Close() {}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testQuery(lang string) models.Query {
	return models.Query{
		QueryString: "(heatwave) Rajasthan",
		Language:    lang,
		State:       "Rajasthan",
		StateSlug:   "rajasthan",
		Level:       models.LevelState,
		SourceHint:  models.SourceGoogle,
	}
}

func testRef(t *testing.T) models.ArticleRef {
	t.Helper()
	ref, err := models.NewArticleRef("Heatwave in Rajasthan", "https://example.com/a",
		"Src", time.Now(), "en", "Rajasthan", "heatwave")
	require.NoError(t, err)
	return ref
}

func TestSchedulerBudgetExhaustion(t *testing.T) {
	src := &mockSource{articles: []models.ArticleRef{testRef(t)}}
	scheduler := NewSourceScheduler(src, "mock", WithDailyLimit(3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := scheduler.Execute(ctx, testQuery("en"))
		assert.True(t, result.Success)
		assert.Empty(t, result.Error)
		assert.Len(t, result.Articles, 1)
	}
	assert.Equal(t, 3, src.callCount())
	assert.Equal(t, 0, scheduler.RemainingBudget())

	// The next execute is a budget skip: no HTTP call reaches the source
	result := scheduler.Execute(ctx, testQuery("en"))
	assert.True(t, result.Success)
	assert.Equal(t, ErrBudgetExhausted, result.Error)
	assert.Empty(t, result.Articles)
	assert.Equal(t, 3, src.callCount())
}

func TestSchedulerUnsupportedLanguage(t *testing.T) {
	src := &mockSource{}
	scheduler := NewSourceScheduler(src, "mock", WithSupportedLanguages([]string{"en", "hi"}))

	result := scheduler.Execute(context.Background(), testQuery("ta"))
	assert.True(t, result.Success)
	assert.Equal(t, ErrUnsupportedLanguage, result.Error)
	assert.Equal(t, 0, src.callCount())
}

func TestSchedulerCircuitBreakerOpen(t *testing.T) {
	src := &mockSource{}
	cb := reliability.NewCircuitBreaker("mock", 1, time.Hour)
	cb.RecordFailure() // trip it
	scheduler := NewSourceScheduler(src, "mock", WithCircuitBreaker(cb))

	result := scheduler.Execute(context.Background(), testQuery("en"))
	assert.True(t, result.Success)
	assert.Equal(t, ErrCircuitBreakerOpen, result.Error)
	assert.Equal(t, 0, src.callCount())
}

func TestSchedulerFailureFeedsBreaker(t *testing.T) {
	src := &mockSource{err: errors.New("connection reset")}
	cb := reliability.NewCircuitBreaker("mock", 2, time.Hour)
	scheduler := NewSourceScheduler(src, "mock", WithCircuitBreaker(cb))
	ctx := context.Background()

	result := scheduler.Execute(ctx, testQuery("en"))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "connection reset")
	assert.False(t, cb.IsOpen())

	scheduler.Execute(ctx, testQuery("en"))
	assert.True(t, cb.IsOpen())

	// With the breaker open the source is no longer called
	calls := src.callCount()
	result = scheduler.Execute(ctx, testQuery("en"))
	assert.Equal(t, ErrCircuitBreakerOpen, result.Error)
	assert.Equal(t, calls, src.callCount())
}

func TestSchedulerSuccessClosesBreaker(t *testing.T) {
	src := &mockSource{articles: []models.ArticleRef{testRef(t)}}
	cb := reliability.NewCircuitBreaker("mock", 5, time.Hour)
	cb.RecordFailure()
	scheduler := NewSourceScheduler(src, "mock", WithCircuitBreaker(cb))

	result := scheduler.Execute(context.Background(), testQuery("en"))
	assert.True(t, result.Success)
	assert.Equal(t, reliability.StateClosed, cb.State())
}

func TestSchedulerFailedRequestCountsAgainstBudget(t *testing.T) {
	src := &mockSource{err: errors.New("boom")}
	scheduler := NewSourceScheduler(src, "mock", WithDailyLimit(2))
	ctx := context.Background()

	scheduler.Execute(ctx, testQuery("en"))
	assert.Equal(t, 1, scheduler.RemainingBudget())
	scheduler.Execute(ctx, testQuery("en"))
	assert.Equal(t, 0, scheduler.RemainingBudget())
}

func TestSchedulerUnlimitedBudget(t *testing.T) {
	src := &mockSource{}
	scheduler := NewSourceScheduler(src, "mock")
	assert.Equal(t, -1, scheduler.RemainingBudget())
}
