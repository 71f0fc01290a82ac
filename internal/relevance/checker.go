// internal/relevance/checker.go
// LLM relevance checking: interface, provider gate, and shared behavior
package relevance

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// Checker is the LLM relevance capability. When no provider is configured
// the pipeline runs without one; callers treat the capability as optional.
//
// Error policy: FilterRefs fails open (a ref whose check errors is kept);
// ExtractDistrict fails safe (an errored extraction leaves the district
// unset).
type Checker interface {
	// CheckRelevance reports whether an article with this title (and
	// optional text) is heat-relevant for the given state/district.
	CheckRelevance(ctx context.Context, title, text, state, district string) bool

	// FilterRefs drops refs whose titles the LLM judges irrelevant.
	// Runs before extraction so irrelevant articles never cost a fetch.
	FilterRefs(ctx context.Context, refs []models.ArticleRef) []models.ArticleRef

	// ExtractDistrict returns a district name from the supplied list, or
	// "" when the article is about the state generally or on any failure.
	ExtractDistrict(ctx context.Context, title, text, state string, districts []string) string

	// Close releases provider resources.
	Close()
}

// provider is one LLM HTTP backend: a single completion call plus cleanup
type provider interface {
	name() string
	complete(ctx context.Context, system, user string) (string, error)
	close()
}

// gatedChecker wraps a provider with a concurrency permit and a minimum
// interval between calls, implementing the full Checker behavior.
type gatedChecker struct {
	provider    provider
	permits     *semaphore.Weighted
	minInterval time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

func newGatedChecker(p provider, maxConcurrent int, minInterval time.Duration) *gatedChecker {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &gatedChecker{
		provider:    p,
		permits:     semaphore.NewWeighted(int64(maxConcurrent)),
		minInterval: minInterval,
	}
}

// call runs one completion under the concurrency and interval gates
func (c *gatedChecker) call(ctx context.Context, system, user string) (string, error) {
	if err := c.permits.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.permits.Release(1)

	c.mu.Lock()
	wait := c.minInterval - time.Since(c.lastCall)
	if wait > 0 {
		c.mu.Unlock()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
		c.mu.Lock()
	}
	c.lastCall = time.Now()
	c.mu.Unlock()

	return c.provider.complete(ctx, system, user)
}

func (c *gatedChecker) CheckRelevance(ctx context.Context, title, text, state, district string) bool {
	response, err := c.call(ctx, systemPrompt, buildRelevancePrompt(title, text, state, district))
	if err != nil {
		logger.Warn("llm relevance check failed, keeping article",
			"provider", c.provider.name(), "title", clip(title, 60), "error", err)
		return true // fail open
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "yes")
}

func (c *gatedChecker) FilterRefs(ctx context.Context, refs []models.ArticleRef) []models.ArticleRef {
	return filterRefs(ctx, refs, c.CheckRelevance)
}

func (c *gatedChecker) ExtractDistrict(ctx context.Context, title, text, state string, districts []string) string {
	if len(districts) == 0 {
		return ""
	}
	response, err := c.call(ctx, districtSystemPrompt, buildDistrictPrompt(title, text, state, districts))
	if err != nil {
		logger.Warn("llm district extraction failed",
			"provider", c.provider.name(), "title", clip(title, 60), "error", err)
		return "" // fail safe
	}
	return matchDistrict(response, districts)
}

func (c *gatedChecker) Close() {
	c.provider.close()
}

// filterRefs runs check concurrently over every ref and keeps the ones that
// pass. Shared between single-provider and consensus checkers.
func filterRefs(ctx context.Context, refs []models.ArticleRef, check func(ctx context.Context, title, text, state, district string) bool) []models.ArticleRef {
	if len(refs) == 0 {
		return refs
	}
	logger.Info("llm relevance check starting", "refs", len(refs))

	verdicts := make([]bool, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		i, ref := i, ref
		wg.Add(1)
		go func() {
			defer wg.Done()
			verdicts[i] = check(ctx, ref.Title, "", ref.State, ref.District)
		}()
	}
	wg.Wait()

	var relevant []models.ArticleRef
	for i, ref := range refs {
		if verdicts[i] {
			relevant = append(relevant, ref)
		}
	}
	logger.Info("llm relevance filter complete",
		"before", len(refs),
		"after", len(relevant),
		"dropped", len(refs)-len(relevant),
	)
	return relevant
}

// matchDistrict maps an LLM response to a known district name: exact
// case-insensitive match first, then substring match either way, else "".
func matchDistrict(response string, districts []string) string {
	answer := strings.Trim(strings.TrimSpace(response), `"'`)
	if answer == "" || strings.EqualFold(answer, "none") {
		return ""
	}
	for _, d := range districts {
		if strings.EqualFold(d, answer) {
			return d
		}
	}
	answerLower := strings.ToLower(answer)
	for _, d := range districts {
		dLower := strings.ToLower(d)
		if strings.Contains(answerLower, dLower) || strings.Contains(dLower, answerLower) {
			return d
		}
	}
	return ""
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
