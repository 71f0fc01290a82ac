// internal/relevance/consensus.go
// Multi-LLM consensus: strict majority voting across sub-checkers
package relevance

import (
	"context"
	"sync"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// ConsensusChecker combines two or more checkers with majority-vote
// relevance. A title is relevant only when strictly more than half of the
// sub-checkers answer yes. District extraction delegates to the first
// sub-checker (no majority required). Exposes the same Checker interface so
// callers never distinguish one LLM from many.
type ConsensusChecker struct {
	checkers []Checker
}

// NewConsensusChecker builds a consensus over the given sub-checkers.
// Each sub-checker keeps its own concurrency and interval gates.
func NewConsensusChecker(checkers []Checker) *ConsensusChecker {
	return &ConsensusChecker{checkers: checkers}
}

// CheckRelevance runs every sub-checker concurrently and takes the vote
func (c *ConsensusChecker) CheckRelevance(ctx context.Context, title, text, state, district string) bool {
	votes := make([]bool, len(c.checkers))
	var wg sync.WaitGroup
	for i, checker := range c.checkers {
		i, checker := i, checker
		wg.Add(1)
		go func() {
			defer wg.Done()
			votes[i] = checker.CheckRelevance(ctx, title, text, state, district)
		}()
	}
	wg.Wait()

	yes := 0
	for _, vote := range votes {
		if vote {
			yes++
		}
	}
	relevant := yes*2 > len(c.checkers)
	logger.Debug("consensus vote",
		"title", clip(title, 50),
		"yes", yes,
		"checkers", len(c.checkers),
		"relevant", relevant,
	)
	return relevant
}

// FilterRefs filters refs using the consensus vote per title
func (c *ConsensusChecker) FilterRefs(ctx context.Context, refs []models.ArticleRef) []models.ArticleRef {
	logger.Info("multi-llm consensus check", "refs", len(refs), "checkers", len(c.checkers))
	return filterRefs(ctx, refs, c.CheckRelevance)
}

// ExtractDistrict delegates to the first sub-checker
func (c *ConsensusChecker) ExtractDistrict(ctx context.Context, title, text, state string, districts []string) string {
	if len(c.checkers) == 0 {
		return ""
	}
	return c.checkers[0].ExtractDistrict(ctx, title, text, state, districts)
}

// Close closes every sub-checker
func (c *ConsensusChecker) Close() {
	for _, checker := range c.checkers {
		checker.Close()
	}
}
