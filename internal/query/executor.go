// internal/query/executor.go
// Two-phase hierarchical query execution across all news sources
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/data"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/reliability"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// Executor orchestrates hierarchical state-then-district query execution.
//
// Phase 1 runs state-level queries across all sources concurrently; each
// source works through its own query list sequentially so the scheduler's
// budget and limiters stay authoritative. Phase 2 runs district-level
// queries, but only for regions that produced articles in phase 1 and only
// through schedulers with budget left.
//
// RunCollection never returns an error: failures inside a source loop are
// logged and converted to empty results.
type Executor struct {
	schedulers map[string]*SourceScheduler
	generator  *Generator
	checkpoint *reliability.CheckpointStore // optional
	deadline   time.Time                    // zero = no deadline
}

// NewExecutor creates an executor over the given schedulers and generator.
// checkpoint may be nil (no resume support); deadline may be the zero time
// (no time budget).
func NewExecutor(
	schedulers map[string]*SourceScheduler,
	generator *Generator,
	checkpoint *reliability.CheckpointStore,
	deadline time.Time,
) *Executor {
	return &Executor{
		schedulers: schedulers,
		generator:  generator,
		checkpoint: checkpoint,
		deadline:   deadline,
	}
}

func (e *Executor) deadlineReached() bool {
	return !e.deadline.IsZero() && !time.Now().Before(e.deadline)
}

// RunCollection runs both phases and returns every ArticleRef collected.
// When regions is nil, all regions are queried.
func (e *Executor) RunCollection(ctx context.Context, regions []data.Region) []models.ArticleRef {
	if regions == nil {
		all, err := data.AllRegions()
		if err != nil {
			logger.Error("executor: loading regions failed", "error", err)
			return nil
		}
		regions = all
	}

	var allArticles []models.ArticleRef

	// ----- Phase 1: state-level queries -----
	logger.Info("phase 1: generating state queries", "regions", len(regions))
	queriesBySource := e.generator.GenerateStateQueries(regions)
	for hint, queries := range queriesBySource {
		logger.Info("phase 1 queries generated", "source", hint, "queries", len(queries))
	}

	stateResults := e.executeParallel(ctx, queriesBySource)
	for _, result := range stateResults {
		allArticles = append(allArticles, result.Articles...)
	}
	stateCount := len(allArticles)
	logger.Info("phase 1 complete", "articles", stateCount, "query_results", len(stateResults))

	// Active regions: slug appeared in at least one non-empty result
	activeSlugs := make(map[string]bool)
	for _, result := range stateResults {
		if len(result.Articles) > 0 {
			activeSlugs[result.Query.StateSlug] = true
		}
	}
	var activeRegions []data.Region
	for _, region := range regions {
		if activeSlugs[region.Slug] {
			activeRegions = append(activeRegions, region)
		}
	}
	logger.Info("active regions determined", "active", len(activeRegions), "total", len(regions))

	// ----- Phase 2: district-level queries (active regions only) -----
	if len(activeRegions) == 0 {
		logger.Info("phase 2: no active regions, skipping district queries")
		return allArticles
	}
	if e.deadlineReached() {
		logger.Warn("phase 2: collection deadline reached, skipping district queries")
		return allArticles
	}

	districtQueries := make(map[string][]models.Query)
	for hint, scheduler := range e.schedulers {
		if budget := scheduler.RemainingBudget(); budget == 0 {
			logger.Info("phase 2: budget exhausted, skipping source", "source", hint)
			continue
		}
		queries := e.generator.GenerateDistrictQueries(activeRegions, hint)
		if len(queries) > 0 {
			districtQueries[hint] = queries
			logger.Info("phase 2 queries generated", "source", hint, "queries", len(queries))
		}
	}

	districtResults := e.executeParallel(ctx, districtQueries)
	for _, result := range districtResults {
		allArticles = append(allArticles, tagDistricts(result)...)
	}

	logger.Info("collection complete",
		"total_articles", len(allArticles),
		"state_articles", stateCount,
		"district_articles", len(allArticles)-stateCount,
	)
	return allArticles
}

// executeParallel fans sources out into a structured-concurrency group.
// Each source walks its query list sequentially; sources interleave freely.
// Any failure inside a source task is logged and swallowed.
func (e *Executor) executeParallel(ctx context.Context, queriesBySource map[string][]models.Query) []models.QueryResult {
	var (
		mu      sync.Mutex
		results []models.QueryResult
	)

	group, groupCtx := errgroup.WithContext(ctx)
	for hint, queries := range queriesBySource {
		scheduler, ok := e.schedulers[hint]
		if !ok {
			logger.Warn("no scheduler registered for source, skipping",
				"source", hint, "queries", len(queries))
			continue
		}
		hint, queries, scheduler := hint, queries, scheduler
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("source %s panicked: %v", hint, r)
				}
			}()
			sourceResults := e.executeQueryList(groupCtx, scheduler, queries)
			mu.Lock()
			results = append(results, sourceResults...)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		logger.Error("error during parallel query execution", "error", err)
	}

	return results
}

// executeQueryList runs queries through one scheduler sequentially, honoring
// the deadline, skipping checkpointed queries, saving the checkpoint after
// each completion, and stopping early once the budget is spent.
func (e *Executor) executeQueryList(ctx context.Context, scheduler *SourceScheduler, queries []models.Query) []models.QueryResult {
	var results []models.QueryResult
	for i, q := range queries {
		if e.deadlineReached() {
			logger.Warn("collection deadline reached, stopping source",
				"source", scheduler.Name(), "completed", i, "total", len(queries))
			break
		}
		if e.checkpoint != nil && e.checkpoint.IsCompleted(q) {
			logger.Debug("query already completed, skipping",
				"source", scheduler.Name(), "query", q.QueryString)
			continue
		}

		result := scheduler.Execute(ctx, q)
		results = append(results, result)

		if e.checkpoint != nil {
			e.checkpoint.MarkCompleted(q)
			if err := e.checkpoint.Save(); err != nil {
				logger.Error("checkpoint save failed", "error", err)
			}
		}

		if scheduler.RemainingBudget() == 0 {
			logger.Info("budget exhausted, stopping source",
				"source", scheduler.Name(), "completed", i+1, "total", len(queries))
			break
		}
	}
	return results
}

// tagDistricts post-tags phase-2 results. A single-district batch tags every
// ref with that district; a multi-district batch tags each ref with the
// first district whose English name occurs as a case-insensitive substring
// of the title. Ambiguous titles (matching more than one district) keep the
// first match and are logged.
func tagDistricts(result models.QueryResult) []models.ArticleRef {
	if result.Query.Level != models.LevelDistrict || len(result.Query.Districts) == 0 {
		return result.Articles
	}

	if len(result.Query.Districts) == 1 {
		district := result.Query.Districts[0]
		tagged := make([]models.ArticleRef, len(result.Articles))
		for i, ref := range result.Articles {
			tagged[i] = ref.WithDistrict(district)
		}
		return tagged
	}

	tagged := make([]models.ArticleRef, len(result.Articles))
	for i, ref := range result.Articles {
		titleLower := strings.ToLower(ref.Title)
		matched := ""
		matchCount := 0
		for _, district := range result.Query.Districts {
			if strings.Contains(titleLower, strings.ToLower(district)) {
				if matched == "" {
					matched = district
				}
				matchCount++
			}
		}
		if matchCount > 1 {
			logger.Debug("ambiguous district match, keeping first",
				"title", ref.Title, "district", matched, "matches", matchCount)
		}
		if matched != "" {
			tagged[i] = ref.WithDistrict(matched)
		} else {
			tagged[i] = ref
		}
	}
	return tagged
}
