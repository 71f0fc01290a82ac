// internal/pipeline/pipeline.go
// End-to-end orchestration of the heat news collection pipeline
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/config"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/data"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/dedup"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/extraction"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/output"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/query"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/relevance"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/reliability"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/sources"
	apperrors "github.com/AIDMI-DataHub/heat-news-extraction/pkg/errors"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

const (
	extractionConcurrency = 10

	// Share of the total time budget spent on collection; the rest goes to
	// extraction minus a safety buffer for dedup and output.
	collectionShare        = 0.8
	extractionSafetyBuffer = 2 * time.Minute
)

// Run executes the full pipeline: collect -> filter -> extract -> dedup ->
// write. Returns an error only for failures that make the run worthless
// (reference data violations, checkpoint I/O, output I/O); per-query and
// per-article failures degrade gracefully inside the stages.
func Run(ctx context.Context, cfg *config.Config) error {
	start := time.Now()

	if err := data.ValidateReferenceData(); err != nil {
		return apperrors.NewPipelineError("startup", "reference data validation failed", err)
	}

	regions, err := selectRegions(cfg)
	if err != nil {
		return apperrors.NewPipelineError("startup", "selecting regions", err)
	}
	if len(regions) == 0 {
		return apperrors.NewPipelineError("startup", "no regions enabled", nil)
	}

	// Time budget: collection gets its share of the deadline, extraction
	// gets the remainder minus a buffer so dedup and output always finish.
	var collectionDeadline, extractionDeadline time.Time
	if cfg.PipelineTimeoutMinutes > 0 {
		total := time.Duration(cfg.PipelineTimeoutMinutes) * time.Minute
		collectionDeadline = start.Add(time.Duration(float64(total) * collectionShare))
		extractionDeadline = start.Add(total - extractionSafetyBuffer)
		logger.Info("pipeline time budget set",
			"total_minutes", cfg.PipelineTimeoutMinutes,
			"collection_deadline", collectionDeadline.Format(time.RFC3339),
			"extraction_deadline", extractionDeadline.Format(time.RFC3339),
		)
	}

	now := time.Now().In(models.IST)
	dateDir := now.Format("2006-01-02")
	checkpointPath := cfg.CheckpointPath
	if checkpointPath == "" {
		checkpointPath = filepath.Join(cfg.OutputRoot, dateDir, ".checkpoint.json")
	}
	checkpoint := reliability.NewCheckpointStore(checkpointPath)
	if err := checkpoint.Load(); err != nil {
		return apperrors.NewPipelineError("startup", "loading checkpoint", err)
	}

	// ----- Source and scheduler construction -----
	schedulers := make(map[string]*query.SourceScheduler)
	var owned []sources.Source
	defer func() {
		for _, src := range owned {
			src.Close()
		}
		logger.Info("all source connections closed")
	}()

	var sourceNames []string
	if cfg.SourceEnabled(models.SourceGoogle) {
		src := sources.NewGoogleNewsSource(0)
		owned = append(owned, src)
		cb := reliability.NewCircuitBreaker("google_news", 0, 0)
		schedulers[models.SourceGoogle] = query.NewGoogleScheduler(src, cb)
		sourceNames = append(sourceNames, "google_news")
	}
	if cfg.SourceEnabled(models.SourceNewsData) {
		src := sources.NewNewsDataSource(cfg.NewsDataAPIKey, 0)
		owned = append(owned, src)
		cb := reliability.NewCircuitBreaker("newsdata", 0, 0)
		schedulers[models.SourceNewsData] = query.NewNewsDataScheduler(src, cb)
		sourceNames = append(sourceNames, "newsdata")
	}
	if cfg.SourceEnabled(models.SourceGNews) {
		src := sources.NewGNewsSource(cfg.GNewsAPIKey, 0)
		owned = append(owned, src)
		cb := reliability.NewCircuitBreaker("gnews", 0, 0)
		schedulers[models.SourceGNews] = query.NewGNewsScheduler(src, cb)
		sourceNames = append(sourceNames, "gnews")
	}
	if len(schedulers) == 0 {
		return apperrors.NewPipelineError("startup", "no sources enabled", nil)
	}

	checker := relevance.NewCheckerFromConfig(cfg)
	if checker != nil {
		defer checker.Close()
	}

	// ----- Stage 1: query collection -----
	logger.Info("stage 1: query collection", "regions", len(regions), "sources", sourceNames)
	executor := query.NewExecutor(schedulers, query.NewGenerator(), checkpoint, collectionDeadline)
	refs := executor.RunCollection(ctx, regions)
	logger.Info("stage 1 complete", "article_refs", len(refs))
	collectedCount := len(refs)

	// ----- Stage 2: pre-extraction filters -----
	from, to := cfg.DateWindow(now)
	refs = filterByDate(refs, from, to)
	refs = dedup.FilterByTitleSignal(refs)
	if checker != nil {
		refs = checker.FilterRefs(ctx, refs)
	}
	if len(refs) > cfg.ExtractionCap {
		logger.Warn("extraction cap applied", "cap", cfg.ExtractionCap, "refs", len(refs))
		refs = refs[:cfg.ExtractionCap]
	}

	// ----- Stage 3: article extraction -----
	logger.Info("stage 3: article extraction", "refs", len(refs))
	articles := extraction.ExtractArticles(ctx, refs, extractionConcurrency, extractionDeadline)
	extractedCount := 0
	for _, a := range articles {
		if a.FullText != nil {
			extractedCount++
		}
	}
	logger.Info("stage 3 complete", "articles", len(articles), "with_text", extractedCount)

	// ----- Stage 4: district backfill via LLM (articles still untagged) -----
	if checker != nil {
		articles = backfillDistricts(ctx, checker, articles, regions)
	}

	// ----- Stage 5: dedup and relevance filtering -----
	logger.Info("stage 5: deduplication and filtering")
	filtered := dedup.DeduplicateAndFilter(articles)
	logger.Info("stage 5 complete", "articles", len(filtered))

	// ----- Stage 6: output -----
	searchTerms := make(map[string]bool)
	for _, ref := range refs {
		searchTerms[ref.SearchTerm] = true
	}
	terms := make([]string, 0, len(searchTerms))
	for term := range searchTerms {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	metadata := output.NewCollectionMetadata(now, sourceNames, terms, map[string]int{
		"articles_found":     collectedCount,
		"articles_extracted": extractedCount,
		"articles_filtered":  len(filtered),
	})
	outputRoot := cfg.OutputRoot
	if _, err := output.WriteCollectionOutput(filtered, outputRoot, metadata); err != nil {
		return apperrors.NewPipelineError("output", "writing collection output", err)
	}

	// The checkpoint only matters for resuming a crashed run
	if err := checkpoint.Remove(); err != nil {
		logger.Warn("could not remove checkpoint", "error", err)
	}
	logger.Info("pipeline complete",
		"duration", time.Since(start).String(),
		"articles_written", len(filtered),
	)
	return nil
}

// selectRegions applies the enabled-region and enabled-district filters
func selectRegions(cfg *config.Config) ([]data.Region, error) {
	all, err := data.AllRegions()
	if err != nil {
		return nil, err
	}

	districtEnabled := func(slug string) bool {
		if len(cfg.EnabledDistricts) == 0 {
			return true
		}
		for _, enabled := range cfg.EnabledDistricts {
			if enabled == slug {
				return true
			}
		}
		return false
	}

	var selected []data.Region
	for _, region := range all {
		if !cfg.RegionEnabled(region.Slug) {
			continue
		}
		if len(cfg.EnabledDistricts) > 0 {
			var districts []data.District
			for _, d := range region.Districts {
				if districtEnabled(d.Slug) {
					districts = append(districts, d)
				}
			}
			if len(districts) > 0 {
				region.Districts = districts
			}
		}
		selected = append(selected, region)
	}
	return selected, nil
}

// filterByDate keeps refs whose dates fall inside the inclusive window
func filterByDate(refs []models.ArticleRef, from, to time.Time) []models.ArticleRef {
	var kept []models.ArticleRef
	for _, ref := range refs {
		if ref.Date.Before(from) || ref.Date.After(to) {
			continue
		}
		kept = append(kept, ref)
	}
	logger.Info("date filter complete",
		"before", len(refs),
		"after", len(kept),
		"from", from.Format(time.RFC3339),
		"to", to.Format(time.RFC3339),
	)
	return kept
}

// backfillDistricts asks the LLM for a district on articles that are still
// untagged after collection, constrained to the article's own state's
// district list. Failures leave the district unset.
func backfillDistricts(ctx context.Context, checker relevance.Checker, articles []models.Article, regions []data.Region) []models.Article {
	districtsByState := make(map[string][]string, len(regions))
	for _, region := range regions {
		names := make([]string, len(region.Districts))
		for i, d := range region.Districts {
			names[i] = d.Name
		}
		districtsByState[region.Name] = names
	}

	tagged := 0
	for i, article := range articles {
		if article.District != "" {
			continue
		}
		districts, ok := districtsByState[article.State]
		if !ok || len(districts) == 0 {
			continue
		}
		text := ""
		if article.FullText != nil {
			text = *article.FullText
		}
		if district := checker.ExtractDistrict(ctx, article.Title, text, article.State, districts); district != "" {
			articles[i] = article.WithDistrict(district)
			tagged++
		}
	}
	if tagged > 0 {
		logger.Info("llm district backfill complete", "tagged", tagged)
	}
	return articles
}

// Describe returns a one-line summary of the run scope, for startup logging
func Describe(cfg *config.Config) string {
	regionScope := "all regions"
	if len(cfg.EnabledRegions) > 0 {
		regionScope = fmt.Sprintf("%d regions", len(cfg.EnabledRegions))
	}
	sourceScope := "all sources"
	if len(cfg.EnabledSources) > 0 {
		sourceScope = fmt.Sprintf("%d sources", len(cfg.EnabledSources))
	}
	return fmt.Sprintf("%s, %s, llm=%s", regionScope, sourceScope, cfg.LLMProvider)
}
