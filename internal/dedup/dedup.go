// internal/dedup/dedup.go
// Composition of the deduplication and relevance filtering stages
package dedup

import (
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// DeduplicateAndFilter runs the full pipeline in order:
//  1. URL dedup: one article per canonical URL
//  2. Title dedup: near-duplicate titles collapse within language buckets
//  3. Relevance scoring plus the high-recall exclusion filter
func DeduplicateAndFilter(articles []models.Article) []models.Article {
	input := len(articles)

	deduped := DeduplicateByURL(articles)
	deduped = DeduplicateByTitle(deduped, TitleSimilarityThreshold)
	filtered := FilterArticles(deduped)

	logger.Info("dedup+filter pipeline complete", "before", input, "after", len(filtered))
	return filtered
}
