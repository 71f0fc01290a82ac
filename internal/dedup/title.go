// internal/dedup/title.go
// Title similarity deduplication with language bucketing
package dedup

import (
	"strings"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// TitleSimilarityThreshold is the minimum similarity ratio at which two
// titles in the same language bucket count as duplicates.
const TitleSimilarityThreshold = 0.85

// stripSourceSuffix removes a trailing " - Source Name" from a title when
// the suffix is short enough (<= 40 characters) to be a publisher name.
func stripSourceSuffix(title string) string {
	idx := strings.LastIndex(title, " - ")
	if idx == -1 {
		return title
	}
	if len([]rune(title[idx+3:])) <= 40 {
		return title[:idx]
	}
	return title
}

// levenshteinDistance computes edit distance over Unicode code points, so
// Devanagari, Tamil, and other Indic scripts compare correctly.
func levenshteinDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// TitleSimilarity computes a [0,1] similarity ratio between two titles.
// Source suffixes are stripped and both sides are lowercased and trimmed
// before comparison. Identical titles score 1.0 and the measure is
// symmetric.
func TitleSimilarity(titleA, titleB string) float64 {
	a := []rune(strings.ToLower(strings.TrimSpace(stripSourceSuffix(titleA))))
	b := []rune(strings.ToLower(strings.TrimSpace(stripSourceSuffix(titleB))))
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(a, b))/float64(maxLen)
}

// DeduplicateByTitle removes near-duplicate titles within same-language
// buckets, keeping the higher-quality version of each duplicate pair.
// Articles in different languages never deduplicate against each other.
func DeduplicateByTitle(articles []models.Article, threshold float64) []models.Article {
	before := len(articles)

	buckets := make(map[string][]models.Article)
	var langOrder []string
	for _, article := range articles {
		if _, ok := buckets[article.Language]; !ok {
			langOrder = append(langOrder, article.Language)
		}
		buckets[article.Language] = append(buckets[article.Language], article)
	}

	var result []models.Article
	for _, lang := range langOrder {
		var kept []models.Article
		for _, article := range buckets[lang] {
			isDup := false
			for i, existing := range kept {
				if TitleSimilarity(article.Title, existing.Title) >= threshold {
					if qualityScore(article) > qualityScore(existing) {
						kept[i] = article
					}
					isDup = true
					break
				}
			}
			if !isDup {
				kept = append(kept, article)
			}
		}
		result = append(result, kept...)
	}

	logger.Info("title dedup complete", "before", before, "after", len(result))
	return result
}
