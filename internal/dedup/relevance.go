// internal/dedup/relevance.go
// Relevance scoring and high-recall exclusion filtering
package dedup

import (
	"strings"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/data"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// ExclusionScoreThreshold: articles scoring below this AND matching an
// exclusion pattern are dropped. Everything else is kept (high recall).
const ExclusionScoreThreshold = 0.05

// combineText lowercases title + "\n" + full text for matching
func combineText(a models.Article) string {
	var b strings.Builder
	b.WriteString(a.Title)
	if a.FullText != nil {
		b.WriteString("\n")
		b.WriteString(*a.FullText)
	}
	return strings.ToLower(b.String())
}

// ScoreRelevance scores an article's relevance to heat news in [0, 1].
//
// English heat terms are substring-matched against the lowercased combined
// text. The score combines term count (3+ terms saturate), category
// diversity (2+ categories saturate), and a title bonus:
//
//	raw = 0.5*min(terms/3, 1) + 0.3*min(categories/2, 1) + 0.2*titleBonus
//
// An article with no extracted text but heat terms in its title floors at
// 0.3 so extraction failures are not penalized. No term match scores 0.
func ScoreRelevance(a models.Article) float64 {
	text := combineText(a)
	if text == "" {
		return 0.0
	}

	matchedTerms := make(map[string]bool)
	matchedCategories := make(map[string]bool)
	for _, category := range data.TermCategories {
		for _, term := range data.Terms("en", category) {
			lower := strings.ToLower(term)
			if strings.Contains(text, lower) {
				matchedTerms[lower] = true
				matchedCategories[category] = true
			}
		}
	}
	if len(matchedTerms) == 0 {
		return 0.0
	}

	termScore := float64(len(matchedTerms)) / 3.0
	if termScore > 1.0 {
		termScore = 1.0
	}
	categoryScore := float64(len(matchedCategories)) / 2.0
	if categoryScore > 1.0 {
		categoryScore = 1.0
	}

	titleLower := strings.ToLower(a.Title)
	titleHit := false
	for term := range matchedTerms {
		if strings.Contains(titleLower, term) {
			titleHit = true
			break
		}
	}
	titleBonus := 0.0
	if titleHit {
		titleBonus = 0.2
	}

	raw := termScore*0.5 + categoryScore*0.3 + titleBonus

	if a.FullText == nil && titleHit && raw < 0.3 {
		raw = 0.3
	}
	if raw > 1.0 {
		raw = 1.0
	}
	return raw
}

// FilterArticles scores every article and applies the high-recall exclusion
// filter: an article is dropped only when its score is below the threshold
// AND its text matches a compiled exclusion pattern. Survivors carry their
// computed score.
func FilterArticles(articles []models.Article) []models.Article {
	before := len(articles)
	patterns := data.ExclusionPatterns()

	var result []models.Article
	for _, article := range articles {
		score := ScoreRelevance(article)
		if score < ExclusionScoreThreshold {
			text := combineText(article)
			excluded := false
			for _, pattern := range patterns {
				if pattern.MatchString(text) {
					excluded = true
					break
				}
			}
			if excluded {
				continue
			}
		}
		result = append(result, article.WithScore(score))
	}

	logger.Info("relevance filter complete",
		"before", before,
		"after", len(result),
		"excluded", before-len(result),
	)
	return result
}
