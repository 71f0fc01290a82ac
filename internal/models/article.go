// internal/models/article.go
// Article data models for the heat news collection pipeline
package models

import (
	"fmt"
	"time"
)

// IST is the fixed India Standard Time zone (+05:30). All article dates are
// normalized to IST regardless of what timezone the source reported.
var IST = time.FixedZone("IST", 5*3600+30*60)

// MaxTitleLength bounds article titles coming from search results
const MaxTitleLength = 500

// SupportedLanguages is the fixed set of 14 language codes the pipeline
// collects in (ISO 639-1, or 639-2 where no -1 code exists).
var SupportedLanguages = map[string]bool{
	"en": true, "hi": true, "ta": true, "te": true, "bn": true,
	"mr": true, "gu": true, "kn": true, "ml": true, "or": true,
	"pa": true, "as": true, "ur": true, "ne": true,
}

// ArticleRef is a lightweight reference from search results (no full text
// yet). Created by source adapters during the search phase; treated as
// immutable afterwards — "updates" go through the With* copy methods.
type ArticleRef struct {
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Source     string    `json:"source"`
	Date       time.Time `json:"date"`
	Language   string    `json:"language"`
	State      string    `json:"state"`
	District   string    `json:"district,omitempty"`
	SearchTerm string    `json:"search_term"`
}

// NewArticleRef validates and constructs an ArticleRef.
//
// The date is normalized to IST; a zero-offset naive timestamp should be
// localized by the caller before construction (sources assume UTC for JSON
// backends). Returns an error when required fields are missing, the title
// exceeds the length bound, or the language is outside the 14-code set.
func NewArticleRef(title, url, source string, date time.Time, language, state, searchTerm string) (ArticleRef, error) {
	if title == "" {
		return ArticleRef{}, fmt.Errorf("article title is empty")
	}
	if len([]rune(title)) > MaxTitleLength {
		return ArticleRef{}, fmt.Errorf("article title exceeds %d characters", MaxTitleLength)
	}
	if url == "" {
		return ArticleRef{}, fmt.Errorf("article url is empty")
	}
	if !SupportedLanguages[language] {
		return ArticleRef{}, fmt.Errorf("unsupported language code %q", language)
	}
	if state == "" {
		return ArticleRef{}, fmt.Errorf("article state is empty")
	}
	if searchTerm == "" {
		return ArticleRef{}, fmt.Errorf("article search term is empty")
	}
	if source == "" {
		source = "Unknown"
	}
	if date.IsZero() {
		return ArticleRef{}, fmt.Errorf("article date is zero")
	}
	return ArticleRef{
		Title:      title,
		URL:        url,
		Source:     source,
		Date:       date.In(IST),
		Language:   language,
		State:      state,
		SearchTerm: searchTerm,
	}, nil
}

// WithDistrict returns a copy of the ref tagged with a district name
func (r ArticleRef) WithDistrict(district string) ArticleRef {
	r.District = district
	return r
}

// Article is an ArticleRef enriched with extraction and scoring results.
// FullText is nil when extraction failed or was skipped.
type Article struct {
	ArticleRef
	FullText       *string `json:"full_text"`
	RelevanceScore float64 `json:"relevance_score"`
}

// NewArticle builds an Article from a ref with no text and a zero score
func NewArticle(ref ArticleRef) Article {
	return Article{ArticleRef: ref}
}

// WithFullText returns a copy of the article with extracted text attached
func (a Article) WithFullText(text string) Article {
	a.FullText = &text
	return a
}

// WithScore returns a copy of the article with the relevance score set.
// Scores are clamped to [0, 1].
func (a Article) WithScore(score float64) Article {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	a.RelevanceScore = score
	return a
}

// WithDistrict returns a copy of the article tagged with a district name
func (a Article) WithDistrict(district string) Article {
	a.ArticleRef.District = district
	return a
}
