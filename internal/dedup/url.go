// internal/dedup/url.go
// URL canonicalisation and URL-based deduplication
package dedup

import (
	"net/url"
	"sort"
	"strings"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// TrackingParams is the block-list of query parameters stripped during URL
// canonicalisation, in addition to every utm_* parameter. Whether "ref" and
// "source" should always be stripped is domain-dependent; the table is kept
// exported so downstream users can see exactly what is removed.
var TrackingParams = map[string]bool{
	"fbclid":        true,
	"gclid":         true,
	"yclid":         true,
	"msclkid":       true,
	"_ga":           true,
	"_gl":           true,
	"ref":           true,
	"source":        true,
	"mc_cid":        true,
	"mc_eid":        true,
	"mkt_tok":       true,
	"hsctatracking": true,
	"si":            true,
	"__cft__":       true,
	"__tn__":        true,
}

func isTrackingParam(key string) bool {
	lower := strings.ToLower(key)
	return strings.HasPrefix(lower, "utm_") || TrackingParams[lower]
}

// CanonicalURL normalizes a URL for deduplication comparison:
//   - lowercases scheme and host, strips a leading "www."
//   - strips the trailing slash from the path (the bare root "/" survives)
//   - removes the fragment
//   - drops tracking parameters, sorts the rest by key then value
//
// The transformation is deterministic and idempotent; path case and
// non-tracking parameters are preserved.
func CanonicalURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" {
		scheme = "https"
	}
	host := strings.ToLower(parsed.Host)
	host = strings.TrimPrefix(host, "www.")

	path := strings.TrimRight(parsed.EscapedPath(), "/")
	if path == "" {
		path = "/"
	}

	type pair struct{ key, value string }
	var pairs []pair
	for key, values := range parsed.Query() {
		if isTrackingParam(key) {
			continue
		}
		for _, v := range values {
			pairs = append(pairs, pair{key, v})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	var query strings.Builder
	for i, p := range pairs {
		if i > 0 {
			query.WriteByte('&')
		}
		query.WriteString(url.QueryEscape(p.key))
		query.WriteByte('=')
		query.WriteString(url.QueryEscape(p.value))
	}

	canonical := scheme + "://" + host + path
	if query.Len() > 0 {
		canonical += "?" + query.String()
	}
	return canonical
}

// qualityScore ranks duplicate candidates. Higher wins: articles with
// longer extracted text, a district tag, and an identified source are
// preferred when collapsing duplicates.
func qualityScore(a models.Article) int {
	score := 0
	if a.FullText != nil {
		score += 100 + len(*a.FullText)
	}
	if a.District != "" {
		score += 10
	}
	if a.Source != "" && a.Source != "Unknown" {
		score += 5
	}
	return score
}

// DeduplicateByURL keeps one article per canonical URL, preferring the
// higher-quality version on collision.
func DeduplicateByURL(articles []models.Article) []models.Article {
	before := len(articles)
	seen := make(map[string]int) // canonical URL -> index into kept
	var kept []models.Article
	for _, article := range articles {
		canonical := CanonicalURL(article.URL)
		if idx, ok := seen[canonical]; ok {
			if qualityScore(article) > qualityScore(kept[idx]) {
				kept[idx] = article
			}
			continue
		}
		seen[canonical] = len(kept)
		kept = append(kept, article)
	}
	logger.Info("url dedup complete", "before", before, "after", len(kept))
	return kept
}
