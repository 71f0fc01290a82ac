// internal/models/query.go
// Query data models and query string construction helpers
package models

import "strings"

// Query levels
const (
	LevelState    = "state"
	LevelDistrict = "district"
)

// Source hints identify which backend a query string was built for
const (
	SourceGoogle   = "google"
	SourceNewsData = "newsdata"
	SourceGNews    = "gnews"
)

// Query is a single search query ready for execution against a news source.
// Immutable once built by the generator.
type Query struct {
	QueryString string   `json:"query_string"`
	Language    string   `json:"language"`
	State       string   `json:"state"`
	StateSlug   string   `json:"state_slug"`
	Level       string   `json:"level"`
	Category    string   `json:"category,omitempty"`
	SourceHint  string   `json:"source_hint"`
	Districts   []string `json:"districts,omitempty"`
}

// QueryResult is the outcome of executing a query against one news source.
// Expected skip conditions (budget exhausted, unsupported language, open
// breaker) are reported with Success=true and a descriptive Error.
type QueryResult struct {
	Query      Query
	SourceName string
	Articles   []ArticleRef
	Success    bool
	Error      string
}

// DistrictBatch pairs a batched district query string with the district
// names it contains, so phase-2 results can be tagged back to districts.
type DistrictBatch struct {
	QueryString string
	Districts   []string
}

// QuoteIfMultiWord wraps a term in double quotes when it contains spaces,
// protecting phrase boundaries against OR splitting.
func QuoteIfMultiWord(term string) string {
	if strings.Contains(term, " ") {
		return `"` + term + `"`
	}
	return term
}

// BuildCategoryQuery builds a category query: (term1 OR "multi word" OR term2) Location
func BuildCategoryQuery(terms []string, location string) string {
	if len(terms) == 0 {
		return location
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = QuoteIfMultiWord(t)
	}
	return "(" + strings.Join(quoted, " OR ") + ") " + location
}

// BuildBroadQuery packs priority-ordered terms into a single query string
// within maxChars. Terms are included greedily in order; each non-first term
// costs an extra 4 characters for the " OR " separator. If not even the
// first term fits, it is truncated to the remaining budget.
func BuildBroadQuery(terms []string, location string, maxChars int) string {
	if len(terms) == 0 {
		return location
	}
	// Overhead: "(" + terms + ") " + location
	budget := maxChars - len(location) - 3
	var selected []string
	used := 0
	for _, t := range terms {
		repr := QuoteIfMultiWord(t)
		cost := len(repr)
		if len(selected) > 0 {
			cost += 4
		}
		if used+cost > budget {
			break
		}
		selected = append(selected, repr)
		used += cost
	}
	if len(selected) == 0 {
		// Last resort: truncate the first term to fit
		first := terms[0]
		if budget < 1 {
			budget = 1
		}
		if len(first) > budget {
			first = first[:budget]
		}
		selected = []string{first}
	}
	return "(" + strings.Join(selected, " OR ") + ") " + location
}

// BatchDistricts groups district names into query strings of the form
//
//	heatTerm ("District One" OR District2 OR ...)
//
// where each query string fits within maxChars. Multi-word district names
// are double-quoted. Every batch carries the district names it contains.
func BatchDistricts(districts []string, heatTerm string, maxChars int) []DistrictBatch {
	if len(districts) == 0 {
		return nil
	}

	// Overhead: heatTerm + " (" + districts + ")"
	budget := maxChars - len(heatTerm) - 3

	var batches []DistrictBatch
	var names []string
	var members []string
	used := 0

	flush := func() {
		if len(names) == 0 {
			return
		}
		batches = append(batches, DistrictBatch{
			QueryString: heatTerm + " (" + strings.Join(names, " OR ") + ")",
			Districts:   append([]string(nil), members...),
		})
	}

	for _, d := range districts {
		name := QuoteIfMultiWord(d)
		cost := len(name)
		if len(names) > 0 {
			cost += 4
		}
		if used+cost > budget && len(names) > 0 {
			flush()
			names = []string{name}
			members = []string{d}
			used = len(name)
			continue
		}
		names = append(names, name)
		members = append(members, d)
		used += cost
	}
	flush()

	return batches
}
