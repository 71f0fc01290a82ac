// internal/query/generator.go
// Query generation: region x language x heat-term category -> API queries
package query

import (
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/data"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
)

// Character limits per source for query strings
var charLimits = map[string]int{
	models.SourceGoogle:   2000,
	models.SourceNewsData: 512,
	models.SourceGNews:    200,
}

// gnewsQueryLanguages mirrors the GNews adapter's supported set; defined
// here so generation can skip queries the scheduler would reject anyway.
var gnewsQueryLanguages = map[string]bool{
	"en": true, "hi": true, "bn": true, "ta": true,
	"te": true, "mr": true, "ml": true, "pa": true,
}

// Generator produces search queries from geographic data and heat terms.
// Each source gets its own strategy:
//   - Google News: one category query per region-language-category triple
//   - NewsData.io: one broad packed query per region-language pair (512 chars)
//   - GNews: one broad packed query per region-language pair (200 chars,
//     8 languages only)
type Generator struct{}

// NewGenerator creates a Generator. Reference data loads lazily through the
// data package's cached loaders.
func NewGenerator() *Generator {
	return &Generator{}
}

// queryLanguages bounds fan-out to two languages per region: the primary
// regional language (when it is not English) plus English.
func queryLanguages(region data.Region) []string {
	primary := region.PrimaryLanguage()
	if primary == "en" {
		return []string{"en"}
	}
	return []string{primary, "en"}
}

// GenerateStateQueries builds state-level queries for all sources, keyed by
// source hint. Query order within a source is the iteration order the
// executor will issue them in.
func (g *Generator) GenerateStateQueries(regions []data.Region) map[string][]models.Query {
	queries := map[string][]models.Query{
		models.SourceGoogle:   nil,
		models.SourceNewsData: nil,
		models.SourceGNews:    nil,
	}

	for _, region := range regions {
		for _, lang := range queryLanguages(region) {
			// Google News: one query per query category
			for _, category := range data.QueryCategories {
				terms := data.Terms(lang, category)
				if len(terms) == 0 {
					continue
				}
				queries[models.SourceGoogle] = append(queries[models.SourceGoogle], models.Query{
					QueryString: models.BuildCategoryQuery(terms, region.Name),
					Language:    lang,
					State:       region.Name,
					StateSlug:   region.Slug,
					Level:       models.LevelState,
					Category:    category,
					SourceHint:  models.SourceGoogle,
				})
			}

			// NewsData.io: one broad packed query per region-language pair
			allTerms := data.AllTerms(lang)
			if len(allTerms) > 0 {
				queries[models.SourceNewsData] = append(queries[models.SourceNewsData], models.Query{
					QueryString: models.BuildBroadQuery(allTerms, region.Name, charLimits[models.SourceNewsData]),
					Language:    lang,
					State:       region.Name,
					StateSlug:   region.Slug,
					Level:       models.LevelState,
					SourceHint:  models.SourceNewsData,
				})
			}

			// GNews: same broad strategy, restricted to its 8 languages
			if gnewsQueryLanguages[lang] && len(allTerms) > 0 {
				queries[models.SourceGNews] = append(queries[models.SourceGNews], models.Query{
					QueryString: models.BuildBroadQuery(allTerms, region.Name, charLimits[models.SourceGNews]),
					Language:    lang,
					State:       region.Name,
					StateSlug:   region.Slug,
					Level:       models.LevelState,
					SourceHint:  models.SourceGNews,
				})
			}
		}
	}

	return queries
}

// GenerateDistrictQueries builds district-level queries for the given
// regions and source. District names are batched into query strings within
// the source's character limit; every query carries the district names its
// batch contains so phase-2 results can be tagged.
func (g *Generator) GenerateDistrictQueries(regions []data.Region, sourceHint string) []models.Query {
	maxChars, ok := charLimits[sourceHint]
	if !ok {
		maxChars = charLimits[models.SourceGoogle]
	}

	var queries []models.Query
	for _, region := range regions {
		if len(region.Districts) == 0 {
			continue
		}
		districtNames := make([]string, len(region.Districts))
		for i, d := range region.Districts {
			districtNames[i] = d.Name
		}

		for _, lang := range queryLanguages(region) {
			if sourceHint == models.SourceGNews && !gnewsQueryLanguages[lang] {
				continue
			}

			// Single heat term per batch: prefer the weather category,
			// fall back to the first term available for the language.
			heatTerm := ""
			if weatherTerms := data.Terms(lang, "weather"); len(weatherTerms) > 0 {
				heatTerm = weatherTerms[0]
			} else if allTerms := data.AllTerms(lang); len(allTerms) > 0 {
				heatTerm = allTerms[0]
			} else {
				heatTerm = "heatwave"
			}

			for _, batch := range models.BatchDistricts(districtNames, heatTerm, maxChars) {
				queries = append(queries, models.Query{
					QueryString: batch.QueryString,
					Language:    lang,
					State:       region.Name,
					StateSlug:   region.Slug,
					Level:       models.LevelDistrict,
					SourceHint:  sourceHint,
					Districts:   batch.Districts,
				})
			}
		}
	}

	return queries
}
