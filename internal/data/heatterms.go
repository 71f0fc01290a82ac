// internal/data/heatterms.go
// Multilingual heat terminology reference data
package data

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/AIDMI-DataHub/heat-news-extraction/pkg/errors"
)

//go:embed heat_terms.json
var heatTermsJSON []byte

// TermCategories is the fixed set of heat term categories. Every language in
// the dictionary must cover every category.
var TermCategories = []string{
	"weather",
	"health",
	"temperature",
	"water",
	"power",
	"agriculture",
	"labor",
	"governance",
	"urban_infra",
	"education",
}

// QueryCategories is the strict subset of categories specific enough to
// build search strings from. The remaining categories feed scoring and
// filtering only.
var QueryCategories = []string{"weather", "health", "temperature"}

// SupportedLanguage reports whether lang is one of the 14 collection languages
func SupportedLanguage(lang string) bool {
	switch lang {
	case "en", "hi", "ta", "te", "bn", "mr", "gu", "kn", "ml", "or", "pa", "as", "ur", "ne":
		return true
	}
	return false
}

type languageTerms struct {
	Name       string              `json:"name"`
	Categories map[string][]string `json:"categories"`
}

type heatTermsDictionary struct {
	Version   string                   `json:"version"`
	Languages map[string]languageTerms `json:"languages"`
}

var (
	termsOnce   sync.Once
	termsLoaded *heatTermsDictionary
	termsErr    error
)

func loadHeatTerms() (*heatTermsDictionary, error) {
	termsOnce.Do(func() {
		var dict heatTermsDictionary
		if err := json.Unmarshal(heatTermsJSON, &dict); err != nil {
			termsErr = fmt.Errorf("parsing heat_terms.json: %w", err)
			return
		}
		for lang, lt := range dict.Languages {
			if !SupportedLanguage(lang) {
				termsErr = fmt.Errorf("heat terms language %q: %w", lang, apperrors.ErrUnsupportedLanguage)
				return
			}
			for _, cat := range TermCategories {
				terms, ok := lt.Categories[cat]
				if !ok {
					termsErr = fmt.Errorf("language %s category %s: %w", lang, cat, apperrors.ErrMissingCategory)
					return
				}
				if len(terms) == 0 {
					termsErr = fmt.Errorf("language %s category %s: %w", lang, cat, apperrors.ErrEmptyCategory)
					return
				}
			}
		}
		termsLoaded = &dict
	})
	return termsLoaded, termsErr
}

// Terms returns the ordered term list for a language and category, or an
// empty slice when either is absent from the dictionary.
func Terms(lang, category string) []string {
	dict, err := loadHeatTerms()
	if err != nil {
		return nil
	}
	lt, ok := dict.Languages[lang]
	if !ok {
		return nil
	}
	return append([]string(nil), lt.Categories[category]...)
}

// AllTerms returns every term for a language, flattened across categories in
// the fixed category order (priority order for broad query packing).
func AllTerms(lang string) []string {
	dict, err := loadHeatTerms()
	if err != nil {
		return nil
	}
	lt, ok := dict.Languages[lang]
	if !ok {
		return nil
	}
	var terms []string
	for _, cat := range TermCategories {
		terms = append(terms, lt.Categories[cat]...)
	}
	return terms
}

// TermLanguages returns the sorted language codes present in the dictionary
func TermLanguages() []string {
	dict, err := loadHeatTerms()
	if err != nil {
		return nil
	}
	langs := make([]string, 0, len(dict.Languages))
	for lang := range dict.Languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// ValidateReferenceData forces both reference tables to load and returns the
// first validation failure. Called once at startup so violations fail fast.
func ValidateReferenceData() error {
	if _, err := loadGeo(); err != nil {
		return err
	}
	if _, err := loadHeatTerms(); err != nil {
		return err
	}
	if _, err := loadExclusions(); err != nil {
		return err
	}
	return nil
}
