// internal/data/geo.go
// Geographic reference data: Indian states, union territories, and districts
package data

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/AIDMI-DataHub/heat-news-extraction/pkg/errors"
)

//go:embed india_geo.json
var indiaGeoJSON []byte

// Region kinds
const (
	KindState = "state"
	KindUT    = "ut"
)

// District is a single district within a state or union territory
type District struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug" validate:"required"`
}

// Region is an Indian state or union territory with its districts and
// language mappings. Languages are ordered: the primary regional language
// first, English always present.
type Region struct {
	Name      string     `json:"name" validate:"required"`
	Slug      string     `json:"slug" validate:"required"`
	Type      string     `json:"type" validate:"required,oneof=state ut"`
	Languages []string   `json:"languages" validate:"required,min=1"`
	Districts []District `json:"districts" validate:"required,min=1,dive"`
}

// PrimaryLanguage returns the first (primary regional) language code
func (r Region) PrimaryLanguage() string {
	return r.Languages[0]
}

type geoData struct {
	States []Region `json:"states" validate:"required,min=1,dive"`
}

var (
	geoOnce   sync.Once
	geoLoaded *geoData
	geoErr    error
	geoBySlug map[string]Region
)

func loadGeo() (*geoData, error) {
	geoOnce.Do(func() {
		var gd geoData
		if err := json.Unmarshal(indiaGeoJSON, &gd); err != nil {
			geoErr = fmt.Errorf("parsing india_geo.json: %w", err)
			return
		}
		v := validator.New()
		if err := v.Struct(&gd); err != nil {
			geoErr = fmt.Errorf("validating india_geo.json: %w", err)
			return
		}
		// Cross-checks beyond struct tags
		for _, region := range gd.States {
			if len(region.Languages) == 0 {
				geoErr = fmt.Errorf("region %s: %w", region.Slug, apperrors.ErrNoLanguages)
				return
			}
			if len(region.Districts) == 0 {
				geoErr = fmt.Errorf("region %s: %w", region.Slug, apperrors.ErrNoDistricts)
				return
			}
			hasEnglish := false
			for _, lang := range region.Languages {
				if !SupportedLanguage(lang) {
					geoErr = fmt.Errorf("region %s language %q: %w",
						region.Slug, lang, apperrors.ErrUnsupportedLanguage)
					return
				}
				if lang == "en" {
					hasEnglish = true
				}
			}
			if !hasEnglish {
				geoErr = fmt.Errorf("region %s: English missing from language list", region.Slug)
				return
			}
		}
		geoBySlug = make(map[string]Region, len(gd.States))
		for _, region := range gd.States {
			geoBySlug[region.Slug] = region
		}
		geoLoaded = &gd
	})
	return geoLoaded, geoErr
}

// AllRegions returns every state and union territory. The underlying data is
// read and validated once per process; violations fail at startup.
func AllRegions() ([]Region, error) {
	gd, err := loadGeo()
	if err != nil {
		return nil, err
	}
	return gd.States, nil
}

// RegionBySlug finds a region by its kebab-case slug. The second return is
// false when no region matches.
func RegionBySlug(slug string) (Region, bool) {
	if _, err := loadGeo(); err != nil {
		return Region{}, false
	}
	r, ok := geoBySlug[slug]
	return r, ok
}
