package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/config"
	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
)

func refOn(t *testing.T, day int) models.ArticleRef {
	t.Helper()
	ref, err := models.NewArticleRef("Heatwave update", "https://x.com/a", "S",
		time.Date(2026, 5, day, 12, 0, 0, 0, models.IST), "en", "Rajasthan", "heatwave")
	require.NoError(t, err)
	return ref
}

func TestFilterByDate(t *testing.T) {
	refs := []models.ArticleRef{refOn(t, 1), refOn(t, 5), refOn(t, 9)}
	from := time.Date(2026, 5, 4, 0, 0, 0, 0, models.IST)
	to := time.Date(2026, 5, 6, 0, 0, 0, 0, models.IST)

	kept := filterByDate(refs, from, to)
	require.Len(t, kept, 1)
	assert.Equal(t, 5, kept[0].Date.Day())
}

func TestSelectRegionsScoping(t *testing.T) {
	cfg := &config.Config{EnabledRegions: []string{"rajasthan", "kerala"}}
	regions, err := selectRegions(cfg)
	require.NoError(t, err)
	require.Len(t, regions, 2)

	slugs := []string{regions[0].Slug, regions[1].Slug}
	assert.Contains(t, slugs, "rajasthan")
	assert.Contains(t, slugs, "kerala")
}

func TestSelectRegionsDistrictFilter(t *testing.T) {
	cfg := &config.Config{
		EnabledRegions:   []string{"rajasthan"},
		EnabledDistricts: []string{"jaipur", "jodhpur"},
	}
	regions, err := selectRegions(cfg)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	require.Len(t, regions[0].Districts, 2)
}

func TestSelectRegionsAllByDefault(t *testing.T) {
	regions, err := selectRegions(&config.Config{})
	require.NoError(t, err)
	assert.Len(t, regions, 36)
}

func TestDescribe(t *testing.T) {
	cfg := &config.Config{LLMProvider: "none"}
	assert.Contains(t, Describe(cfg), "all regions")

	scoped := &config.Config{
		EnabledRegions: []string{"goa"},
		EnabledSources: []string{"google"},
		LLMProvider:    "openai+gemini",
	}
	summary := Describe(scoped)
	assert.Contains(t, summary, "1 regions")
	assert.Contains(t, summary, "1 sources")
	assert.Contains(t, summary, "openai+gemini")
}
