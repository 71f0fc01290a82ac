package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 24, cfg.LookbackHours)
	assert.Equal(t, 5000, cfg.ExtractionCap)
	assert.Equal(t, 0, cfg.PipelineTimeoutMinutes)
	assert.Equal(t, "none", cfg.LLMProvider)
	assert.Equal(t, "output", cfg.OutputRoot)
	assert.Empty(t, cfg.EnabledRegions)
}

func TestLoadLists(t *testing.T) {
	t.Setenv("ENABLED_REGIONS", "rajasthan, kerala ,delhi")
	t.Setenv("ENABLED_SOURCES", "google,newsdata")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"rajasthan", "kerala", "delhi"}, cfg.EnabledRegions)
	assert.Equal(t, []string{"google", "newsdata"}, cfg.EnabledSources)
}

func TestLoadDateRange(t *testing.T) {
	t.Setenv("DATE_RANGE", "2026-05-01:2026-05-03")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.LookbackHours)

	from, to := cfg.DateWindow(time.Now().In(models.IST))
	assert.Equal(t, 2026, from.Year())
	assert.Equal(t, time.May, from.Month())
	assert.Equal(t, 1, from.Day())
	assert.Equal(t, 3, to.Day())
	// End of the final day, IST
	assert.Equal(t, 23, to.Hour())
}

func TestLoadDateRangeInvalid(t *testing.T) {
	t.Setenv("DATE_RANGE", "not-a-range")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DATE_RANGE", "2026-05-03:2026-05-01")
	_, err = Load()
	assert.Error(t, err)
}

func TestDateWindowLookback(t *testing.T) {
	cfg := &Config{LookbackHours: 48}
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, models.IST)
	from, to := cfg.DateWindow(now)
	assert.Equal(t, now, to)
	assert.Equal(t, now.Add(-48*time.Hour), from)
}

func TestSourceEnabled(t *testing.T) {
	open := &Config{}
	assert.True(t, open.SourceEnabled("google"))

	scoped := &Config{EnabledSources: []string{"gnews"}}
	assert.True(t, scoped.SourceEnabled("gnews"))
	assert.False(t, scoped.SourceEnabled("google"))
}

func TestRegionEnabled(t *testing.T) {
	scoped := &Config{EnabledRegions: []string{"rajasthan"}}
	assert.True(t, scoped.RegionEnabled("rajasthan"))
	assert.False(t, scoped.RegionEnabled("kerala"))
}
