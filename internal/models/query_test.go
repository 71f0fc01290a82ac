package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteIfMultiWord(t *testing.T) {
	assert.Equal(t, "heatwave", QuoteIfMultiWord("heatwave"))
	assert.Equal(t, `"heat stroke"`, QuoteIfMultiWord("heat stroke"))
}

func TestBuildCategoryQuery(t *testing.T) {
	q := BuildCategoryQuery([]string{"heatwave", "heat stroke", "loo"}, "Rajasthan")
	assert.Equal(t, `(heatwave OR "heat stroke" OR loo) Rajasthan`, q)
}

func TestBuildCategoryQueryNoTerms(t *testing.T) {
	assert.Equal(t, "Rajasthan", BuildCategoryQuery(nil, "Rajasthan"))
}

func TestBuildBroadQueryRespectsLimit(t *testing.T) {
	terms := []string{"heatwave", "heat stroke", "scorching heat", "water crisis", "power cut"}
	for _, limit := range []int{40, 60, 100, 200} {
		q := BuildBroadQuery(terms, "Rajasthan", limit)
		assert.LessOrEqual(t, len(q), limit, "limit %d produced %q", limit, q)
		assert.True(t, strings.HasSuffix(q, ") Rajasthan"))
	}
}

func TestBuildBroadQueryPacksInPriorityOrder(t *testing.T) {
	terms := []string{"first", "second", "third"}
	// Room for the first two terms only:
	// "(first OR second) Location" = 26 chars
	q := BuildBroadQuery(terms, "Location", 30)
	assert.Equal(t, "(first OR second) Location", q)
}

func TestBuildBroadQueryTruncatesFirstTerm(t *testing.T) {
	terms := []string{"averyveryverylongsingleterm"}
	q := BuildBroadQuery(terms, "Goa", 15)
	assert.LessOrEqual(t, len(q), 15)
	assert.True(t, strings.HasPrefix(q, "("))
	assert.True(t, strings.HasSuffix(q, ") Goa"))
}

func TestBatchDistrictsSingleBatch(t *testing.T) {
	batches := BatchDistricts([]string{"Jaipur", "Kota"}, "heatwave", 200)
	require.Len(t, batches, 1)
	assert.Equal(t, "heatwave (Jaipur OR Kota)", batches[0].QueryString)
	assert.Equal(t, []string{"Jaipur", "Kota"}, batches[0].Districts)
}

func TestBatchDistrictsQuotesMultiWordNames(t *testing.T) {
	batches := BatchDistricts([]string{"East Godavari"}, "heatwave", 200)
	require.Len(t, batches, 1)
	assert.Equal(t, `heatwave ("East Godavari")`, batches[0].QueryString)
}

func TestBatchDistrictsSplitsOnLimit(t *testing.T) {
	districts := []string{"Jaipur", "Jodhpur", "Udaipur", "Bikaner", "Ajmer", "Kota"}
	batches := BatchDistricts(districts, "heatwave", 40)
	require.Greater(t, len(batches), 1)

	var seen []string
	for _, batch := range batches {
		assert.LessOrEqual(t, len(batch.QueryString), 40)
		assert.True(t, strings.HasPrefix(batch.QueryString, "heatwave ("))
		seen = append(seen, batch.Districts...)
	}
	// Every district appears in exactly one batch, in order
	assert.Equal(t, districts, seen)
}

func TestBatchDistrictsEmpty(t *testing.T) {
	assert.Nil(t, BatchDistricts(nil, "heatwave", 200))
}
