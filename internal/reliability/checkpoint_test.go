package reliability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
)

func sampleQuery() models.Query {
	return models.Query{
		QueryString: "(heatwave OR \"heat stroke\") Rajasthan",
		Language:    "en",
		State:       "Rajasthan",
		StateSlug:   "rajasthan",
		Level:       models.LevelState,
		SourceHint:  models.SourceGoogle,
	}
}

func TestQueryKeyStable(t *testing.T) {
	q := sampleQuery()
	key1 := QueryKey(q)
	key2 := QueryKey(q)
	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 16)
}

func TestQueryKeyDiffersOnAnyField(t *testing.T) {
	base := sampleQuery()
	variants := []models.Query{}

	v := base
	v.SourceHint = models.SourceGNews
	variants = append(variants, v)

	v = base
	v.StateSlug = "kerala"
	variants = append(variants, v)

	v = base
	v.Language = "hi"
	variants = append(variants, v)

	v = base
	v.Level = models.LevelDistrict
	variants = append(variants, v)

	v = base
	v.QueryString = "different query"
	variants = append(variants, v)

	baseKey := QueryKey(base)
	for i, variant := range variants {
		assert.NotEqual(t, baseKey, QueryKey(variant), "variant %d collided", i)
	}

	// Fields outside the fingerprint do not affect the key
	v = base
	v.Category = "weather"
	v.Districts = []string{"Jaipur"}
	assert.Equal(t, baseKey, QueryKey(v))
}

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", ".checkpoint.json")
	store := NewCheckpointStore(path)
	require.NoError(t, store.Load()) // missing file = empty set

	q := sampleQuery()
	assert.False(t, store.IsCompleted(q))

	store.MarkCompleted(q)
	require.NoError(t, store.Save())

	fresh := NewCheckpointStore(path)
	require.NoError(t, fresh.Load())
	assert.True(t, fresh.IsCompleted(q))
	assert.Equal(t, 1, fresh.CompletedCount())
}

func TestCheckpointSaveWritesSortedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".checkpoint.json")
	store := NewCheckpointStore(path)

	queries := []models.Query{sampleQuery()}
	q2 := sampleQuery()
	q2.StateSlug = "kerala"
	q3 := sampleQuery()
	q3.Language = "hi"
	queries = append(queries, q2, q3)
	for _, q := range queries {
		store.MarkCompleted(q)
	}
	require.NoError(t, store.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var cf struct {
		CompletedQueries []string `json:"completed_queries"`
	}
	require.NoError(t, json.Unmarshal(raw, &cf))
	require.Len(t, cf.CompletedQueries, 3)
	assert.IsIncreasing(t, cf.CompletedQueries)
}

func TestCheckpointSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".checkpoint.json")
	store := NewCheckpointStore(path)
	store.MarkCompleted(sampleQuery())
	require.NoError(t, store.Save())
	require.NoError(t, store.Save())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".checkpoint.json", entries[0].Name())
}

func TestCheckpointRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".checkpoint.json")
	store := NewCheckpointStore(path)
	store.MarkCompleted(sampleQuery())
	require.NoError(t, store.Save())

	require.NoError(t, store.Remove())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Removing an already-missing file is not an error
	assert.NoError(t, store.Remove())
}
