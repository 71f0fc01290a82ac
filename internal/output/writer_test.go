package output

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
)

func sampleArticle(t *testing.T, title, state, district string) models.Article {
	t.Helper()
	ref, err := models.NewArticleRef(title, "https://example.com/"+Slugify(title), "NDTV",
		time.Date(2026, 5, 20, 14, 30, 0, 0, models.IST), "hi", state, "लू")
	require.NoError(t, err)
	a := models.NewArticle(ref).WithScore(0.7)
	if district != "" {
		a = a.WithDistrict(district)
	}
	return a
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "tamil-nadu", Slugify("Tamil Nadu"))
	assert.Equal(t, "jammu-and-kashmir", Slugify("Jammu and Kashmir"))
	assert.Equal(t, "daman-and-diu", Slugify("Daman & Diu"))
}

func TestWriteCollectionOutputLayout(t *testing.T) {
	root := t.TempDir()
	articles := []models.Article{
		sampleArticle(t, "Heatwave in Jaipur", "Rajasthan", "Jaipur"),
		sampleArticle(t, "Statewide heat alert", "Rajasthan", ""),
		sampleArticle(t, "Heat in Kochi", "Kerala", ""),
	}
	metadata := NewCollectionMetadata(time.Now().In(models.IST),
		[]string{"google_news"}, []string{"heatwave"},
		map[string]int{"articles_found": 3})

	groups, err := WriteCollectionOutput(articles, root, metadata)
	require.NoError(t, err)
	assert.Equal(t, 3, groups)

	for _, path := range []string{
		filepath.Join(root, "rajasthan", "2026-05-20", "jaipur", "articles.json"),
		filepath.Join(root, "rajasthan", "2026-05-20", "jaipur", "articles.csv"),
		filepath.Join(root, "rajasthan", "2026-05-20", "articles.json"),
		filepath.Join(root, "kerala", "2026-05-20", "articles.json"),
		filepath.Join(root, "_metadata.json"),
	} {
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr, "missing %s", path)
	}
}

func TestWriteCollectionOutputPreservesIndicScripts(t *testing.T) {
	root := t.TempDir()
	article := sampleArticle(t, "राजस्थान में लू का कहर", "Rajasthan", "")

	_, err := WriteCollectionOutput([]models.Article{article}, root,
		NewCollectionMetadata(time.Now(), nil, []string{"लू"}, nil))
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(root, "rajasthan", "2026-05-20", "articles.json"))
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "राजस्थान में लू का कहर")
	assert.NotContains(t, content, `\u0`)
}

func TestWriteCollectionOutputJSONShape(t *testing.T) {
	root := t.TempDir()
	article := sampleArticle(t, "Heatwave in Jaipur", "Rajasthan", "Jaipur")

	_, err := WriteCollectionOutput([]models.Article{article}, root,
		NewCollectionMetadata(time.Now(), []string{"gnews"}, nil, nil))
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(root, "rajasthan", "2026-05-20", "jaipur", "articles.json"))
	require.NoError(t, err)

	var af struct {
		State        string           `json:"state"`
		District     string           `json:"district"`
		Date         string           `json:"date"`
		ArticleCount int              `json:"article_count"`
		Articles     []models.Article `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(raw, &af))
	assert.Equal(t, "Rajasthan", af.State)
	assert.Equal(t, "Jaipur", af.District)
	assert.Equal(t, "2026-05-20", af.Date)
	assert.Equal(t, 1, af.ArticleCount)
	require.Len(t, af.Articles, 1)
	assert.Equal(t, 0.7, af.Articles[0].RelevanceScore)
}

func TestWriteCollectionOutputCSVHeader(t *testing.T) {
	root := t.TempDir()
	article := sampleArticle(t, "Heatwave in Jaipur", "Rajasthan", "")

	_, err := WriteCollectionOutput([]models.Article{article}, root,
		NewCollectionMetadata(time.Now(), nil, nil, nil))
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(root, "rajasthan", "2026-05-20", "articles.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[0], "title,url,source,date,language,state,district"))
}

func TestMetadataHasRunID(t *testing.T) {
	m1 := NewCollectionMetadata(time.Now(), nil, nil, nil)
	m2 := NewCollectionMetadata(time.Now(), nil, nil, nil)
	assert.NotEmpty(t, m1.RunID)
	assert.NotEqual(t, m1.RunID, m2.RunID)
}
