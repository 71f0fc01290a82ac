package dedup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
)

func makeArticle(t *testing.T, overrides func(*models.Article)) models.Article {
	t.Helper()
	ref, err := models.NewArticleRef(
		"Heatwave in Rajasthan",
		"https://example.com/article",
		"TestSource",
		time.Date(2026, 6, 1, 10, 0, 0, 0, models.IST),
		"en",
		"Rajasthan",
		"heatwave",
	)
	require.NoError(t, err)
	a := models.NewArticle(ref)
	if overrides != nil {
		overrides(&a)
	}
	return a
}

func TestCanonicalURLTrackingParams(t *testing.T) {
	got := CanonicalURL("HTTP://Www.Example.COM/Path/?utm_source=x&b=2&a=1#frag")
	assert.Equal(t, "http://example.com/Path?a=1&b=2", got)
}

func TestCanonicalURLIdempotent(t *testing.T) {
	urls := []string{
		"HTTP://Www.Example.COM/Path/?utm_source=x&b=2&a=1#frag",
		"https://news.example.in/heat-wave-story",
		"https://example.com/",
		"https://example.com/a?fbclid=zzz&id=9",
		"https://www.example.com/News/Article?page=2&ref=home",
	}
	for _, u := range urls {
		once := CanonicalURL(u)
		assert.Equal(t, once, CanonicalURL(once), "canon not idempotent for %q", u)
	}
}

func TestCanonicalURLPreservesPathCase(t *testing.T) {
	got := CanonicalURL("https://example.com/Some/Path")
	assert.Equal(t, "https://example.com/Some/Path", got)
}

func TestCanonicalURLKeepsRootSlash(t *testing.T) {
	assert.Equal(t, "https://example.com/", CanonicalURL("https://example.com/"))
}

func TestCanonicalURLSortsParamsByKeyThenValue(t *testing.T) {
	got := CanonicalURL("https://example.com/x?b=2&a=2&a=1")
	assert.Equal(t, "https://example.com/x?a=1&a=2&b=2", got)
}

func TestDeduplicateByURLKeepsHigherQuality(t *testing.T) {
	short := makeArticle(t, func(a *models.Article) {
		*a = a.WithFullText("Short text")
		a.URL = "https://example.com/same"
	})
	long := makeArticle(t, func(a *models.Article) {
		*a = a.WithFullText("This is a much longer full text for the article")
		a.URL = "https://example.com/same"
	})

	result := DeduplicateByURL([]models.Article{short, long})
	require.Len(t, result, 1)
	assert.Equal(t, "This is a much longer full text for the article", *result[0].FullText)
}

func TestDeduplicateByURLCollapsesTrackingVariants(t *testing.T) {
	a := makeArticle(t, func(a *models.Article) { a.URL = "https://example.com/article?utm_source=twitter" })
	b := makeArticle(t, func(a *models.Article) { a.URL = "https://example.com/article?utm_source=facebook" })

	result := DeduplicateByURL([]models.Article{a, b})
	assert.Len(t, result, 1)
}

func TestDeduplicateByURLKeepsDifferentURLs(t *testing.T) {
	a := makeArticle(t, func(a *models.Article) { a.URL = "https://example.com/one" })
	b := makeArticle(t, func(a *models.Article) { a.URL = "https://example.com/two" })

	result := DeduplicateByURL([]models.Article{a, b})
	assert.Len(t, result, 2)
}

func TestDeduplicateByURLIdempotent(t *testing.T) {
	articles := []models.Article{
		makeArticle(t, func(a *models.Article) { a.URL = "https://example.com/one" }),
		makeArticle(t, func(a *models.Article) { a.URL = "https://example.com/one?utm_source=x" }),
		makeArticle(t, func(a *models.Article) { a.URL = "https://example.com/two" }),
	}
	once := DeduplicateByURL(articles)
	twice := DeduplicateByURL(once)
	assert.Equal(t, once, twice)
}
