// internal/sources/googlenews.go
// Google News RSS source adapter - primary collection source
package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	apperrors "github.com/AIDMI-DataHub/heat-news-extraction/pkg/errors"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// Var rather than const so tests can point the adapter at an httptest server
var googleNewsBaseURL = "https://news.google.com/rss/search"

// hl parameter per language. English must be en-IN (English for India);
// bare "en" defaults to US English. All other languages use bare codes.
var googleLangToHL = map[string]string{
	"en": "en-IN",
}

// GoogleNewsSource fetches Google News RSS search results and parses them
// into ArticleRefs with gofeed. Unlimited on the backend side; pacing is the
// scheduler's job.
type GoogleNewsSource struct {
	timeout time.Duration
	parser  *gofeed.Parser

	mu     sync.Mutex
	client *http.Client
}

// NewGoogleNewsSource creates the RSS adapter with the given request timeout
func NewGoogleNewsSource(timeout time.Duration) *GoogleNewsSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GoogleNewsSource{
		timeout: timeout,
		parser:  gofeed.NewParser(),
	}
}

func (s *GoogleNewsSource) ensureClient() *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
	}
	return s.client
}

func googleSearchURL(query, language, country string) string {
	hl, ok := googleLangToHL[language]
	if !ok {
		hl = language
	}
	// ceid uses the base language code, not the regional hl variant; Google
	// News redirects when these disagree.
	return fmt.Sprintf("%s?q=%s&hl=%s&gl=%s&ceid=%s:%s",
		googleNewsBaseURL,
		url.QueryEscape(query),
		hl,
		country,
		country,
		language,
	)
}

// Search fetches the RSS search feed and maps entries to ArticleRefs.
// Never fails: all errors except the rate-limit signal produce an empty list.
func (s *GoogleNewsSource) Search(ctx context.Context, query, language, country, state, searchTerm string) ([]models.ArticleRef, error) {
	feedURL := googleSearchURL(query, language, country)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		logger.Error("google news: building request failed", "error", err)
		return nil, nil
	}
	resp, err := s.ensureClient().Do(req)
	if err != nil {
		logger.Warn("google news: request failed", "query", query, "language", language, "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, apperrors.NewRateLimitError("google_news")
	}
	if resp.StatusCode != http.StatusOK {
		logger.Warn("google news: unexpected status",
			"status_code", resp.StatusCode, "query", query, "language", language)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("google news: reading response failed", "query", query, "error", err)
		return nil, nil
	}

	feed, err := s.parser.ParseString(string(body))
	if err != nil {
		logger.Warn("google news: feed parse failed", "query", query, "language", language, "error", err)
		return nil, nil
	}

	articles := make([]models.ArticleRef, 0, len(feed.Items))
	skipped := 0
	for _, item := range feed.Items {
		ref, ok := googleItemToRef(item, language, state, searchTerm)
		if !ok {
			skipped++
			continue
		}
		articles = append(articles, ref)
	}

	logger.Info("google news search complete",
		"query", query,
		"language", language,
		"articles", len(articles),
		"skipped", skipped,
	)
	return articles, nil
}

// googleItemToRef converts one feed entry, skipping entries missing any of
// title, link, or publication date.
func googleItemToRef(item *gofeed.Item, language, state, searchTerm string) (models.ArticleRef, bool) {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" || item.PublishedParsed == nil {
		return models.ArticleRef{}, false
	}

	// Google News appends " - Publisher Name" to titles; use it as the
	// source name when present.
	sourceName := "Unknown"
	if idx := strings.LastIndex(title, " - "); idx != -1 {
		if suffix := strings.TrimSpace(title[idx+3:]); suffix != "" {
			sourceName = suffix
		}
	}

	ref, err := models.NewArticleRef(title, link, sourceName, *item.PublishedParsed, language, state, searchTerm)
	if err != nil {
		logger.Warn("google news: skipping invalid entry", "title", truncate(title, 80), "error", err)
		return models.ArticleRef{}, false
	}
	return ref, true
}

// Close releases the HTTP client
func (s *GoogleNewsSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.CloseIdleConnections()
		s.client = nil
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
