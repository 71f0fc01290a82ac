// internal/sources/newsdata.go
// NewsData.io REST API source adapter - secondary collection source
package sources

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	apperrors "github.com/AIDMI-DataHub/heat-news-extraction/pkg/errors"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

const newsDataDailyLimit = 200

// Var rather than const so tests can point the adapter at an httptest server
var newsDataBaseURL = "https://newsdata.io/api/1/latest"

var newsDataLanguages = map[string]bool{
	"en": true, "hi": true, "ta": true, "te": true, "bn": true,
	"mr": true, "gu": true, "kn": true, "ml": true, "or": true,
	"pa": true, "as": true, "ur": true, "ne": true,
}

type newsDataResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Title      string `json:"title"`
		Link       string `json:"link"`
		PubDate    string `json:"pubDate"`
		SourceName string `json:"source_name"`
		SourceID   string `json:"source_id"`
	} `json:"results"`
}

// NewsDataSource fetches the latest news via the NewsData.io API and maps
// JSON results to ArticleRefs. Tracks an in-process daily counter (the
// pipeline runs once per day, so no persistence is needed). With no API key
// every Search returns empty without issuing a request.
type NewsDataSource struct {
	apiKey  string
	timeout time.Duration

	mu         sync.Mutex
	client     *http.Client
	dailyCount int
}

// NewNewsDataSource creates the adapter. An empty apiKey degrades gracefully.
func NewNewsDataSource(apiKey string, timeout time.Duration) *NewsDataSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if apiKey == "" {
		logger.Warn("newsdata: API key not provided, source will return empty results")
	}
	return &NewsDataSource{
		apiKey:  apiKey,
		timeout: timeout,
	}
}

func (s *NewsDataSource) ensureClient() *http.Client {
	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
	}
	return s.client
}

// Search queries NewsData.io. Never fails except for the rate-limit signal.
func (s *NewsDataSource) Search(ctx context.Context, query, language, country, state, searchTerm string) ([]models.ArticleRef, error) {
	if s.apiKey == "" {
		return nil, nil
	}
	if !newsDataLanguages[language] {
		logger.Debug("newsdata: language not supported", "language", language)
		return nil, nil
	}

	s.mu.Lock()
	if s.dailyCount >= newsDataDailyLimit {
		s.mu.Unlock()
		logger.Debug("newsdata: daily limit reached", "count", s.dailyCount)
		return nil, nil
	}
	client := s.ensureClient()
	s.mu.Unlock()

	params := url.Values{}
	params.Set("apikey", s.apiKey)
	params.Set("q", query)
	params.Set("language", language)
	params.Set("country", strings.ToLower(country))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsDataBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		logger.Error("newsdata: building request failed", "error", err)
		return nil, nil
	}
	resp, err := client.Do(req)

	s.mu.Lock()
	s.dailyCount++
	s.mu.Unlock()

	if err != nil {
		logger.Warn("newsdata: request failed", "query", query, "language", language, "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		logger.Error("newsdata: invalid API key (HTTP 401)", "query", query)
		return nil, nil
	case http.StatusForbidden:
		// NewsData.io signals quota exhaustion with 403
		s.mu.Lock()
		s.dailyCount = newsDataDailyLimit
		s.mu.Unlock()
		logger.Warn("newsdata: quota exhausted (HTTP 403)", "query", query)
		return nil, nil
	case http.StatusTooManyRequests:
		return nil, apperrors.NewRateLimitError("newsdata")
	default:
		logger.Warn("newsdata: unexpected status", "status_code", resp.StatusCode, "query", query)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("newsdata: reading response failed", "query", query, "error", err)
		return nil, nil
	}

	var data newsDataResponse
	if err := json.Unmarshal(body, &data); err != nil {
		logger.Warn("newsdata: JSON parse failed", "query", query, "error", err)
		return nil, nil
	}

	// NewsData.io can return HTTP 200 with {"status": "error"}
	if data.Status == "error" {
		logger.Warn("newsdata: API returned error status", "query", query, "language", language)
		return nil, nil
	}

	articles := make([]models.ArticleRef, 0, len(data.Results))
	skipped := 0
	for _, item := range data.Results {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" || item.PubDate == "" {
			skipped++
			continue
		}
		published, ok := parseNewsDataDate(item.PubDate)
		if !ok {
			skipped++
			continue
		}
		sourceName := item.SourceName
		if sourceName == "" {
			sourceName = item.SourceID
		}
		ref, err := models.NewArticleRef(title, link, sourceName, published, language, state, searchTerm)
		if err != nil {
			logger.Warn("newsdata: skipping invalid entry", "title", truncate(title, 80), "error", err)
			skipped++
			continue
		}
		articles = append(articles, ref)
	}

	logger.Info("newsdata search complete",
		"query", query,
		"language", language,
		"articles", len(articles),
		"skipped", skipped,
	)
	return articles, nil
}

// parseNewsDataDate handles the API's "2006-01-02 15:04:05" format plus
// RFC 3339. Naive timestamps are interpreted as UTC.
func parseNewsDataDate(raw string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02 15:04:05", raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// RemainingToday returns what is left of the in-process daily counter
func (s *NewsDataSource) RemainingToday() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := newsDataDailyLimit - s.dailyCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Close releases the HTTP client
func (s *NewsDataSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.CloseIdleConnections()
		s.client = nil
	}
}
