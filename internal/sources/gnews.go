// internal/sources/gnews.go
// GNews REST API source adapter - tertiary collection source
package sources

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	apperrors "github.com/AIDMI-DataHub/heat-news-extraction/pkg/errors"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

const (
	gnewsDailyLimit = 100
	gnewsMaxResults = 10
)

// Var rather than const so tests can point the adapter at an httptest server
var gnewsBaseURL = "https://gnews.io/api/v4/search"

// GNews supports only 8 of the 14 collection languages
var gnewsLanguages = map[string]bool{
	"en": true, "hi": true, "bn": true, "ta": true,
	"te": true, "mr": true, "ml": true, "pa": true,
}

type gnewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// GNewsSource fetches articles via the GNews search API. GNews returns 403
// (not 429) when the daily quota is exhausted; 429 is per-second rate
// limiting only and is surfaced as the rate-limit signal.
type GNewsSource struct {
	apiKey  string
	timeout time.Duration

	mu         sync.Mutex
	client     *http.Client
	dailyCount int
}

// NewGNewsSource creates the adapter. An empty apiKey degrades gracefully.
func NewGNewsSource(apiKey string, timeout time.Duration) *GNewsSource {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if apiKey == "" {
		logger.Warn("gnews: API key not provided, source will return empty results")
	}
	return &GNewsSource{
		apiKey:  apiKey,
		timeout: timeout,
	}
}

func (s *GNewsSource) ensureClient() *http.Client {
	if s.client == nil {
		s.client = &http.Client{Timeout: s.timeout}
	}
	return s.client
}

// Search queries GNews. Never fails except for the rate-limit signal.
func (s *GNewsSource) Search(ctx context.Context, query, language, country, state, searchTerm string) ([]models.ArticleRef, error) {
	if s.apiKey == "" {
		return nil, nil
	}
	if !gnewsLanguages[language] {
		logger.Debug("gnews: language not supported", "language", language)
		return nil, nil
	}

	s.mu.Lock()
	if s.dailyCount >= gnewsDailyLimit {
		s.mu.Unlock()
		logger.Debug("gnews: daily limit reached", "count", s.dailyCount)
		return nil, nil
	}
	client := s.ensureClient()
	s.mu.Unlock()

	params := url.Values{}
	params.Set("apikey", s.apiKey)
	params.Set("q", query)
	params.Set("lang", language)
	params.Set("country", strings.ToLower(country))
	params.Set("max", strconv.Itoa(gnewsMaxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, gnewsBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		logger.Error("gnews: building request failed", "error", err)
		return nil, nil
	}
	resp, err := client.Do(req)

	s.mu.Lock()
	s.dailyCount++
	s.mu.Unlock()

	if err != nil {
		logger.Warn("gnews: request failed", "query", query, "language", language, "error", err)
		return nil, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		logger.Error("gnews: invalid API key (HTTP 401)", "query", query)
		return nil, nil
	case http.StatusForbidden:
		s.mu.Lock()
		s.dailyCount = gnewsDailyLimit
		s.mu.Unlock()
		logger.Warn("gnews: daily quota exhausted (HTTP 403)", "query", query)
		return nil, nil
	case http.StatusTooManyRequests:
		return nil, apperrors.NewRateLimitError("gnews")
	default:
		logger.Warn("gnews: unexpected status", "status_code", resp.StatusCode, "query", query)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn("gnews: reading response failed", "query", query, "error", err)
		return nil, nil
	}

	var data gnewsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		logger.Warn("gnews: JSON parse failed", "query", query, "error", err)
		return nil, nil
	}

	articles := make([]models.ArticleRef, 0, len(data.Articles))
	skipped := 0
	for _, item := range data.Articles {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.URL)
		if title == "" || link == "" || item.PublishedAt == "" {
			skipped++
			continue
		}
		// publishedAt is ISO 8601 with a trailing Z (always UTC)
		published, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			skipped++
			continue
		}
		ref, err := models.NewArticleRef(title, link, item.Source.Name, published, language, state, searchTerm)
		if err != nil {
			logger.Warn("gnews: skipping invalid entry", "title", truncate(title, 80), "error", err)
			skipped++
			continue
		}
		articles = append(articles, ref)
	}

	logger.Info("gnews search complete",
		"query", query,
		"language", language,
		"articles", len(articles),
		"skipped", skipped,
	)
	return articles, nil
}

// RemainingToday returns what is left of the in-process daily counter
func (s *GNewsSource) RemainingToday() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := gnewsDailyLimit - s.dailyCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Close releases the HTTP client
func (s *GNewsSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.CloseIdleConnections()
		s.client = nil
	}
}
