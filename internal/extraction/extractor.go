// internal/extraction/extractor.go
// Batch article extraction: resolve -> fetch -> extract text
package extraction

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

const (
	connectTimeout = 5 * time.Second
	totalTimeout   = 15 * time.Second
	fetchRetryWait = 2 * time.Second

	// Extractions shorter than this after trimming are discarded as
	// navbars, ad fragments, or cookie banners.
	minTextLength = 100

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

func newExtractionClient() *http.Client {
	return &http.Client{
		Timeout: totalTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: connectTimeout,
			}).DialContext,
		},
	}
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9,hi;q=0.8")
}

// fetchHTML fetches the page at url with one retry on failure and a short
// pause between attempts. Returns "" on persistent failure. Never fails.
func fetchHTML(ctx context.Context, client *http.Client, url string) string {
	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			logger.Warn("building fetch request failed", "url", url, "error", err)
			return ""
		}
		setBrowserHeaders(req)

		resp, err := client.Do(req)
		if err == nil && resp.StatusCode == http.StatusOK {
			body, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr == nil {
				return string(body)
			}
			err = readErr
		} else if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			logger.Debug("fetch returned non-200", "url", url, "status_code", resp.StatusCode)
		}

		if attempt == 0 {
			select {
			case <-time.After(fetchRetryWait):
			case <-ctx.Done():
				return ""
			}
			continue
		}
		if err != nil {
			logger.Warn("fetch failed", "url", url, "error", err)
		}
	}
	return ""
}

// extractText runs the HTML extractor with precision first and recall as a
// fallback, discarding results shorter than minTextLength.
func extractText(html string) string {
	text := ExtractMainText(html, false)
	if text == "" {
		text = ExtractMainText(html, true)
	}
	if len([]rune(text)) < minTextLength {
		return ""
	}
	return text
}

// extractOne produces exactly one Article for ref. Failures at any step
// yield an Article with no full text. Never fails.
func extractOne(ctx context.Context, client *http.Client, ref models.ArticleRef) models.Article {
	actualURL := ResolveURL(ctx, client, ref.URL)

	html := fetchHTML(ctx, client, actualURL)
	if html == "" {
		logger.Warn("extraction fetch failed", "url", ref.URL, "resolved", actualURL)
		return models.NewArticle(ref)
	}

	text := extractText(html)
	if text == "" {
		logger.Warn("no text extracted", "url", actualURL)
		return models.NewArticle(ref)
	}

	logger.Info("extracted article text", "url", actualURL, "chars", len(text))
	return models.NewArticle(ref).WithFullText(text)
}

// ExtractArticles batch-extracts full text for every ref, preserving input
// order and yielding exactly one Article per ref.
//
// Refs are processed in chunks of 3*maxConcurrent with an in-flight bound of
// maxConcurrent inside each chunk. The deadline (zero = none) is checked
// between chunks; once reached, remaining refs are returned as Articles with
// no full text. Never fails.
func ExtractArticles(ctx context.Context, refs []models.ArticleRef, maxConcurrent int, deadline time.Time) []models.Article {
	if len(refs) == 0 {
		logger.Info("no article refs to extract")
		return nil
	}
	if maxConcurrent < 1 {
		maxConcurrent = 10
	}

	client := newExtractionClient()
	defer client.CloseIdleConnections()

	articles := make([]models.Article, len(refs))
	processed := 0
	chunkSize := maxConcurrent * 3

	for start := 0; start < len(refs); start += chunkSize {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			logger.Warn("extraction deadline reached, stopping",
				"processed", processed, "total", len(refs))
			break
		}

		end := start + chunkSize
		if end > len(refs) {
			end = len(refs)
		}

		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(maxConcurrent)
		for i := start; i < end; i++ {
			i := i
			group.Go(func() error {
				articles[i] = extractOne(groupCtx, client, refs[i])
				return nil
			})
		}
		group.Wait()
		processed = end
	}

	// Remaining refs past the deadline become Articles with no text
	for i := processed; i < len(refs); i++ {
		articles[i] = models.NewArticle(refs[i])
	}
	if processed < len(refs) {
		logger.Info("skipped extraction for remaining refs", "skipped", len(refs)-processed)
	}

	extracted := 0
	for _, a := range articles {
		if a.FullText != nil {
			extracted++
		}
	}
	logger.Info("extraction complete",
		"refs", len(refs),
		"extracted", extracted,
		"failed_or_skipped", len(refs)-extracted,
	)
	return articles
}
