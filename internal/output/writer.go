// internal/output/writer.go
// JSON and CSV output writers for collected articles
//
// Output structure:
//
//	output/
//	  state-slug/
//	    YYYY-MM-DD/
//	      articles.json        -- state-level articles
//	      articles.csv
//	      district-slug/
//	        articles.json      -- district-level articles
//	        articles.csv
//	  _metadata.json
//
// Articles land in directories derived from their own metadata (state,
// date, district). Indic scripts are preserved: JSON output never escapes
// non-ASCII characters.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// Slugify converts a state or district name to a filesystem-safe slug
func Slugify(name string) string {
	slug := strings.ToLower(name)
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "&", "and")
	return slug
}

type articleGroup struct {
	StateSlug    string
	Date         string
	DistrictSlug string
}

type articlesFile struct {
	State        string           `json:"state"`
	District     string           `json:"district,omitempty"`
	Date         string           `json:"date"`
	ArticleCount int              `json:"article_count"`
	Articles     []models.Article `json:"articles"`
}

// marshalUnescaped encodes v as indented JSON without HTML escaping, so
// Devanagari, Tamil, and other non-ASCII text stays readable.
func marshalUnescaped(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(articles []models.Article, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	af := articlesFile{
		ArticleCount: len(articles),
		Articles:     articles,
	}
	if len(articles) > 0 {
		af.State = articles[0].State
		af.District = articles[0].District
		af.Date = articles[0].Date.Format("2006-01-02")
	}
	raw, err := marshalUnescaped(af)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dest, "articles.json"), raw, 0o644)
}

func writeCSV(articles []models.Article, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{
		"title", "url", "source", "date", "language", "state", "district",
		"search_term", "full_text", "relevance_score",
	}); err != nil {
		return err
	}
	for _, a := range articles {
		fullText := ""
		if a.FullText != nil {
			fullText = *a.FullText
		}
		if err := w.Write([]string{
			a.Title,
			a.URL,
			a.Source,
			a.Date.Format("2006-01-02T15:04:05-07:00"),
			a.Language,
			a.State,
			a.District,
			a.SearchTerm,
			fullText,
			strconv.FormatFloat(a.RelevanceScore, 'f', 4, 64),
		}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dest, "articles.csv"), buf.Bytes(), 0o644)
}

// WriteCollectionOutput writes every article into its state/date(/district)
// directory plus the root _metadata.json. Returns the number of article
// file pairs written.
func WriteCollectionOutput(articles []models.Article, outputRoot string, metadata CollectionMetadata) (int, error) {
	groups := make(map[articleGroup][]models.Article)
	var order []articleGroup
	for _, article := range articles {
		key := articleGroup{
			StateSlug: Slugify(article.State),
			Date:      article.Date.Format("2006-01-02"),
		}
		if article.District != "" {
			key.DistrictSlug = Slugify(article.District)
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], article)
	}

	written := 0
	for _, key := range order {
		dest := filepath.Join(outputRoot, key.StateSlug, key.Date)
		if key.DistrictSlug != "" {
			dest = filepath.Join(dest, key.DistrictSlug)
		}
		group := groups[key]
		if err := writeJSON(group, dest); err != nil {
			return written, fmt.Errorf("writing %s/articles.json: %w", dest, err)
		}
		if err := writeCSV(group, dest); err != nil {
			return written, fmt.Errorf("writing %s/articles.csv: %w", dest, err)
		}
		written++
	}

	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return written, err
	}
	raw, err := marshalUnescaped(metadata)
	if err != nil {
		return written, err
	}
	metaPath := filepath.Join(outputRoot, "_metadata.json")
	if err := os.WriteFile(metaPath, raw, 0o644); err != nil {
		return written, fmt.Errorf("writing %s: %w", metaPath, err)
	}

	logger.Info("collection output written",
		"groups", written,
		"articles", len(articles),
		"output_root", outputRoot,
	)
	return written, nil
}
