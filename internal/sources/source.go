// internal/sources/source.go
// Common contract for all news source adapters
package sources

import (
	"context"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
)

// Source is the common interface for news source adapters.
//
// Search never fails in the conventional sense: transport, HTTP, and parse
// errors are logged and produce an empty slice. The single exception is the
// distinguished rate-limit signal (errors.RateLimitError) returned on HTTP
// 429 so that the scheduler's retry layer can back off and reissue the same
// request. The state and searchTerm arguments carry caller context the
// backend responses do not include; both are attached to every ArticleRef.
type Source interface {
	Search(ctx context.Context, query, language, country, state, searchTerm string) ([]models.ArticleRef, error)
	Close()
}
