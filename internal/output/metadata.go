// internal/output/metadata.go
// Collection-level metadata for output traceability
package output

import (
	"time"

	"github.com/google/uuid"
)

// CollectionMetadata describes a single collection run. Written alongside
// the per-state article files for auditing and downstream bookkeeping.
type CollectionMetadata struct {
	RunID               string         `json:"run_id"`
	CollectionTimestamp time.Time      `json:"collection_timestamp"`
	SourcesQueried      []string       `json:"sources_queried"`
	QueryTermsUsed      []string       `json:"query_terms_used"`
	Counts              map[string]int `json:"counts"`
}

// NewCollectionMetadata stamps a fresh run ID and timestamp
func NewCollectionMetadata(now time.Time, sources, queryTerms []string, counts map[string]int) CollectionMetadata {
	return CollectionMetadata{
		RunID:               uuid.NewString(),
		CollectionTimestamp: now,
		SourcesQueried:      sources,
		QueryTermsUsed:      queryTerms,
		Counts:              counts,
	}
}
