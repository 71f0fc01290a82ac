// internal/reliability/checkpoint.go
// Checkpoint store for crash recovery: completed query fingerprints on disk
package reliability

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/AIDMI-DataHub/heat-news-extraction/internal/models"
	"github.com/AIDMI-DataHub/heat-news-extraction/pkg/logger"
)

// CheckpointStore persists the set of completed query fingerprints so a
// crashed run can resume without repeating API calls. The set only grows
// within a run; the pipeline removes the file after a fully successful run.
type CheckpointStore struct {
	path      string
	mu        sync.Mutex
	completed map[string]struct{}
}

// NewCheckpointStore creates a store backed by the JSON file at path
func NewCheckpointStore(path string) *CheckpointStore {
	return &CheckpointStore{
		path:      path,
		completed: make(map[string]struct{}),
	}
}

// QueryKey computes the stable fingerprint for q: the first 16 hex
// characters of SHA-256 over "hint|slug|language|level|query". Independent
// of process, platform, and insertion order.
func QueryKey(q models.Query) string {
	raw := fmt.Sprintf("%s|%s|%s|%s|%s",
		q.SourceHint, q.StateSlug, q.Language, q.Level, q.QueryString)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])[:16]
}

type checkpointFile struct {
	CompletedQueries []string `json:"completed_queries"`
}

// Load reads the checkpoint file if present. A missing file is an empty set.
func (s *CheckpointStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading checkpoint %s: %w", s.path, err)
	}
	var cf checkpointFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return fmt.Errorf("parsing checkpoint %s: %w", s.path, err)
	}
	for _, key := range cf.CompletedQueries {
		s.completed[key] = struct{}{}
	}
	logger.Info("checkpoint loaded",
		"path", s.path,
		"completed_queries", len(s.completed),
	)
	return nil
}

// IsCompleted reports whether q finished in this run or a previous one
func (s *CheckpointStore) IsCompleted(q models.Query) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.completed[QueryKey(q)]
	return ok
}

// MarkCompleted adds q's fingerprint to the completed set
func (s *CheckpointStore) MarkCompleted(q models.Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completed[QueryKey(q)] = struct{}{}
}

// Save atomically writes the sorted fingerprint set as JSON. The write goes
// to a temp file in the same directory followed by a rename, so a crash
// mid-save leaves the previous checkpoint intact.
func (s *CheckpointStore) Save() error {
	s.mu.Lock()
	keys := make([]string, 0, len(s.completed))
	for key := range s.completed {
		keys = append(keys, key)
	}
	s.mu.Unlock()
	sort.Strings(keys)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}
	raw, err := json.MarshalIndent(checkpointFile{CompletedQueries: keys}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding checkpoint: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("creating checkpoint temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing checkpoint temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming checkpoint into place: %w", err)
	}
	return nil
}

// Remove deletes the checkpoint file after a fully successful run
func (s *CheckpointStore) Remove() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// CompletedCount returns the number of completed queries
func (s *CheckpointStore) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.completed)
}
