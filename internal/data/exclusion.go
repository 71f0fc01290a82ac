// internal/data/exclusion.go
// Exclusion patterns for the high-recall relevance filter
package data

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
)

//go:embed exclusion_patterns.json
var exclusionJSON []byte

type exclusionFile struct {
	Patterns []struct {
		Pattern string `json:"pattern"`
		Reason  string `json:"reason"`
	} `json:"patterns"`
}

var (
	exclusionOnce     sync.Once
	exclusionCompiled []*regexp.Regexp
	exclusionErr      error
)

func loadExclusions() ([]*regexp.Regexp, error) {
	exclusionOnce.Do(func() {
		var ef exclusionFile
		if err := json.Unmarshal(exclusionJSON, &ef); err != nil {
			exclusionErr = fmt.Errorf("parsing exclusion_patterns.json: %w", err)
			return
		}
		compiled := make([]*regexp.Regexp, 0, len(ef.Patterns))
		for _, entry := range ef.Patterns {
			re, err := regexp.Compile("(?i)" + entry.Pattern)
			if err != nil {
				exclusionErr = fmt.Errorf("compiling exclusion pattern %q: %w", entry.Pattern, err)
				return
			}
			compiled = append(compiled, re)
		}
		exclusionCompiled = compiled
	})
	return exclusionCompiled, exclusionErr
}

// ExclusionPatterns returns the precompiled case-insensitive exclusion
// patterns. Compilation happens once per process.
func ExclusionPatterns() []*regexp.Regexp {
	patterns, err := loadExclusions()
	if err != nil {
		return nil
	}
	return patterns
}
