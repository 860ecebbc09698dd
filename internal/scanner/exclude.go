package scanner

import (
	"path/filepath"
	"strings"
)

// Excluder decides whether a candidate item is kept out of scan and clean.
// The zero value and a nil *Excluder exclude nothing.
type Excluder struct {
	patterns []string
	keep     []string
}

// NewExcluder builds an Excluder from glob patterns and path prefixes to keep.
func NewExcluder(patterns, keepPaths []string) *Excluder {
	keep := make([]string, 0, len(keepPaths))
	for _, p := range keepPaths {
		keep = append(keep, filepath.Clean(p))
	}
	return &Excluder{patterns: patterns, keep: keep}
}

// Match reports whether path should be skipped.
func (e *Excluder) Match(path string) bool {
	if e == nil {
		return false
	}

	for _, keep := range e.keep {
		if path == keep || strings.HasPrefix(path, keep+string(filepath.Separator)) {
			return true
		}
	}

	base := filepath.Base(path)
	for _, pattern := range e.patterns {
		if matched, _ := filepath.Match(pattern, path); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}

	return false
}
