package traversal

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/joe/dirnav/internal/entry"
)

// EntryFilter decides which walked entries reach the output.
type EntryFilter interface {
	// ShouldInclude returns true if the entry at the given slash-separated path,
	// relative to the traversal root, should be emitted
	ShouldInclude(relativePath string) bool
}

// ExcludeFilter rejects hidden names (unless included) and paths matching any
// of a set of glob patterns.
type ExcludeFilter struct {
	patterns      []string
	includeHidden bool
}

// NewExcludeFilter creates an ExcludeFilter. Patterns use doublestar syntax and
// are matched case-insensitively against both the relative path and the base
// name, so "*.log" excludes log files at any depth.
func NewExcludeFilter(patterns []string, includeHidden bool) (*ExcludeFilter, error) {
	normalized := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
		}

		normalized = append(normalized, strings.ToLower(pattern))
	}

	return &ExcludeFilter{
		patterns:      normalized,
		includeHidden: includeHidden,
	}, nil
}

// ShouldInclude returns true if the entry is neither hidden nor excluded
func (f *ExcludeFilter) ShouldInclude(relativePath string) bool {
	name := path.Base(relativePath)

	if !f.includeHidden && entry.IsHiddenName(name) {
		return false
	}

	if len(f.patterns) == 0 {
		return true
	}

	normalizedPath := strings.ToLower(relativePath)
	normalizedName := strings.ToLower(name)

	for _, pattern := range f.patterns {
		// Patterns were validated up front, so match errors cannot occur here
		if matched, _ := doublestar.Match(pattern, normalizedPath); matched {
			return false
		}

		if matched, _ := doublestar.Match(pattern, normalizedName); matched {
			return false
		}
	}

	return true
}
