package errors

import (
	"errors"
	"io/fs"
	"strings"
	"syscall"
)

// PatternMatcher classifies errors into categories.
type PatternMatcher interface {
	Match(errorMsg string) ErrorCategory
	MatchError(err error) ErrorCategory
}

// NewPatternMatcher creates a new PatternMatcher with predefined patterns.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		// Checked in order: "not a directory" must win over the generic i/o wrapper
		patterns: []categoryPatterns{
			{CategoryPermission, []string{
				"permission denied",
				"access denied",
				"operation not permitted",
			}},
			{CategoryNotADirectory, []string{
				"not a directory",
			}},
			{CategorySymlinkLoop, []string{
				"too many levels of symbolic links",
				"too many symbolic links",
			}},
			{CategoryNotFound, []string{
				"no such file or directory",
				"path not found",
				"file not found",
				"cannot find the path",
			}},
			{CategoryIO, []string{
				"input/output error",
				"i/o error",
				"stale file handle",
			}},
		},
	}
}

type categoryPatterns struct {
	category ErrorCategory
	patterns []string
}

// patternMatcher is the concrete implementation of PatternMatcher.
type patternMatcher struct {
	patterns []categoryPatterns
}

// Match returns the error category based on pattern matching.
func (m *patternMatcher) Match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	for _, group := range m.patterns {
		for _, pattern := range group.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return group.category
			}
		}
	}

	return CategoryUnknown
}

// MatchError inspects the error chain before falling back to the message.
func (m *patternMatcher) MatchError(err error) ErrorCategory {
	switch {
	case err == nil:
		return CategoryUnknown
	case errors.Is(err, fs.ErrPermission):
		return CategoryPermission
	case errors.Is(err, syscall.ENOTDIR):
		return CategoryNotADirectory
	case errors.Is(err, syscall.ELOOP):
		return CategorySymlinkLoop
	case errors.Is(err, fs.ErrNotExist):
		return CategoryNotFound
	default:
		return m.Match(err.Error())
	}
}
