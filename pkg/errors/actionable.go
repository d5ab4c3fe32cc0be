// Package errors turns directory-loading failures into user-facing messages
// with a category and actionable suggestions.
//
// Basic Usage:
//
//	enricher := errors.NewEnricher()
//	_, err := engine.Traverse(ctx, "/restricted", cfg, out)
//	if err != nil {
//	    actionableErr := enricher.Enrich(err, "/restricted").(errors.ActionableError)
//	    fmt.Println(actionableErr.Headline()) // "Permission denied: /restricted"
//	    fmt.Println(errors.FormatSuggestions(actionableErr))
//	}
//
// The enricher extracts paths from error messages when none is given:
//
//	err := errors.New("open /home/user/docs: permission denied")
//	enriched := enricher.Enrich(err, "") // AffectedPath() == "/home/user/docs"
package errors

import "strings"

// Exported constants.
const (
	CategoryNotADirectory ErrorCategory = "not_a_directory"
	CategoryNotFound      ErrorCategory = "not_found"
	CategoryIO            ErrorCategory = "io"
	CategoryPermission    ErrorCategory = "permission"
	CategorySymlinkLoop   ErrorCategory = "symlink_loop"
	CategoryUnknown       ErrorCategory = "unknown"
)

// ErrorCategory represents the type of error that occurred.
type ErrorCategory string

// Title returns a short human-readable name for the category.
func (c ErrorCategory) Title() string {
	switch c {
	case CategoryNotADirectory:
		return "Not a directory"
	case CategoryNotFound:
		return "Directory not found"
	case CategoryIO:
		return "Read error"
	case CategoryPermission:
		return "Permission denied"
	case CategorySymlinkLoop:
		return "Too many symbolic links"
	default:
		return "Unable to load directory"
	}
}

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	OriginalError() string
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
	// Headline is a one-line message suitable for a status bar.
	Headline() string
}

// NewActionableError creates a new ActionableError with the given details.
func NewActionableError(
	originalError string,
	category ErrorCategory,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		originalError: originalError,
		category:      category,
		suggestions:   suggestions,
		affectedPath:  affectedPath,
	}
}

// FormatSuggestions formats the suggestions from an ActionableError as a bulleted list
// for display. Returns empty string if the error is nil or has no suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	actionable, ok := err.(ActionableError)
	if !ok {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// actionableError is the concrete implementation of ActionableError.
type actionableError struct {
	originalError string
	category      ErrorCategory
	suggestions   []string
	affectedPath  string
}

// AffectedPath returns the file path affected by this error.
func (e *actionableError) AffectedPath() string {
	return e.affectedPath
}

// Category returns the error category.
func (e *actionableError) Category() ErrorCategory {
	return e.category
}

// Error implements the error interface.
func (e *actionableError) Error() string {
	return e.originalError
}

// Headline returns "<category title>: <path>", or the title alone without a path.
func (e *actionableError) Headline() string {
	if e.affectedPath == "" {
		return e.category.Title()
	}

	return e.category.Title() + ": " + e.affectedPath
}

// OriginalError returns the original error message.
func (e *actionableError) OriginalError() string {
	return e.originalError
}

// Suggestions returns the list of actionable suggestions.
func (e *actionableError) Suggestions() []string {
	return e.suggestions
}
