package shared

import (
	"fmt"
	"strings"

	"github.com/joe/dirnav/internal/traversal"
	"github.com/joe/dirnav/pkg/errors"
)

// ErrorLimit is the number of skipped entries listed before the rest are summarised.
const ErrorLimit = 3

// ErrorListConfig holds configuration for rendering error lists
type ErrorListConfig struct {
	// Errors is the list of skipped entries to display
	Errors []traversal.EntryError

	// Limit is the number of errors listed; 0 means ErrorLimit
	Limit int

	// MaxWidth is the maximum width for path and error message display
	MaxWidth int
}

// RenderErrorList renders skipped entries with actionable suggestions, up to
// the configured limit.
func RenderErrorList(config ErrorListConfig) string {
	if len(config.Errors) == 0 {
		return ""
	}

	var builder strings.Builder
	enricher := errors.NewEnricher()

	limit := config.Limit
	if limit <= 0 {
		limit = ErrorLimit
	}

	for i, entryErr := range config.Errors {
		if i >= limit {
			fmt.Fprintf(&builder, "  ... and %d more skipped\n", len(config.Errors)-limit)
			break
		}

		enrichedErr := enricher.Enrich(entryErr.Err, entryErr.Path)

		displayPath := entryErr.Path
		if config.MaxWidth > 0 {
			displayPath = Truncate(displayPath, config.MaxWidth)
		}

		fmt.Fprintf(&builder, "  %s %s\n", ErrorSymbol(), RenderError(displayPath))

		errMsg := enrichedErr.Error()
		if config.MaxWidth > 0 {
			errMsg = Truncate(errMsg, config.MaxWidth)
		}

		fmt.Fprintf(&builder, "    %s\n", errMsg)
	}

	return builder.String()
}

// RenderFailure renders a failed load: its headline and, for enriched errors,
// the suggestions.
func RenderFailure(message string, err error) string {
	var builder strings.Builder

	builder.WriteString(RenderError(ErrorSymbol() + " " + message))

	if suggestions := errors.FormatSuggestions(err); suggestions != "" {
		builder.WriteString("\n")
		builder.WriteString(RenderDim(suggestions))
	}

	return builder.String()
}

// ErrorSymbol returns the marker printed before an error.
func ErrorSymbol() string {
	return "✗"
}
