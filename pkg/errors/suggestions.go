package errors

import "fmt"

// SuggestionGenerator generates actionable suggestions based on error category.
type SuggestionGenerator interface {
	Generate(category ErrorCategory, affectedPath string) []string
}

// NewSuggestionGenerator creates a new SuggestionGenerator.
func NewSuggestionGenerator() SuggestionGenerator {
	return &suggestionGenerator{}
}

// suggestionGenerator is the concrete implementation of SuggestionGenerator.
type suggestionGenerator struct{}

// Generate returns actionable suggestions based on the error category and affected path.
func (g *suggestionGenerator) Generate(category ErrorCategory, affectedPath string) []string {
	switch category {
	case CategoryPermission:
		return g.generatePermissionSuggestions(affectedPath)
	case CategoryNotFound:
		return g.generateNotFoundSuggestions(affectedPath)
	case CategoryNotADirectory:
		return g.generateNotADirectorySuggestions(affectedPath)
	case CategorySymlinkLoop:
		return g.generateSymlinkLoopSuggestions(affectedPath)
	case CategoryIO:
		return g.generateIOSuggestions(affectedPath)
	case CategoryUnknown:
		return g.generateUnknownSuggestions(affectedPath)
	default:
		return g.generateUnknownSuggestions(affectedPath)
	}
}

func (g *suggestionGenerator) generateIOSuggestions(_ string) []string {
	return []string{
		"Press r to reload - this may be a transient I/O error",
		"Check that the drive or network share is still mounted",
		"Check system logs for hardware issues",
	}
}

func (g *suggestionGenerator) generateNotADirectorySuggestions(path string) []string {
	suggestions := []string{
		"Navigate to the directory containing the file instead",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Inspect the file with 'ls -la %s'", path))
	}

	return suggestions
}

func (g *suggestionGenerator) generateNotFoundSuggestions(path string) []string {
	suggestions := []string{
		"Verify the path exists and is spelled correctly",
	}

	if path != "" {
		suggestions = append(suggestions, "The directory may have been moved or deleted: "+path)
	}

	suggestions = append(suggestions, "Go back to the parent directory and reload")

	return suggestions
}

func (g *suggestionGenerator) generatePermissionSuggestions(path string) []string {
	suggestions := []string{
		"Ensure you have read and execute permission on the directory",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Check permissions with 'ls -ld %s'", path))
	} else {
		suggestions = append(suggestions, "Check permissions with 'ls -ld' on the affected path")
	}

	return suggestions
}

func (g *suggestionGenerator) generateSymlinkLoopSuggestions(path string) []string {
	suggestions := []string{
		"A symbolic link in the path points back to itself",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Inspect the link with 'readlink -f %s'", path))
	}

	return suggestions
}

func (g *suggestionGenerator) generateUnknownSuggestions(path string) []string {
	suggestions := []string{
		"Check the log file for more details",
		"Verify directory permissions",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify the path is accessible: "+path)
	}

	return suggestions
}
