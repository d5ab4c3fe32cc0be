package shared

import "github.com/charmbracelet/lipgloss"

// Exported constants organized by category for clarity.
const (
	// ============================================================================
	// UI Layout & Display
	// ============================================================================

	// DefaultPadding is the default padding for UI elements
	DefaultPadding = 2
	// HeaderHeight is the number of lines above the listing
	HeaderHeight = 2
	// FooterHeight is the number of lines below the listing
	FooterHeight = 2
	// MinListHeight is the smallest number of listing rows drawn
	MinListHeight = 3

	// ============================================================================
	// Keys & Symbols
	// ============================================================================

	// KeyCtrlC is the key binding for cancellation
	KeyCtrlC = "ctrl+c"
	// CursorMarker marks the selected row
	CursorMarker = "▶ "
	// IconSwatch is the glyph coloured with an entry's icon
	IconSwatch = "■"
)

// ============================================================================
// Palette
// ============================================================================

func AccentColor() lipgloss.Color    { return lipgloss.Color(accentColorCode) }
func DimColor() lipgloss.Color       { return lipgloss.Color(dimColorCode) }
func ErrorColor() lipgloss.Color     { return lipgloss.Color(errorColorCode) }
func HighlightColor() lipgloss.Color { return lipgloss.Color(highlightColorCode) }
func NormalColor() lipgloss.Color    { return lipgloss.Color(normalColorCode) }
func SuccessColor() lipgloss.Color   { return lipgloss.Color(successColorCode) }
func WarningColor() lipgloss.Color   { return lipgloss.Color(warningColorCode) }

// PrimaryColor returns the colour of titles and the selected row
func PrimaryColor() lipgloss.Color { return lipgloss.Color(primaryColorCode) }

// ============================================================================
// Entry Styles (for the listing)
// ============================================================================

// DirectoryStyle returns the style for directory names
func DirectoryStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(AccentColor()).Bold(true)
}

// FileItemStyle returns the style for regular file names
func FileItemStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(NormalColor())
}

// SymlinkStyle returns the style for symlink names
func SymlinkStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(HighlightColor()).Italic(true)
}

// BrokenSymlinkStyle returns the style for symlinks whose target is missing
func BrokenSymlinkStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ErrorColor()).Strikethrough(true)
}

// SelectedStyle returns the style for the row under the cursor
func SelectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(PrimaryColor()).Bold(true)
}

// SwatchStyle returns the style that paints an icon swatch in hex colour
func SwatchStyle(hex string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
}

// ============================================================================
// Box and Text Styles
// ============================================================================

// BoxStyle returns the style for boxes with padding
func BoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(AccentColor()).
		Padding(0, 1)
}

// RenderDim renders secondary text such as sizes, times and hints
func RenderDim(text string) string {
	return lipgloss.NewStyle().Foreground(DimColor()).Render(text)
}

// RenderError renders an error message
func RenderError(text string) string {
	return lipgloss.NewStyle().Foreground(ErrorColor()).Bold(true).Render(text)
}

// RenderSuccess renders a finished-load summary
func RenderSuccess(text string) string {
	return lipgloss.NewStyle().Foreground(SuccessColor()).Render(text)
}

// RenderTitle renders the current directory path
func RenderTitle(text string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor()).Render(text)
}

// RenderWarning renders a warning such as the skipped-entries count
func RenderWarning(text string) string {
	return lipgloss.NewStyle().Foreground(WarningColor()).Render(text)
}

// unexported constants.
const (
	accentColorCode    = "33"  // Blue
	dimColorCode       = "243" // Gray
	errorColorCode     = "160" // Red
	highlightColorCode = "37"  // Teal
	normalColorCode    = "252" // Light gray
	primaryColorCode   = "213" // Pink
	successColorCode   = "35"  // Green
	warningColorCode   = "214" // Orange
)
