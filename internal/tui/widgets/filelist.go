package widgets

import (
	"fmt"
	"strings"

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/iconcache"
	"github.com/joe/dirnav/internal/tui/shared"
)

const (
	sizeColumnWidth     = 9
	modifiedColumnWidth = 16
	minNameWidth        = 10
	markerWidth         = 2
	swatchWidth         = 2
	columnGaps          = 2
)

// FileList describes the visible window of a listing.
type FileList struct {
	Entries []entry.FileEntry
	Cursor  int
	Offset  int
	Height  int
	Width   int
	// Icon returns the image whose average colour paints an entry's swatch.
	// Nil draws no swatches.
	Icon func(entry.FileEntry) iconcache.RenderImage
}

// NewFileListWidget creates a widget that displays the rows of a listing
// between Offset and Offset+Height, marking the row under the cursor.
// Returns a closure that formats the list from the current state.
func NewFileListWidget(getList func() FileList) func() string {
	return func() string {
		list := getList()
		if len(list.Entries) == 0 {
			return shared.RenderDim("  (empty)")
		}

		nameWidth := max(list.Width-markerWidth-swatchWidth-sizeColumnWidth-modifiedColumnWidth-columnGaps, minNameWidth)

		end := min(list.Offset+max(list.Height, 1), len(list.Entries))
		rows := make([]string, 0, end-list.Offset)

		for i := max(list.Offset, 0); i < end; i++ {
			rows = append(rows, renderRow(list, list.Entries[i], i == list.Cursor, nameWidth))
		}

		return strings.Join(rows, "\n")
	}
}

func renderRow(list FileList, fe entry.FileEntry, selected bool, nameWidth int) string {
	marker := "  "
	if selected {
		marker = shared.CursorMarker
	}

	swatch := "  "
	if list.Icon != nil {
		swatch = renderSwatch(list.Icon(fe)) + " "
	}

	name := shared.PadRight(DisplayName(fe), nameWidth)
	switch {
	case selected:
		name = shared.SelectedStyle().Render(name)
	case fe.IsBrokenSymlink:
		name = shared.BrokenSymlinkStyle().Render(name)
	case fe.IsSymlink:
		name = shared.SymlinkStyle().Render(name)
	case fe.IsDir:
		name = shared.DirectoryStyle().Render(name)
	default:
		name = shared.FileItemStyle().Render(name)
	}

	size := fmt.Sprintf("%*s", sizeColumnWidth, SizeColumn(fe))
	modified := shared.PadRight(shared.FormatTime(fe.Modified), modifiedColumnWidth)

	return marker + swatch + name + " " + shared.RenderDim(size) + " " + shared.RenderDim(modified)
}

func renderSwatch(img iconcache.RenderImage) string {
	c := img.Average()
	if c.A == 0 {
		return " "
	}

	hex := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)

	return shared.SwatchStyle(hex).Render(shared.IconSwatch)
}

// DisplayName returns the name shown for fe: directories end in a slash and
// symlinks show their target.
func DisplayName(fe entry.FileEntry) string {
	name := fe.Name
	if fe.IsDir {
		name += "/"
	}

	if fe.IsSymlink && fe.SymlinkTarget != "" {
		name += " -> " + fe.SymlinkTarget
	}

	return name
}

// SizeColumn returns the size shown for fe; directories show a dash.
func SizeColumn(fe entry.FileEntry) string {
	if fe.IsDir {
		return "-"
	}

	return shared.FormatBytes(fe.Size)
}

// RenderPlainListing formats entries as unstyled lines for non-interactive output.
func RenderPlainListing(entries []entry.FileEntry, nameWidth int) string {
	var builder strings.Builder

	for _, fe := range entries {
		fmt.Fprintf(&builder, "%s %*s  %s\n",
			shared.PadRight(DisplayName(fe), nameWidth),
			sizeColumnWidth, SizeColumn(fe),
			fe.Modified.Format("2006-01-02 15:04"))
	}

	return builder.String()
}
