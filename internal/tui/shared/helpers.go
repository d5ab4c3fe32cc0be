package shared

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
)

// ============================================================================
// Formatting Functions
// These are used by the views and the plain listing for consistent display
// ============================================================================

// FormatBytes formats bytes into human-readable format (e.g., "1.5 kB")
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}

	return humanize.Bytes(uint64(bytes))
}

// FormatTime formats a modification time relative to now (e.g., "3 hours ago")
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return humanize.Time(t)
}

// FormatCount formats a count with thousands separators (e.g., "12,345")
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// FormatDuration formats duration into human-readable format (e.g., "2m 30s", "12ms")
func FormatDuration(duration time.Duration) string {
	if duration < time.Second {
		return duration.Round(time.Millisecond).String()
	}

	duration = duration.Round(time.Second)
	hours := duration / time.Hour
	duration %= time.Hour
	minutes := duration / time.Minute
	duration %= time.Minute
	seconds := duration / time.Second

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// Truncate shortens s to at most width terminal cells, marking the cut with "…".
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}

	return runewidth.Truncate(s, width, "…")
}

// PadRight pads s with spaces to exactly width terminal cells, truncating if needed.
func PadRight(s string, width int) string {
	return runewidth.FillRight(Truncate(s, width), width)
}
