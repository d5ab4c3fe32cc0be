package widgets

import (
	"fmt"

	"github.com/joe/dirnav/internal/navigator"
	"github.com/joe/dirnav/internal/tui/shared"
)

// Status is what the status line reports about the current load.
type Status struct {
	State   navigator.LoadState
	Count   int
	Spinner string
	Skipped int
}

// NewStatusWidget creates a widget that describes the load state in one line.
// Returns a closure that formats the line from the current status.
func NewStatusWidget(getStatus func() Status) func() string {
	return func() string {
		status := getStatus()

		line := describe(status)
		if status.Skipped > 0 {
			line += "  " + shared.RenderWarning(fmt.Sprintf("%s skipped", shared.FormatCount(status.Skipped)))
		}

		return line
	}
}

func describe(status Status) string {
	entries := shared.FormatCount(status.Count) + " " + plural(status.Count, "entry", "entries")

	switch state := status.State.(type) {
	case navigator.Loading:
		return fmt.Sprintf("%s Loading... %s", status.Spinner, entries)
	case navigator.Loaded:
		return shared.RenderSuccess(entries) + shared.RenderDim(" in "+shared.FormatDuration(state.Duration))
	case navigator.Cached:
		if state.Stale {
			return fmt.Sprintf("%s %s %s", status.Spinner, entries, shared.RenderDim("(cached, refreshing)"))
		}
		return entries + " " + shared.RenderDim("(cached)")
	case navigator.Failed:
		return shared.RenderError(state.Message)
	default:
		return shared.RenderDim("Ready")
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}

	return many
}
