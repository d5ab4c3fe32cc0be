package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/iconcache"
	"github.com/joe/dirnav/internal/navigator"
	"github.com/joe/dirnav/internal/tui/shared"
	"github.com/joe/dirnav/internal/tui/widgets"
)

const (
	defaultWidth      = 80
	defaultListHeight = 20
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var builder strings.Builder

	builder.WriteString(m.renderHeader())
	builder.WriteString("\n\n")

	if failed, ok := m.nav.State().(navigator.Failed); ok {
		builder.WriteString(shared.RenderFailure(failed.Message, m.failure))
	} else {
		builder.WriteString(m.renderList())
	}

	builder.WriteString("\n\n")
	builder.WriteString(m.renderStatus())

	if skipped := m.renderSkipped(); skipped != "" {
		builder.WriteString("\n")
		builder.WriteString(skipped)
	}

	builder.WriteString("\n")
	builder.WriteString(renderHelpText())

	return builder.String()
}

func (m *Model) renderHeader() string {
	settings := fmt.Sprintf("sort: %s %s", m.traversal.SortKey, m.traversal.SortOrder)
	if m.traversal.IncludeHidden {
		settings += " • hidden shown"
	}

	return shared.RenderTitle(m.nav.CurrentPath()) + "  " + shared.RenderDim(settings)
}

func (m *Model) renderList() string {
	return widgets.NewFileListWidget(func() widgets.FileList {
		return widgets.FileList{
			Entries: m.nav.Entries(),
			Cursor:  m.cursor,
			Offset:  m.offset,
			Height:  m.listHeight(),
			Width:   m.viewWidth(),
			Icon: func(fe entry.FileEntry) iconcache.RenderImage {
				return m.icons.GetOrDefault(iconcache.KeyFor(fe))
			},
		}
	})()
}

func (m *Model) renderStatus() string {
	return widgets.NewStatusWidget(func() widgets.Status {
		return widgets.Status{
			State:   m.nav.State(),
			Count:   len(m.nav.Entries()),
			Spinner: m.spinner.View(),
			Skipped: len(m.entryErrors),
		}
	})()
}

func (m *Model) renderSkipped() string {
	if len(m.entryErrors) == 0 {
		return ""
	}

	return shared.RenderWidgetBox("Skipped", shared.RenderErrorList(shared.ErrorListConfig{
		Errors:   m.entryErrors,
		MaxWidth: m.viewWidth() - shared.DefaultPadding*2,
	}), m.viewWidth())
}

func renderHelpText() string {
	return shared.RenderDim("↑/↓ move • enter open • ← parent • . hidden • s sort • o order • r reload • q quit")
}

// listHeight is the number of rows left for the listing after the header,
// status line, help line and skipped-entries box.
func (m *Model) listHeight() int {
	if m.height == 0 {
		return defaultListHeight
	}

	extra := 1
	if skipped := m.renderSkipped(); skipped != "" {
		extra += lipgloss.Height(skipped)
	}

	return shared.ListHeight(m.height, extra)
}

func (m *Model) viewWidth() int {
	if m.width == 0 {
		return defaultWidth
	}

	return m.width
}
