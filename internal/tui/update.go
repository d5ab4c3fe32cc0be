package tui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/iconcache"
	"github.com/joe/dirnav/internal/navigator"
	"github.com/joe/dirnav/internal/tui/shared"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd := m.handleKeyPress(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.scrollToCursor()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case shared.NavigateMsg:
		m.navigate(msg.Path, msg.Focus)

	case shared.ReloadMsg:
		m.reload()

	case shared.NavigatorEventMsg:
		m.applyEvent(msg.Event)
		cmds = append(cmds, m.bridge.ListenCmd())

	case shared.EntryErrorMsg:
		if isWithin(msg.Err.Path, m.nav.CurrentPath()) {
			m.entryErrors = append(m.entryErrors, msg.Err)
		}
		cmds = append(cmds, m.bridge.ListenCmd())

	case shared.IconResultsMsg:
		m.storeIcons(msg.Results)
		cmds = append(cmds, m.listenIcons())
	}

	if !m.quitting {
		m.icons.QueuePendingFetches(m.fetcher)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "esc", shared.KeyCtrlC:
		m.quitting = true
		m.Close()

		return tea.Quit

	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "pgup":
		m.moveCursor(-m.listHeight())
	case "pgdown":
		m.moveCursor(m.listHeight())
	case "home", "g":
		m.moveCursor(-len(m.nav.Entries()))
	case "end", "G":
		m.moveCursor(len(m.nav.Entries()))

	case "enter", "right", "l":
		if selected, ok := m.selected(); ok && selected.IsDir {
			m.navigate(selected.Path, "")
		}

	case "backspace", "left", "h":
		current := m.nav.CurrentPath()
		if parent := filepath.Dir(current); parent != current {
			m.navigate(parent, current)
		}

	case ".":
		m.traversal.IncludeHidden = !m.traversal.IncludeHidden
		m.relist()
	case "s":
		m.traversal.SortKey = m.traversal.SortKey.Next()
		m.relist()
	case "o":
		m.traversal.SortOrder = m.traversal.SortOrder.Toggle()
		m.relist()

	case "r":
		m.reload()
	}

	return nil
}

// storeIcons caches decoded icons. A key that failed to decode keeps its
// placeholder for the rest of the session; the view asks for every visible
// icon on each frame and would otherwise request it again.
func (m *Model) storeIcons(results []iconcache.FetchResult) {
	m.icons.ProcessFetchResults(results)

	for _, result := range results {
		if result.Success() {
			continue
		}

		m.logger.Debug("icon unavailable", zap.Stringer("key", result.Key), zap.Error(result.Err))

		placeholder := m.icons.DefaultIcon()
		if result.Key.Kind == entry.IconDirectory {
			placeholder = m.icons.FolderIcon()
		}
		m.icons.Insert(result.Key, placeholder)
	}
}

func (m *Model) navigate(path, focus string) {
	m.cursor = 0
	m.offset = 0
	m.focusPath = focus
	m.entryErrors = nil
	m.failure = nil

	requestID := m.loader.Navigate(m.ctx, m.nav, path, m.traversal)

	m.logger.Debug("navigate",
		zap.String("path", m.nav.CurrentPath()),
		zap.Uint64("request_id", requestID),
		zap.Stringer("state", m.nav.State()))

	m.applyFocus()
}

func (m *Model) reload() {
	focus := m.selectedPath()

	m.entryErrors = nil
	m.failure = nil
	m.focusPath = focus

	m.loader.Reload(m.ctx, m.nav, m.traversal)
	m.applyFocus()
}

// relist drops every cached listing, which was built with the old settings,
// and loads the current directory again keeping the selection.
func (m *Model) relist() {
	focus := m.selectedPath()
	m.nav.ClearCache()
	m.navigate(m.nav.CurrentPath(), focus)
}

func (m *Model) applyEvent(event navigator.Event) {
	if !m.nav.Apply(event) {
		return
	}

	if failed, ok := event.(navigator.LoadFailed); ok {
		m.failure = failed.Err
	}

	m.applyFocus()
	m.clampCursor()
}

// applyFocus moves the cursor onto focusPath once that entry is listed.
func (m *Model) applyFocus() {
	if m.focusPath == "" {
		return
	}

	for i, fe := range m.nav.Entries() {
		if fe.Path == m.focusPath {
			m.cursor = i
			m.focusPath = ""
			m.scrollToCursor()

			return
		}
	}
}

func (m *Model) moveCursor(delta int) {
	m.focusPath = ""
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	m.cursor = min(m.cursor, len(m.nav.Entries())-1)
	m.cursor = max(m.cursor, 0)
	m.scrollToCursor()
}

func (m *Model) scrollToCursor() {
	height := m.listHeight()

	if m.cursor < m.offset {
		m.offset = m.cursor
	}

	if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}

	m.offset = max(min(m.offset, len(m.nav.Entries())-height), 0)
}

func (m *Model) selected() (entry.FileEntry, bool) {
	entries := m.nav.Entries()
	if m.cursor < 0 || m.cursor >= len(entries) {
		return entry.FileEntry{}, false
	}

	return entries[m.cursor], true
}

func (m *Model) selectedPath() string {
	if selected, ok := m.selected(); ok {
		return selected.Path
	}

	return ""
}

// isWithin reports whether path is dir or lies below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
