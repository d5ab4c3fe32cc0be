//nolint:varnamelen // Test files use idiomatic short variable names
package widgets_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/iconcache"
	"github.com/joe/dirnav/internal/navigator"
	"github.com/joe/dirnav/internal/tui/shared"
	"github.com/joe/dirnav/internal/tui/widgets"
)

var modified = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func listing(n int) []entry.FileEntry {
	entries := []entry.FileEntry{entry.New("docs", "/p/docs", true, 0, modified)}
	for i := range n - 1 {
		name := fmt.Sprintf("file%02d.txt", i)
		entries = append(entries, entry.New(name, "/p/"+name, false, 1500, modified))
	}

	return entries
}

func TestFileListWidget_ShowsVisibleWindow(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	list := widgets.FileList{Entries: listing(10), Cursor: 3, Offset: 2, Height: 4, Width: 80}
	result := widgets.NewFileListWidget(func() widgets.FileList { return list })()

	lines := strings.Split(result, "\n")
	g.Expect(lines).To(HaveLen(4))
	g.Expect(result).NotTo(ContainSubstring("file00.txt"))
	g.Expect(lines[0]).To(ContainSubstring("file01.txt"))
	g.Expect(lines[1]).To(ContainSubstring(shared.CursorMarker))
	g.Expect(lines[1]).To(ContainSubstring("file02.txt"))
	g.Expect(lines[3]).To(ContainSubstring("file04.txt"))
	g.Expect(lines[0]).To(ContainSubstring("1.5 kB"))
}

func TestFileListWidget_MarksDirectoriesAndSymlinks(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	entries := []entry.FileEntry{
		entry.New("docs", "/p/docs", true, 0, modified),
		entry.New("link", "/p/link", false, 4, modified).WithSymlink("/target", false),
	}

	list := widgets.FileList{Entries: entries, Cursor: -1, Height: 10, Width: 80}
	result := widgets.NewFileListWidget(func() widgets.FileList { return list })()

	g.Expect(result).To(ContainSubstring("docs/"))
	g.Expect(result).To(ContainSubstring("link -> /target"))
	g.Expect(result).NotTo(ContainSubstring(shared.CursorMarker))
}

func TestFileListWidget_Empty(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	result := widgets.NewFileListWidget(func() widgets.FileList { return widgets.FileList{} })()
	g.Expect(result).To(ContainSubstring("(empty)"))
}

func TestFileListWidget_DrawsIconSwatches(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var asked []entry.IconKey
	list := widgets.FileList{
		Entries: listing(2),
		Height:  10,
		Width:   80,
		Icon: func(fe entry.FileEntry) iconcache.RenderImage {
			asked = append(asked, fe.IconKey)
			return iconcache.DefaultFolder()
		},
	}

	result := widgets.NewFileListWidget(func() widgets.FileList { return list })()
	g.Expect(result).To(ContainSubstring(shared.IconSwatch))
	g.Expect(asked).To(Equal([]entry.IconKey{entry.DirectoryIcon(), entry.ExtensionIcon("txt")}))
}

func TestRenderPlainListing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	result := widgets.RenderPlainListing(listing(2), 20)

	lines := strings.Split(strings.TrimSuffix(result, "\n"), "\n")
	g.Expect(lines).To(HaveLen(2))
	g.Expect(lines[0]).To(HavePrefix("docs/"))
	g.Expect(lines[0]).To(ContainSubstring(" - "))
	g.Expect(lines[1]).To(ContainSubstring("file00.txt"))
	g.Expect(lines[1]).To(ContainSubstring("1.5 kB"))
	g.Expect(lines[1]).To(HaveSuffix("2024-03-01 12:00"))
}

func TestStatusWidget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status widgets.Status
		want   []string
	}{
		{"idle", widgets.Status{State: navigator.Idle{}}, []string{"Ready"}},
		{"loading", widgets.Status{State: navigator.Loading{RequestID: 1}, Count: 3, Spinner: "*"}, []string{"*", "Loading", "3 entries"}},
		{"loaded", widgets.Status{State: navigator.Loaded{Count: 1, Duration: 12 * time.Millisecond}, Count: 1}, []string{"1 entry", "12ms"}},
		{"cached", widgets.Status{State: navigator.Cached{}, Count: 1200}, []string{"1,200 entries", "(cached)"}},
		{"stale", widgets.Status{State: navigator.Cached{Stale: true}, Spinner: "*"}, []string{"refreshing"}},
		{"failed", widgets.Status{State: navigator.Failed{Message: "Permission denied: /root"}}, []string{"Permission denied: /root"}},
		{"skipped", widgets.Status{State: navigator.Loaded{}, Skipped: 2}, []string{"2 skipped"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			result := widgets.NewStatusWidget(func() widgets.Status { return tt.status })()
			for _, want := range tt.want {
				g.Expect(result).To(ContainSubstring(want))
			}
		})
	}
}
