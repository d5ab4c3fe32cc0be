package entry_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/dirnav/internal/entry"
)

func TestNew_ClassifiesDirectoriesAndFiles(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := entry.New("src", "/p/src", true, 4096, time.Unix(0, 0))
	g.Expect(dir.FileType).To(Equal(entry.TypeDirectory))
	g.Expect(dir.IconKey).To(Equal(entry.DirectoryIcon()))
	g.Expect(dir.Size).To(BeZero(), "directories report size 0")

	file := entry.New("Main.GO", "/p/Main.GO", false, 12, time.Unix(0, 0))
	g.Expect(file.FileType).To(Equal(entry.TypeRegularFile))
	g.Expect(file.IconKey).To(Equal(entry.ExtensionIcon("go")))
	g.Expect(file.IconKey.String()).To(Equal("ext:go"))

	noExt := entry.New("Makefile", "/p/Makefile", false, 1, time.Unix(0, 0))
	g.Expect(noExt.IconKey).To(Equal(entry.GenericFileIcon()))

	dotfile := entry.New(".bashrc", "/p/.bashrc", false, 1, time.Unix(0, 0))
	g.Expect(dotfile.IsHidden()).To(BeTrue())
}

func TestWithSymlink(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	e := entry.New("link", "/p/link", false, 0, time.Unix(0, 0)).WithSymlink("/nowhere", true)
	g.Expect(e.IsSymlink).To(BeTrue())
	g.Expect(e.IsBrokenSymlink).To(BeTrue())
	g.Expect(e.SymlinkTarget).To(Equal("/nowhere"))
	g.Expect(e.FileType).To(Equal(entry.TypeSymlink))
}

func TestSort_DirectoriesFirstByName(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	entries := []entry.FileEntry{
		entry.New("zebra.txt", "/zebra.txt", false, 100, time.Unix(0, 0)),
		entry.New("alpha.txt", "/alpha.txt", false, 200, time.Unix(0, 0)),
		entry.New("beta", "/beta", true, 0, time.Unix(0, 0)),
	}

	entry.Sort(entries, entry.SortByName, entry.Ascending)

	g.Expect(entries[0].Name).To(Equal("beta"))
	g.Expect(entries[1].Name).To(Equal("alpha.txt"))
	g.Expect(entries[2].Name).To(Equal("zebra.txt"))
}

func TestSort_BySizeKeepsDirectoriesFirst(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	entries := []entry.FileEntry{
		entry.New("small.txt", "/small.txt", false, 100, time.Unix(0, 0)),
		entry.New("large.txt", "/large.txt", false, 1000, time.Unix(0, 0)),
		entry.New("dir", "/dir", true, 0, time.Unix(0, 0)),
	}

	entry.Sort(entries, entry.SortBySize, entry.Descending)

	g.Expect(entries[0].Name).To(Equal("dir"))
	g.Expect(entries[1].Name).To(Equal("large.txt"))
	g.Expect(entries[2].Name).To(Equal("small.txt"))
	g.Expect(entry.IsSorted(entries, entry.SortBySize, entry.Descending)).To(BeTrue())
	g.Expect(entry.IsSorted(entries, entry.SortBySize, entry.Ascending)).To(BeFalse())
}

func TestSort_ByDate(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []entry.FileEntry{
		entry.New("new", "/new", false, 1, base.Add(2*time.Hour)),
		entry.New("old", "/old", false, 1, base),
		entry.New("mid", "/mid", false, 1, base.Add(time.Hour)),
	}

	entry.Sort(entries, entry.SortByDate, entry.Ascending)

	g.Expect([]string{entries[0].Name, entries[1].Name, entries[2].Name}).To(Equal([]string{"old", "mid", "new"}))
}

func TestSortKeyUnmarshalText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected entry.SortKey
		wantErr  bool
	}{
		{"name", entry.SortByName, false},
		{"SIZE", entry.SortBySize, false},
		{"mtime", entry.SortByDate, false},
		{"colour", entry.SortByName, true},
	}

	for _, tt := range tests {
		var key entry.SortKey

		err := key.UnmarshalText([]byte(tt.input))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalText(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}

		if !tt.wantErr && key != tt.expected {
			t.Errorf("UnmarshalText(%q) = %v, want %v", tt.input, key, tt.expected)
		}
	}
}

func TestSortOrderUnmarshalTextAndToggle(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	var order entry.SortOrder
	g.Expect(order.UnmarshalText([]byte("descending"))).To(Succeed())
	g.Expect(order).To(Equal(entry.Descending))
	g.Expect(order.Toggle()).To(Equal(entry.Ascending))
	g.Expect(order.UnmarshalText([]byte("sideways"))).ToNot(Succeed())
}

func TestSortKeyNextCycles(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(entry.SortByName.Next()).To(Equal(entry.SortBySize))
	g.Expect(entry.SortBySize.Next()).To(Equal(entry.SortByDate))
	g.Expect(entry.SortByDate.Next()).To(Equal(entry.SortByName))
}
