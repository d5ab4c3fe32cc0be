package navigator

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/fsevent"
)

// ProcessEvent applies a filesystem change to the listing. Events for paths
// whose parent is not the current directory are ignored. It reports whether
// the listing changed; any change drops the current directory's snapshot.
func (n *Navigator) ProcessEvent(ev fsevent.Event) bool {
	switch e := ev.(type) {
	case fsevent.Created:
		return n.handleCreated(e.Target)
	case fsevent.Modified:
		return n.handleModified(e.Target)
	case fsevent.Deleted:
		return n.handleDeleted(e.Target)
	case fsevent.Renamed:
		return n.handleRenamed(e.From, e.To)
	default:
		return false
	}
}

// ProcessEvents applies events in order and returns how many changed the listing.
func (n *Navigator) ProcessEvents(events []fsevent.Event) int {
	changed := 0

	for _, ev := range events {
		if n.ProcessEvent(ev) {
			changed++
		}
	}

	return changed
}

// ContainsPath reports whether the listing has an entry for path.
func (n *Navigator) ContainsPath(path string) bool {
	return n.indexOf(filepath.Clean(path)) >= 0
}

func (n *Navigator) inCurrentDirectory(path string) bool {
	return filepath.Dir(path) == n.currentPath
}

func (n *Navigator) indexOf(path string) int {
	return slices.IndexFunc(n.entries, func(e entry.FileEntry) bool { return e.Path == path })
}

func (n *Navigator) handleCreated(path string) bool {
	path = filepath.Clean(path)
	if !n.inCurrentDirectory(path) || n.indexOf(path) >= 0 {
		return false
	}

	fe, ok := n.entryFromPath(path)
	if !ok {
		return false
	}

	pos, _ := slices.BinarySearchFunc(n.entries, fe.Name, func(e entry.FileEntry, name string) int {
		return strings.Compare(e.Name, name)
	})
	n.entries = slices.Insert(n.entries, pos, fe)
	n.invalidateCurrent()

	return true
}

func (n *Navigator) handleModified(path string) bool {
	path = filepath.Clean(path)
	if !n.inCurrentDirectory(path) {
		return false
	}

	idx := n.indexOf(path)
	if idx < 0 {
		return false
	}

	info, err := n.fs.Stat(path)
	if err != nil {
		n.logger.Debug("ignoring modify event", zap.String("path", path), zap.Error(err))
		return false
	}

	if !info.IsDir() {
		n.entries[idx].Size = info.Size()
	}
	n.entries[idx].Modified = info.ModTime()
	n.invalidateCurrent()

	return true
}

func (n *Navigator) handleDeleted(path string) bool {
	path = filepath.Clean(path)
	if !n.inCurrentDirectory(path) {
		return false
	}

	before := len(n.entries)
	n.entries = slices.DeleteFunc(n.entries, func(e entry.FileEntry) bool { return e.Path == path })

	if len(n.entries) == before {
		return false
	}

	n.invalidateCurrent()

	return true
}

func (n *Navigator) handleRenamed(from, to string) bool {
	from = filepath.Clean(from)
	to = filepath.Clean(to)

	fromInDir := n.inCurrentDirectory(from)
	toInDir := n.inCurrentDirectory(to)

	switch {
	case fromInDir && toInDir:
		idx := n.indexOf(from)
		if idx < 0 {
			return false
		}

		n.entries[idx].Path = to
		n.entries[idx].Name = filepath.Base(to)
		entry.SortByNameExact(n.entries)
		n.invalidateCurrent()

		return true
	case fromInDir:
		return n.handleDeleted(from)
	case toInDir:
		return n.handleCreated(to)
	default:
		return false
	}
}

// entryFromPath stats path through the filesystem and builds an entry for it.
func (n *Navigator) entryFromPath(path string) (entry.FileEntry, bool) {
	linfo, err := n.fs.Lstat(path)
	if err != nil {
		n.logger.Debug("ignoring create event", zap.String("path", path), zap.Error(err))
		return entry.FileEntry{}, false
	}

	if linfo.Mode()&os.ModeSymlink == 0 {
		return entry.New(filepath.Base(path), path, linfo.IsDir(), linfo.Size(), linfo.ModTime()), true
	}

	target, _ := n.fs.Readlink(path)

	info, err := n.fs.Stat(path)
	if err != nil {
		return entry.New(filepath.Base(path), path, false, 0, linfo.ModTime()).WithSymlink(target, true), true
	}

	fe := entry.New(filepath.Base(path), path, info.IsDir(), info.Size(), info.ModTime())

	return fe.WithSymlink(target, false), true
}
