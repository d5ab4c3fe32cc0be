// Package entry defines the immutable directory-listing records passed between
// the traversal, batching and navigation layers.
package entry

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileType classifies an entry for display and icon selection.
type FileType int

// FileType values.
const (
	TypeUnknown FileType = iota
	TypeDirectory
	TypeRegularFile
	TypeSymlink
)

// String returns the string representation of FileType
func (t FileType) String() string {
	switch t {
	case TypeDirectory:
		return "directory"
	case TypeRegularFile:
		return "file"
	case TypeSymlink:
		return "symlink"
	default:
		return "unknown"
	}
}

// IconKind discriminates IconKey values.
type IconKind int

// IconKind values.
const (
	IconGenericFile IconKind = iota
	IconDirectory
	IconExtension
	IconCustom
)

// IconKey identifies an icon texture. It is comparable and can be used as a map key.
type IconKey struct {
	Kind IconKind
	// Value is the lower-cased extension for IconExtension and the image path
	// for IconCustom; empty otherwise.
	Value string
}

// DirectoryIcon is the key shared by all directories.
func DirectoryIcon() IconKey { return IconKey{Kind: IconDirectory} }

// GenericFileIcon is the key for files without an extension.
func GenericFileIcon() IconKey { return IconKey{Kind: IconGenericFile} }

// ExtensionIcon returns the key for files with the given extension.
func ExtensionIcon(ext string) IconKey {
	return IconKey{Kind: IconExtension, Value: strings.ToLower(strings.TrimPrefix(ext, "."))}
}

// CustomIcon returns the key for an icon decoded from an image file.
func CustomIcon(path string) IconKey { return IconKey{Kind: IconCustom, Value: path} }

// String returns a stable textual form, e.g. "ext:go" or "custom:/a/b.png".
func (k IconKey) String() string {
	switch k.Kind {
	case IconDirectory:
		return "directory"
	case IconExtension:
		return "ext:" + k.Value
	case IconCustom:
		return "custom:" + k.Value
	default:
		return "file"
	}
}

// FileEntry is a single file or directory in a listing.
// Path is the identity of an entry.
type FileEntry struct {
	Name     string
	Path     string
	IsDir    bool
	Size     int64 // 0 for directories
	Modified time.Time
	FileType FileType
	IconKey  IconKey

	IsSymlink       bool
	IsBrokenSymlink bool
	SymlinkTarget   string
}

// New creates an entry, deriving FileType and IconKey from isDir and the path's extension.
func New(name, path string, isDir bool, size int64, modified time.Time) FileEntry {
	fileType := TypeRegularFile
	iconKey := GenericFileIcon()

	if isDir {
		fileType = TypeDirectory
		iconKey = DirectoryIcon()
		size = 0
	} else if ext := filepath.Ext(path); len(ext) > 1 {
		iconKey = ExtensionIcon(ext)
	}

	return FileEntry{
		Name:     name,
		Path:     path,
		IsDir:    isDir,
		Size:     size,
		Modified: modified,
		FileType: fileType,
		IconKey:  iconKey,
	}
}

// FromFileInfo builds an entry from (already symlink-resolved) file information.
func FromFileInfo(path string, info os.FileInfo) FileEntry {
	return New(filepath.Base(path), path, info.IsDir(), info.Size(), info.ModTime())
}

// WithSymlink returns a copy of e marked as a symlink to target.
func (e FileEntry) WithSymlink(target string, broken bool) FileEntry {
	e.IsSymlink = true
	e.IsBrokenSymlink = broken
	e.SymlinkTarget = target
	e.FileType = TypeSymlink
	return e
}

// IsHidden reports whether the entry's name starts with a dot.
func (e FileEntry) IsHidden() bool {
	return IsHiddenName(e.Name)
}

// IsHiddenName reports whether a file name denotes a hidden entry.
func IsHiddenName(name string) bool {
	return strings.HasPrefix(name, ".")
}
