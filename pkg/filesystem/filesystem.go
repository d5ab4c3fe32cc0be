// Package filesystem provides an abstraction layer for filesystem operations
// to enable dependency injection and testing without actual filesystem I/O.
package filesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	kfs "github.com/kr/fs"
)

// File is an interface that abstracts read access to a file.
// This allows us to work with both real files and mock files.
type File interface {
	io.Reader
	io.Closer
	Stat() (os.FileInfo, error)
}

// FileSystem is an interface that abstracts the read-only filesystem operations
// needed to list directories and decode icons.
//
// Every FileSystem is also a kr/fs FileSystem, so it can be walked with
// kfs.WalkFS.
type FileSystem interface {
	kfs.FileSystem

	// Stat follows symlinks; Lstat (from kfs.FileSystem) does not.
	Stat(path string) (os.FileInfo, error)
	Readlink(path string) (string, error)
	Open(path string) (File, error)
}

// RealFileSystem implements FileSystem using actual os/filepath functions.
type RealFileSystem struct{}

// NewRealFileSystem creates a new RealFileSystem instance.
func NewRealFileSystem() *RealFileSystem {
	return &RealFileSystem{}
}

// Join joins path elements with the OS separator.
func (fs *RealFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// Lstat returns file information without following symlinks.
func (fs *RealFileSystem) Lstat(path string) (os.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to lstat %s: %w", path, err)
	}

	return info, nil
}

// Open opens a file for reading.
func (fs *RealFileSystem) Open(path string) (File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return file, nil
}

// ReadDir returns the lstat information of every entry in dirname, sorted by name.
func (fs *RealFileSystem) ReadDir(dirname string) ([]os.FileInfo, error) {
	dir, err := os.Open(dirname)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w", dirname, err)
	}
	defer dir.Close()

	infos, err := dir.Readdir(-1)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dirname, err)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	return infos, nil
}

// Readlink returns the destination of the named symbolic link.
func (fs *RealFileSystem) Readlink(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", fmt.Errorf("failed to readlink %s: %w", path, err)
	}

	return target, nil
}

// Stat returns file information, following symlinks.
func (fs *RealFileSystem) Stat(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	return info, nil
}
