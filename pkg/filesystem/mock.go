// Package filesystem provides an abstraction layer for filesystem operations.
package filesystem

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MockFileSystem is an in-memory filesystem implementation for testing.
type MockFileSystem struct {
	mu    sync.RWMutex
	files map[string]*mockFile
}

// mockFile represents a file, directory or symlink in the mock filesystem.
type mockFile struct {
	path       string
	data       []byte
	modTime    time.Time
	isDir      bool
	perm       os.FileMode
	linkTarget string // non-empty for symlinks
	unreadable bool   // ReadDir/Open fail with permission denied
}

// mockFileInfo implements os.FileInfo for mock files.
type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	mode    os.FileMode
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi *mockFileInfo) Sys() interface{}   { return nil }

// mockFileHandle implements the File interface for reading.
type mockFileHandle struct {
	info   os.FileInfo
	reader *bytes.Reader
	closed bool
}

func (f *mockFileHandle) Read(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	if f.reader == nil {
		return 0, io.EOF
	}
	return f.reader.Read(p)
}

func (f *mockFileHandle) Close() error {
	if f.closed {
		return os.ErrClosed
	}
	f.closed = true
	return nil
}

func (f *mockFileHandle) Stat() (os.FileInfo, error) {
	if f.closed {
		return nil, os.ErrClosed
	}
	return f.info, nil
}

// NewMockFileSystem creates a new in-memory filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: make(map[string]*mockFile),
	}
}

// Join joins path elements the same way RealFileSystem does.
func (fs *MockFileSystem) Join(elem ...string) string {
	return filepath.Join(elem...)
}

// Lstat returns file information without following symlinks.
func (fs *MockFileSystem) Lstat(path string) (os.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return nil, &os.PathError{Op: "lstat", Path: path, Err: os.ErrNotExist}
	}

	return file.info(), nil
}

// Stat returns file information, following symlinks.
func (fs *MockFileSystem) Stat(path string) (os.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, err := fs.resolveLocked(filepath.Clean(path))
	if err != nil {
		return nil, &os.PathError{Op: "stat", Path: path, Err: err}
	}

	info := file.info().(*mockFileInfo)
	info.name = filepath.Base(path)
	return info, nil
}

// ReadDir lists the direct children of dirname, sorted by name.
func (fs *MockFileSystem) ReadDir(dirname string) ([]os.FileInfo, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	dirname = filepath.Clean(dirname)
	dir, err := fs.resolveLocked(dirname)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: dirname, Err: err}
	}
	if !dir.isDir {
		return nil, &os.PathError{Op: "readdirent", Path: dirname, Err: fmt.Errorf("not a directory")}
	}
	if dir.unreadable {
		return nil, &os.PathError{Op: "open", Path: dirname, Err: os.ErrPermission}
	}

	infos := make([]os.FileInfo, 0)
	for p, file := range fs.files {
		if p != dirname && filepath.Dir(p) == dir.path {
			infos = append(infos, file.info())
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	return infos, nil
}

// Readlink returns the destination of the named symbolic link.
func (fs *MockFileSystem) Readlink(path string) (string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return "", &os.PathError{Op: "readlink", Path: path, Err: os.ErrNotExist}
	}
	if file.linkTarget == "" {
		return "", &os.PathError{Op: "readlink", Path: path, Err: fmt.Errorf("invalid argument")}
	}

	return file.linkTarget, nil
}

// Open opens a file for reading.
func (fs *MockFileSystem) Open(path string) (File, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, err := fs.resolveLocked(filepath.Clean(path))
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	if file.isDir {
		return nil, fmt.Errorf("is a directory")
	}
	if file.unreadable {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrPermission}
	}

	return &mockFileHandle{
		info:   file.info(),
		reader: bytes.NewReader(file.data),
	}, nil
}

// resolveLocked follows symlinks (up to a fixed depth). Assumes the lock is held.
func (fs *MockFileSystem) resolveLocked(path string) (*mockFile, error) {
	for range 16 {
		file, exists := fs.files[path]
		if !exists {
			return nil, os.ErrNotExist
		}
		if file.linkTarget == "" {
			return file, nil
		}
		target := file.linkTarget
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = filepath.Clean(target)
	}

	return nil, fmt.Errorf("too many levels of symbolic links")
}

// mkdirAllLocked creates path and its parents. Assumes the lock is held.
func (fs *MockFileSystem) mkdirAllLocked(path string, modTime time.Time) {
	if path == "." || path == "/" {
		if _, exists := fs.files[path]; !exists {
			fs.files[path] = &mockFile{path: path, modTime: modTime, isDir: true, perm: 0o755}
		}
		return
	}

	fs.mkdirAllLocked(filepath.Dir(path), modTime)

	if _, exists := fs.files[path]; !exists {
		fs.files[path] = &mockFile{
			path:    path,
			modTime: modTime,
			isDir:   true,
			perm:    0o755,
		}
	}
}

func (f *mockFile) info() os.FileInfo {
	mode := f.perm
	size := int64(len(f.data))
	switch {
	case f.linkTarget != "":
		mode |= os.ModeSymlink
		size = int64(len(f.linkTarget))
	case f.isDir:
		mode |= os.ModeDir
		size = 0
	}

	return &mockFileInfo{
		name:    filepath.Base(f.path),
		size:    size,
		modTime: f.modTime,
		mode:    mode,
	}
}

// Helper methods for testing

// AddFile adds a file to the mock filesystem with the given content and modtime.
func (fs *MockFileSystem) AddFile(path string, content []byte, modTime time.Time) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	fs.mkdirAllLocked(filepath.Dir(path), modTime)

	fs.files[path] = &mockFile{
		path:    path,
		data:    append([]byte(nil), content...),
		modTime: modTime,
		perm:    0o644,
	}
}

// AddDir adds a directory (and any missing parents) to the mock filesystem.
func (fs *MockFileSystem) AddDir(path string, modTime time.Time) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	fs.mkdirAllLocked(filepath.Dir(path), modTime)

	fs.files[path] = &mockFile{
		path:    path,
		modTime: modTime,
		isDir:   true,
		perm:    0o755,
	}
}

// AddSymlink adds a symbolic link pointing at target. The target need not exist.
func (fs *MockFileSystem) AddSymlink(path, target string, modTime time.Time) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	fs.mkdirAllLocked(filepath.Dir(path), modTime)

	fs.files[path] = &mockFile{
		path:       path,
		modTime:    modTime,
		perm:       0o777,
		linkTarget: target,
	}
}

// SetUnreadable makes ReadDir and Open fail with a permission error for path.
func (fs *MockFileSystem) SetUnreadable(path string, unreadable bool) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return os.ErrNotExist
	}

	file.unreadable = unreadable
	return nil
}

// Chtimes changes the modification time of a path.
func (fs *MockFileSystem) Chtimes(path string, mtime time.Time) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, exists := fs.files[filepath.Clean(path)]
	if !exists {
		return os.ErrNotExist
	}

	file.modTime = mtime
	return nil
}

// Remove deletes a path (and, for directories, everything below it).
func (fs *MockFileSystem) Remove(path string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	path = filepath.Clean(path)
	if _, exists := fs.files[path]; !exists {
		return os.ErrNotExist
	}

	prefix := path + string(filepath.Separator)
	for p := range fs.files {
		if p == path || (len(p) > len(prefix) && p[:len(prefix)] == prefix) {
			delete(fs.files, p)
		}
	}

	return nil
}

// Exists checks if a path exists in the mock filesystem.
func (fs *MockFileSystem) Exists(path string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, exists := fs.files[filepath.Clean(path)]
	return exists
}
