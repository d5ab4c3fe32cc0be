// Package traversal walks a directory tree and converts filesystem metadata into
// entry records, streaming them over a channel as they are discovered or
// emitting them in a single globally sorted pass.
package traversal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	kfs "github.com/kr/fs"
	"go.uber.org/zap"

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/logging"
	"github.com/joe/dirnav/internal/metrics"
	"github.com/joe/dirnav/pkg/filesystem"
)

// Exported constants.
const (
	// DefaultMaxDepth lists only the direct children of the root
	DefaultMaxDepth = 1
	// OutputBufferSize is the buffer size of channels created by Spawn
	OutputBufferSize = 256
	// maxSymlinkHops bounds root symlink resolution
	maxSymlinkHops = 16
)

// Exported variables.
var (
	ErrPathNotFound      = errors.New("path not found")
	ErrNotADirectory     = errors.New("not a directory")
	ErrIO                = errors.New("i/o error")
	ErrInvalidPattern    = errors.New("invalid exclude pattern")
	ErrTraversalPanicked = errors.New("traversal panicked")
)

// Config controls filtering and ordering of a traversal.
type Config struct {
	SortKey       entry.SortKey
	SortOrder     entry.SortOrder
	IncludeHidden bool
	MaxDepth      int      // 0 means unlimited
	Exclude       []string // doublestar patterns relative to the root
	Workers       int      // 0 means runtime.NumCPU()
	Streaming     bool     // used by callers choosing Traverse over TraverseSorted
}

// DefaultConfig returns the configuration used for interactive navigation:
// name ascending, hidden entries skipped, direct children only.
func DefaultConfig() Config {
	return Config{
		SortKey:   entry.SortByName,
		SortOrder: entry.Ascending,
		MaxDepth:  DefaultMaxDepth,
	}
}

// EntryError describes an entry that was skipped because its metadata could
// not be read.
type EntryError struct {
	Path string
	Err  error
}

func (e EntryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e EntryError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives per-entry failures. It may be called from several
// goroutines at once.
type ErrorHandler func(EntryError)

// Engine walks directories through a filesystem.FileSystem.
type Engine struct {
	fs      filesystem.FileSystem
	logger  *zap.Logger
	metrics *metrics.Recorder
	onError ErrorHandler
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-entry warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrNop(logger) }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = recorder }
}

// WithErrorHandler registers a callback for per-entry failures.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(e *Engine) { e.onError = handler }
}

// NewEngine creates an Engine over fs. A nil fs uses the real filesystem.
func NewEngine(fs filesystem.FileSystem, opts ...Option) *Engine {
	if fs == nil {
		fs = filesystem.NewRealFileSystem()
	}

	engine := &Engine{
		fs:     fs,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine
}

// FileSystem returns the filesystem the engine walks.
func (e *Engine) FileSystem() filesystem.FileSystem {
	return e.fs
}

// Traverse walks root and sends entries to out as they are discovered. The
// order between entries is unspecified. out is closed when Traverse returns.
// It returns the number of entries sent.
func (e *Engine) Traverse(ctx context.Context, root string, cfg Config, out chan<- entry.FileEntry) (int, error) {
	defer close(out)

	return e.walk(ctx, root, cfg, func(fe entry.FileEntry) bool {
		select {
		case out <- fe:
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// TraverseSorted walks root, sorts every entry by (directories first, key,
// order) and then sends them to out in that order. out is closed when
// TraverseSorted returns.
func (e *Engine) TraverseSorted(ctx context.Context, root string, cfg Config, out chan<- entry.FileEntry) (int, error) {
	defer close(out)

	var (
		mu      sync.Mutex
		entries []entry.FileEntry
	)

	_, err := e.walk(ctx, root, cfg, func(fe entry.FileEntry) bool {
		mu.Lock()
		entries = append(entries, fe)
		mu.Unlock()

		return true
	})
	if err != nil {
		return 0, err
	}

	entry.Sort(entries, cfg.SortKey, cfg.SortOrder)

	for i, fe := range entries {
		select {
		case out <- fe:
		case <-ctx.Done():
			return i, ctx.Err()
		}
	}

	return len(entries), nil
}

// Handle tracks a traversal running on its own goroutine.
type Handle struct {
	done  chan struct{}
	count int
	err   error
}

// Wait blocks until the traversal finishes and returns its result.
func (h *Handle) Wait() (int, error) {
	<-h.done
	return h.count, h.err
}

// Done is closed when the traversal has finished.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Spawn runs Traverse on a new goroutine.
func (e *Engine) Spawn(ctx context.Context, root string, cfg Config) (<-chan entry.FileEntry, *Handle) {
	return e.spawn(ctx, root, cfg, e.Traverse)
}

// SpawnSorted runs TraverseSorted on a new goroutine.
func (e *Engine) SpawnSorted(ctx context.Context, root string, cfg Config) (<-chan entry.FileEntry, *Handle) {
	return e.spawn(ctx, root, cfg, e.TraverseSorted)
}

type traverseFunc func(context.Context, string, Config, chan<- entry.FileEntry) (int, error)

func (e *Engine) spawn(ctx context.Context, root string, cfg Config, run traverseFunc) (<-chan entry.FileEntry, *Handle) {
	out := make(chan entry.FileEntry, OutputBufferSize)
	handle := &Handle{done: make(chan struct{})}

	go func() {
		defer close(handle.done)
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("traversal panicked", zap.String("root", root), zap.Any("panic", r))
				handle.err = fmt.Errorf("%w: %v", ErrTraversalPanicked, r)
			}
		}()

		handle.count, handle.err = run(ctx, root, cfg, out)
	}()

	return out, handle
}

// job is a walked entry waiting for metadata resolution.
type job struct {
	path   string // path reported to callers, under the requested root
	fsPath string // path on the walked filesystem
	info   os.FileInfo
}

// walk runs the kr/fs walker on the calling goroutine and resolves metadata on
// a worker pool. emit is called concurrently; returning false stops the walk.
func (e *Engine) walk(ctx context.Context, root string, cfg Config, emit func(entry.FileEntry) bool) (int, error) {
	filter, err := NewExcludeFilter(cfg.Exclude, cfg.IncludeHidden)
	if err != nil {
		return 0, err
	}

	walkRoot, err := e.resolveRoot(root)
	if err != nil {
		return 0, err
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	walkCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, workers)

	var (
		emitted atomic.Int64
		wg      sync.WaitGroup //nolint:varnamelen // wg is idiomatic for WaitGroup
	)

	for range workers {
		wg.Go(func() {
			for j := range jobs {
				fe, ok := e.resolveEntry(j)
				if !ok {
					continue
				}

				if !emit(fe) {
					cancel()
					return
				}

				emitted.Add(1)
			}
		})
	}

	walkErr := e.feed(walkCtx, root, walkRoot, cfg.MaxDepth, filter, jobs)

	close(jobs)
	wg.Wait()

	count := int(emitted.Load())
	e.metrics.RecordEntries(count)

	if walkErr != nil {
		return count, walkErr
	}

	if ctx.Err() != nil {
		return count, ctx.Err()
	}

	return count, nil
}

// feed steps the walker and queues jobs until the walk ends or ctx is done.
//
//nolint:cyclop // Walk loop keeps filtering, depth and error routing together
func (e *Engine) feed(ctx context.Context, root, walkRoot string, maxDepth int, filter EntryFilter, jobs chan<- job) error {
	walker := kfs.WalkFS(walkRoot, e.fs)

	for walker.Step() {
		if ctx.Err() != nil {
			return nil
		}

		fsPath := walker.Path()
		if fsPath == walkRoot {
			// The walker yields the root again if listing it failed
			if err := walker.Err(); err != nil {
				return fmt.Errorf("%w: failed to read %s: %w", ErrIO, root, err)
			}

			continue
		}

		rel, err := filepath.Rel(walkRoot, fsPath)
		if err != nil {
			e.reportError(fsPath, err)
			walker.SkipDir()

			continue
		}

		if err := walker.Err(); err != nil {
			// A subdirectory could not be listed; the directory itself was
			// already emitted when first visited
			e.reportError(e.fs.Join(root, rel), err)
			continue
		}

		info := walker.Stat()
		slashRel := filepath.ToSlash(rel)

		if !filter.ShouldInclude(slashRel) {
			if info.IsDir() {
				walker.SkipDir()
			}

			continue
		}

		depth := strings.Count(slashRel, "/") + 1
		if info.IsDir() && maxDepth > 0 && depth >= maxDepth {
			walker.SkipDir()
		}

		select {
		case jobs <- job{path: e.fs.Join(root, rel), fsPath: fsPath, info: info}:
		case <-ctx.Done():
			return nil
		}
	}

	return nil
}

// resolveRoot checks that root is a directory and returns the path to walk,
// following a symlinked root to its target.
func (e *Engine) resolveRoot(root string) (string, error) {
	info, err := e.fs.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrPathNotFound, root)
		}

		return "", fmt.Errorf("%w: %w", ErrIO, err)
	}

	if !info.IsDir() {
		return "", fmt.Errorf("%w: %w: %s", ErrIO, ErrNotADirectory, root)
	}

	walkRoot := root

	for range maxSymlinkHops {
		linfo, err := e.fs.Lstat(walkRoot)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrIO, err)
		}

		if linfo.Mode()&os.ModeSymlink == 0 {
			return walkRoot, nil
		}

		target, err := e.fs.Readlink(walkRoot)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrIO, err)
		}

		if !filepath.IsAbs(target) {
			target = e.fs.Join(filepath.Dir(walkRoot), target)
		}

		walkRoot = filepath.Clean(target)
	}

	return "", fmt.Errorf("%w: too many levels of symbolic links: %s", ErrIO, root)
}

// resolveEntry converts lstat information into an entry, following symlinks.
func (e *Engine) resolveEntry(j job) (fe entry.FileEntry, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.reportError(j.path, fmt.Errorf("%w: %v", ErrTraversalPanicked, r))
			ok = false
		}
	}()

	name := j.info.Name()

	if j.info.Mode()&os.ModeSymlink == 0 {
		fe = entry.New(name, j.path, j.info.IsDir(), j.info.Size(), j.info.ModTime())
		if !j.info.IsDir() && !j.info.Mode().IsRegular() {
			fe.FileType = entry.TypeUnknown
		}

		return fe, true
	}

	target, err := e.fs.Readlink(j.fsPath)
	if err != nil {
		e.reportError(j.path, err)
		return entry.FileEntry{}, false
	}

	resolved, err := e.fs.Stat(j.fsPath)
	if err != nil {
		// Broken link: keep it visible with the link's own metadata
		return entry.New(name, j.path, false, 0, j.info.ModTime()).WithSymlink(target, true), true
	}

	fe = entry.New(name, j.path, resolved.IsDir(), resolved.Size(), resolved.ModTime())

	return fe.WithSymlink(target, false), true
}

func (e *Engine) reportError(path string, err error) {
	e.logger.Warn("skipping entry", zap.String("path", path), zap.Error(err))
	e.metrics.RecordEntryError()

	if e.onError != nil {
		e.onError(EntryError{Path: path, Err: err})
	}
}
