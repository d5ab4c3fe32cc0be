// Package navigator coordinates directory loads for a single view: it owns the
// current listing, a generation counter that discards superseded results, and
// an LRU cache of fully loaded directories.
//
// A Navigator has exactly one owner goroutine. Background work reaches it only
// as values passed to the completion methods (or to Apply), each of which is
// checked against the current generation before anything is mutated.
package navigator

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.uber.org/zap"

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/logging"
	"github.com/joe/dirnav/internal/metrics"
	"github.com/joe/dirnav/pkg/filesystem"
)

// DefaultCacheCapacity is the number of directories kept in the cache.
const DefaultCacheCapacity = 100

// Cache lookup results reported to metrics.
const (
	cacheHit   = "hit"
	cacheStale = "stale"
	cacheMiss  = "miss"
)

// Navigator is the coordinator for one directory view. It is not safe for
// concurrent use.
type Navigator struct {
	requestID   uint64
	currentPath string
	entries     []entry.FileEntry
	state       LoadState
	cache       *simplelru.LRU[string, CachedDirectory]
	capacity    int

	fs      filesystem.FileSystem
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithCacheCapacity sets the directory cache capacity. Values below 1 are raised to 1.
func WithCacheCapacity(capacity int) Option {
	return func(n *Navigator) { n.capacity = max(capacity, 1) }
}

// WithFileSystem sets the filesystem used for mtime checks and event metadata.
func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(n *Navigator) { n.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(n *Navigator) { n.logger = logging.OrNop(logger) }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(n *Navigator) { n.metrics = recorder }
}

// New creates a Navigator positioned at initialPath in the Idle state.
func New(initialPath string, opts ...Option) *Navigator {
	nav := &Navigator{
		currentPath: filepath.Clean(initialPath),
		state:       Idle{},
		capacity:    DefaultCacheCapacity,
		fs:          filesystem.NewRealFileSystem(),
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(nav)
	}

	// Capacity is at least 1, which is the only error NewLRU reports
	cache, _ := simplelru.NewLRU[string, CachedDirectory](nav.capacity, nil)
	nav.cache = cache

	return nav
}

// Entries returns the current listing. Callers must not modify it.
func (n *Navigator) Entries() []entry.FileEntry {
	return n.entries
}

// State returns the current load state.
func (n *Navigator) State() LoadState {
	return n.state
}

// RequestID returns the current generation.
func (n *Navigator) RequestID() uint64 {
	return n.requestID
}

// CurrentPath returns the directory being shown.
func (n *Navigator) CurrentPath() string {
	return n.currentPath
}

// FileSystem returns the filesystem used for metadata lookups.
func (n *Navigator) FileSystem() filesystem.FileSystem {
	return n.fs
}

// BeginLoad starts a navigation to path and returns its request ID, which is
// strictly greater than every ID returned before. A cached listing is shown
// immediately; otherwise the listing is cleared and the state is Loading.
func (n *Navigator) BeginLoad(path string) uint64 {
	n.requestID++
	n.currentPath = filepath.Clean(path)

	if cached, ok := n.cache.Get(n.currentPath); ok {
		stale := n.isStale(cached)
		n.entries = slices.Clone(cached.Entries)
		n.state = Cached{Stale: stale}

		result := cacheHit
		if stale {
			result = cacheStale
		}
		n.metrics.RecordNavigation(result)

		n.logger.Debug("begin load from cache",
			zap.String("path", n.currentPath),
			zap.Uint64("request_id", n.requestID),
			zap.Bool("stale", stale))
	} else {
		n.entries = nil
		n.state = Loading{RequestID: n.requestID}
		n.metrics.RecordNavigation(cacheMiss)

		n.logger.Debug("begin load",
			zap.String("path", n.currentPath),
			zap.Uint64("request_id", n.requestID))
	}

	return n.requestID
}

// IsValidRequest reports whether requestID is the current generation.
func (n *Navigator) IsValidRequest(requestID uint64) bool {
	return n.requestID == requestID
}

// CompleteLoad replaces the listing with entries, caches it and sets the state
// to Loaded. It returns false without side effects for a superseded request.
func (n *Navigator) CompleteLoad(requestID uint64, entries []entry.FileEntry, duration time.Duration, modTime time.Time) bool {
	if !n.accept(requestID, "complete") {
		return false
	}

	n.entries = entries
	n.store(requestID, modTime)
	n.state = Loaded{Count: len(entries), Duration: duration}
	n.metrics.RecordLoad("loaded", duration)

	return true
}

// SetError sets the state to Failed. It returns false for a superseded request.
func (n *Navigator) SetError(requestID uint64, message string) bool {
	if !n.accept(requestID, "error") {
		return false
	}

	n.state = Failed{Message: message}

	return true
}

// AppendEntries adds entries to the listing. It returns false for a superseded request.
func (n *Navigator) AppendEntries(requestID uint64, entries []entry.FileEntry) bool {
	if !n.accept(requestID, "append") {
		return false
	}

	n.entries = append(n.entries, entries...)

	return true
}

// ProcessBatch appends a batch and returns how many entries it added. ok is
// false for a superseded request.
func (n *Navigator) ProcessBatch(requestID uint64, batch []entry.FileEntry) (int, bool) {
	if !n.accept(requestID, "batch") {
		return 0, false
	}

	n.entries = append(n.entries, batch...)
	n.metrics.RecordBatch()

	return len(batch), true
}

// FinalizeLoad marks an incrementally built listing as Loaded and caches it
// with the directory's current modification time.
func (n *Navigator) FinalizeLoad(requestID uint64, duration time.Duration) bool {
	if !n.accept(requestID, "finalize") {
		return false
	}

	n.commitFinal(requestID, duration, n.dirModTime(n.currentPath))

	return true
}

// finalize is FinalizeLoad with a modification time read off the owner goroutine.
func (n *Navigator) finalize(requestID uint64, duration time.Duration, modTime time.Time) bool {
	if !n.accept(requestID, "finalize") {
		return false
	}

	n.commitFinal(requestID, duration, modTime)

	return true
}

func (n *Navigator) commitFinal(requestID uint64, duration time.Duration, modTime time.Time) {
	n.store(requestID, modTime)
	n.state = Loaded{Count: len(n.entries), Duration: duration}
	n.metrics.RecordLoad("loaded", duration)
}

// Cached returns the snapshot for path, marking it most recently used.
func (n *Navigator) Cached(path string) (CachedDirectory, bool) {
	return n.cache.Get(filepath.Clean(path))
}

// IsCached reports whether path has a snapshot, without touching recency.
func (n *Navigator) IsCached(path string) bool {
	return n.cache.Contains(filepath.Clean(path))
}

// CacheLen returns the number of cached directories.
func (n *Navigator) CacheLen() int {
	return n.cache.Len()
}

// CacheCapacity returns the maximum number of cached directories.
func (n *Navigator) CacheCapacity() int {
	return n.capacity
}

// Invalidate drops the snapshot for path and reports whether one existed.
func (n *Navigator) Invalidate(path string) bool {
	removed := n.cache.Remove(filepath.Clean(path))
	n.metrics.SetDirectoryCacheSize(n.cache.Len())

	return removed
}

// ClearCache drops every snapshot.
func (n *Navigator) ClearCache() {
	n.cache.Purge()
	n.metrics.SetDirectoryCacheSize(0)
}

// DirModTime returns the modification time of path, or the zero time if it
// cannot be read.
func (n *Navigator) DirModTime(path string) time.Time {
	return n.dirModTime(filepath.Clean(path))
}

func (n *Navigator) accept(requestID uint64, operation string) bool {
	if n.IsValidRequest(requestID) {
		return true
	}

	n.metrics.RecordStaleDiscard(operation)
	n.logger.Debug("discarding stale result",
		zap.String("operation", operation),
		zap.Uint64("request_id", requestID),
		zap.Uint64("current", n.requestID))

	return false
}

func (n *Navigator) store(requestID uint64, modTime time.Time) {
	n.cache.Add(n.currentPath, CachedDirectory{
		Entries:    slices.Clone(n.entries),
		Generation: requestID,
		ModTime:    modTime,
		CachedAt:   time.Now(),
	})
	n.metrics.SetDirectoryCacheSize(n.cache.Len())
}

func (n *Navigator) isStale(cached CachedDirectory) bool {
	info, err := n.fs.Stat(n.currentPath)
	if err != nil {
		return true
	}

	return cached.IsStale(info.ModTime())
}

func (n *Navigator) dirModTime(path string) time.Time {
	info, err := n.fs.Stat(path)
	if err != nil {
		return time.Time{}
	}

	return info.ModTime()
}

// invalidateCurrent drops the snapshot of the current directory.
func (n *Navigator) invalidateCurrent() {
	n.cache.Remove(n.currentPath)
	n.metrics.SetDirectoryCacheSize(n.cache.Len())
}
