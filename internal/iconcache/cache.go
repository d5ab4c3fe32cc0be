// Package iconcache keeps decoded icon textures in a bounded LRU cache and
// decodes missing ones on a background worker.
//
// A Cache has a single owner and is not safe for concurrent use. The owner
// asks for icons with GetOrDefault, hands the resulting pending keys to a
// FetchPipeline with QueuePendingFetches, and feeds the pipeline's results
// back with ProcessFetchResults.
package iconcache

import (
	"slices"
	"strings"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/metrics"
)

// DefaultMaxEntries is the capacity used by New.
const DefaultMaxEntries = 500

// imageExtensions are decoded into a thumbnail icon instead of sharing the
// extension's icon.
var imageExtensions = map[string]bool{
	"bmp": true, "gif": true, "jpeg": true, "jpg": true,
	"png": true, "tif": true, "tiff": true, "webp": true,
}

// KeyFor returns the icon key to display for fe. Image files get a custom key
// so their own pixels are decoded; everything else uses fe.IconKey.
func KeyFor(fe entry.FileEntry) entry.IconKey {
	if fe.IsDir || fe.IsBrokenSymlink || fe.IconKey.Kind != entry.IconExtension {
		return fe.IconKey
	}

	if imageExtensions[fe.IconKey.Value] {
		return entry.CustomIcon(fe.Path)
	}

	return fe.IconKey
}

// Requester accepts fetch requests. FetchPipeline implements it.
type Requester interface {
	Request(key entry.IconKey, path string)
}

// Cache is an LRU store of decoded icons plus the set of keys waiting for a fetch.
type Cache struct {
	textures   *simplelru.LRU[entry.IconKey, RenderImage]
	pending    map[entry.IconKey]struct{}
	dispatched map[entry.IconKey]struct{}
	maxEntries int

	defaultIcon RenderImage
	folderIcon  RenderImage
	metrics     *metrics.Recorder
}

// Option configures a Cache.
type Option func(*Cache)

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(c *Cache) { c.metrics = recorder }
}

// New creates a Cache holding up to DefaultMaxEntries icons.
func New(opts ...Option) *Cache {
	return NewWithCapacity(DefaultMaxEntries, opts...)
}

// NewWithCapacity creates a Cache holding up to maxEntries icons (at least 1).
func NewWithCapacity(maxEntries int, opts ...Option) *Cache {
	maxEntries = max(maxEntries, 1)

	// Size is positive, which is the only error NewLRU reports
	textures, _ := simplelru.NewLRU[entry.IconKey, RenderImage](maxEntries, nil)

	cache := &Cache{
		textures:    textures,
		pending:     make(map[entry.IconKey]struct{}),
		dispatched:  make(map[entry.IconKey]struct{}),
		maxEntries:  maxEntries,
		defaultIcon: DefaultPlaceholder(),
		folderIcon:  DefaultFolder(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// MaxEntries returns the capacity.
func (c *Cache) MaxEntries() int {
	return c.maxEntries
}

// Len returns the number of cached icons.
func (c *Cache) Len() int {
	return c.textures.Len()
}

// IsEmpty reports whether no icons are cached.
func (c *Cache) IsEmpty() bool {
	return c.textures.Len() == 0
}

// Get returns the icon for key and marks it most recently used.
func (c *Cache) Get(key entry.IconKey) (RenderImage, bool) {
	img, ok := c.textures.Get(key)
	c.metrics.RecordIconLookup(ok)

	return img, ok
}

// GetOrDefault returns the cached icon for key, or a placeholder for its kind.
// A miss adds key to the pending set.
func (c *Cache) GetOrDefault(key entry.IconKey) RenderImage {
	if img, ok := c.Get(key); ok {
		return img
	}

	c.pending[key] = struct{}{}

	return c.placeholder(key)
}

// Contains reports whether key is cached, without touching recency.
func (c *Cache) Contains(key entry.IconKey) bool {
	return c.textures.Contains(key)
}

// IsPending reports whether key is waiting for a fetch.
func (c *Cache) IsPending(key entry.IconKey) bool {
	_, ok := c.pending[key]
	return ok
}

// PendingKeys returns the pending keys ordered by their string form.
func (c *Cache) PendingKeys() []entry.IconKey {
	keys := make([]entry.IconKey, 0, len(c.pending))
	for key := range c.pending {
		keys = append(keys, key)
	}

	slices.SortFunc(keys, func(a, b entry.IconKey) int {
		return strings.Compare(a.String(), b.String())
	})

	return keys
}

// Insert stores img under key, evicting the least recently used icon when
// full, and clears key from the pending set.
func (c *Cache) Insert(key entry.IconKey, img RenderImage) {
	c.clearPending(key)
	c.textures.Add(key, img)
	c.metrics.SetIconCacheSize(c.textures.Len())
}

// Remove drops key from the cache and the pending set, returning the icon if
// one was cached.
func (c *Cache) Remove(key entry.IconKey) (RenderImage, bool) {
	c.clearPending(key)

	img, ok := c.textures.Peek(key)
	if ok {
		c.textures.Remove(key)
		c.metrics.SetIconCacheSize(c.textures.Len())
	}

	return img, ok
}

// Clear drops every icon and pending key.
func (c *Cache) Clear() {
	c.textures.Purge()
	clear(c.pending)
	clear(c.dispatched)
	c.metrics.SetIconCacheSize(0)
}

// RemovePending drops key from the pending set. A later GetOrDefault adds it again.
func (c *Cache) RemovePending(key entry.IconKey) {
	c.clearPending(key)
}

// DefaultIcon returns the generic file placeholder.
func (c *Cache) DefaultIcon() RenderImage {
	return c.defaultIcon
}

// FolderIcon returns the directory placeholder.
func (c *Cache) FolderIcon() RenderImage {
	return c.folderIcon
}

// ProcessFetchResults inserts successful results and clears failed keys from
// the pending set. It returns the number of icons inserted.
func (c *Cache) ProcessFetchResults(results []FetchResult) int {
	inserted := 0

	for _, result := range results {
		if !result.Success() {
			c.RemovePending(result.Key)
			continue
		}

		c.Insert(result.Key, result.Image)
		inserted++
	}

	return inserted
}

// QueuePendingFetches sends every pending key that has not been sent yet to
// requester and returns how many were sent. Custom keys carry their image path.
func (c *Cache) QueuePendingFetches(requester Requester) int {
	queued := 0

	for _, key := range c.PendingKeys() {
		if _, sent := c.dispatched[key]; sent {
			continue
		}

		var path string
		if key.Kind == entry.IconCustom {
			path = key.Value
		}

		requester.Request(key, path)
		c.dispatched[key] = struct{}{}
		queued++
	}

	return queued
}

func (c *Cache) clearPending(key entry.IconKey) {
	delete(c.pending, key)
	delete(c.dispatched, key)
}

func (c *Cache) placeholder(key entry.IconKey) RenderImage {
	if key.Kind == entry.IconDirectory {
		return c.folderIcon
	}

	return c.defaultIcon
}
