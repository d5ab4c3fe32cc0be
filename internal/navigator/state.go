package navigator

import (
	"fmt"
	"time"

	"github.com/joe/dirnav/internal/entry"
)

// LoadState is the loading status of the current directory.
// This is a sealed interface - only types in this package can implement it.
type LoadState interface {
	isLoadState()
	String() string
}

// Idle is the state before the first navigation.
type Idle struct{}

// Loading means a traversal for RequestID is in flight and no cached listing exists.
type Loading struct {
	RequestID uint64
}

// Loaded means the listing is complete.
type Loaded struct {
	Count    int
	Duration time.Duration
}

// Failed means the current directory could not be loaded.
type Failed struct {
	Message string
}

// Cached means the listing was served from the directory cache. Stale reports
// that the directory changed on disk after it was cached.
type Cached struct {
	Stale bool
}

func (Idle) isLoadState()    {}
func (Loading) isLoadState() {}
func (Loaded) isLoadState()  {}
func (Failed) isLoadState()  {}
func (Cached) isLoadState()  {}

func (Idle) String() string      { return "idle" }
func (s Loading) String() string { return fmt.Sprintf("loading (request %d)", s.RequestID) }
func (s Loaded) String() string  { return fmt.Sprintf("loaded %d entries in %s", s.Count, s.Duration) }
func (s Failed) String() string  { return "error: " + s.Message }

func (s Cached) String() string {
	if s.Stale {
		return "cached (stale)"
	}
	return "cached"
}

// CachedDirectory is a snapshot of a fully loaded directory.
type CachedDirectory struct {
	Entries []entry.FileEntry
	// Generation is the request ID that produced the snapshot. It is never updated.
	Generation uint64
	// ModTime is the directory's modification time when the snapshot was taken.
	ModTime  time.Time
	CachedAt time.Time
}

// IsStale reports whether the directory changed since the snapshot was taken.
func (c CachedDirectory) IsStale(currentModTime time.Time) bool {
	return !c.ModTime.Equal(currentModTime)
}
