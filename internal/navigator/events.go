package navigator

import (
	"time"

	"github.com/joe/dirnav/internal/entry"
)

// Event is the interface implemented by all load events delivered by a Loader.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for emitting events.
type EventEmitter interface {
	Emit(event Event)
}

// EmitterFunc adapts a function to EventEmitter.
type EmitterFunc func(Event)

// Emit calls f(event).
func (f EmitterFunc) Emit(event Event) { f(event) }

// BatchReady carries entries for an incremental load.
type BatchReady struct {
	RequestID uint64
	Entries   []entry.FileEntry
}

func (BatchReady) isEvent() {}

// LoadFinished ends an incremental load after its last batch.
type LoadFinished struct {
	RequestID uint64
	Duration  time.Duration
	ModTime   time.Time
}

func (LoadFinished) isEvent() {}

// LoadCompleted delivers the full listing of a revalidation in one piece.
type LoadCompleted struct {
	RequestID uint64
	Entries   []entry.FileEntry
	Duration  time.Duration
	ModTime   time.Time
}

func (LoadCompleted) isEvent() {}

// LoadFailed reports that the directory could not be traversed.
type LoadFailed struct {
	RequestID uint64
	Message   string
	Err       error
}

func (LoadFailed) isEvent() {}

// Apply routes a load event to the matching completion method and reports
// whether it was applied. Events from superseded requests return false.
func (n *Navigator) Apply(event Event) bool {
	switch e := event.(type) {
	case BatchReady:
		_, ok := n.ProcessBatch(e.RequestID, e.Entries)
		return ok
	case LoadFinished:
		return n.finalize(e.RequestID, e.Duration, e.ModTime)
	case LoadCompleted:
		return n.CompleteLoad(e.RequestID, e.Entries, e.Duration, e.ModTime)
	case LoadFailed:
		if !n.SetError(e.RequestID, e.Message) {
			return false
		}
		n.metrics.RecordLoad("failed", 0)
		return true
	default:
		return false
	}
}
