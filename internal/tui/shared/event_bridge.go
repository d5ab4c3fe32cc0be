package shared

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/dirnav/internal/navigator"
	"github.com/joe/dirnav/internal/traversal"
)

// EventBufferSize is the number of messages held before Emit blocks.
const EventBufferSize = 100

// NavigatorEventMsg wraps a navigator.Event for use as a tea.Msg.
type NavigatorEventMsg struct {
	Event navigator.Event
}

// EntryErrorMsg reports an entry the traversal skipped.
type EntryErrorMsg struct {
	Err traversal.EntryError
}

// EventBridge adapts navigator events to bubble tea messages.
// It implements navigator.EventEmitter and provides a channel for TUI consumption.
//
// Emit blocks while the buffer is full: batches must never be dropped, since
// the listing is built from them. Close releases any blocked sender.
type EventBridge struct {
	eventChan chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once
}

// NewEventBridge creates a new event bridge.
func NewEventBridge() *EventBridge {
	return &EventBridge{
		eventChan: make(chan tea.Msg, EventBufferSize),
		done:      make(chan struct{}),
	}
}

// Emit implements navigator.EventEmitter.
// It wraps the event in NavigatorEventMsg and sends to the channel.
func (b *EventBridge) Emit(event navigator.Event) {
	b.send(NavigatorEventMsg{Event: event})
}

// EmitEntryError forwards a skipped entry. It has the traversal.ErrorHandler signature.
func (b *EventBridge) EmitEntryError(err traversal.EntryError) {
	b.send(EntryErrorMsg{Err: err})
}

// Subscribe returns the event channel for receiving events.
func (b *EventBridge) Subscribe() <-chan tea.Msg {
	return b.eventChan
}

// ListenCmd returns a tea.Cmd that blocks until an event is received.
// Use this in Init() or after processing an event to continue listening.
func (b *EventBridge) ListenCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.eventChan:
			return msg
		case <-b.done:
			return nil
		}
	}
}

// Close stops delivery. Pending and later events are discarded.
func (b *EventBridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

// Closed reports whether Close has been called.
func (b *EventBridge) Closed() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

func (b *EventBridge) send(msg tea.Msg) {
	select {
	case <-b.done:
		return
	default:
	}

	select {
	case b.eventChan <- msg:
	case <-b.done:
	}
}
