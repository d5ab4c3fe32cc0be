// Package fsevent defines filesystem change events and a per-path debouncer
// that merges bursts of events before they are applied to a listing.
package fsevent

import "fmt"

// Event is a filesystem change reported by an external watcher.
// This is a sealed interface - only types in this package can implement it.
type Event interface {
	// Path is the path the event is keyed by: the destination for renames.
	Path() string
	isEvent()
}

// Created reports a new file or directory.
type Created struct {
	Target string
}

// Modified reports changed content or metadata.
type Modified struct {
	Target string
}

// Deleted reports a removed file or directory.
type Deleted struct {
	Target string
}

// Renamed reports a move from one path to another.
type Renamed struct {
	From string
	To   string
}

// Path implements Event.
func (e Created) Path() string { return e.Target }

// Path implements Event.
func (e Modified) Path() string { return e.Target }

// Path implements Event.
func (e Deleted) Path() string { return e.Target }

// Path implements Event.
func (e Renamed) Path() string { return e.To }

func (Created) isEvent()  {}
func (Modified) isEvent() {}
func (Deleted) isEvent()  {}
func (Renamed) isEvent()  {}

func (e Created) String() string  { return "created " + e.Target }
func (e Modified) String() string { return "modified " + e.Target }
func (e Deleted) String() string  { return "deleted " + e.Target }
func (e Renamed) String() string  { return fmt.Sprintf("renamed %s -> %s", e.From, e.To) }
