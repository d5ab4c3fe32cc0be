package fsevent

import (
	"cmp"
	"slices"
	"time"
)

// DefaultWindow is how long a path must stay quiet before its event is released.
const DefaultWindow = 50 * time.Millisecond

// pendingEvent is the latest event seen for a path.
type pendingEvent struct {
	event    Event
	lastSeen time.Time
	count    int
	seq      uint64 // first-seen order, for deterministic output
}

// Coalescer merges events per path: a later event for the same path replaces
// the earlier one and restarts its quiet window. It is not safe for concurrent
// use; the owner polls it from one goroutine.
type Coalescer struct {
	pending map[string]*pendingEvent
	window  time.Duration
	clock   Clock
	nextSeq uint64
}

// CoalescerOption configures a Coalescer.
type CoalescerOption func(*Coalescer)

// WithWindow sets the quiet window.
func WithWindow(window time.Duration) CoalescerOption {
	return func(c *Coalescer) { c.window = window }
}

// WithClock sets the time source.
func WithClock(clock Clock) CoalescerOption {
	return func(c *Coalescer) { c.clock = clock }
}

// NewCoalescer creates a Coalescer with the default window and the real clock.
func NewCoalescer(opts ...CoalescerOption) *Coalescer {
	c := &Coalescer{
		pending: make(map[string]*pendingEvent),
		window:  DefaultWindow,
		clock:   RealClock{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Window returns the quiet window.
func (c *Coalescer) Window() time.Duration {
	return c.window
}

// SetWindow changes the quiet window for all pending and future events.
func (c *Coalescer) SetWindow(window time.Duration) {
	c.window = window
}

// Add records events, merging them with pending events for the same path.
func (c *Coalescer) Add(events ...Event) {
	now := c.clock.Now()

	for _, ev := range events {
		key := ev.Path()

		if p, ok := c.pending[key]; ok {
			p.event = ev
			p.lastSeen = now
			p.count++

			continue
		}

		c.pending[key] = &pendingEvent{
			event:    ev,
			lastSeen: now,
			count:    1,
			seq:      c.nextSeq,
		}
		c.nextSeq++
	}
}

// PollReady removes and returns the events whose path has been quiet for at
// least the window, in the order their paths were first seen.
func (c *Coalescer) PollReady() []Event {
	now := c.clock.Now()

	var ready []*pendingEvent

	for key, p := range c.pending {
		if now.Sub(p.lastSeen) >= c.window {
			ready = append(ready, p)
			delete(c.pending, key)
		}
	}

	return ordered(ready)
}

// FlushAll removes and returns every pending event regardless of age.
func (c *Coalescer) FlushAll() []Event {
	all := make([]*pendingEvent, 0, len(c.pending))
	for _, p := range c.pending {
		all = append(all, p)
	}

	clear(c.pending)

	return ordered(all)
}

// PendingCount returns the number of paths with a pending event.
func (c *Coalescer) PendingCount() int {
	return len(c.pending)
}

// TotalCoalescedCount returns the number of raw events merged into the
// pending set.
func (c *Coalescer) TotalCoalescedCount() int {
	total := 0
	for _, p := range c.pending {
		total += p.count
	}

	return total
}

// Clear drops every pending event.
func (c *Coalescer) Clear() {
	clear(c.pending)
}

func ordered(pending []*pendingEvent) []Event {
	slices.SortFunc(pending, func(a, b *pendingEvent) int {
		return cmp.Compare(a.seq, b.seq)
	})

	events := make([]Event, 0, len(pending))
	for _, p := range pending {
		events = append(events, p.event)
	}

	return events
}
