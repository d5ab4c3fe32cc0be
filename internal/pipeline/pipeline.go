// Package pipeline groups a stream of entries into batches so that consumers
// apply many entries per wakeup instead of one.
package pipeline

import (
	"context"
	"time"

	"github.com/joe/dirnav/internal/entry"
)

// Exported constants.
const (
	// DefaultBatchSize is the number of entries that triggers a size flush
	DefaultBatchSize = 100
	// DefaultFlushInterval is the longest a partial batch waits before a time flush
	DefaultFlushInterval = 16 * time.Millisecond
	// InputBufferSize is the buffer size of the input channel made by NewBatchPipeline
	InputBufferSize = 256
	// OutputBufferSize is the buffer size of the output channel made by NewBatchPipeline
	OutputBufferSize = 16
)

// BatchConfig controls when batches are flushed.
type BatchConfig struct {
	BatchSize     int
	FlushInterval time.Duration
}

// DefaultBatchConfig returns a BatchConfig with the default thresholds.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		BatchSize:     DefaultBatchSize,
		FlushInterval: DefaultFlushInterval,
	}
}

// withDefaults replaces non-positive values by the defaults.
func (c BatchConfig) withDefaults() BatchConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}

	if c.FlushInterval <= 0 {
		c.FlushInterval = DefaultFlushInterval
	}

	return c
}

// MaxBatchesForItems is the most batches a run over n items can emit when
// time flushes are effectively disabled: one per full batch plus one partial.
func MaxBatchesForItems(n, batchSize int) int {
	if batchSize <= 0 {
		return 0
	}

	return (n+batchSize-1)/batchSize + 1
}

// BatchAggregator reads entries from input and writes batches to output.
type BatchAggregator struct {
	input  <-chan entry.FileEntry
	output chan<- []entry.FileEntry
	config BatchConfig
}

// NewBatchAggregator creates an aggregator between input and output.
func NewBatchAggregator(input <-chan entry.FileEntry, output chan<- []entry.FileEntry, cfg BatchConfig) *BatchAggregator {
	return &BatchAggregator{
		input:  input,
		output: output,
		config: cfg.withDefaults(),
	}
}

// Config returns the effective configuration.
func (a *BatchAggregator) Config() BatchConfig {
	return a.config
}

// Run aggregates until input is closed or ctx is done, then closes output and
// returns the number of entries consumed. A cancelled context is a normal
// shutdown: the entries read so far are counted and nothing is reported.
func (a *BatchAggregator) Run(ctx context.Context) int {
	defer close(a.output)

	batch := make([]entry.FileEntry, 0, a.config.BatchSize)
	lastFlush := time.Now()
	total := 0

	timer := time.NewTimer(a.config.FlushInterval)
	defer timer.Stop()

	for {
		remaining := max(a.config.FlushInterval-time.Since(lastFlush), 0)
		timer.Reset(remaining)

		select {
		case fe, ok := <-a.input:
			if !ok {
				if len(batch) > 0 {
					a.flush(ctx, batch)
				}

				return total
			}

			total++
			batch = append(batch, fe)

			if len(batch) >= a.config.BatchSize {
				if !a.flush(ctx, batch) {
					return total
				}

				batch = make([]entry.FileEntry, 0, a.config.BatchSize)
				lastFlush = time.Now()
			}

		case <-timer.C:
			if len(batch) > 0 {
				if !a.flush(ctx, batch) {
					return total
				}

				batch = make([]entry.FileEntry, 0, a.config.BatchSize)
			}

			lastFlush = time.Now()

		case <-ctx.Done():
			return total
		}
	}
}

// flush hands batch to the receiver; it reports false if ctx ended first.
func (a *BatchAggregator) flush(ctx context.Context, batch []entry.FileEntry) bool {
	select {
	case a.output <- batch:
		return true
	case <-ctx.Done():
		return false
	}
}

// Handle tracks an aggregator running on its own goroutine.
type Handle struct {
	done  chan struct{}
	total int
}

// Wait blocks until the aggregator has stopped and returns the entries consumed.
func (h *Handle) Wait() int {
	<-h.done
	return h.total
}

// NewBatchPipeline starts an aggregator on a new goroutine and returns the
// channel to send entries on, the channel batches arrive on, and a handle.
// Closing the input ends the pipeline after a final flush.
func NewBatchPipeline(ctx context.Context, cfg BatchConfig) (chan<- entry.FileEntry, <-chan []entry.FileEntry, *Handle) {
	input := make(chan entry.FileEntry, InputBufferSize)
	output := make(chan []entry.FileEntry, OutputBufferSize)

	handle := Start(ctx, input, output, cfg)

	return input, output, handle
}

// Start runs an aggregator over existing channels on a new goroutine.
func Start(ctx context.Context, input <-chan entry.FileEntry, output chan<- []entry.FileEntry, cfg BatchConfig) *Handle {
	handle := &Handle{done: make(chan struct{})}
	aggregator := NewBatchAggregator(input, output, cfg)

	go func() {
		defer close(handle.done)
		handle.total = aggregator.Run(ctx)
	}()

	return handle
}
