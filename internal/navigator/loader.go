package navigator

import (
	"context"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/logging"
	"github.com/joe/dirnav/internal/pipeline"
	"github.com/joe/dirnav/internal/traversal"
	pkgerrors "github.com/joe/dirnav/pkg/errors"
)

// LoadMode selects how a navigation's traversal results reach the Navigator.
type LoadMode int

// LoadMode values.
const (
	// ModeNone means the cached listing is current and nothing is traversed
	ModeNone LoadMode = iota
	// ModeIncremental appends batches as they arrive, then finalizes
	ModeIncremental
	// ModeReplace collects the whole listing and swaps it in at once, so a
	// stale cached listing stays visible until its replacement is ready
	ModeReplace
)

// String returns the string representation of LoadMode
func (m LoadMode) String() string {
	switch m {
	case ModeIncremental:
		return "incremental"
	case ModeReplace:
		return "replace"
	default:
		return "none"
	}
}

// Loader runs traversals for a Navigator off the owner goroutine and reports
// their results as events. Only the most recent navigation is kept running;
// starting a new one cancels the rest.
type Loader struct {
	engine   *traversal.Engine
	emitter  EventEmitter
	batch    pipeline.BatchConfig
	enricher pkgerrors.Enricher
	logger   *zap.Logger

	active *xsync.Map[uint64, context.CancelFunc]
	wg     sync.WaitGroup //nolint:varnamelen // wg is idiomatic for WaitGroup
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithBatchConfig sets the batching thresholds.
func WithBatchConfig(cfg pipeline.BatchConfig) LoaderOption {
	return func(l *Loader) { l.batch = cfg }
}

// WithLoaderLogger sets the logger.
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logging.OrNop(logger) }
}

// WithEnricher sets the enricher that turns traversal errors into messages.
func WithEnricher(enricher pkgerrors.Enricher) LoaderOption {
	return func(l *Loader) { l.enricher = enricher }
}

// NewLoader creates a Loader that walks with engine and emits to emitter.
func NewLoader(engine *traversal.Engine, emitter EventEmitter, opts ...LoaderOption) *Loader {
	loader := &Loader{
		engine:   engine,
		emitter:  emitter,
		batch:    pipeline.DefaultBatchConfig(),
		enricher: pkgerrors.NewEnricher(),
		logger:   zap.NewNop(),
		active:   xsync.NewMap[uint64, context.CancelFunc](),
	}

	for _, opt := range opts {
		opt(loader)
	}

	return loader
}

// ModeFor returns how a navigation in the given state must be loaded.
func ModeFor(state LoadState) LoadMode {
	switch s := state.(type) {
	case Cached:
		if s.Stale {
			return ModeReplace
		}
		return ModeNone
	default:
		return ModeIncremental
	}
}

// Navigate begins a load of path on nav (on the caller's goroutine, so a
// cached listing is visible on return) and starts the traversal in the
// background. It returns the request ID. Must be called from nav's owner.
func (l *Loader) Navigate(ctx context.Context, nav *Navigator, path string, cfg traversal.Config) uint64 {
	requestID := nav.BeginLoad(path)
	l.cancelOthers(requestID)

	mode := ModeFor(nav.State())
	if mode == ModeNone {
		return requestID
	}

	l.start(ctx, requestID, nav.CurrentPath(), cfg, mode)

	return requestID
}

// Reload drops the cached listing of the current directory and loads it again.
func (l *Loader) Reload(ctx context.Context, nav *Navigator, cfg traversal.Config) uint64 {
	nav.Invalidate(nav.CurrentPath())
	return l.Navigate(ctx, nav, nav.CurrentPath(), cfg)
}

// Active returns the number of loads still running.
func (l *Loader) Active() int {
	return l.active.Size()
}

// Wait blocks until every started load has finished emitting.
func (l *Loader) Wait() {
	l.wg.Wait()
}

// Close cancels every running load and waits for them to stop.
func (l *Loader) Close() {
	l.cancelOthers(0)
	l.wg.Wait()
}

func (l *Loader) start(ctx context.Context, requestID uint64, path string, cfg traversal.Config, mode LoadMode) {
	loadCtx, cancel := context.WithCancel(ctx)
	l.active.Store(requestID, cancel)

	l.logger.Debug("starting load",
		zap.String("path", path),
		zap.Uint64("request_id", requestID),
		zap.Stringer("mode", mode),
		zap.Bool("streaming", cfg.Streaming))

	l.wg.Go(func() {
		defer func() {
			if c, ok := l.active.LoadAndDelete(requestID); ok {
				c()
			}
		}()

		l.run(loadCtx, requestID, path, cfg, mode)
	})
}

// cancelOthers cancels every active load except keep.
func (l *Loader) cancelOthers(keep uint64) {
	l.active.Range(func(id uint64, cancel context.CancelFunc) bool {
		if id != keep {
			cancel()
			l.active.Delete(id)
		}
		return true
	})
}

func (l *Loader) run(ctx context.Context, requestID uint64, path string, cfg traversal.Config, mode LoadMode) {
	start := time.Now()
	modTime := l.dirModTime(path)

	var (
		entries <-chan entry.FileEntry
		walk    *traversal.Handle
	)

	if cfg.Streaming {
		entries, walk = l.engine.Spawn(ctx, path, cfg)
	} else {
		entries, walk = l.engine.SpawnSorted(ctx, path, cfg)
	}

	batches := make(chan []entry.FileEntry, pipeline.OutputBufferSize)
	aggregator := pipeline.Start(ctx, entries, batches, l.batch)

	var collected []entry.FileEntry

	for batch := range batches {
		switch mode {
		case ModeReplace:
			collected = append(collected, batch...)
		default:
			l.emitter.Emit(BatchReady{RequestID: requestID, Entries: batch})
		}
	}

	aggregator.Wait()
	// Unblock the walker if the aggregator stopped early
	go drain(entries)

	count, err := walk.Wait()

	if ctx.Err() != nil {
		l.logger.Debug("load superseded", zap.String("path", path), zap.Uint64("request_id", requestID))
		return
	}

	if err != nil {
		l.logger.Warn("load failed", zap.String("path", path), zap.Error(err))
		l.emitter.Emit(LoadFailed{
			RequestID: requestID,
			Message:   pkgerrors.Headline(l.enricher, err, path),
			Err:       l.enricher.Enrich(err, path),
		})

		return
	}

	duration := time.Since(start)
	l.logger.Info("load finished",
		zap.String("path", path),
		zap.Int("entries", count),
		zap.Duration("duration", duration))

	if mode == ModeReplace {
		l.emitter.Emit(LoadCompleted{RequestID: requestID, Entries: collected, Duration: duration, ModTime: modTime})
		return
	}

	l.emitter.Emit(LoadFinished{RequestID: requestID, Duration: duration, ModTime: modTime})
}

func (l *Loader) dirModTime(path string) time.Time {
	info, err := l.engine.FileSystem().Stat(path)
	if err != nil {
		return time.Time{}
	}

	return info.ModTime()
}

func drain(ch <-chan entry.FileEntry) {
	for range ch { //nolint:revive // Drain until the producer closes
	}
}
