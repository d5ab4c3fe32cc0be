package navigator

import (
	"context"
	"time"

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/pipeline"
	"github.com/joe/dirnav/internal/traversal"
	pkgerrors "github.com/joe/dirnav/pkg/errors"
)

// LoadDirectorySync loads path into nav and blocks until the traversal is
// done. Batches are applied as they arrive and the load is finalized at the
// end. It returns the number of entries the traversal produced; a traversal
// error is returned as is and also recorded as the Failed state.
func LoadDirectorySync(
	ctx context.Context,
	nav *Navigator,
	engine *traversal.Engine,
	path string,
	cfg traversal.Config,
	batchCfg pipeline.BatchConfig,
) (int, error) {
	start := time.Now()
	requestID := nav.BeginLoad(path)

	// A cached listing is replaced rather than appended to
	nav.entries = nil

	entries, walk := engine.SpawnSorted(ctx, nav.CurrentPath(), cfg)

	batches := make(chan []entry.FileEntry, pipeline.OutputBufferSize)
	aggregator := pipeline.Start(ctx, entries, batches, batchCfg)

	for batch := range batches {
		nav.ProcessBatch(requestID, batch)
	}

	aggregator.Wait()
	go drain(entries)

	count, err := walk.Wait()
	if err != nil {
		nav.SetError(requestID, pkgerrors.Headline(pkgerrors.NewEnricher(), err, nav.CurrentPath()))
		return count, err
	}

	nav.FinalizeLoad(requestID, time.Since(start))

	return count, nil
}
