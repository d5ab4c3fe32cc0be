package navigator_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/dirnav/internal/navigator"
	"github.com/joe/dirnav/internal/pipeline"
	"github.com/joe/dirnav/internal/traversal"
)

func TestLoadDirectorySync(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := populated("/data", 12)
	engine := traversal.NewEngine(fs)
	nav := navigator.New("/", navigator.WithFileSystem(fs))
	batchCfg := pipeline.BatchConfig{BatchSize: 5, FlushInterval: time.Hour}

	count, err := navigator.LoadDirectorySync(context.Background(), nav, engine, "/data", traversal.DefaultConfig(), batchCfg)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(count).To(Equal(12))
	g.Expect(nav.Entries()).To(HaveLen(12))
	g.Expect(nav.State()).To(BeAssignableToTypeOf(navigator.Loaded{}))
	g.Expect(nav.IsCached("/data")).To(BeTrue())

	// A second load over a cached directory replaces rather than duplicates
	count, err = navigator.LoadDirectorySync(context.Background(), nav, engine, "/data", traversal.DefaultConfig(), batchCfg)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(count).To(Equal(12))
	g.Expect(nav.Entries()).To(HaveLen(12))
}

func TestLoadDirectorySync_Failure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := populated("/data", 1)
	engine := traversal.NewEngine(fs)
	nav := navigator.New("/", navigator.WithFileSystem(fs))

	_, err := navigator.LoadDirectorySync(context.Background(), nav, engine, "/data/file000.txt",
		traversal.DefaultConfig(), pipeline.DefaultBatchConfig())

	g.Expect(err).To(MatchError(traversal.ErrNotADirectory))
	g.Expect(nav.State()).To(Equal(navigator.Failed{Message: "Not a directory: /data/file000.txt"}))
	g.Expect(nav.Entries()).To(BeEmpty())
}
