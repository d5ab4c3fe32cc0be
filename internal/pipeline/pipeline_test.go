package pipeline_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/pipeline"
)

func makeEntry(i int) entry.FileEntry {
	name := fmt.Sprintf("file%03d.txt", i)
	return entry.New(name, "/dir/"+name, false, int64(i), time.Unix(0, 0))
}

func batchSizes(batches [][]entry.FileEntry) []int {
	sizes := make([]int, 0, len(batches))
	for _, b := range batches {
		sizes = append(sizes, len(b))
	}

	return sizes
}

func runAggregator(n int, cfg pipeline.BatchConfig) ([][]entry.FileEntry, int) {
	input := make(chan entry.FileEntry, n+1)
	output := make(chan []entry.FileEntry, n+2)

	for i := range n {
		input <- makeEntry(i)
	}
	close(input)

	total := pipeline.NewBatchAggregator(input, output, cfg).Run(context.Background())

	var batches [][]entry.FileEntry
	for b := range output {
		batches = append(batches, b)
	}

	return batches, total
}

func TestBatchAggregator_SizeFlushes(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	batches, total := runAggregator(25, pipeline.BatchConfig{BatchSize: 10, FlushInterval: time.Hour})

	g.Expect(total).To(Equal(25))
	g.Expect(batchSizes(batches)).To(Equal([]int{10, 10, 5}))
	g.Expect(batches[2][4].Name).To(Equal("file024.txt"), "order is preserved")
}

func TestBatchAggregator_BatchCountBound(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	for _, batchSize := range []int{1, 3, 7, 100} {
		for _, n := range []int{0, 1, 2, 9, 10, 99, 250} {
			batches, total := runAggregator(n, pipeline.BatchConfig{BatchSize: batchSize, FlushInterval: time.Hour})

			sum := 0
			for _, b := range batches {
				g.Expect(b).ToNot(BeEmpty(), "no empty batches are emitted")
				sum += len(b)
			}

			g.Expect(total).To(Equal(n))
			g.Expect(sum).To(Equal(n))
			g.Expect(len(batches)).To(BeNumerically("<=", pipeline.MaxBatchesForItems(n, batchSize)),
				"n=%d batchSize=%d", n, batchSize)
		}
	}
}

func TestMaxBatchesForItems(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(pipeline.MaxBatchesForItems(0, 10)).To(Equal(1))
	g.Expect(pipeline.MaxBatchesForItems(25, 10)).To(Equal(4))
	g.Expect(pipeline.MaxBatchesForItems(30, 10)).To(Equal(4))
	g.Expect(pipeline.MaxBatchesForItems(5, 0)).To(Equal(0))
}

func TestBatchAggregator_TimeFlush(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	input := make(chan entry.FileEntry)
	output := make(chan []entry.FileEntry, 4)

	handle := pipeline.Start(context.Background(), input, output,
		pipeline.BatchConfig{BatchSize: 100, FlushInterval: 10 * time.Millisecond})

	input <- makeEntry(1)
	input <- makeEntry(2)

	var first []entry.FileEntry
	g.Eventually(output).WithTimeout(time.Second).Should(Receive(&first))
	g.Expect(first).To(HaveLen(2), "partial batch flushed by the interval")

	close(input)
	g.Expect(handle.Wait()).To(Equal(2))
	g.Eventually(output).Should(BeClosed())
}

func TestBatchAggregator_DefaultsForNonPositiveConfig(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	agg := pipeline.NewBatchAggregator(nil, nil, pipeline.BatchConfig{BatchSize: 0, FlushInterval: -1})
	g.Expect(agg.Config()).To(Equal(pipeline.DefaultBatchConfig()))
}

func TestBatchAggregator_CancelledReceiverIsCleanShutdown(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ctx, cancel := context.WithCancel(context.Background())

	input := make(chan entry.FileEntry, 10)
	output := make(chan []entry.FileEntry) // nobody reads

	for i := range 3 {
		input <- makeEntry(i)
	}

	handle := pipeline.Start(ctx, input, output, pipeline.BatchConfig{BatchSize: 2, FlushInterval: time.Hour})

	// The first size flush blocks on the unread output until cancellation
	time.Sleep(20 * time.Millisecond)
	cancel()

	g.Expect(handle.Wait()).To(Equal(2))
}

func TestNewBatchPipeline(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	in, out, handle := pipeline.NewBatchPipeline(context.Background(), pipeline.BatchConfig{BatchSize: 4, FlushInterval: time.Hour})

	go func() {
		for i := range 9 {
			in <- makeEntry(i)
		}
		close(in)
	}()

	var sizes []int
	for b := range out {
		sizes = append(sizes, len(b))
	}

	g.Expect(sizes).To(Equal([]int{4, 4, 1}))
	g.Expect(handle.Wait()).To(Equal(9))
}
