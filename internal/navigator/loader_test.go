package navigator_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/dirnav/internal/navigator"
	"github.com/joe/dirnav/internal/pipeline"
	"github.com/joe/dirnav/internal/traversal"
	"github.com/joe/dirnav/pkg/filesystem"
)

// recorder collects emitted events so the test goroutine can apply them as
// the navigator's owner.
type recorder struct {
	mu     sync.Mutex
	events []navigator.Event
}

func (r *recorder) Emit(ev navigator.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
}

func (r *recorder) take() []navigator.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := r.events
	r.events = nil

	return events
}

func populated(dir string, n int) *filesystem.MockFileSystem {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir(dir, dirTime)

	for i := range n {
		fs.AddFile(fmt.Sprintf("%s/file%03d.txt", dir, i), []byte("x"), dirTime)
	}

	// Adding children must not move the directory's own mtime
	_ = fs.Chtimes(dir, dirTime)

	return fs
}

func newLoader(fs filesystem.FileSystem, rec *recorder) *navigator.Loader {
	return navigator.NewLoader(
		traversal.NewEngine(fs),
		rec,
		navigator.WithBatchConfig(pipeline.BatchConfig{BatchSize: 10, FlushInterval: time.Hour}),
	)
}

func applyAll(nav *navigator.Navigator, events []navigator.Event) {
	for _, ev := range events {
		nav.Apply(ev)
	}
}

func TestLoader_IncrementalLoad(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := populated("/data", 25)
	rec := &recorder{}
	loader := newLoader(fs, rec)
	nav := navigator.New("/", navigator.WithFileSystem(fs))

	id := loader.Navigate(context.Background(), nav, "/data", traversal.DefaultConfig())
	g.Expect(nav.State()).To(Equal(navigator.Loading{RequestID: id}))

	loader.Wait()
	events := rec.take()

	g.Expect(events).To(HaveLen(4), "three batches then the finish event")
	for _, ev := range events[:3] {
		g.Expect(ev).To(BeAssignableToTypeOf(navigator.BatchReady{}))
	}
	g.Expect(events[3]).To(BeAssignableToTypeOf(navigator.LoadFinished{}))

	applyAll(nav, events)

	g.Expect(nav.Entries()).To(HaveLen(25))
	g.Expect(nav.Entries()[0].Name).To(Equal("file000.txt"))
	g.Expect(nav.State()).To(BeAssignableToTypeOf(navigator.Loaded{}))
	g.Expect(nav.State().(navigator.Loaded).Count).To(Equal(25))

	cached, ok := nav.Cached("/data")
	g.Expect(ok).To(BeTrue())
	g.Expect(cached.ModTime).To(BeTemporally("==", dirTime))
	g.Expect(loader.Active()).To(BeZero())
}

func TestLoader_FreshCacheHitStartsNothing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := populated("/data", 3)
	rec := &recorder{}
	loader := newLoader(fs, rec)
	nav := navigator.New("/", navigator.WithFileSystem(fs))

	loader.Navigate(context.Background(), nav, "/data", traversal.DefaultConfig())
	loader.Wait()
	applyAll(nav, rec.take())

	loader.Navigate(context.Background(), nav, "/data", traversal.DefaultConfig())
	loader.Wait()

	g.Expect(rec.take()).To(BeEmpty())
	g.Expect(nav.State()).To(Equal(navigator.Cached{Stale: false}))
	g.Expect(nav.Entries()).To(HaveLen(3))
}

func TestLoader_StaleCacheHitReplacesListing(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := populated("/data", 3)
	rec := &recorder{}
	loader := newLoader(fs, rec)
	nav := navigator.New("/", navigator.WithFileSystem(fs))

	loader.Navigate(context.Background(), nav, "/data", traversal.DefaultConfig())
	loader.Wait()
	applyAll(nav, rec.take())

	changed := dirTime.Add(time.Minute)
	fs.AddFile("/data/file999.txt", nil, changed)
	g.Expect(fs.Chtimes("/data", changed)).To(Succeed())

	loader.Navigate(context.Background(), nav, "/data", traversal.DefaultConfig())
	g.Expect(nav.State()).To(Equal(navigator.Cached{Stale: true}))
	g.Expect(nav.Entries()).To(HaveLen(3), "old listing stays until its replacement arrives")

	loader.Wait()
	events := rec.take()
	g.Expect(events).To(HaveLen(1))
	g.Expect(events[0]).To(BeAssignableToTypeOf(navigator.LoadCompleted{}))

	applyAll(nav, events)
	g.Expect(nav.Entries()).To(HaveLen(4))

	cached, _ := nav.Cached("/data")
	g.Expect(cached.ModTime).To(BeTemporally("==", changed))
}

func TestLoader_FailureReportsHeadline(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := filesystem.NewMockFileSystem()
	rec := &recorder{}
	loader := newLoader(fs, rec)
	nav := navigator.New("/", navigator.WithFileSystem(fs))

	loader.Navigate(context.Background(), nav, "/missing", traversal.DefaultConfig())
	loader.Wait()

	events := rec.take()
	g.Expect(events).To(HaveLen(1))

	failed, ok := events[0].(navigator.LoadFailed)
	g.Expect(ok).To(BeTrue())
	g.Expect(failed.Message).To(Equal("Directory not found: /missing"))
	g.Expect(failed.Err).To(HaveOccurred())

	applyAll(nav, events)
	g.Expect(nav.State()).To(Equal(navigator.Failed{Message: "Directory not found: /missing"}))
}

func TestLoader_SupersededLoadNeverLands(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := populated("/a", 50)
	fs.AddFile("/b/only.txt", nil, dirTime)

	rec := &recorder{}
	loader := newLoader(fs, rec)
	nav := navigator.New("/", navigator.WithFileSystem(fs))

	loader.Navigate(context.Background(), nav, "/a", traversal.DefaultConfig())
	idB := loader.Navigate(context.Background(), nav, "/b", traversal.DefaultConfig())
	loader.Wait()

	applyAll(nav, rec.take())

	g.Expect(nav.RequestID()).To(Equal(idB))
	g.Expect(nav.CurrentPath()).To(Equal("/b"))
	g.Expect(entryNames(nav)).To(Equal([]string{"only.txt"}))
	g.Expect(nav.IsCached("/a")).To(BeFalse())
}

func TestLoader_ReloadBypassesCache(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := populated("/data", 2)
	rec := &recorder{}
	loader := newLoader(fs, rec)
	nav := navigator.New("/", navigator.WithFileSystem(fs))

	loader.Navigate(context.Background(), nav, "/data", traversal.DefaultConfig())
	loader.Wait()
	applyAll(nav, rec.take())

	id := loader.Reload(context.Background(), nav, traversal.DefaultConfig())
	g.Expect(nav.State()).To(Equal(navigator.Loading{RequestID: id}))

	loader.Wait()
	applyAll(nav, rec.take())
	g.Expect(nav.Entries()).To(HaveLen(2))
}

func TestLoader_CloseCancelsRunningLoads(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fs := populated("/data", 100)
	rec := &recorder{}
	loader := newLoader(fs, rec)
	nav := navigator.New("/", navigator.WithFileSystem(fs))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader.Navigate(ctx, nav, "/data", traversal.DefaultConfig())
	loader.Close()

	g.Expect(loader.Active()).To(BeZero())
	for _, ev := range rec.take() {
		g.Expect(ev).NotTo(BeAssignableToTypeOf(navigator.LoadFinished{}), "a cancelled load never reports completion")
	}
}

func TestLoadMode_String(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(navigator.ModeNone.String()).To(Equal("none"))
	g.Expect(navigator.ModeIncremental.String()).To(Equal("incremental"))
	g.Expect(navigator.ModeReplace.String()).To(Equal("replace"))
}
