package iconcache_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/iconcache"
)

var (
	keyA = entry.ExtensionIcon("a")
	keyB = entry.ExtensionIcon("b")
	keyC = entry.ExtensionIcon("c")
)

func tiny() iconcache.RenderImage {
	return iconcache.Solid(1, 1, iconcache.FolderColor)
}

// fakeRequester records requests instead of decoding them.
type fakeRequester struct {
	requests []iconcache.FetchRequest
}

func (f *fakeRequester) Request(key entry.IconKey, path string) {
	f.requests = append(f.requests, iconcache.FetchRequest{Key: key, Path: path})
}

func TestCache_EvictsLeastRecentlyTouched(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cache := iconcache.NewWithCapacity(2)
	cache.Insert(keyA, tiny())
	cache.Insert(keyB, tiny())

	_, ok := cache.Get(keyA)
	g.Expect(ok).To(BeTrue())

	cache.Insert(keyC, tiny())

	g.Expect(cache.Len()).To(Equal(2))
	g.Expect(cache.Contains(keyA)).To(BeTrue())
	g.Expect(cache.Contains(keyB)).To(BeFalse())
	g.Expect(cache.Contains(keyC)).To(BeTrue())
}

func TestCache_GetOrDefaultTouchesRecency(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cache := iconcache.NewWithCapacity(2)
	cache.Insert(keyA, tiny())
	cache.Insert(keyB, tiny())

	g.Expect(cache.GetOrDefault(keyA)).To(Equal(tiny()))
	cache.Insert(keyC, tiny())

	g.Expect(cache.Contains(keyA)).To(BeTrue())
	g.Expect(cache.Contains(keyB)).To(BeFalse())
}

func TestCache_LenNeverExceedsCapacity(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cache := iconcache.NewWithCapacity(3)
	for _, ext := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		cache.Insert(entry.ExtensionIcon(ext), tiny())
		g.Expect(cache.Len()).To(BeNumerically("<=", 3))
	}

	g.Expect(cache.Len()).To(Equal(3))
}

func TestCache_CapacityDefaults(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(iconcache.New().MaxEntries()).To(Equal(iconcache.DefaultMaxEntries))
	g.Expect(iconcache.NewWithCapacity(0).MaxEntries()).To(Equal(1))
	g.Expect(iconcache.New().IsEmpty()).To(BeTrue())
}

func TestCache_GetOrDefaultReturnsPlaceholderAndQueues(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cache := iconcache.New()

	g.Expect(cache.GetOrDefault(entry.DirectoryIcon())).To(Equal(cache.FolderIcon()))
	g.Expect(cache.GetOrDefault(keyA)).To(Equal(cache.DefaultIcon()))
	g.Expect(cache.GetOrDefault(keyA)).To(Equal(cache.DefaultIcon()))

	g.Expect(cache.IsPending(keyA)).To(BeTrue())
	g.Expect(cache.PendingKeys()).To(Equal([]entry.IconKey{entry.DirectoryIcon(), keyA}))
	g.Expect(cache.FolderIcon()).NotTo(Equal(cache.DefaultIcon()))

	cache.Insert(keyA, tiny())
	g.Expect(cache.IsPending(keyA)).To(BeFalse())
	g.Expect(cache.GetOrDefault(keyA)).To(Equal(tiny()))
}

func TestCache_RemoveAndClear(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cache := iconcache.New()
	cache.Insert(keyA, tiny())
	cache.GetOrDefault(keyB)

	img, ok := cache.Remove(keyA)
	g.Expect(ok).To(BeTrue())
	g.Expect(img).To(Equal(tiny()))

	_, ok = cache.Remove(keyA)
	g.Expect(ok).To(BeFalse())

	cache.Insert(keyC, tiny())
	cache.Clear()
	g.Expect(cache.IsEmpty()).To(BeTrue())
	g.Expect(cache.PendingKeys()).To(BeEmpty())
}

func TestCache_ProcessFetchResults(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cache := iconcache.New()
	cache.GetOrDefault(keyA)
	cache.GetOrDefault(keyB)

	inserted := cache.ProcessFetchResults([]iconcache.FetchResult{
		{Key: keyA, Image: tiny()},
		{Key: keyB, Err: iconcache.ErrPipelineClosed},
	})

	g.Expect(inserted).To(Equal(1))
	g.Expect(cache.Contains(keyA)).To(BeTrue())
	g.Expect(cache.Contains(keyB)).To(BeFalse())
	g.Expect(cache.PendingKeys()).To(BeEmpty(), "a failure leaves the key unqueued")

	cache.GetOrDefault(keyB)
	g.Expect(cache.IsPending(keyB)).To(BeTrue(), "a later lookup asks again")
}

func TestCache_QueuePendingFetchesSendsEachKeyOnce(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cache := iconcache.New()
	custom := entry.CustomIcon("/icons/app.png")
	cache.GetOrDefault(custom)
	cache.GetOrDefault(keyA)

	requester := &fakeRequester{}
	g.Expect(cache.QueuePendingFetches(requester)).To(Equal(2))
	g.Expect(cache.QueuePendingFetches(requester)).To(BeZero())

	g.Expect(requester.requests).To(ConsistOf(
		iconcache.FetchRequest{Key: custom, Path: "/icons/app.png"},
		iconcache.FetchRequest{Key: keyA},
	))

	cache.RemovePending(keyA)
	cache.GetOrDefault(keyA)
	g.Expect(cache.QueuePendingFetches(requester)).To(Equal(1))
}

func TestRenderImage_BGRAOrder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	folder := iconcache.DefaultFolder()
	g.Expect(folder.Width).To(Equal(iconcache.PlaceholderSize))
	g.Expect(folder.Data).To(HaveLen(iconcache.PlaceholderSize * iconcache.PlaceholderSize * 4))
	g.Expect(folder.Data[:4]).To(Equal([]byte{100, 180, 200, 255}))
	g.Expect(folder.At(3, 3)).To(Equal(iconcache.FolderColor))
	g.Expect(folder.Average()).To(Equal(iconcache.FolderColor))
	g.Expect(folder.At(-1, 0).A).To(BeZero())
}

func TestKeyFor(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	now := time.Now()
	photo := entry.New("Photo.PNG", "/pics/Photo.PNG", false, 10, now)
	notes := entry.New("notes.txt", "/pics/notes.txt", false, 10, now)
	dir := entry.New("pics", "/pics", true, 0, now)
	broken := entry.New("gone.png", "/pics/gone.png", false, 0, now).WithSymlink("/nowhere.png", true)

	g.Expect(iconcache.KeyFor(photo)).To(Equal(entry.CustomIcon("/pics/Photo.PNG")))
	g.Expect(iconcache.KeyFor(notes)).To(Equal(entry.ExtensionIcon("txt")))
	g.Expect(iconcache.KeyFor(dir)).To(Equal(entry.DirectoryIcon()))
	g.Expect(iconcache.KeyFor(broken)).To(Equal(broken.IconKey))
}
