package iconcache

import (
	"errors"
	"fmt"
	"sync"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/joe/dirnav/internal/entry"
	"github.com/joe/dirnav/internal/logging"
	"github.com/joe/dirnav/internal/metrics"
	"github.com/joe/dirnav/pkg/filesystem"
)

// ErrPipelineClosed is returned in results for requests made after Close.
var ErrPipelineClosed = errors.New("icon pipeline closed")

// FetchRequest asks for the icon of Key. An empty Path synthesizes the
// placeholder for the key's kind.
type FetchRequest struct {
	Key  entry.IconKey
	Path string
}

// FetchResult is the outcome of one FetchRequest.
type FetchResult struct {
	Key   entry.IconKey
	Image RenderImage
	Err   error
}

// Success reports whether the fetch produced an image.
func (r FetchResult) Success() bool {
	return r.Err == nil
}

// FetchPipeline decodes icons on a single background worker. Requests and
// results are queued without bound, so neither side ever blocks the other.
type FetchPipeline struct {
	fs      filesystem.FileSystem
	logger  *zap.Logger
	metrics *metrics.Recorder
	maxSize int

	mu       sync.Mutex
	requests []FetchRequest
	results  []FetchResult
	closed   bool

	wake   chan struct{}
	ready  chan struct{}
	done   chan struct{}
	worker sync.WaitGroup
}

// PipelineOption configures a FetchPipeline.
type PipelineOption func(*FetchPipeline)

// WithFileSystem sets the filesystem images are read from.
func WithFileSystem(fs filesystem.FileSystem) PipelineOption {
	return func(p *FetchPipeline) { p.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *FetchPipeline) { p.logger = logging.OrNop(logger) }
}

// WithPipelineMetrics sets the metrics recorder.
func WithPipelineMetrics(recorder *metrics.Recorder) PipelineOption {
	return func(p *FetchPipeline) { p.metrics = recorder }
}

// WithMaxSize sets the bound decoded images are fit into.
func WithMaxSize(size int) PipelineOption {
	return func(p *FetchPipeline) { p.maxSize = max(size, 1) }
}

// NewFetchPipeline starts the decode worker.
func NewFetchPipeline(opts ...PipelineOption) *FetchPipeline {
	p := &FetchPipeline{
		fs:      filesystem.NewRealFileSystem(),
		logger:  zap.NewNop(),
		maxSize: MaxIconSize,
		wake:    make(chan struct{}, 1),
		ready:   make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.worker.Go(p.run)

	return p
}

// Request queues a fetch. It never blocks.
func (p *FetchPipeline) Request(key entry.IconKey, path string) {
	p.mu.Lock()
	if p.closed {
		p.results = append(p.results, FetchResult{Key: key, Err: ErrPipelineClosed})
		p.mu.Unlock()
		notify(p.ready)

		return
	}

	p.requests = append(p.requests, FetchRequest{Key: key, Path: path})
	p.mu.Unlock()

	notify(p.wake)
}

// PollResults returns every result produced since the last call without blocking.
func (p *FetchPipeline) PollResults() []FetchResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	results := p.results
	p.results = nil

	return results
}

// Results is signalled when new results may be available to PollResults.
func (p *FetchPipeline) Results() <-chan struct{} {
	return p.ready
}

// Done is closed once Close has been called.
func (p *FetchPipeline) Done() <-chan struct{} {
	return p.done
}

// Close stops the worker after the request being decoded. Queued requests are dropped.
func (p *FetchPipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	p.closed = true
	p.requests = nil
	p.mu.Unlock()

	close(p.done)
	p.worker.Wait()
}

func (p *FetchPipeline) run() {
	for {
		req, ok := p.next()
		if !ok {
			select {
			case <-p.wake:
				continue
			case <-p.done:
				return
			}
		}

		result := p.process(req)
		p.metrics.RecordIconFetch(result.Success())

		p.mu.Lock()
		p.results = append(p.results, result)
		p.mu.Unlock()

		notify(p.ready)
	}
}

func (p *FetchPipeline) next() (FetchRequest, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || len(p.requests) == 0 {
		return FetchRequest{}, false
	}

	req := p.requests[0]
	p.requests = p.requests[1:]

	return req, true
}

func (p *FetchPipeline) process(req FetchRequest) FetchResult {
	if req.Path == "" {
		return FetchResult{Key: req.Key, Image: placeholderFor(req.Key)}
	}

	img, err := p.decode(req.Path)
	if err != nil {
		p.logger.Debug("icon decode failed", zap.String("path", req.Path), zap.Error(err))
		return FetchResult{Key: req.Key, Err: err}
	}

	return FetchResult{Key: req.Key, Image: img}
}

func (p *FetchPipeline) decode(path string) (RenderImage, error) {
	file, err := p.fs.Open(path)
	if err != nil {
		return RenderImage{}, err
	}
	defer func() { _ = file.Close() }()

	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return RenderImage{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.maxSize || bounds.Dy() > p.maxSize {
		img = imaging.Fit(img, p.maxSize, p.maxSize, imaging.Lanczos)
	}

	return FromImage(img), nil
}

func placeholderFor(key entry.IconKey) RenderImage {
	if key.Kind == entry.IconDirectory {
		return DefaultFolder()
	}

	return DefaultPlaceholder()
}

// notify signals ch without blocking; one pending signal is enough.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
