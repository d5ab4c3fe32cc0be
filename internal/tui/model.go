// Package tui implements the interactive directory browser.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/joe/dirnav/internal/config"
	"github.com/joe/dirnav/internal/iconcache"
	"github.com/joe/dirnav/internal/logging"
	"github.com/joe/dirnav/internal/metrics"
	"github.com/joe/dirnav/internal/navigator"
	"github.com/joe/dirnav/internal/traversal"
	"github.com/joe/dirnav/internal/tui/shared"
	"github.com/joe/dirnav/pkg/filesystem"
)

// Model is the browser state. It owns the Navigator and the icon cache; both
// are only touched from Update and View.
type Model struct {
	cfg       *config.Config
	traversal traversal.Config

	nav     *navigator.Navigator
	loader  *navigator.Loader
	bridge  *shared.EventBridge
	icons   *iconcache.Cache
	fetcher *iconcache.FetchPipeline
	logger  *zap.Logger

	ctx     context.Context //nolint:containedctx // Loads outlive a single Update call
	cancel  context.CancelFunc
	spinner spinner.Model

	cursor    int
	offset    int
	focusPath string
	width     int
	height    int

	entryErrors []traversal.EntryError
	failure     error
	quitting    bool
}

// Option configures a Model.
type Option func(*settings)

type settings struct {
	fs      filesystem.FileSystem
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// WithFileSystem sets the filesystem listings and icons are read from.
func WithFileSystem(fs filesystem.FileSystem) Option {
	return func(s *settings) { s.fs = fs }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logging.OrNop(logger) }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(recorder *metrics.Recorder) Option {
	return func(s *settings) { s.metrics = recorder }
}

// NewModel creates a browser positioned at cfg.Path. Nothing is loaded until
// Init runs.
func NewModel(cfg *config.Config, opts ...Option) *Model {
	set := settings{fs: filesystem.NewRealFileSystem(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&set)
	}

	bridge := shared.NewEventBridge()

	engine := traversal.NewEngine(set.fs,
		traversal.WithLogger(set.logger),
		traversal.WithMetrics(set.metrics),
		traversal.WithErrorHandler(bridge.EmitEntryError))

	nav := navigator.New(cfg.Path,
		navigator.WithCacheCapacity(cfg.CacheCapacity),
		navigator.WithFileSystem(set.fs),
		navigator.WithLogger(set.logger),
		navigator.WithMetrics(set.metrics))

	loader := navigator.NewLoader(engine, bridge,
		navigator.WithBatchConfig(cfg.BatchConfig()),
		navigator.WithLoaderLogger(set.logger))

	fetcher := iconcache.NewFetchPipeline(
		iconcache.WithFileSystem(set.fs),
		iconcache.WithLogger(set.logger),
		iconcache.WithPipelineMetrics(set.metrics))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(shared.AccentColor())

	ctx, cancel := context.WithCancel(context.Background())

	return &Model{
		cfg:       cfg,
		traversal: cfg.TraversalConfig(),
		nav:       nav,
		loader:    loader,
		bridge:    bridge,
		icons:     iconcache.NewWithCapacity(cfg.IconCacheCapacity, iconcache.WithMetrics(set.metrics)),
		fetcher:   fetcher,
		logger:    set.logger,
		ctx:       ctx,
		cancel:    cancel,
		spinner:   s,
	}
}

// Init implements tea.Model. It opens the configured directory and starts
// listening for load events and decoded icons.
func (m *Model) Init() tea.Cmd {
	path := m.nav.CurrentPath()

	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg { return shared.NavigateMsg{Path: path} },
		m.bridge.ListenCmd(),
		m.listenIcons(),
	)
}

// Close stops every running load and the icon decoder. It is safe to call twice.
func (m *Model) Close() {
	// Release loads blocked on a full bridge before waiting for them
	m.bridge.Close()
	m.cancel()
	m.loader.Close()
	m.fetcher.Close()
}

// Navigator returns the navigator backing the view.
func (m *Model) Navigator() *navigator.Navigator {
	return m.nav
}

// Cursor returns the index of the selected entry.
func (m *Model) Cursor() int {
	return m.cursor
}

// TraversalConfig returns the settings used for the next load.
func (m *Model) TraversalConfig() traversal.Config {
	return m.traversal
}

// listenIcons waits for the decoder to signal results and delivers them as a message.
func (m *Model) listenIcons() tea.Cmd {
	fetcher := m.fetcher

	return func() tea.Msg {
		select {
		case <-fetcher.Results():
			return shared.IconResultsMsg{Results: fetcher.PollResults()}
		case <-fetcher.Done():
			return nil
		}
	}
}
