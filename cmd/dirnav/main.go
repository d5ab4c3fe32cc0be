// Package main is the entry point for the dirnav application.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/dirnav/internal/config"
	"github.com/joe/dirnav/internal/logging"
	"github.com/joe/dirnav/internal/metrics"
	"github.com/joe/dirnav/internal/navigator"
	"github.com/joe/dirnav/internal/traversal"
	"github.com/joe/dirnav/internal/tui"
	"github.com/joe/dirnav/internal/tui/widgets"
	pkgerrors "github.com/joe/dirnav/pkg/errors"
	"github.com/joe/dirnav/pkg/filesystem"
)

const (
	maxPlainNameWidth = 60
	readHeaderTimeout = 5 * time.Second
)

func main() {
	// Parse configuration
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, _, err := logging.New(cfg.LoggingConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	recorder := metrics.New()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, recorder, logger)
	}

	if cfg.Plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		err = runPlain(cfg, logger, recorder)
	} else {
		err = runInteractive(cfg, logger, recorder)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runInteractive(cfg *config.Config, logger *zap.Logger, recorder *metrics.Recorder) error {
	model := tui.NewModel(cfg, tui.WithLogger(logger), tui.WithMetrics(recorder))
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())

	_, err := p.Run()

	return err
}

// runPlain lists cfg.Path once and prints it.
func runPlain(cfg *config.Config, logger *zap.Logger, recorder *metrics.Recorder) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	enricher := pkgerrors.NewEnricher()

	engine := traversal.NewEngine(filesystem.NewRealFileSystem(),
		traversal.WithLogger(logger),
		traversal.WithMetrics(recorder),
		traversal.WithErrorHandler(func(entryErr traversal.EntryError) {
			fmt.Fprintf(os.Stderr, "skipped %s: %v\n", entryErr.Path, entryErr.Err)
		}))

	nav := navigator.New(cfg.Path,
		navigator.WithCacheCapacity(cfg.CacheCapacity),
		navigator.WithLogger(logger),
		navigator.WithMetrics(recorder))

	_, err := navigator.LoadDirectorySync(ctx, nav, engine, cfg.Path, cfg.TraversalConfig(), cfg.BatchConfig())
	if err != nil {
		message := pkgerrors.Headline(enricher, err, cfg.Path)
		if suggestions := pkgerrors.FormatSuggestions(enricher.Enrich(err, cfg.Path)); suggestions != "" {
			message += "\n" + suggestions
		}

		return errors.New(message)
	}

	entries := nav.Entries()

	nameWidth := 0
	for _, fe := range entries {
		nameWidth = max(nameWidth, runewidth.StringWidth(widgets.DisplayName(fe)))
	}

	fmt.Print(widgets.RenderPlainListing(entries, min(nameWidth, maxPlainNameWidth)))

	return nil
}

func serveMetrics(addr string, recorder *metrics.Recorder, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.Info("serving metrics", zap.String("addr", addr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}
