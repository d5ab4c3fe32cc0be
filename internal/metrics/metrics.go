// Package metrics provides Prometheus metrics for directory navigation and the icon cache.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dirnav"

// Recorder owns a registry and the collectors registered on it.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	// Navigation metrics
	navigationsTotal  prometheus.Counter
	cacheLookupsTotal *prometheus.CounterVec
	staleDiscards     *prometheus.CounterVec
	batchesApplied    prometheus.Counter
	loadDuration      *prometheus.HistogramVec
	directoryCache    prometheus.Gauge

	// Traversal metrics
	entriesTraversed prometheus.Counter
	entryErrors      prometheus.Counter

	// Icon metrics
	iconLookupsTotal *prometheus.CounterVec
	iconFetchesTotal *prometheus.CounterVec
	iconCacheSize    prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		navigationsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Total number of directory navigations started",
		}),
		cacheLookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_cache_lookups_total",
			Help:      "Directory cache lookups by result (hit, stale, miss)",
		}, []string{"result"}),
		staleDiscards: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_discarded_total",
			Help:      "Results discarded because their request was superseded",
		}, []string{"operation"}),
		batchesApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_applied_total",
			Help:      "Entry batches applied to the current listing",
		}),
		loadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "load_duration_seconds",
			Help:      "Directory load duration in seconds by outcome",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		directoryCache: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "directory_cache_entries",
			Help:      "Number of directories held in the LRU cache",
		}),
		entriesTraversed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_traversed_total",
			Help:      "Entries emitted by the traversal engine",
		}),
		entryErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entry_errors_total",
			Help:      "Entries skipped because their metadata could not be read",
		}),
		iconLookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "icon_cache_lookups_total",
			Help:      "Icon cache lookups by result (hit, miss)",
		}, []string{"result"}),
		iconFetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "icon_fetches_total",
			Help:      "Completed icon fetches by status",
		}, []string{"status"}),
		iconCacheSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "icon_cache_entries",
			Help:      "Number of decoded icons held in the LRU cache",
		}),
	}
}

// Registry returns the registry backing this recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler returns the Prometheus metrics HTTP handler.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordNavigation records a navigation and the result of its cache lookup.
func (r *Recorder) RecordNavigation(cacheResult string) {
	if r == nil {
		return
	}
	r.navigationsTotal.Inc()
	r.cacheLookupsTotal.WithLabelValues(cacheResult).Inc()
}

// RecordStaleDiscard records a result rejected by the generation check.
func (r *Recorder) RecordStaleDiscard(operation string) {
	if r == nil {
		return
	}
	r.staleDiscards.WithLabelValues(operation).Inc()
}

// RecordBatch records an applied batch.
func (r *Recorder) RecordBatch() {
	if r == nil {
		return
	}
	r.batchesApplied.Inc()
}

// RecordLoad records the duration of a finished load.
func (r *Recorder) RecordLoad(outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.loadDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// SetDirectoryCacheSize sets the directory cache gauge.
func (r *Recorder) SetDirectoryCacheSize(n int) {
	if r == nil {
		return
	}
	r.directoryCache.Set(float64(n))
}

// RecordEntries records entries emitted by a traversal.
func (r *Recorder) RecordEntries(n int) {
	if r == nil {
		return
	}
	r.entriesTraversed.Add(float64(n))
}

// RecordEntryError records a skipped entry.
func (r *Recorder) RecordEntryError() {
	if r == nil {
		return
	}
	r.entryErrors.Inc()
}

// RecordIconLookup records an icon cache hit or miss.
func (r *Recorder) RecordIconLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.iconLookupsTotal.WithLabelValues(result).Inc()
}

// RecordIconFetch records a completed icon fetch.
func (r *Recorder) RecordIconFetch(success bool) {
	if r == nil {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.iconFetchesTotal.WithLabelValues(status).Inc()
}

// SetIconCacheSize sets the icon cache gauge.
func (r *Recorder) SetIconCacheSize(n int) {
	if r == nil {
		return
	}
	r.iconCacheSize.Set(float64(n))
}
