package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "classjs_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "classjs_generation_seconds",
		Help:    "Time spent generating one compilation unit.",
		Buckets: prometheus.DefBuckets,
	})

	UnitsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classjs_units_generated_total",
		Help: "Total number of compilation units translated successfully.",
	})

	UnitsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classjs_units_failed_total",
		Help: "Total number of compilation units that failed, by error code.",
	}, []string{"code"})

	UnitsSkippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classjs_units_skipped_total",
		Help: "Total number of unchanged units served from the build cache.",
	})

	CatalogClasses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "classjs_catalog_classes",
		Help: "Number of class descriptors in the current catalog snapshot.",
	})

	BuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "classjs_build_seconds",
		Help:    "Wall time of a full build.",
		Buckets: prometheus.DefBuckets,
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classjs_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	RebuildsThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classjs_rebuilds_throttled_total",
		Help: "Total number of watch-mode rebuilds delayed by the rate limiter.",
	})

	CacheRetryTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "classjs_cache_retry_total",
		Help: "Total number of build cache operations retried on a locked database.",
	})

	FramesReconstructedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "classjs_frames_reconstructed_total",
		Help: "Total number of stack frames reconstructed, by outcome.",
	}, []string{"outcome"})
)
