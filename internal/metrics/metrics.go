// Package metrics provides Prometheus metrics for the collection price tracker.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccpt_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ccpt_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Collection Import Metrics
	CollectionImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccpt_collection_imports_total",
			Help: "Collection imports by result",
		},
		[]string{"result"}, // "success", "invalid", "failed"
	)

	CollectionCardsImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ccpt_collection_cards_imported_total",
			Help: "Total number of card lines accepted by imports",
		},
	)

	// Price Import Metrics
	PriceGuidesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ccpt_price_guides_ingested_total",
			Help: "Total number of catalog price guides stored",
		},
	)

	PriceImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ccpt_price_import_duration_seconds",
			Help:    "Time taken to download and store the price guide",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// Valuation Metrics
	ValuationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccpt_valuation_runs_total",
			Help: "Valuation scheduler runs by result",
		},
		[]string{"result"}, // "success", "failed"
	)

	ValuationSnapshotsWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ccpt_valuation_snapshots_written_total",
			Help: "Total number of valuation snapshots stored",
		},
	)

	ValuationCardsExcluded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccpt_valuation_cards_excluded_total",
			Help: "Owned cards left out of a valuation",
		},
		[]string{"reason"}, // "no_product_id", "no_price"
	)

	ValuationRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ccpt_valuation_run_duration_seconds",
			Help:    "Time taken by one valuation scheduler run",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	ValuationPendingKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ccpt_valuation_pending_keys",
			Help: "Number of (date, user) pairs found missing at the start of the last run",
		},
	)

	// Scryfall API Metrics
	ScryfallRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccpt_scryfall_requests_total",
			Help: "Scryfall API requests by result",
		},
		[]string{"result"}, // "success", "not_found", "error"
	)

	ScryfallCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ccpt_scryfall_cache_hits_total",
			Help: "Scryfall product id cache hit count",
		},
	)

	ScryfallCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ccpt_scryfall_cache_misses_total",
			Help: "Scryfall product id cache miss count",
		},
	)

	ProductIDsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ccpt_product_ids_resolved_total",
			Help: "Total number of cards linked to a catalog product",
		},
	)

	// EDHREC Metrics
	EDHRECRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccpt_edhrec_requests_total",
			Help: "EDHREC requests by kind",
		},
		[]string{"kind"}, // "build_id", "card"
	)

	// Event Metrics
	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ccpt_events_published_total",
			Help: "Events published by subject and result",
		},
		[]string{"subject", "result"},
	)
)
