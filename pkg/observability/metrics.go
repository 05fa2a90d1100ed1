package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	RoadmapsCreated   prometheus.Counter
	RoadmapsDeleted   prometheus.Counter
	BatchesApplied    prometheus.Counter
	BatchItemsSkipped *prometheus.CounterVec
	FavoriteToggles   prometheus.Counter
	SeenToggles       prometheus.Counter

	// Repository metrics
	DBOperations *prometheus.CounterVec
	DBDuration   *prometheus.HistogramVec
}

// NewCollector creates a metrics collector with its own registry, so
// independent instances never clash on registration.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	roadmapsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roadmaps_created_total",
		Help:      "Total number of roadmaps created",
	})
	roadmapsDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "roadmaps_deleted_total",
		Help:      "Total number of roadmaps deleted",
	})
	batchesApplied := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "mutation_batches_applied_total",
		Help:      "Total number of roadmap mutation batches applied",
	})
	batchItemsSkipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutation_items_skipped_total",
			Help:      "Batch items skipped, by reason",
		},
		[]string{"reason"},
	)
	favoriteToggles := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "favorite_toggles_total",
		Help:      "Total number of favorite toggles",
	})
	seenToggles := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seen_toggles_total",
		Help:      "Total number of seen-content toggles",
	})

	dbOperations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "db_operations_total",
			Help:      "Total number of database operations",
		},
		[]string{"operation"},
	)
	dbDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Database operation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	registry.MustRegister(
		httpRequests, httpDuration,
		roadmapsCreated, roadmapsDeleted,
		batchesApplied, batchItemsSkipped,
		favoriteToggles, seenToggles,
		dbOperations, dbDuration,
	)

	return &Collector{
		registry:          registry,
		HTTPRequests:      httpRequests,
		HTTPDuration:      httpDuration,
		RoadmapsCreated:   roadmapsCreated,
		RoadmapsDeleted:   roadmapsDeleted,
		BatchesApplied:    batchesApplied,
		BatchItemsSkipped: batchItemsSkipped,
		FavoriteToggles:   favoriteToggles,
		SeenToggles:       seenToggles,
		DBOperations:      dbOperations,
		DBDuration:        dbDuration,
	}
}

// Registry exposes the collector's registry for the /metrics handler
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
