package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Ledger operation metrics
	OperationsCompleted *prometheus.CounterVec
	OperationsRejected  *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec
	OperationAmount     *prometheus.HistogramVec
	ReferenceCollisions prometheus.Counter

	// Transfer metrics
	TransfersInitiated        prometheus.Counter
	TransfersCompleted        prometheus.Counter
	TransfersCancelled        prometheus.Counter
	TransfersFailed           *prometheus.CounterVec
	ScheduledTransfersDropped prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge
	DBRetries     prometheus.Counter

	// Outbox metrics
	EventsPublished   prometheus.Counter
	EventsUnpublished prometheus.Gauge

	// Consistency metrics
	DriftedAccounts prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		OperationsCompleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corebank_operations_completed_total",
				Help: "Total completed ledger operations by type",
			},
			[]string{"operation"},
		),
		OperationsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corebank_operations_rejected_total",
				Help: "Total rejected ledger operations by reason",
			},
			[]string{"operation", "reason"},
		),
		OperationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corebank_operation_duration_seconds",
				Help:    "Duration of ledger operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		OperationAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corebank_operation_amount",
				Help:    "Operation amounts",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation"},
		),
		ReferenceCollisions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corebank_reference_collisions_total",
			Help: "Total reference number collisions that forced a regenerate",
		}),

		TransfersInitiated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corebank_transfers_initiated_total",
			Help: "Total transfers initiated",
		}),
		TransfersCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corebank_transfers_completed_total",
			Help: "Total transfers completed",
		}),
		TransfersCancelled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corebank_transfers_cancelled_total",
			Help: "Total transfers cancelled",
		}),
		TransfersFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corebank_transfers_failed_total",
				Help: "Total transfers failed by reason",
			},
			[]string{"reason"},
		),
		ScheduledTransfersDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corebank_scheduled_transfers_dropped_total",
			Help: "Scheduled transfers marked failed after exhausting retries",
		}),

		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "corebank_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "corebank_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "corebank_db_connections",
			Help: "Current number of database connections",
		}),
		DBRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corebank_db_retries_total",
			Help: "Total transactions retried after transient conflicts",
		}),

		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "corebank_events_published_total",
			Help: "Total outbox events published",
		}),
		EventsUnpublished: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "corebank_events_unpublished",
			Help: "Outbox events awaiting publication",
		}),

		DriftedAccounts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "corebank_drifted_accounts",
			Help: "Accounts whose balance disagrees with their journal, per last check",
		}),
	}
}
