package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every custom metric exported by the API and the worker.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Domain Metrics
	UsersRegisteredTotal prometheus.Counter
	LoginsTotal          *prometheus.CounterVec
	ItemMutationsTotal   *prometheus.CounterVec
	InteractionsTotal    *prometheus.CounterVec

	// Store Metrics
	StoreOperationDuration *prometheus.HistogramVec

	// Cache (Redis) Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Queue (RabbitMQ) Metrics
	QueueMessagesPublished *prometheus.CounterVec
	QueueMessagesConsumed  *prometheus.CounterVec
	ActivityRecordedTotal  *prometheus.CounterVec
}

// NewMetrics registers all metrics on reg. Pass prometheus.DefaultRegisterer
// in binaries and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		UsersRegisteredTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "users_registered_total",
				Help: "Total number of registered users",
			},
		),

		LoginsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"}, // success, invalid_credentials, error
		),

		ItemMutationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "item_mutations_total",
				Help: "Total number of item create/update/delete operations",
			},
			[]string{"operation"},
		),

		InteractionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "item_interactions_total",
				Help: "Total number of comments and ratings appended to items",
			},
			[]string{"kind"}, // comment, rating
		),

		StoreOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "store_operation_duration_seconds",
				Help:    "Duration of store operations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"operation"},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"key_type"},
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"key_type"},
		),

		QueueMessagesPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_published_total",
				Help: "Total number of messages published to the queue",
			},
			[]string{"queue_name"},
		),

		QueueMessagesConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_messages_consumed_total",
				Help: "Total number of messages consumed from the queue",
			},
			[]string{"queue_name"},
		),

		ActivityRecordedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "activity_events_recorded_total",
				Help: "Total number of activity events handled by the worker",
			},
			[]string{"event_type", "status"}, // status: recorded, duplicate, invalid, retried, dropped
		),
	}
}

func (m *Metrics) ObserveCache(keyType string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(keyType).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(keyType).Inc()
}

func (m *Metrics) ObserveStore(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.StoreOperationDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) IncUserRegistered() {
	if m == nil {
		return
	}
	m.UsersRegisteredTotal.Inc()
}

func (m *Metrics) IncLogin(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncItemMutation(operation string) {
	if m == nil {
		return
	}
	m.ItemMutationsTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) IncInteraction(kind string) {
	if m == nil {
		return
	}
	m.InteractionsTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncPublished(queue string) {
	if m == nil {
		return
	}
	m.QueueMessagesPublished.WithLabelValues(queue).Inc()
}

func (m *Metrics) IncConsumed(queue string) {
	if m == nil {
		return
	}
	m.QueueMessagesConsumed.WithLabelValues(queue).Inc()
}

func (m *Metrics) IncActivity(eventType, status string) {
	if m == nil {
		return
	}
	m.ActivityRecordedTotal.WithLabelValues(eventType, status).Inc()
}
