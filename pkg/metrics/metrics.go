package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Replica metrics
	Generation = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_generation",
			Help: "Current local transaction log generation",
		},
	)

	DocumentsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_documents_total",
			Help: "Total number of live (non-tombstoned) documents",
		},
	)

	TombstonesTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_tombstones_total",
			Help: "Total number of deleted (tombstoned) documents",
		},
	)

	ConflictedDocumentsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "burrow_conflicted_documents_total",
			Help: "Total number of documents with one or more conflict entries",
		},
	)

	// Put/resolve outcome metrics
	PutOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_put_outcomes_total",
			Help: "Total number of put operations by outcome",
		},
		[]string{"outcome"},
	)

	PutDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "burrow_put_duration_seconds",
			Help:    "Time taken to apply a put in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Sync metrics
	SyncExchangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_sync_exchanges_total",
			Help: "Total number of completed sync sessions by outcome",
		},
		[]string{"outcome"},
	)

	SyncDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "burrow_sync_duration_seconds",
			Help:    "Time taken for a full bidirectional sync in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SyncDocsSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_sync_docs_sent_total",
			Help: "Total number of documents sent to peers during sync",
		},
	)

	SyncDocsReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "burrow_sync_docs_received_total",
			Help: "Total number of documents received from peers during sync",
		},
	)

	// HTTP sync transport metrics
	HTTPSyncRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "burrow_http_sync_requests_total",
			Help: "Total number of HTTP sync exchange requests by status",
		},
		[]string{"status"},
	)

	HTTPSyncRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "burrow_http_sync_request_duration_seconds",
			Help:    "HTTP sync exchange request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(Generation)
	prometheus.MustRegister(DocumentsTotal)
	prometheus.MustRegister(TombstonesTotal)
	prometheus.MustRegister(ConflictedDocumentsTotal)
	prometheus.MustRegister(PutOutcomesTotal)
	prometheus.MustRegister(PutDuration)
	prometheus.MustRegister(SyncExchangesTotal)
	prometheus.MustRegister(SyncDuration)
	prometheus.MustRegister(SyncDocsSentTotal)
	prometheus.MustRegister(SyncDocsReceivedTotal)
	prometheus.MustRegister(HTTPSyncRequestsTotal)
	prometheus.MustRegister(HTTPSyncRequestDuration)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
