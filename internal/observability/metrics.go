// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Feed metrics
	MessagesReceived  prometheus.Counter
	MessagesProcessed prometheus.Counter
	MessagesFiltered  prometheus.Counter

	// Detection metrics
	DetectionsTotal *prometheus.CounterVec

	// Pipeline metrics
	LookupFailures   prometheus.Counter
	FetchFailures    prometheus.Counter
	SafetyRejections *prometheus.CounterVec
	OrdersForwarded  *prometheus.CounterVec
	OrderFailures    prometheus.Counter

	// Latency metrics
	StageLatency prometheus.ObserverVec

	// Health metrics
	LastSignalTimestamp prometheus.Gauge
	FeedReconnects      prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "chainwatch"
	}

	return &Metrics{
		// Feed metrics
		MessagesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "messages_received_total",
			Help:      "Total number of channel messages received from the gateway",
		}),
		MessagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "messages_processed_total",
			Help:      "Total number of messages that reached the detection stage",
		}),
		MessagesFiltered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "messages_filtered_total",
			Help:      "Total number of messages dropped by sender filters",
		}),

		// Detection metrics
		DetectionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "detect",
			Name:      "detections_total",
			Help:      "Total number of contract addresses detected by chain",
		}, []string{"chain"}),

		// Pipeline metrics
		LookupFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "lookup_failures_total",
			Help:      "Total number of pair-existence lookups that failed",
		}),
		FetchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "fetch_failures_total",
			Help:      "Total number of market snapshot fetches that failed",
		}),
		SafetyRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "safety_rejections_total",
			Help:      "Total number of tokens rejected by safety rule",
		}, []string{"rule"}),
		OrdersForwarded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "orders_forwarded_total",
			Help:      "Total number of buy orders forwarded by chain",
		}, []string{"chain"}),
		OrderFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "order_failures_total",
			Help:      "Total number of forwarded orders the trading API rejected",
		}),

		// Latency metrics
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),

		// Health metrics
		LastSignalTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_signal_timestamp",
			Help:      "Unix timestamp of the last recorded signal",
		}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "feed_reconnects_total",
			Help:      "Total number of gateway reconnects",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordMessageReceived increments the messages received counter.
func RecordMessageReceived() {
	DefaultMetrics.MessagesReceived.Inc()
}

// RecordMessageProcessed increments the messages processed counter.
func RecordMessageProcessed() {
	DefaultMetrics.MessagesProcessed.Inc()
}

// RecordMessageFiltered increments the filtered messages counter.
func RecordMessageFiltered() {
	DefaultMetrics.MessagesFiltered.Inc()
}

// RecordDetection increments the detection counter for a chain.
func RecordDetection(chain string) {
	DefaultMetrics.DetectionsTotal.WithLabelValues(chain).Inc()
}

// RecordLookupFailure increments the lookup failure counter.
func RecordLookupFailure() {
	DefaultMetrics.LookupFailures.Inc()
}

// RecordFetchFailure increments the snapshot fetch failure counter.
func RecordFetchFailure() {
	DefaultMetrics.FetchFailures.Inc()
}

// RecordSafetyRejection increments the rejection counter for a rule.
func RecordSafetyRejection(rule string) {
	DefaultMetrics.SafetyRejections.WithLabelValues(rule).Inc()
}

// RecordOrderForwarded increments the forwarded order counter for a chain.
func RecordOrderForwarded(chain string) {
	DefaultMetrics.OrdersForwarded.WithLabelValues(chain).Inc()
}

// RecordOrderFailure increments the order failure counter.
func RecordOrderFailure() {
	DefaultMetrics.OrderFailures.Inc()
}

// RecordStageLatency records the duration of a pipeline stage.
func RecordStageLatency(stage string, seconds float64) {
	DefaultMetrics.StageLatency.WithLabelValues(stage).Observe(seconds)
}

// RecordSignalTimestamp updates the last signal gauge.
func RecordSignalTimestamp(unixMs int64) {
	DefaultMetrics.LastSignalTimestamp.Set(float64(unixMs) / 1000)
}

// RecordFeedReconnect increments the gateway reconnect counter.
func RecordFeedReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}
