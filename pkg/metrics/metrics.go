// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// MessagesTotal tracks handled chat messages by final intent and language.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total chat messages handled",
		},
		[]string{"intent", "language"},
	)

	// ClassifierConfidence tracks the classifier's confidence distribution.
	ClassifierConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classifier_confidence",
			Help:    "Intent classifier confidence scores",
			Buckets: []float64{.1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
		},
	)

	// LowConfidenceTotal tracks replies forced to the low_confidence label.
	LowConfidenceTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classifier_low_confidence_total",
			Help: "Messages gated below the confidence threshold",
		},
	)

	// PersistenceFailuresTotal tracks swallowed turn-persistence failures.
	PersistenceFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "turn_persistence_failures_total",
			Help: "Turn writes that failed and were dropped",
		},
	)

	// AugmenterRequestsTotal tracks entity augmenter calls.
	AugmenterRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_augmenter_requests_total",
			Help: "Entity augmenter calls by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	// TurnEventsPublished tracks turn events mirrored to the event stream.
	TurnEventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "turn_events_published_total",
			Help: "Turn events published to the stream",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordClassification records metrics for one classified message.
func RecordClassification(intent, language string, confidence float64, gated bool) {
	MessagesTotal.WithLabelValues(intent, language).Inc()
	ClassifierConfidence.Observe(confidence)
	if gated {
		LowConfidenceTotal.Inc()
	}
}

// RecordPersistenceFailure records a swallowed turn-persistence failure.
func RecordPersistenceFailure() {
	PersistenceFailuresTotal.Inc()
}

// RecordAugmenter records an augmenter call outcome.
func RecordAugmenter(provider, status string) {
	AugmenterRequestsTotal.WithLabelValues(provider, status).Inc()
}
