// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package metrics provides Prometheus instrumentation for the ingestion
// pipeline: event counters through each stage, API latency, rate limit
// rejections, queue depth, and store pool usage. Collectors register on
// the default registry and are served at /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Failure reason labels for EventsFailed.
const (
	// ReasonIngestion marks a batch aborted during the ingest flow.
	ReasonIngestion = "ingestion_error"

	// ReasonDecode marks a queued message whose payload would not decode.
	ReasonDecode = "decode_error"

	// ReasonProcessing marks a transient store failure during consumption.
	ReasonProcessing = "processing_error"

	// ReasonMaxDeliveries marks a message the broker will drop after
	// exhausting its delivery attempts.
	ReasonMaxDeliveries = "max_deliveries"
)

var (
	// Pipeline stage counters

	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_received_total",
			Help: "Total number of events received at the API",
		},
		[]string{"event_type"},
	)

	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_ingested_total",
			Help: "Total number of events written to the store",
		},
		[]string{"event_type"},
	)

	EventsDuplicate = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_duplicate_total",
			Help: "Total number of events skipped as duplicates",
		},
	)

	EventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_failed_total",
			Help: "Total number of events that failed a pipeline stage",
		},
		[]string{"reason"}, // ingestion_error, decode_error, processing_error, max_deliveries
	)

	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events published to the queue",
		},
	)

	IngestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingestion_duration_seconds",
			Help:    "Duration of batch ingestion requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// API endpoint metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_requests_in_flight",
			Help: "API requests currently being served",
		},
	)

	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_exceeded_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"client_ip"},
	)

	// Queue and store gauges

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Messages pending on the durable consumer",
		},
	)

	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Store connections currently acquired from the pool",
		},
	)

	// Circuit breaker metrics

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordEventReceived counts an event arriving at the API.
func RecordEventReceived(eventType string) {
	EventsReceived.WithLabelValues(eventType).Inc()
}

// RecordEventIngested counts an event written to the store.
func RecordEventIngested(eventType string) {
	EventsIngested.WithLabelValues(eventType).Inc()
}

// RecordEventsDuplicate counts events skipped as already seen.
func RecordEventsDuplicate(n int) {
	if n > 0 {
		EventsDuplicate.Add(float64(n))
	}
}

// RecordEventFailed counts an event failing a pipeline stage.
func RecordEventFailed(reason string) {
	EventsFailed.WithLabelValues(reason).Inc()
}

// RecordEventsPublished counts events handed to the queue.
func RecordEventsPublished(n int) {
	if n > 0 {
		EventsPublished.Add(float64(n))
	}
}

// ObserveIngestion records the duration of one ingest request.
func ObserveIngestion(duration time.Duration) {
	IngestionDuration.Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIRequestsInFlight.Inc()
	} else {
		APIRequestsInFlight.Dec()
	}
}

// RecordRateLimitExceeded counts a rate limit rejection for a client.
func RecordRateLimitExceeded(clientIP string) {
	RateLimitExceeded.WithLabelValues(clientIP).Inc()
}

// UpdateQueueDepth updates the pending-messages gauge.
func UpdateQueueDepth(depth int64) {
	QueueDepth.Set(float64(depth))
}

// UpdateActiveConnections updates the acquired-connections gauge.
func UpdateActiveConnections(n int32) {
	ActiveConnections.Set(float64(n))
}

// SetCircuitBreakerState records a breaker state change.
// State values: 0 closed, 1 half-open, 2 open.
func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}
