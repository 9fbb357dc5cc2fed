// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// counterValue reads the current value of a counter.
func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

// gaugeValue reads the current value of a gauge.
func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestRecordEventCounters(t *testing.T) {
	received := EventsReceived.WithLabelValues("login")
	ingested := EventsIngested.WithLabelValues("login")

	beforeReceived := counterValue(t, received)
	beforeIngested := counterValue(t, ingested)

	RecordEventReceived("login")
	RecordEventReceived("login")
	RecordEventIngested("login")

	if got := counterValue(t, received) - beforeReceived; got != 2 {
		t.Errorf("events_received_total delta = %v, want 2", got)
	}
	if got := counterValue(t, ingested) - beforeIngested; got != 1 {
		t.Errorf("events_ingested_total delta = %v, want 1", got)
	}
}

func TestRecordEventsDuplicate(t *testing.T) {
	before := counterValue(t, EventsDuplicate)

	RecordEventsDuplicate(3)
	RecordEventsDuplicate(0) // no-op

	if got := counterValue(t, EventsDuplicate) - before; got != 3 {
		t.Errorf("events_duplicate_total delta = %v, want 3", got)
	}
}

func TestRecordEventFailedReasons(t *testing.T) {
	decode := EventsFailed.WithLabelValues(ReasonDecode)
	processing := EventsFailed.WithLabelValues(ReasonProcessing)

	beforeDecode := counterValue(t, decode)
	beforeProcessing := counterValue(t, processing)

	RecordEventFailed(ReasonDecode)
	RecordEventFailed(ReasonProcessing)
	RecordEventFailed(ReasonProcessing)

	if got := counterValue(t, decode) - beforeDecode; got != 1 {
		t.Errorf("decode_error delta = %v, want 1", got)
	}
	if got := counterValue(t, processing) - beforeProcessing; got != 2 {
		t.Errorf("processing_error delta = %v, want 2", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("POST", "/events", "202")
	before := counterValue(t, counter)

	RecordAPIRequest("POST", "/events", "202", 25*time.Millisecond)

	if got := counterValue(t, counter) - before; got != 1 {
		t.Errorf("api_requests_total delta = %v, want 1", got)
	}
}

func TestGauges(t *testing.T) {
	UpdateQueueDepth(42)
	if got := gaugeValue(t, QueueDepth); got != 42 {
		t.Errorf("queue_depth = %v, want 42", got)
	}

	UpdateActiveConnections(7)
	if got := gaugeValue(t, ActiveConnections); got != 7 {
		t.Errorf("active_connections = %v, want 7", got)
	}

	SetCircuitBreakerState("nats-publisher", 2)
	if got := gaugeValue(t, CircuitBreakerState.WithLabelValues("nats-publisher")); got != 2 {
		t.Errorf("circuit_breaker_state = %v, want 2", got)
	}
}

func TestRecordRateLimitExceeded(t *testing.T) {
	counter := RateLimitExceeded.WithLabelValues("10.0.0.1")
	before := counterValue(t, counter)

	RecordRateLimitExceeded("10.0.0.1")

	if got := counterValue(t, counter) - before; got != 1 {
		t.Errorf("rate_limit_exceeded_total delta = %v, want 1", got)
	}
}
