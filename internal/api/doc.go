// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package api provides the HTTP surface of the pipeline: batch ingestion,
// analytics queries, health probes, and Prometheus exposition, routed
// through chi.
//
// Handlers are methods on Handler, which reaches its collaborators through
// narrow capability interfaces (EventStore, DedupCache, EventPublisher,
// QueueChecker) so tests can substitute fakes without a running backend.
// Router assembles the middleware stack and route groups around a Handler.
//
// Handler methods are split across files by concern:
//   - handlers.go: Handler struct, capability interfaces, constructor
//   - handlers_ingest.go: POST /events and GET /events/count
//   - handlers_stats.go: the /stats analytics endpoints
//   - handlers_health.go: root descriptor and health probes
//   - response.go: shared JSON response and error envelope helpers
//
// Success responses are bare payloads; every error is the envelope
// {"status":"error","error":{"code","message","details"}} defined in
// the models package.
package api
