// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package middleware provides HTTP middleware components for the API.

This package implements infrastructure middleware for request ID tracking,
Prometheus metrics, and Redis-backed rate limiting. All middleware uses the
standard func(http.Handler) http.Handler shape and composes with chi's
Use/With chaining.

Key Components:

  - Request ID: UUID-based request tracking, echoed in X-Request-ID and
    threaded through the logging context
  - Prometheus Metrics: request counters, latency histograms, and an
    in-flight gauge per method and endpoint
  - Rate Limit: per-client request limiting against Redis, with
    X-RateLimit-* response headers

Usage:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.With(middleware.RateLimit(limiter)).Post("/events", ingestHandler)

Thread Safety:

All middleware components are safe for concurrent use. Request IDs travel
in the request context, metrics use Prometheus atomic collectors, and the
rate limiter delegates concurrency to Redis.
*/
package middleware
