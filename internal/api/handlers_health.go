// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"fmt"
	"net/http"

	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/models"
)

// Root serves the service descriptor.
//
// Method: GET
// Path: /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.RootResponse{
		Service: "eventide",
		Version: Version,
		Status:  "running",
		Docs:    "https://github.com/tomtom215/eventide",
		Metrics: "/metrics",
	})
}

// Health reports the reachability of every backing service.
//
// Method: GET
// Path: /health
//
// The response is always 200; consumers read the status fields. Overall
// status is healthy only when the store, the cache, and the stream all
// respond.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	database := dependencyStatus(h.store.Ping(ctx))
	redis := dependencyStatus(h.dedup.Ping(ctx))

	nats := models.HealthHealthy
	if !h.queue.IsHealthy(ctx) {
		nats = "unhealthy: stream unavailable"
	}

	status := models.HealthHealthy
	if database != models.HealthHealthy || redis != models.HealthHealthy || nats != models.HealthHealthy {
		status = models.HealthDegraded
		logging.Ctx(ctx).Warn().
			Str("database", database).
			Str("redis", redis).
			Str("nats", nats).
			Msg("health check found unhealthy dependencies")
	}

	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:   status,
		Database: database,
		Redis:    redis,
		NATS:     nats,
	})
}

// HealthLiveness is the liveness probe: alive whenever the process can
// serve it, regardless of dependencies.
//
// Method: GET
// Path: /health/liveness
func (h *Handler) HealthLiveness(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.LivenessResponse{Status: "alive"})
}

// HealthReadiness is the readiness probe: ready only when the event store
// responds, 503 otherwise so load balancers stop routing here.
//
// Method: GET
// Path: /health/readiness
func (h *Handler) HealthReadiness(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		logging.CtxErr(r.Context(), err).Msg("readiness check failed")
		respondJSON(w, http.StatusServiceUnavailable, models.ReadinessResponse{Status: "not ready"})
		return
	}

	respondJSON(w, http.StatusOK, models.ReadinessResponse{Status: "ready"})
}

// dependencyStatus renders a ping result as a health field value.
func dependencyStatus(err error) string {
	if err != nil {
		return fmt.Sprintf("unhealthy: %v", err)
	}
	return models.HealthHealthy
}
