// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// This file contains health and probe payloads.
package models

// Health state strings used in HealthStatus fields.
const (
	HealthHealthy  = "healthy"
	HealthDegraded = "degraded"
)

// HealthStatus reports the reachability of each backing service.
// Per-dependency fields are "healthy" or "unhealthy: <reason>"; Status is
// "healthy" only when every dependency is.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	NATS     string `json:"nats"`
}

// LivenessResponse is the fixed payload of the liveness probe.
type LivenessResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse is the payload of the readiness probe.
type ReadinessResponse struct {
	Status string `json:"status"`
}
