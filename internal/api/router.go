// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/eventide/internal/middleware"
	"github.com/tomtom215/eventide/internal/models"
)

// readLimit caps health and stats traffic per client IP, in process.
// Ingestion uses the Redis limiter instead, so its budget is shared
// across replicas.
const (
	readLimit       = 1000
	readLimitWindow = time.Minute
)

// Router assembles the HTTP surface around a Handler.
type Router struct {
	handler     *Handler
	limiter     middleware.ClientLimiter
	corsOrigins []string
}

// NewRouter creates a Router. The limiter guards POST /events;
// corsOrigins lists the origins allowed to call the API from browsers.
func NewRouter(handler *Handler, limiter middleware.ClientLimiter, corsOrigins []string) *Router {
	return &Router{
		handler:     handler,
		limiter:     limiter,
		corsOrigins: corsOrigins,
	}
}

// Handler builds the chi router carrying the full middleware stack and
// every route.
//
// Global middleware order matters: RequestID runs first so every log line
// carries the id, RealIP rewrites RemoteAddr before anything keys on it,
// and the Prometheus middleware sits outside Recoverer so recovered
// panics are still recorded as 500s.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.Get("/", rt.handler.Root)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(readLimit, readLimitWindow))
		r.Get("/", rt.handler.Health)
		r.Get("/liveness", rt.handler.HealthLiveness)
		r.Get("/readiness", rt.handler.HealthReadiness)
	})

	r.Route("/events", func(r chi.Router) {
		r.With(middleware.RateLimit(rt.limiter)).Post("/", rt.handler.IngestEvents)
		r.Get("/count", rt.handler.EventCount)
	})

	r.Route("/stats", func(r chi.Router) {
		r.Use(httprate.LimitByIP(readLimit, readLimitWindow))
		r.Get("/dau", rt.handler.DAU)
		r.Get("/top-events", rt.handler.TopEvents)
		r.Get("/retention", rt.handler.Retention)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, models.CodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, models.CodeMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
