// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package middleware

import (
	"net/http"

	"github.com/tomtom215/eventide/internal/logging"
)

// RequestID assigns a unique ID to each request and adds it to both the
// response header and the logging context. IDs supplied by an upstream
// proxy in X-Request-ID are kept so traces line up across services.
//
// Handlers reach the ID through logging.Ctx(ctx), which stamps it on
// every log line, or logging.RequestIDFromContext for direct access.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		// Add to response header for client visibility
		w.Header().Set("X-Request-ID", requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
