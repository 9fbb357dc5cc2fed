// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/models"
)

// ClientLimiter decides whether a client may proceed and how much of its
// window remains. Satisfied by *cache.RateLimiter.
type ClientLimiter interface {
	Allow(ctx context.Context, client string) (allowed bool, remaining int, err error)
	Limit() int
}

// RateLimit enforces a per-client request limit before the handler runs.
//
// The client key is the remote IP. chi's RealIP middleware must run
// earlier so proxied requests are keyed by the originating address, not
// the proxy's.
//
// Both allowed and denied responses carry X-RateLimit-Limit and
// X-RateLimit-Remaining so clients can pace themselves. A limiter
// backend failure is a dependency error: the request is rejected with
// 500 rather than silently bypassing the limit.
func RateLimit(limiter ClientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientKey(r)

			allowed, remaining, err := limiter.Allow(r.Context(), client)
			if err != nil {
				logging.CtxErr(r.Context(), err).Str("client", client).Msg("rate limit check failed")
				writeLimitError(w, http.StatusInternalServerError,
					models.NewErrorResponse(models.CodeDependency, "rate limiter unavailable"))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				metrics.RecordRateLimitExceeded(client)
				logging.Ctx(r.Context()).Warn().Str("client", client).Msg("rate limit exceeded")
				writeLimitError(w, http.StatusTooManyRequests,
					models.NewErrorResponse(models.CodeRateLimited, "rate limit exceeded, retry later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey extracts the client IP from the request, dropping the port.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RealIP leaves a bare address when the header had no port.
		return r.RemoteAddr
	}
	return host
}

func writeLimitError(w http.ResponseWriter, status int, body models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
