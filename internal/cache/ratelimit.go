// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/eventide/internal/config"
)

// rateLimitKeyPrefix namespaces per-client counters. The full key is
// "rate_limit:<client>" with a TTL of one window.
const rateLimitKeyPrefix = "rate_limit:"

// RateLimiter is a fixed-window counter shared across all server instances
// through Redis. Each check is one pipelined INCR plus EXPIRE; the counter
// key expires one window after its most recent hit.
//
// The window rolls over by TTL expiry, so a burst straddling the boundary
// can admit up to twice the limit within one wall-clock window. That is an
// accepted imprecision for abuse mitigation.
type RateLimiter struct {
	client      *redis.Client
	enabled     bool
	maxRequests int
	window      time.Duration
}

// NewRateLimiter creates a limiter from the rate limit configuration.
// A nil Redis client is only valid when the limiter is disabled.
func NewRateLimiter(client *redis.Client, cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		client:      client,
		enabled:     cfg.Enabled,
		maxRequests: cfg.Requests,
		window:      cfg.Window,
	}
}

// rateLimitKey builds the counter key for a client identifier.
func rateLimitKey(client string) string {
	return rateLimitKeyPrefix + client
}

// Allow counts one request for the client and reports whether it is within
// the window's limit, plus the number of requests remaining. Remaining never
// goes below zero. When the limiter is disabled every request is allowed
// with the full limit reported as remaining.
//
// The EXPIRE is reissued on every hit, so the counter key always lives one
// window past the client's last request.
func (r *RateLimiter) Allow(ctx context.Context, client string) (allowed bool, remaining int, err error) {
	if !r.enabled {
		return true, r.maxRequests, nil
	}

	key := rateLimitKey(client)

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("failed to count request: %w", err)
	}

	count := incr.Val()
	remaining = r.maxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return count <= int64(r.maxRequests), remaining, nil
}

// Remaining reports how many requests the client has left in the current
// window without counting one. A client with no counter key has the full
// limit remaining.
func (r *RateLimiter) Remaining(ctx context.Context, client string) (int, error) {
	if !r.enabled {
		return r.maxRequests, nil
	}

	count, err := r.client.Get(ctx, rateLimitKey(client)).Int64()
	if err == redis.Nil {
		return r.maxRequests, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read request count: %w", err)
	}

	remaining := r.maxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Limit returns the configured maximum requests per window.
func (r *RateLimiter) Limit() int {
	return r.maxRequests
}

// Window returns the configured window length.
func (r *RateLimiter) Window() time.Duration {
	return r.window
}

// Enabled reports whether the limiter enforces its limit.
func (r *RateLimiter) Enabled() bool {
	return r.enabled
}
