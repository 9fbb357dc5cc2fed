// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package cache provides the Redis-backed fast path in front of the durable
// store: batch idempotency tracking for ingested events and fixed-window
// rate limiting per client.
//
// The cache is advisory. A missing or expired seen-marker means an event is
// treated as new and re-published; the store's uniqueness constraint on the
// event identifier is what actually prevents double counting. The cache must
// never claim an id is a duplicate unless it was previously marked.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/logging"
)

// connectTimeout bounds the initial ping so a dead Redis fails startup
// quickly instead of hanging.
const connectTimeout = 5 * time.Second

// Connect parses the configured Redis URL, opens a client, and verifies the
// connection with a ping. The returned client multiplexes all cache traffic;
// the caller owns it and must Close it on shutdown.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logging.WithComponent("cache").Info().
		Str("addr", opts.Addr).
		Int("db", opts.DB).
		Msg("Connected to Redis")

	return client, nil
}
