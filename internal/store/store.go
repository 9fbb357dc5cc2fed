// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package store persists events in PostgreSQL and answers the analytics
// queries over them.
//
// The events table carries a uniqueness constraint on the event identifier;
// every insert goes through ON CONFLICT DO NOTHING, which makes the worker's
// at-least-once delivery safe to replay. Analytics queries bucket by the UTC
// calendar date of the occurrence timestamp, so results do not depend on the
// server's local timezone.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/logging"
)

// pingTimeout bounds connectivity checks during startup and health probes.
const pingTimeout = 5 * time.Second

// Store provides PostgreSQL-backed persistence for events.
type Store struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// Connect opens a connection pool against the configured database URL and
// verifies it with a ping. MaxConns covers the base pool plus overflow;
// idle connections are health checked once a minute so a database restart
// surfaces as reconnects rather than request errors.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns()
	poolCfg.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger := logging.WithComponent("store")
	logger.Info().
		Str("database", poolCfg.ConnConfig.Database).
		Str("host", poolCfg.ConnConfig.Host).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("Connected to PostgreSQL")

	return &Store{pool: pool, logger: logger}, nil
}

// Close releases all pooled connections. Safe to call more than once.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping verifies database connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return s.pool.Ping(pingCtx)
}

// Stat returns a snapshot of connection pool usage.
func (s *Store) Stat() *pgxpool.Stat {
	return s.pool.Stat()
}
