// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package store

import (
	"context"
	"fmt"
)

// schemaStatements creates the events table and its query indexes. Every
// statement is IF NOT EXISTS so startup is idempotent across restarts and
// across multiple instances racing to initialize.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS events (
		id          BIGSERIAL PRIMARY KEY,
		event_id    UUID NOT NULL UNIQUE,
		user_id     TEXT NOT NULL,
		event_type  TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL,
		properties  JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_occurred_at ON events (occurred_at)`,
	`CREATE INDEX IF NOT EXISTS idx_events_user_id ON events (user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_events_event_type ON events (event_type)`,
}

// CreateSchema initializes the events table and indexes.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	s.logger.Debug().Msg("Database schema ready")
	return nil
}
