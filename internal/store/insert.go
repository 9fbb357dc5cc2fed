// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventide/internal/models"
)

const insertEventSQL = `
	INSERT INTO events (event_id, user_id, event_type, occurred_at, properties)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (event_id) DO NOTHING`

// InsertEvents writes a batch of events inside one transaction. Each insert
// is a conflict-tolerant no-op when the event identifier already exists, so
// the call distinguishes newly inserted rows from replayed duplicates by the
// per-statement row count: 1 inserted, 0 collided.
//
// Any statement error rolls back the whole transaction and propagates; the
// caller decides whether to retry (the worker naks with delay).
func (s *Store) InsertEvents(ctx context.Context, events []models.Event) (inserted, duplicates int, err error) {
	if len(events) == 0 {
		return 0, 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// No-op after a successful commit.
	defer func() { _ = tx.Rollback(ctx) }()

	for i := range events {
		e := &events[i]

		properties := e.Properties
		if properties == nil {
			properties = map[string]interface{}{}
		}
		propertiesJSON, err := json.Marshal(properties)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to encode properties for %s: %w", e.EventID, err)
		}

		tag, err := tx.Exec(ctx, insertEventSQL,
			e.EventID, e.UserID, e.EventType, e.OccurredAt, propertiesJSON)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to insert event %s: %w", e.EventID, err)
		}

		if tag.RowsAffected() > 0 {
			inserted++
		} else {
			duplicates++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if duplicates > 0 {
		s.logger.Debug().
			Int("inserted", inserted).
			Int("duplicates", duplicates).
			Msg("Batch contained rows already stored")
	}

	return inserted, duplicates, nil
}
