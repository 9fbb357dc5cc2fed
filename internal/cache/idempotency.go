// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/logging"
)

// seenKeyPrefix namespaces idempotency markers. The full key is
// "event:seen:<uuid>" with the configured TTL.
const seenKeyPrefix = "event:seen:"

// seenMarker is the value stored under a seen key. Only key presence
// matters; the value is never read.
const seenMarker = "1"

// IdempotencyTracker records which event identifiers have been accepted
// recently so repeated submissions can be counted as duplicates without
// touching the queue or the store.
//
// All batch operations are pipelined: one round trip per batch regardless
// of size. Markers expire after the configured TTL, after which an id is
// reported as new again and the store's ON CONFLICT path absorbs the replay.
type IdempotencyTracker struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIdempotencyTracker creates a tracker writing markers with the given TTL.
func NewIdempotencyTracker(client *redis.Client, ttl time.Duration) *IdempotencyTracker {
	return &IdempotencyTracker{
		client: client,
		ttl:    ttl,
		logger: logging.WithComponent("idempotency"),
	}
}

// seenKey builds the marker key for an event id.
func seenKey(id uuid.UUID) string {
	return seenKeyPrefix + id.String()
}

// CheckBatch partitions ids into unseen and seen sets with a single
// pipelined EXISTS per id. Input order is preserved within each partition.
// The same id appearing twice in one batch is reported twice; the caller's
// mark step collapses it.
func (t *IdempotencyTracker) CheckBatch(ctx context.Context, ids []uuid.UUID) (newIDs, duplicates []uuid.UUID, err error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}

	pipe := t.client.Pipeline()
	cmds := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Exists(ctx, seenKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to check seen markers: %w", err)
	}

	newIDs = make([]uuid.UUID, 0, len(ids))
	for i, id := range ids {
		if cmds[i].Val() > 0 {
			duplicates = append(duplicates, id)
		} else {
			newIDs = append(newIDs, id)
		}
	}

	if len(duplicates) > 0 {
		t.logger.Debug().
			Int("new", len(newIDs)).
			Int("duplicates", len(duplicates)).
			Msg("Batch contained previously seen events")
	}

	return newIDs, duplicates, nil
}

// MarkBatchSeen writes a seen marker for every id with a single pipelined
// SET NX EX per id. Losing the NX race to a concurrent request is not an
// error; the marker exists either way, which is the post-condition that
// matters.
func (t *IdempotencyTracker) MarkBatchSeen(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	pipe := t.client.Pipeline()
	for _, id := range ids {
		pipe.SetNX(ctx, seenKey(id), seenMarker, t.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark seen: %w", err)
	}

	return nil
}

// IsDuplicate reports whether a single id has a live seen marker.
func (t *IdempotencyTracker) IsDuplicate(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := t.client.Exists(ctx, seenKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check seen marker: %w", err)
	}
	return n > 0, nil
}

// MarkSeen writes a seen marker for a single id. It returns true when this
// call created the marker and false when the marker already existed.
func (t *IdempotencyTracker) MarkSeen(ctx context.Context, id uuid.UUID) (bool, error) {
	created, err := t.client.SetNX(ctx, seenKey(id), seenMarker, t.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark seen: %w", err)
	}
	return created, nil
}

// Ping reports whether the Redis backend is reachable.
func (t *IdempotencyTracker) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}
