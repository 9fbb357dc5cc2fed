// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/models"
)

// Version is reported by the root service descriptor.
const Version = "1.0.0"

// EventStore is the event store surface the API reads from.
// Satisfied by *store.Store.
type EventStore interface {
	CountEvents(ctx context.Context) (int64, error)
	DAU(ctx context.Context, from, to time.Time) ([]models.DAURow, error)
	TopEvents(ctx context.Context, from, to time.Time, limit int) ([]models.TopEvent, error)
	Retention(ctx context.Context, start time.Time, windows int, windowType string) ([]models.RetentionCohort, error)
	Ping(ctx context.Context) error
}

// DedupCache partitions submitted event ids into new and already-seen.
// Satisfied by *cache.IdempotencyTracker.
type DedupCache interface {
	CheckBatch(ctx context.Context, ids []uuid.UUID) (newIDs, duplicates []uuid.UUID, err error)
	MarkBatchSeen(ctx context.Context, ids []uuid.UUID) error
	Ping(ctx context.Context) error
}

// EventPublisher hands accepted events to the work queue. It returns the
// number of events published before the first failure.
// Satisfied by *queue.Publisher.
type EventPublisher interface {
	PublishBatch(ctx context.Context, events []models.Event) (int, error)
}

// QueueChecker reports whether the event stream is reachable.
// Satisfied by *queue.StreamManager.
type QueueChecker interface {
	IsHealthy(ctx context.Context) bool
}

// Handler holds the dependencies behind the HTTP endpoints.
type Handler struct {
	store     EventStore
	dedup     DedupCache
	publisher EventPublisher
	queue     QueueChecker
	startTime time.Time
	logger    zerolog.Logger
}

// NewHandler creates a Handler over the given collaborators. All four are
// required; health probes report any that fail their checks as unhealthy.
func NewHandler(store EventStore, dedup DedupCache, publisher EventPublisher, queue QueueChecker) *Handler {
	return &Handler{
		store:     store,
		dedup:     dedup,
		publisher: publisher,
		queue:     queue,
		startTime: time.Now(),
		logger:    logging.WithComponent("api"),
	}
}
