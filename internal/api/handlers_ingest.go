// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/validation"
)

// IngestEvents accepts a batch of events for asynchronous processing.
//
// Method: POST
// Path: /events
// Body: {"events":[…]} with 1 to 1000 events
//
// The batch is validated as a whole, partitioned against the dedup cache,
// and every event not seen before is published to the work queue. A 202
// response means admitted and queued, not stored; the worker persists
// asynchronously. Duplicates are counted, never an error.
//
// New ids are marked seen before publishing. If the publish then fails the
// whole batch is rejected with a 500 and the client retries; the markers
// left behind make that retry count as duplicates until they expire, and
// the store's unique constraint keeps the end state correct either way.
func (h *Handler) IngestEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	var batch models.EventBatch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, models.CodeValidation,
			"request body is not a valid event batch", err)
		return
	}
	if verr := validation.ValidateStruct(&batch); verr != nil {
		respondValidation(w, verr)
		return
	}
	batch.Normalize()

	newIDs, duplicates, err := h.dedup.CheckBatch(ctx, batch.EventIDs())
	if err != nil {
		metrics.RecordEventFailed(metrics.ReasonIngestion)
		respondError(w, r, http.StatusInternalServerError, models.CodeDependency,
			"deduplication check failed", err)
		return
	}

	for i := range batch.Events {
		metrics.RecordEventReceived(batch.Events[i].EventType)
	}
	metrics.RecordEventsDuplicate(len(duplicates))

	if len(newIDs) == 0 {
		logging.Ctx(ctx).Info().Int("total", len(batch.Events)).Msg("all events were duplicates")
		respondJSON(w, http.StatusAccepted, models.IngestResponse{
			Accepted:   0,
			Duplicates: len(duplicates),
			Failed:     0,
			Message:    "All events were duplicates",
		})
		return
	}

	if err := h.dedup.MarkBatchSeen(ctx, newIDs); err != nil {
		metrics.RecordEventFailed(metrics.ReasonIngestion)
		respondError(w, r, http.StatusInternalServerError, models.CodeDependency,
			"failed to record accepted events", err)
		return
	}

	newEvents := selectByID(batch.Events, newIDs)
	if _, err := h.publisher.PublishBatch(ctx, newEvents); err != nil {
		metrics.RecordEventFailed(metrics.ReasonIngestion)
		respondError(w, r, http.StatusInternalServerError, models.CodeDependency,
			"failed to queue events for processing", err)
		return
	}

	duration := time.Since(start)
	metrics.ObserveIngestion(duration)
	logging.Ctx(ctx).Info().
		Int("accepted", len(newEvents)).
		Int("duplicates", len(duplicates)).
		Dur("duration", duration).
		Msg("events accepted for processing")

	respondJSON(w, http.StatusAccepted, models.IngestResponse{
		Accepted:   len(newEvents),
		Duplicates: len(duplicates),
		Failed:     0,
		Message:    fmt.Sprintf("Accepted %d events for processing", len(newEvents)),
	})
}

// EventCount reports the total number of durably stored events.
//
// Method: GET
// Path: /events/count
func (h *Handler) EventCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.CountEvents(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeDatabase,
			"failed to count events", err)
		return
	}

	respondJSON(w, http.StatusOK, models.EventCountResponse{TotalEvents: count})
}

// selectByID returns the events whose ids are in keep, preserving batch
// order. An id repeated within one batch selects each of its events; the
// broker and store dedup collapse the extras downstream.
func selectByID(events []models.Event, keep []uuid.UUID) []models.Event {
	set := make(map[uuid.UUID]struct{}, len(keep))
	for _, id := range keep {
		set[id] = struct{}{}
	}

	selected := make([]models.Event, 0, len(keep))
	for i := range events {
		if _, ok := set[events[i].EventID]; ok {
			selected = append(selected, events[i])
		}
	}
	return selected
}
