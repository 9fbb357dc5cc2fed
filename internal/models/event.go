// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package models provides data structures shared across the Eventide
// pipeline: events on the wire, API responses, and health payloads.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a single user-activity event as submitted by producers and
// carried through the queue to the store.
//
// EventID is the idempotency key for the whole pipeline: the Redis seen
// marker, the JetStream message ID, and the store's unique constraint all
// key on it.
type Event struct {
	// EventID is the producer-assigned unique identifier (UUID).
	EventID uuid.UUID `json:"event_id" validate:"required"`

	// UserID identifies the user the event belongs to.
	UserID string `json:"user_id" validate:"required,min=1,max=255"`

	// EventType is a short category name, e.g. "login" or "purchase".
	EventType string `json:"event_type" validate:"required,min=1,max=100"`

	// OccurredAt is when the event happened, RFC 3339 with offset.
	// Must not be in the future at submission time.
	OccurredAt time.Time `json:"occurred_at" validate:"required,notfuture"`

	// Properties carries arbitrary event metadata. Optional; defaults to
	// an empty object.
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// EventBatch is the request body for batch ingestion.
type EventBatch struct {
	// Events holds 1 to 1000 events submitted together.
	Events []Event `json:"events" validate:"required,min=1,max=1000,dive"`
}

// Normalize fills defaults the wire format leaves optional. Call after
// decoding and before handing events downstream.
func (b *EventBatch) Normalize() {
	for i := range b.Events {
		if b.Events[i].Properties == nil {
			b.Events[i].Properties = map[string]interface{}{}
		}
	}
}

// EventIDs returns the event IDs of the batch in submission order.
func (b *EventBatch) EventIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(b.Events))
	for i := range b.Events {
		ids[i] = b.Events[i].EventID
	}
	return ids
}
