// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package models

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

func TestEventDecodeWire(t *testing.T) {
	payload := []byte(`{
		"event_id": "a1b2c3d4-0000-4000-8000-000000000001",
		"user_id": "user-1",
		"event_type": "login",
		"occurred_at": "2026-08-20T10:30:00+05:00",
		"properties": {"device": "mobile"}
	}`)

	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if e.EventID.String() != "a1b2c3d4-0000-4000-8000-000000000001" {
		t.Errorf("EventID = %s", e.EventID)
	}
	if e.UserID != "user-1" || e.EventType != "login" {
		t.Errorf("identity fields = %q/%q", e.UserID, e.EventType)
	}
	_, offset := e.OccurredAt.Zone()
	if offset != 5*3600 {
		t.Errorf("timezone offset = %d, want +05:00 preserved", offset)
	}
	if e.Properties["device"] != "mobile" {
		t.Errorf("Properties = %v", e.Properties)
	}
}

func TestEventRoundTripPreservesOffset(t *testing.T) {
	loc := time.FixedZone("", -7*3600)
	e := Event{
		EventID:    uuid.New(),
		UserID:     "u",
		EventType:  "view",
		OccurredAt: time.Date(2026, 8, 20, 23, 30, 0, 0, loc),
	}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back Event
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.OccurredAt.Equal(e.OccurredAt) {
		t.Errorf("instant changed: %s vs %s", back.OccurredAt, e.OccurredAt)
	}
	_, offset := back.OccurredAt.Zone()
	if offset != -7*3600 {
		t.Errorf("offset = %d, want -25200 preserved", offset)
	}
}

func TestEventBatchNormalize(t *testing.T) {
	b := EventBatch{Events: []Event{
		{EventID: uuid.New(), Properties: nil},
		{EventID: uuid.New(), Properties: map[string]interface{}{"k": "v"}},
	}}

	b.Normalize()

	if b.Events[0].Properties == nil {
		t.Error("nil properties not defaulted to empty map")
	}
	if len(b.Events[0].Properties) != 0 {
		t.Errorf("defaulted properties not empty: %v", b.Events[0].Properties)
	}
	if b.Events[1].Properties["k"] != "v" {
		t.Error("existing properties were clobbered")
	}
}

func TestEventBatchEventIDs(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	batch := EventBatch{Events: []Event{{EventID: a}, {EventID: b}, {EventID: c}}}

	ids := batch.EventIDs()
	if len(ids) != 3 {
		t.Fatalf("len(ids) = %d, want 3", len(ids))
	}
	for i, want := range []uuid.UUID{a, b, c} {
		if ids[i] != want {
			t.Errorf("ids[%d] = %s, want %s (order must match submission)", i, ids[i], want)
		}
	}
}

func TestEventDecodeRejectsBadUUID(t *testing.T) {
	payload := []byte(`{"event_id":"not-a-uuid","user_id":"u","event_type":"t","occurred_at":"2026-08-20T10:00:00Z"}`)

	var e Event
	if err := json.Unmarshal(payload, &e); err == nil {
		t.Error("expected error for malformed event_id")
	}
}
