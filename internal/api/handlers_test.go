// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// This file contains the fake collaborators shared by the handler and
// router tests.
package api

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/eventide/internal/models"
)

// fakeStore implements EventStore with canned responses and records the
// arguments each query was called with.
type fakeStore struct {
	count    int64
	countErr error
	dauRows  []models.DAURow
	dauErr   error
	topRows  []models.TopEvent
	topErr   error
	cohorts  []models.RetentionCohort
	retErr   error
	pingErr  error

	gotFrom       time.Time
	gotTo         time.Time
	gotLimit      int
	gotStart      time.Time
	gotWindows    int
	gotWindowType string
	queries       int
}

func (s *fakeStore) CountEvents(ctx context.Context) (int64, error) {
	return s.count, s.countErr
}

func (s *fakeStore) DAU(ctx context.Context, from, to time.Time) ([]models.DAURow, error) {
	s.queries++
	s.gotFrom, s.gotTo = from, to
	return s.dauRows, s.dauErr
}

func (s *fakeStore) TopEvents(ctx context.Context, from, to time.Time, limit int) ([]models.TopEvent, error) {
	s.queries++
	s.gotFrom, s.gotTo, s.gotLimit = from, to, limit
	return s.topRows, s.topErr
}

func (s *fakeStore) Retention(ctx context.Context, start time.Time, windows int, windowType string) ([]models.RetentionCohort, error) {
	s.queries++
	s.gotStart, s.gotWindows, s.gotWindowType = start, windows, windowType
	return s.cohorts, s.retErr
}

func (s *fakeStore) Ping(ctx context.Context) error {
	return s.pingErr
}

// fakeDedup implements DedupCache. Ids in seen are reported as
// duplicates; everything else is new.
type fakeDedup struct {
	seen     map[uuid.UUID]bool
	checkErr error
	markErr  error
	pingErr  error

	marked []uuid.UUID
}

func (d *fakeDedup) CheckBatch(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, []uuid.UUID, error) {
	if d.checkErr != nil {
		return nil, nil, d.checkErr
	}
	var newIDs, duplicates []uuid.UUID
	for _, id := range ids {
		if d.seen[id] {
			duplicates = append(duplicates, id)
		} else {
			newIDs = append(newIDs, id)
		}
	}
	return newIDs, duplicates, nil
}

func (d *fakeDedup) MarkBatchSeen(ctx context.Context, ids []uuid.UUID) error {
	if d.markErr != nil {
		return d.markErr
	}
	d.marked = append(d.marked, ids...)
	return nil
}

func (d *fakeDedup) Ping(ctx context.Context) error {
	return d.pingErr
}

// fakePublisher implements EventPublisher and records published events.
type fakePublisher struct {
	err       error
	published []models.Event
}

func (p *fakePublisher) PublishBatch(ctx context.Context, events []models.Event) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.published = append(p.published, events...)
	return len(events), nil
}

// fakeQueue implements QueueChecker.
type fakeQueue struct {
	healthy bool
}

func (q *fakeQueue) IsHealthy(ctx context.Context) bool {
	return q.healthy
}

// newTestHandler builds a Handler over fakes, substituting healthy
// defaults for any nil collaborator.
func newTestHandler(store *fakeStore, dedup *fakeDedup, pub *fakePublisher, queue *fakeQueue) *Handler {
	if store == nil {
		store = &fakeStore{}
	}
	if dedup == nil {
		dedup = &fakeDedup{}
	}
	if pub == nil {
		pub = &fakePublisher{}
	}
	if queue == nil {
		queue = &fakeQueue{healthy: true}
	}
	return NewHandler(store, dedup, pub, queue)
}

// newTestEvent returns a valid event that occurred one minute ago.
func newTestEvent(eventType string) models.Event {
	return models.Event{
		EventID:    uuid.New(),
		UserID:     "user-1",
		EventType:  eventType,
		OccurredAt: time.Now().UTC().Add(-time.Minute),
		Properties: map[string]interface{}{"source": "test"},
	}
}

// batchBody marshals events into an ingestion request body.
func batchBody(t *testing.T, events []models.Event) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(models.EventBatch{Events: events})
	if err != nil {
		t.Fatalf("marshal batch: %v", err)
	}
	return bytes.NewReader(body)
}

// decodeErrorResponse decodes the error envelope from a response body.
func decodeErrorResponse(t *testing.T, body []byte) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal error response: %v (body %q)", err, body)
	}
	if resp.Status != "error" {
		t.Errorf("envelope status = %q, want %q", resp.Status, "error")
	}
	if resp.Error == nil {
		t.Fatal("envelope has no error payload")
	}
	return resp
}
