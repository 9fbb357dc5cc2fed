// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package importer loads historical events from CSV files straight into
// the event store, bypassing the HTTP and queue path. The store's
// ON CONFLICT insert keeps reimports idempotent, so running the same
// file twice only grows the duplicate count.
//
// Expected CSV columns, matched by header name in any order:
//
//	event_id         UUID
//	occurred_at      RFC 3339, or a naive timestamp taken as UTC
//	user_id          non-empty string
//	event_type       non-empty string
//	properties_json  JSON object, optional
//
// Unparseable rows are counted as failed and logged; the import keeps
// going. A malformed properties_json only costs the properties, not the
// row.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/models"
)

// DefaultBatchSize is the insert batch size when none is configured.
const DefaultBatchSize = 100

// timestampLayouts are tried in order for occurred_at. Naive layouts are
// interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// EventInserter is the store surface the importer writes through.
// Satisfied by *store.Store.
type EventInserter interface {
	InsertEvents(ctx context.Context, events []models.Event) (inserted, duplicates int, err error)
}

// Summary is the outcome of one import run.
type Summary struct {
	// Imported is the number of rows newly inserted.
	Imported int

	// Duplicates is the number of rows the store already had.
	Duplicates int

	// Failed is the number of rows that could not be parsed or inserted.
	Failed int

	// Total is Imported + Duplicates + Failed.
	Total int
}

// Importer reads CSV rows, batches them, and inserts them through the
// store writer.
type Importer struct {
	store     EventInserter
	batchSize int
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

// New creates an Importer. A non-positive batchSize falls back to
// DefaultBatchSize. eventsPerSec > 0 throttles the row intake; zero
// means unthrottled.
func New(store EventInserter, batchSize int, eventsPerSec float64) *Importer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	var limiter *rate.Limiter
	if eventsPerSec > 0 {
		// Burst of one batch so throttling shapes sustained rate, not
		// the first flush.
		limiter = rate.NewLimiter(rate.Limit(eventsPerSec), batchSize)
	}

	return &Importer{
		store:     store,
		batchSize: batchSize,
		limiter:   limiter,
		logger:    logging.WithComponent("importer"),
	}
}

// ImportFile runs Import over the named file.
func (i *Importer) ImportFile(ctx context.Context, path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open csv: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			i.logger.Warn().Err(closeErr).Str("path", path).Msg("error closing csv file")
		}
	}()

	i.logger.Info().Str("path", path).Msg("starting import")
	return i.Import(ctx, f)
}

// Import reads CSV rows from r and inserts them in batches. It returns
// the summary so far and a non-nil error only for fatal conditions: an
// unreadable header, a missing required column, or context cancellation.
// Row-level problems are counted in Summary.Failed instead.
func (i *Importer) Import(ctx context.Context, r io.Reader) (Summary, error) {
	reader := csv.NewReader(r)

	cols, err := readHeader(reader)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	batch := make([]models.Event, 0, i.batchSize)

	for {
		if err := ctx.Err(); err != nil {
			summary.Total = summary.Imported + summary.Duplicates + summary.Failed
			return summary, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			i.logger.Error().Err(err).Msg("failed to read csv row")
			summary.Failed++
			continue
		}

		event, err := i.parseRow(record, cols)
		if err != nil {
			i.logger.Error().Err(err).Strs("row", record).Msg("failed to parse event")
			summary.Failed++
			continue
		}

		if i.limiter != nil {
			if err := i.limiter.Wait(ctx); err != nil {
				summary.Total = summary.Imported + summary.Duplicates + summary.Failed
				return summary, err
			}
		}

		batch = append(batch, event)
		if len(batch) >= i.batchSize {
			i.flush(ctx, batch, &summary)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		i.flush(ctx, batch, &summary)
	}

	summary.Total = summary.Imported + summary.Duplicates + summary.Failed
	i.logger.Info().
		Int("imported", summary.Imported).
		Int("duplicates", summary.Duplicates).
		Int("failed", summary.Failed).
		Msg("import complete")
	return summary, nil
}

// flush inserts one batch. An insert failure marks the whole batch
// failed and the import moves on to the next one.
func (i *Importer) flush(ctx context.Context, batch []models.Event, summary *Summary) {
	inserted, duplicates, err := i.store.InsertEvents(ctx, batch)
	if err != nil {
		i.logger.Error().Err(err).Int("batch_size", len(batch)).Msg("failed to insert batch")
		summary.Failed += len(batch)
		return
	}
	summary.Imported += inserted
	summary.Duplicates += duplicates
}

// columnIndex maps the required and optional CSV columns to positions in
// a record. properties is -1 when the file has no properties_json column.
type columnIndex struct {
	eventID    int
	occurredAt int
	userID     int
	eventType  int
	properties int
}

// readHeader consumes the header row and resolves column positions.
func readHeader(reader *csv.Reader) (columnIndex, error) {
	header, err := reader.Read()
	if err != nil {
		return columnIndex{}, fmt.Errorf("read csv header: %w", err)
	}

	positions := make(map[string]int, len(header))
	for idx, name := range header {
		if idx == 0 {
			name = strings.TrimPrefix(name, "﻿")
		}
		positions[strings.TrimSpace(name)] = idx
	}

	cols := columnIndex{properties: -1}
	required := map[string]*int{
		"event_id":    &cols.eventID,
		"occurred_at": &cols.occurredAt,
		"user_id":     &cols.userID,
		"event_type":  &cols.eventType,
	}
	for name, dst := range required {
		idx, ok := positions[name]
		if !ok {
			return columnIndex{}, fmt.Errorf("csv header missing required column %q", name)
		}
		*dst = idx
	}
	if idx, ok := positions["properties_json"]; ok {
		cols.properties = idx
	}
	return cols, nil
}

// parseRow converts one CSV record into an event.
func (i *Importer) parseRow(record []string, cols columnIndex) (models.Event, error) {
	id, err := uuid.Parse(strings.TrimSpace(record[cols.eventID]))
	if err != nil {
		return models.Event{}, fmt.Errorf("event_id: %w", err)
	}

	occurredAt, err := parseTimestamp(strings.TrimSpace(record[cols.occurredAt]))
	if err != nil {
		return models.Event{}, fmt.Errorf("occurred_at: %w", err)
	}

	userID := record[cols.userID]
	if userID == "" {
		return models.Event{}, errors.New("user_id is empty")
	}
	eventType := record[cols.eventType]
	if eventType == "" {
		return models.Event{}, errors.New("event_type is empty")
	}

	properties := map[string]interface{}{}
	if cols.properties >= 0 && record[cols.properties] != "" {
		if err := json.Unmarshal([]byte(record[cols.properties]), &properties); err != nil {
			i.logger.Warn().Str("event_id", id.String()).Msg("failed to parse properties JSON")
			properties = map[string]interface{}{}
		}
	}

	return models.Event{
		EventID:    id,
		UserID:     userID,
		EventType:  eventType,
		OccurredAt: occurredAt,
		Properties: properties,
	}, nil
}

// parseTimestamp accepts RFC 3339 timestamps and the naive forms common
// in CSV exports, which are taken as UTC.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
