// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// This file contains API response models for ingestion and analytics
// endpoints. Success responses are bare payloads; error responses use the
// envelope in errors.go.
package models

import (
	"fmt"
	"strings"
)

// IngestResponse is the body of a successful batch submission.
type IngestResponse struct {
	// Accepted is the number of events queued for processing.
	Accepted int `json:"accepted"`

	// Duplicates is the number of events skipped as already seen.
	Duplicates int `json:"duplicates"`

	// Failed is the number of events that could not be queued. A successful
	// response always reports 0; queue failures abort the batch with an
	// error response instead.
	Failed int `json:"failed"`

	// Message is a human-readable summary.
	Message string `json:"message"`
}

// EventCountResponse reports the total number of stored events.
type EventCountResponse struct {
	TotalEvents int64 `json:"total_events"`
}

// DAURow is one day of the daily-active-users series.
type DAURow struct {
	// Date is the UTC calendar day in YYYY-MM-DD form.
	Date string `json:"date"`

	// ActiveUsers is the count of distinct user IDs active that day.
	ActiveUsers int64 `json:"active_users"`
}

// TopEvent is one row of the most-frequent-event-types ranking.
type TopEvent struct {
	EventType string `json:"event_type"`
	Count     int64  `json:"count"`
}

// RetentionCohort describes one cohort's retention across the requested
// windows. It marshals to the flat wire shape
//
//	{"cohort_start":"2026-08-01","window_0":42,
//	 "window_1":21,"retention_rate_1":50.0, ...}
//
// with one window_K / retention_rate_K pair per requested window.
type RetentionCohort struct {
	// CohortStart is the cohort day in YYYY-MM-DD form.
	CohortStart string

	// CohortSize is the number of distinct users first counted on the
	// cohort day (window_0).
	CohortSize int64

	// Retained holds the count of cohort users active in windows 1..N.
	Retained []int64

	// Rates holds retention percentages for windows 1..N, rounded to two
	// decimals.
	Rates []float64
}

// MarshalJSON emits the flat window_K / retention_rate_K wire shape.
func (c RetentionCohort) MarshalJSON() ([]byte, error) {
	if len(c.Retained) != len(c.Rates) {
		return nil, fmt.Errorf("retention cohort %s: %d counts but %d rates",
			c.CohortStart, len(c.Retained), len(c.Rates))
	}

	var b strings.Builder
	b.WriteByte('{')
	fmt.Fprintf(&b, `"cohort_start":%q`, c.CohortStart)
	fmt.Fprintf(&b, `,"window_0":%d`, c.CohortSize)
	for i, count := range c.Retained {
		fmt.Fprintf(&b, `,"window_%d":%d`, i+1, count)
	}
	for i, rate := range c.Rates {
		fmt.Fprintf(&b, `,"retention_rate_%d":%s`, i+1, formatRate(rate))
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// formatRate renders a retention percentage with at most two decimals.
func formatRate(rate float64) string {
	s := fmt.Sprintf("%.2f", rate)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	return s
}

// RetentionResponse is the body of the cohort retention endpoint.
type RetentionResponse struct {
	Cohorts    []RetentionCohort `json:"cohorts"`
	WindowType string            `json:"window_type"`
}

// RootResponse is the service descriptor served at /.
type RootResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
	Docs    string `json:"docs"`
	Metrics string `json:"metrics"`
}
