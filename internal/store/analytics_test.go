// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package store

import (
	"testing"
	"time"
)

func TestDayStartUTC(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "already midnight utc",
			in:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "afternoon utc",
			in:   time.Date(2026, 8, 1, 15, 30, 45, 123, time.UTC),
			want: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "offset zone crossing the date line",
			// 01:30 at UTC+5 is 20:30 the previous day in UTC.
			in:   time.Date(2026, 8, 2, 1, 30, 0, 0, time.FixedZone("", 5*3600)),
			want: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "negative offset zone",
			// 22:00 at UTC-7 is 05:00 the next day in UTC.
			in:   time.Date(2026, 8, 1, 22, 0, 0, 0, time.FixedZone("", -7*3600)),
			want: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dayStartUTC(tt.in); !got.Equal(tt.want) {
				t.Errorf("dayStartUTC(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHalfOpenRange(t *testing.T) {
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	start, end := halfOpenRange(from, to)

	if !start.Equal(from) {
		t.Errorf("start = %v, want %v", start, from)
	}
	wantEnd := time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC)
	if !end.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", end, wantEnd)
	}
}

func TestHalfOpenRangeSingleDay(t *testing.T) {
	day := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	start, end := halfOpenRange(day, day)

	if got := end.Sub(start); got != 24*time.Hour {
		t.Errorf("single-day range spans %v, want 24h", got)
	}
}

func TestWindowStep(t *testing.T) {
	tests := []struct {
		windowType string
		want       int
	}{
		{"daily", 1},
		{"weekly", 7},
		{"", 1},
	}

	for _, tt := range tests {
		if got := windowStep(tt.windowType); got != tt.want {
			t.Errorf("windowStep(%q) = %d, want %d", tt.windowType, got, tt.want)
		}
	}
}

func TestRetentionRate(t *testing.T) {
	tests := []struct {
		name       string
		retained   int64
		cohortSize int64
		want       float64
	}{
		{"half retained", 1, 2, 50.0},
		{"all retained", 2, 2, 100.0},
		{"none retained", 0, 2, 0.0},
		{"thirds round to two decimals", 1, 3, 33.33},
		{"two thirds round up", 2, 3, 66.67},
		{"empty cohort", 0, 0, 0.0},
		{"sevenths", 5, 7, 71.43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retentionRate(tt.retained, tt.cohortSize); got != tt.want {
				t.Errorf("retentionRate(%d, %d) = %v, want %v", tt.retained, tt.cohortSize, got, tt.want)
			}
		})
	}
}
