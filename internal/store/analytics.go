// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Analytics queries over the events table.
//
// All three queries bucket events by the UTC calendar date of occurred_at
// and take half-open ranges: a request for [from, to] scans
// [from 00:00Z, to+1day 00:00Z). Bucketing happens in SQL via
// (occurred_at AT TIME ZONE 'UTC')::date so a row stored with any timezone
// offset lands in the day its instant falls on in UTC.

package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/eventide/internal/models"
)

// WindowWeekly selects 7-day retention windows; any other value means daily.
const WindowWeekly = "weekly"

const dauSQL = `
	SELECT (occurred_at AT TIME ZONE 'UTC')::date AS day,
	       COUNT(DISTINCT user_id) AS active_users
	FROM events
	WHERE occurred_at >= $1 AND occurred_at < $2
	GROUP BY day
	ORDER BY day ASC`

const topEventsSQL = `
	SELECT event_type, COUNT(*) AS event_count
	FROM events
	WHERE occurred_at >= $1 AND occurred_at < $2
	GROUP BY event_type
	ORDER BY event_count DESC
	LIMIT $3`

const cohortUsersSQL = `
	SELECT DISTINCT user_id
	FROM events
	WHERE occurred_at >= $1 AND occurred_at < $2`

const retainedCountSQL = `
	SELECT COUNT(DISTINCT user_id)
	FROM events
	WHERE occurred_at >= $1 AND occurred_at < $2
	  AND user_id = ANY($3)`

// DAU returns the count of distinct active users per UTC day across
// [from, to], in ascending date order. Days without events are omitted.
func (s *Store) DAU(ctx context.Context, from, to time.Time) ([]models.DAURow, error) {
	start, end := halfOpenRange(from, to)

	rows, err := s.pool.Query(ctx, dauSQL, start, end)
	if err != nil {
		return nil, fmt.Errorf("query daily active users: %w", err)
	}
	defer rows.Close()

	result := make([]models.DAURow, 0)
	for rows.Next() {
		var day time.Time
		var activeUsers int64
		if err := rows.Scan(&day, &activeUsers); err != nil {
			return nil, fmt.Errorf("scan daily active users row: %w", err)
		}
		result = append(result, models.DAURow{
			Date:        day.Format("2006-01-02"),
			ActiveUsers: activeUsers,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily active users rows: %w", err)
	}

	return result, nil
}

// TopEvents returns the most frequent event types across [from, to],
// ordered by count descending and capped at limit. Ties keep the store's
// native ordering.
func (s *Store) TopEvents(ctx context.Context, from, to time.Time, limit int) ([]models.TopEvent, error) {
	start, end := halfOpenRange(from, to)

	rows, err := s.pool.Query(ctx, topEventsSQL, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("query top events: %w", err)
	}
	defer rows.Close()

	result := make([]models.TopEvent, 0, limit)
	for rows.Next() {
		var row models.TopEvent
		if err := rows.Scan(&row.EventType, &row.Count); err != nil {
			return nil, fmt.Errorf("scan top events row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top events rows: %w", err)
	}

	return result, nil
}

// Retention computes cohort retention for the cohort of users active on the
// start day. For each window k in 1..windows it counts the cohort members
// active on the single day start + k windows later (7 days per window for
// weekly, otherwise 1) and derives the retention rate against the cohort
// size. An empty cohort yields an empty slice.
func (s *Store) Retention(ctx context.Context, start time.Time, windows int, windowType string) ([]models.RetentionCohort, error) {
	cohortDay := dayStartUTC(start)

	users, err := s.cohortUsers(ctx, cohortDay)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return []models.RetentionCohort{}, nil
	}

	step := windowStep(windowType)
	cohort := models.RetentionCohort{
		CohortStart: cohortDay.Format("2006-01-02"),
		CohortSize:  int64(len(users)),
		Retained:    make([]int64, 0, windows),
		Rates:       make([]float64, 0, windows),
	}

	for k := 1; k <= windows; k++ {
		windowDay := cohortDay.AddDate(0, 0, k*step)

		var retained int64
		err := s.pool.QueryRow(ctx, retainedCountSQL,
			windowDay, windowDay.AddDate(0, 0, 1), users).Scan(&retained)
		if err != nil {
			return nil, fmt.Errorf("query retention window %d: %w", k, err)
		}

		cohort.Retained = append(cohort.Retained, retained)
		cohort.Rates = append(cohort.Rates, retentionRate(retained, cohort.CohortSize))
	}

	return []models.RetentionCohort{cohort}, nil
}

// cohortUsers returns the distinct user ids active on the given UTC day.
func (s *Store) cohortUsers(ctx context.Context, day time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, cohortUsersSQL, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("query cohort users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan cohort user row: %w", err)
		}
		users = append(users, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cohort user rows: %w", err)
	}

	return users, nil
}

// CountEvents returns the total number of stored events.
func (s *Store) CountEvents(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("query event count: %w", err)
	}
	return count, nil
}

// dayStartUTC truncates a timestamp to midnight UTC of its calendar day.
func dayStartUTC(d time.Time) time.Time {
	d = d.UTC()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// halfOpenRange converts inclusive calendar dates [from, to] into the
// half-open instant range [from 00:00Z, to+1day 00:00Z).
func halfOpenRange(from, to time.Time) (time.Time, time.Time) {
	return dayStartUTC(from), dayStartUTC(to).AddDate(0, 0, 1)
}

// windowStep maps a window type to its length in days.
func windowStep(windowType string) int {
	if windowType == WindowWeekly {
		return 7
	}
	return 1
}

// retentionRate returns retained/cohortSize as a percentage rounded to two
// decimals. A zero cohort yields zero rather than dividing.
func retentionRate(retained, cohortSize int64) float64 {
	if cohortSize == 0 {
		return 0
	}
	return math.Round(float64(retained)/float64(cohortSize)*100*100) / 100
}
