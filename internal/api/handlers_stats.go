// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/eventide/internal/models"
)

// dateLayout is the calendar-date form taken by all stats parameters.
const dateLayout = "2006-01-02"

// DAU returns the daily-active-users series for a date range.
//
// Method: GET
// Path: /stats/dau
//
// Query Parameters:
//   - from: start date, YYYY-MM-DD (required)
//   - to: end date, YYYY-MM-DD (required, inclusive)
//
// Response: ascending list of {date, active_users}. Days without events
// are omitted.
func (h *Handler) DAU(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRangeParams(w, r)
	if !ok {
		return
	}

	rows, err := h.store.DAU(r.Context(), from, to)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeDatabase,
			"failed to compute daily active users", err)
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// TopEvents returns the most frequent event types for a date range.
//
// Method: GET
// Path: /stats/top-events
//
// Query Parameters:
//   - from: start date, YYYY-MM-DD (required)
//   - to: end date, YYYY-MM-DD (required, inclusive)
//   - limit: number of rows, 1 to 100 (default 10)
//
// Response: list of {event_type, count} in descending count order.
func (h *Handler) TopEvents(w http.ResponseWriter, r *http.Request) {
	from, to, ok := dateRangeParams(w, r)
	if !ok {
		return
	}

	limit, ok := boundedIntParam(w, r, "limit", 10, 1, 100)
	if !ok {
		return
	}

	rows, err := h.store.TopEvents(r.Context(), from, to, limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeDatabase,
			"failed to compute top events", err)
		return
	}

	respondJSON(w, http.StatusOK, rows)
}

// Retention returns cohort retention for users first active on a start
// date.
//
// Method: GET
// Path: /stats/retention
//
// Query Parameters:
//   - start_date: cohort day, YYYY-MM-DD (required)
//   - windows: retention windows to compute, 1 to 10 (default 3)
//   - window_type: daily or weekly (default daily)
//
// Response: {cohorts, window_type} where each cohort carries flat
// window_K counts and retention_rate_K percentages. An empty cohort
// yields an empty cohorts list.
func (h *Handler) Retention(w http.ResponseWriter, r *http.Request) {
	start, ok := dateParam(w, r, "start_date")
	if !ok {
		return
	}

	windows, ok := boundedIntParam(w, r, "windows", 3, 1, 10)
	if !ok {
		return
	}

	windowType := "daily"
	if raw := r.URL.Query().Get("window_type"); raw != "" {
		if raw != "daily" && raw != "weekly" {
			respondError(w, r, http.StatusUnprocessableEntity, models.CodeValidation,
				"window_type must be daily or weekly", nil)
			return
		}
		windowType = raw
	}

	cohorts, err := h.store.Retention(r.Context(), start, windows, windowType)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, models.CodeDatabase,
			"failed to compute retention", err)
		return
	}

	respondJSON(w, http.StatusOK, models.RetentionResponse{
		Cohorts:    cohorts,
		WindowType: windowType,
	})
}

// dateParam parses a required YYYY-MM-DD query parameter. On failure it
// writes a validation error and reports ok false.
func dateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		respondError(w, r, http.StatusUnprocessableEntity, models.CodeValidation,
			fmt.Sprintf("%s is required (YYYY-MM-DD)", name), nil)
		return time.Time{}, false
	}

	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, models.CodeValidation,
			fmt.Sprintf("%s must be a date in YYYY-MM-DD form", name), nil)
		return time.Time{}, false
	}
	return t, true
}

// dateRangeParams parses the required from/to pair and rejects reversed
// ranges with a 400 INVALID_DATE_RANGE.
func dateRangeParams(w http.ResponseWriter, r *http.Request) (from, to time.Time, ok bool) {
	from, ok = dateParam(w, r, "from")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok = dateParam(w, r, "to")
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	if from.After(to) {
		respondError(w, r, http.StatusBadRequest, models.CodeInvalidDateRange,
			"from must not be after to", nil)
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// boundedIntParam parses an optional integer query parameter, enforcing
// an inclusive range. Absent means the default; malformed or out-of-range
// values are validation errors, not silently clamped.
func boundedIntParam(w http.ResponseWriter, r *http.Request, name string, def, min, max int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		respondError(w, r, http.StatusUnprocessableEntity, models.CodeValidation,
			fmt.Sprintf("%s must be an integer between %d and %d", name, min, max), nil)
		return 0, false
	}
	return n, true
}
