// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventide/internal/models"
)

func TestDAU(t *testing.T) {
	t.Parallel()

	t.Run("returns the series for a valid range", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{dauRows: []models.DAURow{
			{Date: "2026-08-01", ActiveUsers: 42},
			{Date: "2026-08-03", ActiveUsers: 17},
		}}
		handler := newTestHandler(store, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/stats/dau?from=2026-08-01&to=2026-08-07", nil)
		w := httptest.NewRecorder()

		handler.DAU(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
		}

		var rows []models.DAURow
		if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		if len(rows) != 2 || rows[0].Date != "2026-08-01" || rows[1].ActiveUsers != 17 {
			t.Errorf("rows = %+v", rows)
		}

		wantFrom := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		wantTo := time.Date(2026, 8, 7, 0, 0, 0, 0, time.UTC)
		if !store.gotFrom.Equal(wantFrom) || !store.gotTo.Equal(wantTo) {
			t.Errorf("query range = [%v, %v], want [%v, %v]",
				store.gotFrom, store.gotTo, wantFrom, wantTo)
		}
	})

	t.Run("empty series stays a JSON array", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{dauRows: []models.DAURow{}}
		handler := newTestHandler(store, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/stats/dau?from=2026-08-01&to=2026-08-02", nil)
		w := httptest.NewRecorder()

		handler.DAU(w, req)

		if got := strings.TrimSpace(w.Body.String()); got != "[]" {
			t.Errorf("body = %q, want []", got)
		}
	})

	t.Run("store failure is a database error", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{dauErr: errors.New("pool closed")}
		handler := newTestHandler(store, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/stats/dau?from=2026-08-01&to=2026-08-02", nil)
		w := httptest.NewRecorder()

		handler.DAU(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		resp := decodeErrorResponse(t, w.Body.Bytes())
		if resp.Error.Code != models.CodeDatabase {
			t.Errorf("code = %q, want %q", resp.Error.Code, models.CodeDatabase)
		}
	})
}

func TestTopEvents(t *testing.T) {
	t.Parallel()

	t.Run("defaults the limit to 10", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{topRows: []models.TopEvent{
			{EventType: "page_view", Count: 900},
			{EventType: "login", Count: 40},
		}}
		handler := newTestHandler(store, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/stats/top-events?from=2026-08-01&to=2026-08-07", nil)
		w := httptest.NewRecorder()

		handler.TopEvents(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if store.gotLimit != 10 {
			t.Errorf("limit = %d, want default 10", store.gotLimit)
		}

		var rows []models.TopEvent
		if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		if len(rows) != 2 || rows[0].EventType != "page_view" {
			t.Errorf("rows = %+v", rows)
		}
	})

	t.Run("honors an explicit limit", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		handler := newTestHandler(store, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/stats/top-events?from=2026-08-01&to=2026-08-07&limit=5", nil)
		w := httptest.NewRecorder()

		handler.TopEvents(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if store.gotLimit != 5 {
			t.Errorf("limit = %d, want 5", store.gotLimit)
		}
	})

	t.Run("store failure is a database error", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{topErr: errors.New("pool closed")}
		handler := newTestHandler(store, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/stats/top-events?from=2026-08-01&to=2026-08-02", nil)
		w := httptest.NewRecorder()

		handler.TopEvents(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}

func TestRetention(t *testing.T) {
	t.Parallel()

	t.Run("computes daily cohorts by default", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{cohorts: []models.RetentionCohort{}}
		handler := newTestHandler(store, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/stats/retention?start_date=2026-08-01", nil)
		w := httptest.NewRecorder()

		handler.Retention(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
		}
		if store.gotWindows != 3 {
			t.Errorf("windows = %d, want default 3", store.gotWindows)
		}
		if store.gotWindowType != "daily" {
			t.Errorf("window_type = %q, want daily", store.gotWindowType)
		}
		wantStart := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
		if !store.gotStart.Equal(wantStart) {
			t.Errorf("start = %v, want %v", store.gotStart, wantStart)
		}

		var resp models.RetentionResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		if resp.WindowType != "daily" {
			t.Errorf("response window_type = %q, want daily", resp.WindowType)
		}
		if resp.Cohorts == nil || len(resp.Cohorts) != 0 {
			t.Errorf("cohorts = %v, want empty list", resp.Cohorts)
		}
	})

	t.Run("marshals the flat cohort shape", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{cohorts: []models.RetentionCohort{{
			CohortStart: "2026-08-01",
			CohortSize:  50,
			Retained:    []int64{25, 10},
			Rates:       []float64{50, 20},
		}}}
		handler := newTestHandler(store, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/stats/retention?start_date=2026-08-01&windows=2", nil)
		w := httptest.NewRecorder()

		handler.Retention(w, req)

		var resp struct {
			Cohorts []map[string]interface{} `json:"cohorts"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response: %v", err)
		}
		if len(resp.Cohorts) != 1 {
			t.Fatalf("got %d cohorts, want 1", len(resp.Cohorts))
		}

		cohort := resp.Cohorts[0]
		want := map[string]float64{
			"window_0":         50,
			"window_1":         25,
			"window_2":         10,
			"retention_rate_1": 50,
			"retention_rate_2": 20,
		}
		if cohort["cohort_start"] != "2026-08-01" {
			t.Errorf("cohort_start = %v", cohort["cohort_start"])
		}
		for key, val := range want {
			got, ok := cohort[key].(float64)
			if !ok || got != val {
				t.Errorf("%s = %v, want %v", key, cohort[key], val)
			}
		}
	})

	t.Run("accepts weekly windows", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		handler := newTestHandler(store, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/stats/retention?start_date=2026-08-01&windows=2&window_type=weekly", nil)
		w := httptest.NewRecorder()

		handler.Retention(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
		}
		if store.gotWindows != 2 || store.gotWindowType != "weekly" {
			t.Errorf("forwarded windows=%d window_type=%q, want 2 weekly",
				store.gotWindows, store.gotWindowType)
		}
	})

	t.Run("rejects an unknown window type", func(t *testing.T) {
		t.Parallel()

		handler := newTestHandler(&fakeStore{}, nil, nil, nil)

		req := httptest.NewRequest(http.MethodGet,
			"/stats/retention?start_date=2026-08-01&window_type=monthly", nil)
		w := httptest.NewRecorder()

		handler.Retention(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
		}
		resp := decodeErrorResponse(t, w.Body.Bytes())
		if resp.Error.Code != models.CodeValidation {
			t.Errorf("code = %q, want %q", resp.Error.Code, models.CodeValidation)
		}
	})
}

// TestStatsParamValidation covers the rejection matrix shared by the
// stats endpoints.
func TestStatsParamValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		handle     func(*Handler, http.ResponseWriter, *http.Request)
		wantStatus int
		wantCode   string
	}{
		{
			name:       "dau missing both dates",
			target:     "/stats/dau",
			handle:     (*Handler).DAU,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeValidation,
		},
		{
			name:       "dau missing to",
			target:     "/stats/dau?from=2026-08-01",
			handle:     (*Handler).DAU,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeValidation,
		},
		{
			name:       "dau malformed from",
			target:     "/stats/dau?from=08%2F01%2F2026&to=2026-08-02",
			handle:     (*Handler).DAU,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeValidation,
		},
		{
			name:       "dau reversed range",
			target:     "/stats/dau?from=2026-08-07&to=2026-08-01",
			handle:     (*Handler).DAU,
			wantStatus: http.StatusBadRequest,
			wantCode:   models.CodeInvalidDateRange,
		},
		{
			name:       "top events limit zero",
			target:     "/stats/top-events?from=2026-08-01&to=2026-08-02&limit=0",
			handle:     (*Handler).TopEvents,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeValidation,
		},
		{
			name:       "top events limit over cap",
			target:     "/stats/top-events?from=2026-08-01&to=2026-08-02&limit=101",
			handle:     (*Handler).TopEvents,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeValidation,
		},
		{
			name:       "top events limit not an integer",
			target:     "/stats/top-events?from=2026-08-01&to=2026-08-02&limit=ten",
			handle:     (*Handler).TopEvents,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeValidation,
		},
		{
			name:       "top events reversed range",
			target:     "/stats/top-events?from=2026-08-07&to=2026-08-01",
			handle:     (*Handler).TopEvents,
			wantStatus: http.StatusBadRequest,
			wantCode:   models.CodeInvalidDateRange,
		},
		{
			name:       "retention missing start date",
			target:     "/stats/retention",
			handle:     (*Handler).Retention,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeValidation,
		},
		{
			name:       "retention windows zero",
			target:     "/stats/retention?start_date=2026-08-01&windows=0",
			handle:     (*Handler).Retention,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeValidation,
		},
		{
			name:       "retention windows over cap",
			target:     "/stats/retention?start_date=2026-08-01&windows=11",
			handle:     (*Handler).Retention,
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   models.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &fakeStore{}
			handler := newTestHandler(store, nil, nil, nil)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			w := httptest.NewRecorder()

			tt.handle(handler, w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			resp := decodeErrorResponse(t, w.Body.Bytes())
			if resp.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
			if store.queries != 0 {
				t.Errorf("store queried %d times, want 0 on parameter rejection", store.queries)
			}
		})
	}
}

func BenchmarkDAU(b *testing.B) {
	store := &fakeStore{dauRows: []models.DAURow{
		{Date: "2026-08-01", ActiveUsers: 42},
		{Date: "2026-08-02", ActiveUsers: 58},
	}}
	handler := newTestHandler(store, nil, nil, nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest(http.MethodGet, "/stats/dau?from=2026-08-01&to=2026-08-07", nil)
		w := httptest.NewRecorder()
		handler.DAU(w, req)
		if w.Code != http.StatusOK {
			b.Fatalf("status = %d", w.Code)
		}
	}
}
