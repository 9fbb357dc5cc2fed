// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/validation"
)

// respondJSON writes v as the JSON response body with the given status.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError writes the error envelope. A non-nil cause is recorded in
// the request's log context: server errors at error level, client errors
// at debug.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, cause error) {
	if cause != nil {
		evt := logging.Ctx(r.Context()).Debug()
		if status >= http.StatusInternalServerError {
			evt = logging.Ctx(r.Context()).Error()
		}
		evt.Err(cause).Str("code", code).Int("status", status).Msg("request failed")
	}

	respondJSON(w, status, models.NewErrorResponse(code, message))
}

// respondValidation writes a 422 envelope carrying per-field details.
func respondValidation(w http.ResponseWriter, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
		Status: "error",
		Error: &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		},
	})
}
