// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// This file contains the error envelope returned by all API error
// responses and the machine-readable error codes used in it.
package models

// Error codes returned in APIError.Code.
const (
	// CodeValidation marks request schema or parameter violations (422).
	CodeValidation = "VALIDATION_ERROR"

	// CodeInvalidDateRange marks a reversed from/to range (400).
	CodeInvalidDateRange = "INVALID_DATE_RANGE"

	// CodeRateLimited marks a rejected request over the client's limit (429).
	CodeRateLimited = "RATE_LIMITED"

	// CodeDependency marks a transient backing-service failure (500).
	CodeDependency = "DEPENDENCY_ERROR"

	// CodeDatabase marks an event store failure (500).
	CodeDatabase = "DATABASE_ERROR"

	// CodeInternal marks an unexpected server error (500).
	CodeInternal = "INTERNAL_ERROR"

	// CodeNotFound marks an unknown route (404).
	CodeNotFound = "NOT_FOUND"

	// CodeMethodNotAllowed marks a known route with the wrong method (405).
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

// APIError is the machine-readable error payload.
type APIError struct {
	// Code is one of the Code* constants.
	Code string `json:"code"`

	// Message is a human-readable description safe to show to clients.
	Message string `json:"message"`

	// Details carries structured context such as per-field validation
	// failures. Omitted when empty.
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse is the envelope for every non-2xx API response.
type ErrorResponse struct {
	Status string    `json:"status"`
	Error  *APIError `json:"error"`
}

// NewErrorResponse builds an ErrorResponse with the given code and message.
func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Status: "error",
		Error:  &APIError{Code: code, Message: message},
	}
}
