// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package main is the bulk CSV import tool for Eventide.

The tool writes directly to PostgreSQL, bypassing the HTTP API and the
queue, so large backfills do not compete with live ingestion. Inserts
go through the same idempotent path as the queue worker; rows whose
event ID is already stored count as duplicates rather than errors.

Exit codes:

	0   every row imported or deduplicated
	1   fatal error, or some rows failed to parse or insert
	130 interrupted by SIGINT or SIGTERM

A `--rate` limit throttles the import to avoid starving a production
database; the default is unthrottled.
*/
package main
