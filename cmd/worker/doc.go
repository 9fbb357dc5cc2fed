// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package main is the entry point for the standalone Eventide worker.

The worker consumes event batches from the NATS JetStream work queue
and persists them to PostgreSQL. It runs the same consumer as the
server's in-process worker; deploy it separately when ingestion and
persistence need to scale independently:

	# API process: accept and queue only
	WORKER_ENABLED=false ./eventide

	# One or more worker processes: drain the queue
	./eventide-worker

Workers sharing a NATS_CONSUMER_NAME join the same durable consumer,
so the broker balances messages across them. Duplicate deliveries are
absorbed by the Postgres insert, which skips rows whose event ID is
already stored.

The worker connects to an external broker via NATS_URL and ignores
NATS_EMBEDDED; an embedded JetStream server belongs to the server
process that created it.
*/
package main
