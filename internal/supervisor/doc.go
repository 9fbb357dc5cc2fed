// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package supervisor provides process supervision for Eventide using
suture v4.

Every long-running component runs under a hierarchical supervisor tree
with Erlang-style restart semantics: a crashed service is restarted
with exponential backoff, and failures are isolated to their layer.

	root ("eventide")
	├── pipeline-layer
	│   └── queue worker (JetStream pull consumer)
	└── api-layer
	    └── HTTP server

The split means a worker stuck in a crash loop backs off on its own
while the API keeps answering ingests and queries, and an HTTP listener
failure does not interrupt message processing.

# Services

Anything added to the tree must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return nil to stop for good, return an error to be restarted, and
return promptly once ctx is canceled. The queue worker implements this
directly; the HTTP server is wrapped by services.HTTPServerService.

# Restart behavior

TreeConfig carries suture's knobs: each failure bumps a per-supervisor
counter that decays over FailureDecay seconds, and once the counter
passes FailureThreshold further restarts wait FailureBackoff. The
defaults (5 failures, 30s decay, 15s backoff, 10s shutdown timeout)
are suture's own.

Supervision events are logged through slog via the sutureslog adapter;
wire it to the process logger with logging.NewSlogHandler.

# Shutdown

Canceling the context passed to Serve stops every service, deepest
first, each given ShutdownTimeout to return. UnstoppedServiceReport
names the ones that did not, which is the first place to look when the
process hangs on exit.
*/
package supervisor
