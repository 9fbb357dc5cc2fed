// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package services adapts components with their own lifecycle idioms to
the suture.Service interface so the supervisor tree can run them.

The queue worker already satisfies suture.Service and needs no wrapper
here. The HTTP server does not: net/http blocks in ListenAndServe and
shuts down through a separate method, so HTTPServerService translates
between the two:

	svc := services.NewHTTPServerService(srv, 10*time.Second)
	tree.AddAPIService(svc)

Serve return values drive the supervisor: nil means stopped for good,
an error means restart, and ctx.Err() after cancellation is a normal
shutdown.
*/
package services
