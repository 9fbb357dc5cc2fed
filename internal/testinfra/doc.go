// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package testinfra provides container-backed infrastructure for integration
// tests.
//
// The package uses testcontainers-go to run a disposable PostgreSQL instance
// per test, so integration tests exercise real SQL semantics (ON CONFLICT,
// timezone bucketing, array parameters) instead of mocks.
//
// All of this package is behind the integration build tag; unit test runs
// never touch Docker. A typical test:
//
//	func TestInsert(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//
//	    // Connect using pg.URL ...
//	}
package testinfra
