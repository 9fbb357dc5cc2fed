// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultPostgresImage matches the lowest PostgreSQL version the
	// schema targets.
	DefaultPostgresImage = "postgres:16-alpine"

	// DefaultPostgresDatabase is the database created for each test run.
	DefaultPostgresDatabase = "events_test"
)

// PostgresContainer represents a running PostgreSQL container for testing.
type PostgresContainer struct {
	testcontainers.Container

	// URL is a postgres:// connection string reachable from the host,
	// with sslmode disabled.
	URL string
}

// PostgresOption configures the PostgreSQL container.
type PostgresOption func(*postgresConfig)

type postgresConfig struct {
	image        string
	database     string
	startTimeout time.Duration
}

// WithPostgresImage sets a custom PostgreSQL Docker image.
func WithPostgresImage(image string) PostgresOption {
	return func(c *postgresConfig) {
		c.image = image
	}
}

// WithPostgresDatabase sets the database name created at startup.
func WithPostgresDatabase(name string) PostgresOption {
	return func(c *postgresConfig) {
		c.database = name
	}
}

// WithPostgresStartTimeout sets the readiness wait timeout.
func WithPostgresStartTimeout(timeout time.Duration) PostgresOption {
	return func(c *postgresConfig) {
		c.startTimeout = timeout
	}
}

// NewPostgresContainer creates and starts a PostgreSQL container.
//
// The container is ready for connections when this returns; the caller is
// responsible for terminating it, typically via CleanupContainer.
func NewPostgresContainer(ctx context.Context, opts ...PostgresOption) (*PostgresContainer, error) {
	cfg := &postgresConfig{
		image:        DefaultPostgresImage,
		database:     DefaultPostgresDatabase,
		startTimeout: 120 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	container, err := pgcontainer.Run(ctx,
		cfg.image,
		pgcontainer.WithDatabase(cfg.database),
		pgcontainer.WithUsername("test"),
		pgcontainer.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			// The postgres entrypoint restarts once during init, so wait
			// for the second ready line.
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(cfg.startTimeout),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return &PostgresContainer{
		Container: container,
		URL:       url,
	}, nil
}
