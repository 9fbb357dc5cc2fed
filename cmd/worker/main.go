// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/queue"
	"github.com/tomtom215/eventide/internal/store"
	"github.com/tomtom215/eventide/internal/supervisor"
)

const schemaTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("consumer", cfg.NATS.ConsumerName).
		Msg("Starting Eventide worker")

	if cfg.NATS.EmbeddedServer {
		logging.Warn().Msg("NATS_EMBEDDED is ignored by the worker; connect it to the server's broker via NATS_URL")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer st.Close()

	schemaCtx, schemaCancel := context.WithTimeout(ctx, schemaTimeout)
	err = st.CreateSchema(schemaCtx)
	schemaCancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to apply database schema")
	}

	nc, err := queue.Connect(cfg.NATS.URL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	defer nc.Close()

	js, err := jetstream.New(nc)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create JetStream context")
	}

	streamManager, err := queue.NewStreamManager(js, cfg.NATS)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create stream manager")
	}
	if _, err := streamManager.EnsureStream(ctx); err != nil {
		logging.Fatal().Err(err).Msg("Failed to provision JetStream stream")
	}

	worker, err := queue.NewWorker(ctx, js, st, cfg.NATS, cfg.Worker)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create queue worker")
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddPipelineService(worker)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree failed")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error during shutdown")
		}
	}

	unstopped, err := tree.UnstoppedServiceReport()
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to collect unstopped service report")
	}
	for _, entry := range unstopped {
		logging.Warn().Str("service", entry.Name).Msg("Service did not stop cleanly")
	}

	logging.Info().Msg("Eventide worker stopped gracefully")
}
