// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/eventide/internal/api"
	"github.com/tomtom215/eventide/internal/cache"
	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/queue"
	"github.com/tomtom215/eventide/internal/store"
	"github.com/tomtom215/eventide/internal/supervisor"
	"github.com/tomtom215/eventide/internal/supervisor/services"
)

const (
	schemaTimeout   = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	idleTimeout     = 60 * time.Second
)

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
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Eventide")

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
	logging.Info().Msg("Database schema ready")

	redisClient, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close Redis client")
		}
	}()

	tracker := cache.NewIdempotencyTracker(redisClient, cfg.Redis.IdempotencyTTL)
	limiter := cache.NewRateLimiter(redisClient, cfg.RateLimit)

	natsURL := cfg.NATS.URL
	if cfg.NATS.EmbeddedServer {
		embedded, err := queue.NewEmbeddedServer(queue.DefaultServerConfig(cfg.NATS.StoreDir))
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to start embedded NATS server")
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			if err := embedded.Shutdown(stopCtx); err != nil {
				logging.Error().Err(err).Msg("Failed to stop embedded NATS server")
			}
		}()
		natsURL = embedded.ClientURL()
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server running")
	}

	nc, err := queue.Connect(natsURL)
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
	logging.Info().Str("stream", cfg.NATS.StreamName).Msg("JetStream stream ready")

	publisher, err := queue.NewPublisher(natsURL, cfg.NATS.Subject)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create queue publisher")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close queue publisher")
		}
	}()

	handler := api.NewHandler(st, tracker, publisher, streamManager)
	router := api.NewRouter(handler, limiter, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  idleTimeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	if cfg.Worker.Enabled {
		worker, err := queue.NewWorker(ctx, js, st, cfg.NATS, cfg.Worker)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create queue worker")
		}
		tree.AddPipelineService(worker)
		logging.Info().Str("consumer", cfg.NATS.ConsumerName).Msg("Queue worker enabled")
	} else {
		logging.Info().Msg("Queue worker disabled; run cmd/worker separately")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server registered")

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

	// Serve may still be unwinding after cancel; wait for its final error.
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

	logging.Info().Msg("Eventide stopped gracefully")
}
