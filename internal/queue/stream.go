// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/eventide/internal/config"
)

// duplicateWindow is the broker-side deduplication window for Nats-Msg-Id
// headers. Redis is the authoritative duplicate filter; this is a second
// line of defense against publish retries.
const duplicateWindow = 2 * time.Minute

// JetStreamContext defines the subset of jetstream.JetStream used by
// StreamManager. This interface allows for testing with mock implementations.
type JetStreamContext interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
	UpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// StreamManager handles JetStream stream lifecycle management.
// It ensures the work-queue stream exists with the correct configuration
// before publishers and the worker start.
//
// Key responsibilities:
//   - Create the stream if it doesn't exist
//   - Update stream configuration if it already exists
//   - Provide a health check for stream availability
type StreamManager struct {
	js  JetStreamContext
	cfg config.NATSConfig
}

// NewStreamManager creates a stream manager for the configured stream.
// Returns an error if the JetStream context is nil.
func NewStreamManager(js JetStreamContext, cfg config.NATSConfig) (*StreamManager, error) {
	if js == nil {
		return nil, fmt.Errorf("JetStream context required")
	}

	return &StreamManager{
		js:  js,
		cfg: cfg,
	}, nil
}

// EnsureStream creates or updates the stream with the configured settings.
// This operation is idempotent - calling it multiple times is safe.
//
// The stream is configured with:
//   - File storage for durability across restarts
//   - WorkQueuePolicy retention (messages are removed once acknowledged)
//   - DiscardOld so the oldest messages go first when limits are reached
//   - A deduplication window for broker-side Nats-Msg-Id filtering
//
// Returns the stream handle or an error if creation/update fails.
func (m *StreamManager) EnsureStream(ctx context.Context) (jetstream.Stream, error) {
	streamCfg := jetstream.StreamConfig{
		Name:       m.cfg.StreamName,
		Subjects:   []string{m.cfg.Subject},
		Retention:  jetstream.WorkQueuePolicy,
		MaxAge:     m.cfg.MaxAge,
		MaxBytes:   m.cfg.MaxBytes,
		MaxMsgs:    m.cfg.MaxMsgs,
		Duplicates: duplicateWindow,
		Storage:    jetstream.FileStorage,
		Discard:    jetstream.DiscardOld,
	}

	// Try to get existing stream
	_, err := m.js.Stream(ctx, m.cfg.StreamName)
	if err == nil {
		// Stream exists, update configuration
		stream, err := m.js.UpdateStream(ctx, streamCfg)
		if err != nil {
			return nil, fmt.Errorf("update stream %s: %w", m.cfg.StreamName, err)
		}
		return stream, nil
	}

	// Stream doesn't exist, create it
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		stream, err := m.js.CreateStream(ctx, streamCfg)
		if err != nil {
			return nil, fmt.Errorf("create stream %s: %w", m.cfg.StreamName, err)
		}
		return stream, nil
	}

	// Unexpected error checking stream existence
	return nil, fmt.Errorf("check stream %s: %w", m.cfg.StreamName, err)
}

// Info retrieves current stream state and configuration.
// Returns an error if the stream doesn't exist.
func (m *StreamManager) Info(ctx context.Context) (*jetstream.StreamInfo, error) {
	stream, err := m.js.Stream(ctx, m.cfg.StreamName)
	if err != nil {
		return nil, fmt.Errorf("get stream %s: %w", m.cfg.StreamName, err)
	}
	return stream.Info(ctx)
}

// IsHealthy checks if the stream exists and is accessible.
func (m *StreamManager) IsHealthy(ctx context.Context) bool {
	_, err := m.js.Stream(ctx, m.cfg.StreamName)
	return err == nil
}
