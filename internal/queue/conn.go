// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package queue moves accepted events from the API to the event store
// through a NATS JetStream work queue.
//
// The package provides four pieces:
//   - Connect: a NATS connection with automatic reconnection
//   - StreamManager: idempotent provisioning of the work-queue stream
//   - Publisher: a Watermill JetStream publisher with circuit breaker
//     protection and per-message deduplication IDs
//   - Worker: a durable pull consumer that drains the queue into the store
//
// Delivery is at-least-once. The store's unique constraint on event_id
// absorbs redeliveries, so a crash between insert and ack cannot create
// duplicate rows.
package queue

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tomtom215/eventide/internal/logging"
)

const reconnectWait = 2 * time.Second

// Connect establishes a NATS connection with automatic reconnection.
// The URL should be the resolved server address: the embedded server's
// client URL when one is running, the configured external URL otherwise.
func Connect(url string) (*nats.Conn, error) {
	log := logging.WithComponent("queue")

	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			evt := log.Error().Err(err)
			if sub != nil {
				evt = evt.Str("subject", sub.Subject)
			}
			evt.Msg("NATS async error")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}

	log.Info().Str("url", url).Msg("NATS connection established")
	return nc, nil
}
