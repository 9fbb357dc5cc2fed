// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/models"
)

const (
	breakerName             = "nats-publisher"
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
)

// Publisher wraps a Watermill JetStream publisher with resilience patterns.
// It provides circuit breaker protection and automatic reconnection handling.
//
// Every message carries a Nats-Msg-Id header equal to the event ID, so the
// broker's deduplication window drops publish retries that already landed.
type Publisher struct {
	publisher message.Publisher
	breaker   *gobreaker.CircuitBreaker[interface{}]
	subject   string
	logger    zerolog.Logger
	mu        sync.RWMutex
	closed    bool
}

// NewPublisher creates a resilient Watermill NATS publisher for the given
// subject. The URL should be the resolved server address; the stream must
// already exist (see StreamManager), so auto-provisioning is disabled.
func NewPublisher(url, subject string) (*Publisher, error) {
	log := logging.WithComponent("queue")
	wmLogger := watermill.NewStdLogger(false, false)

	// NATS connection options with reconnection handling
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(reconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("publisher NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("publisher NATS reconnected")
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false, // Stream is pre-created by StreamManager
			TrackMsgId:    true,  // Enable broker-side deduplication
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, wmLogger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	return &Publisher{
		publisher: pub,
		breaker:   newPublishBreaker(log),
		subject:   subject,
		logger:    log,
	}, nil
}

// newPublishBreaker builds the circuit breaker guarding publish calls.
// The breaker opens after consecutive failures so a dead broker fails
// requests fast instead of holding every ingest until its retries expire.
func newPublishBreaker(log zerolog.Logger) *gobreaker.CircuitBreaker[interface{}] {
	settings := gobreaker.Settings{
		Name:    breakerName,
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetCircuitBreakerState(name, int(to))
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return gobreaker.NewCircuitBreaker[interface{}](settings)
}

// Publish sends a message to the work-queue subject with circuit breaker
// protection. The message UUID is used as Nats-Msg-Id if not already set.
func (p *Publisher) Publish(ctx context.Context, msg *message.Message) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return fmt.Errorf("publisher is closed")
	}
	p.mu.RUnlock()

	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}
	msg.SetContext(ctx)

	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(p.subject, msg)
	})
	if err == nil {
		metrics.RecordEventsPublished(1)
	}

	return err
}

// PublishEvent serializes and publishes a single event.
// The event ID becomes the message UUID and the broker deduplication ID.
func (p *Publisher) PublishEvent(ctx context.Context, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}

	msg := message.NewMessage(event.EventID.String(), data)
	msg.Metadata.Set("event_type", event.EventType)
	msg.Metadata.Set("user_id", event.UserID)

	return p.Publish(ctx, msg)
}

// PublishBatch publishes events in order, stopping at the first failure.
// Returns the number of events published and the error that stopped the
// batch, if any.
func (p *Publisher) PublishBatch(ctx context.Context, events []models.Event) (int, error) {
	for i, event := range events {
		if err := p.PublishEvent(ctx, event); err != nil {
			return i, fmt.Errorf("publish event %s: %w", event.EventID, err)
		}
	}
	return len(events), nil
}

// BreakerState reports the circuit breaker state for health checks.
func (p *Publisher) BreakerState() gobreaker.State {
	return p.breaker.State()
}

// Close gracefully shuts down the publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.publisher.Close()
}
