// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package queue

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/models"
)

// depthInterval is how often the worker samples consumer state for the
// queue depth gauge.
const depthInterval = 30 * time.Second

// fetchErrBackoff prevents a tight retry loop when the broker is down.
const fetchErrBackoff = time.Second

// EventInserter writes events to durable storage.
// Satisfied by *store.Store.
type EventInserter interface {
	InsertEvents(ctx context.Context, events []models.Event) (inserted, duplicates int, err error)
}

// messageFetcher is the subset of jetstream.Consumer used by the worker.
// This interface allows for testing with fake implementations.
type messageFetcher interface {
	Fetch(batch int, opts ...jetstream.FetchOpt) (jetstream.MessageBatch, error)
	Info(ctx context.Context) (*jetstream.ConsumerInfo, error)
}

// consumerCreator is the subset of jetstream.JetStream used to bind the
// durable consumer.
type consumerCreator interface {
	CreateOrUpdateConsumer(ctx context.Context, stream string, cfg jetstream.ConsumerConfig) (jetstream.Consumer, error)
}

// WorkerStats holds runtime counters for monitoring.
type WorkerStats struct {
	Received       int64 // Total messages fetched
	Processed      int64 // Messages acknowledged after a successful insert
	DecodeFailures int64 // Messages terminated because the payload would not decode
	InsertFailures int64 // Messages nacked after a store failure
}

// Worker drains the work-queue stream into the event store.
//
// Each message is decoded, inserted, and explicitly acknowledged. Failure
// handling distinguishes poison messages from transient faults:
//   - Undecodable payloads are terminated; redelivery cannot fix them.
//   - Store failures are nacked with a delay, and the broker redelivers
//     up to the configured MaxDeliver before dropping the message.
//
// Worker implements suture.Service. Serve runs until the context is
// canceled and is safe to restart.
type Worker struct {
	consumer messageFetcher
	store    EventInserter
	cfg      config.WorkerConfig
	logger   zerolog.Logger

	received       atomic.Int64
	processed      atomic.Int64
	decodeFailures atomic.Int64
	insertFailures atomic.Int64
}

// NewWorker binds the durable pull consumer and returns a worker ready to
// serve. Binding is idempotent: restarts pick up the existing consumer and
// its pending messages.
func NewWorker(ctx context.Context, js consumerCreator, store EventInserter, natsCfg config.NATSConfig, workerCfg config.WorkerConfig) (*Worker, error) {
	if js == nil {
		return nil, fmt.Errorf("JetStream context required")
	}
	if store == nil {
		return nil, fmt.Errorf("event store required")
	}

	cons, err := js.CreateOrUpdateConsumer(ctx, natsCfg.StreamName, jetstream.ConsumerConfig{
		Durable:       natsCfg.ConsumerName,
		FilterSubject: natsCfg.Subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       workerCfg.AckWait,
		MaxDeliver:    workerCfg.MaxDeliver,
	})
	if err != nil {
		return nil, fmt.Errorf("bind consumer %s on stream %s: %w", natsCfg.ConsumerName, natsCfg.StreamName, err)
	}

	return &Worker{
		consumer: cons,
		store:    store,
		cfg:      workerCfg,
		logger:   logging.WithComponent("worker"),
	}, nil
}

// Serve implements suture.Service. It fetches messages in batches until
// the context is canceled, then returns ctx.Err() so the supervisor treats
// the stop as a normal shutdown.
func (w *Worker) Serve(ctx context.Context) error {
	w.logger.Info().
		Int("fetch_batch", w.cfg.FetchBatch).
		Dur("ack_wait", w.cfg.AckWait).
		Int("max_deliver", w.cfg.MaxDeliver).
		Msg("queue worker started")

	ticker := time.NewTicker(depthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("queue worker stopped")
			return ctx.Err()
		case <-ticker.C:
			w.reportQueueDepth(ctx)
		default:
		}

		batch, err := w.consumer.Fetch(w.cfg.FetchBatch, jetstream.FetchMaxWait(w.cfg.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info().Msg("queue worker stopped")
				return ctx.Err()
			}
			w.logger.Warn().Err(err).Msg("fetch failed")
			select {
			case <-ctx.Done():
				w.logger.Info().Msg("queue worker stopped")
				return ctx.Err()
			case <-time.After(fetchErrBackoff):
			}
			continue
		}

		for msg := range batch.Messages() {
			w.processMessage(ctx, msg)
		}
		if err := batch.Error(); err != nil && ctx.Err() == nil {
			w.logger.Warn().Err(err).Msg("fetch batch error")
		}
	}
}

// processMessage handles a single queued event.
func (w *Worker) processMessage(ctx context.Context, msg jetstream.Msg) {
	w.received.Add(1)

	var event models.Event
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		w.decodeFailures.Add(1)
		metrics.RecordEventFailed(metrics.ReasonDecode)
		w.logger.Warn().
			Err(err).
			Str("subject", msg.Subject()).
			Msg("terminating undecodable message")

		// Term, not Nak: redelivery cannot fix a malformed payload.
		if err := msg.Term(); err != nil {
			w.logger.Warn().Err(err).Msg("failed to terminate message")
		}
		return
	}

	inserted, _, err := w.store.InsertEvents(ctx, []models.Event{event})
	if err != nil {
		w.insertFailures.Add(1)
		w.nakWithAccounting(msg, event, err)
		return
	}

	if inserted > 0 {
		metrics.RecordEventIngested(event.EventType)
	} else {
		// Already in the store from an earlier delivery. The unique
		// constraint on event_id makes the redelivery harmless.
		metrics.RecordEventsDuplicate(1)
	}

	w.processed.Add(1)
	if err := msg.Ack(); err != nil {
		w.logger.Warn().
			Err(err).
			Str("event_id", event.EventID.String()).
			Msg("failed to acknowledge message")
	}
}

// nakWithAccounting requests redelivery after a store failure and records
// whether the broker will actually try again. Once NumDelivered reaches
// MaxDeliver the broker drops the message, so that case is logged at error
// level with its own failure reason.
func (w *Worker) nakWithAccounting(msg jetstream.Msg, event models.Event, cause error) {
	reason := metrics.ReasonProcessing
	var delivery uint64
	if meta, err := msg.Metadata(); err == nil {
		delivery = meta.NumDelivered
		if w.cfg.MaxDeliver > 0 && delivery >= uint64(w.cfg.MaxDeliver) {
			reason = metrics.ReasonMaxDeliveries
		}
	}
	metrics.RecordEventFailed(reason)

	evt := w.logger.Warn()
	if reason == metrics.ReasonMaxDeliveries {
		evt = w.logger.Error()
	}
	evt.Err(cause).
		Uint64("delivery", delivery).
		Str("event_id", event.EventID.String()).
		Msg("insert failed, requesting redelivery")

	if err := msg.NakWithDelay(w.cfg.NakDelay); err != nil {
		w.logger.Warn().Err(err).Msg("failed to nack message")
	}
}

// reportQueueDepth updates the queue depth gauge from consumer state.
// Depth counts undelivered messages plus deliveries awaiting ack.
func (w *Worker) reportQueueDepth(ctx context.Context) {
	info, err := w.consumer.Info(ctx)
	if err != nil {
		w.logger.Debug().Err(err).Msg("consumer info unavailable")
		return
	}
	metrics.UpdateQueueDepth(int64(info.NumPending) + int64(info.NumAckPending))
}

// Stats returns current runtime counters.
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		Received:       w.received.Load(),
		Processed:      w.processed.Load(),
		DecodeFailures: w.decodeFailures.Load(),
		InsertFailures: w.insertFailures.Load(),
	}
}

// String implements fmt.Stringer for supervisor logging.
func (w *Worker) String() string {
	return "queue-worker"
}
