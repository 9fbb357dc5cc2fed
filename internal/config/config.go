// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package config provides centralized configuration for all Eventide
// components: HTTP server, event store, Redis cache, NATS JetStream,
// consumer worker, rate limiting, and logging.
//
// Configuration loading order (Koanf v2):
//  1. Defaults: built-in sensible defaults for every setting
//  2. Config file: optional YAML file (config.yaml) for persistent settings
//  3. Environment variables: override any setting (highest priority)
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Cannot load configuration")
//	}
//	// cfg.Database.URL, cfg.NATS.StreamName, etc. are now populated
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	NATS      NATSConfig      `koanf:"nats"`
	Worker    WorkerConfig    `koanf:"worker"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment variables:
//   - API_HOST: bind address (default: 0.0.0.0)
//   - API_PORT: listen port (default: 8000)
//   - HTTP_TIMEOUT: read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production
//   - CORS_ORIGINS: comma-separated allowed origins (default: *)
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
	CORSOrigins []string      `koanf:"cors_origins"`
}

// DatabaseConfig holds PostgreSQL event store settings.
//
// The connection pool is sized PoolSize + MaxOverflow; both map onto a
// single pgxpool MaxConns limit.
//
// Environment variables:
//   - DATABASE_URL: postgres:// connection string (required)
//   - DB_POOL_SIZE: base pool size (default: 20)
//   - DB_MAX_OVERFLOW: additional burst connections (default: 10)
type DatabaseConfig struct {
	URL         string `koanf:"url"`
	PoolSize    int    `koanf:"pool_size"`
	MaxOverflow int    `koanf:"max_overflow"`
}

// RedisConfig holds Redis settings for idempotency tracking and rate limiting.
//
// Environment variables:
//   - REDIS_URL: redis:// connection string (default: redis://localhost:6379)
//   - REDIS_IDEMPOTENCY_TTL: seen-marker lifetime (default: 24h)
type RedisConfig struct {
	URL            string        `koanf:"url"`
	IdempotencyTTL time.Duration `koanf:"idempotency_ttl"`
}

// NATSConfig holds NATS JetStream settings.
//
// Environment variables:
//   - NATS_URL: nats:// connection string (default: nats://localhost:4222)
//   - NATS_STREAM_NAME: JetStream stream name (default: EVENTS)
//   - NATS_SUBJECT: publish subject (default: events.ingest)
//   - NATS_CONSUMER_NAME: durable consumer name (default: event-processor)
//   - NATS_MAX_AGE: stream message retention (default: 168h)
//   - NATS_MAX_MSGS: stream message cap (default: 1000000)
//   - NATS_MAX_BYTES: stream byte cap (default: 1073741824)
//   - NATS_EMBEDDED: run an in-process JetStream server (default: false)
//   - NATS_STORE_DIR: embedded server storage directory
type NATSConfig struct {
	URL            string        `koanf:"url"`
	StreamName     string        `koanf:"stream_name"`
	Subject        string        `koanf:"subject"`
	ConsumerName   string        `koanf:"consumer_name"`
	MaxAge         time.Duration `koanf:"max_age"`
	MaxMsgs        int64         `koanf:"max_msgs"`
	MaxBytes       int64         `koanf:"max_bytes"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	StoreDir       string        `koanf:"store_dir"`
}

// WorkerConfig holds queue consumer settings.
//
// Environment variables:
//   - WORKER_ENABLED: run the consumer inside the API process (default: true)
//   - WORKER_FETCH_BATCH: messages per fetch (default: 10)
//   - WORKER_FETCH_TIMEOUT: max wait per fetch (default: 1s)
//   - WORKER_ACK_WAIT: redelivery timeout per attempt (default: 30s)
//   - WORKER_MAX_DELIVER: delivery attempts before the broker drops (default: 3)
//   - WORKER_NAK_DELAY: redelivery delay after transient failure (default: 5s)
type WorkerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	FetchBatch   int           `koanf:"fetch_batch"`
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
	AckWait      time.Duration `koanf:"ack_wait"`
	MaxDeliver   int           `koanf:"max_deliver"`
	NakDelay     time.Duration `koanf:"nak_delay"`
}

// RateLimitConfig holds per-client ingestion rate limit settings.
//
// The limiter is a fixed window counter in Redis keyed by client IP.
// Bursts of up to 2x the limit can cross a window boundary; this is an
// accepted trade for the single round trip per check.
//
// Environment variables:
//   - RATE_LIMIT_ENABLED: enforce the limit (default: true)
//   - RATE_LIMIT_REQUESTS: allowed requests per window (default: 1000)
//   - RATE_LIMIT_WINDOW: window length (default: 60s)
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// LoggingConfig holds log output settings.
//
// Environment variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the host:port listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// MaxConns returns the total pgxpool connection limit.
func (d DatabaseConfig) MaxConns() int32 {
	return int32(d.PoolSize + d.MaxOverflow)
}
