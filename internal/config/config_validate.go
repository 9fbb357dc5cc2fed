// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks that required configuration is present and valid.
// It is called by Load; a failure here should abort startup.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateRedis(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}
	if err := c.validateWorker(); err != nil {
		return err
	}
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("API_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging, or production, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if err := validateURLScheme(c.Database.URL, "DATABASE_URL", "postgres", "postgresql"); err != nil {
		return err
	}
	if c.Database.PoolSize < 1 {
		return fmt.Errorf("DB_POOL_SIZE must be at least 1, got %d", c.Database.PoolSize)
	}
	if c.Database.MaxOverflow < 0 {
		return fmt.Errorf("DB_MAX_OVERFLOW must not be negative, got %d", c.Database.MaxOverflow)
	}
	return nil
}

func (c *Config) validateRedis() error {
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if err := validateURLScheme(c.Redis.URL, "REDIS_URL", "redis", "rediss"); err != nil {
		return err
	}
	if c.Redis.IdempotencyTTL <= 0 {
		return fmt.Errorf("REDIS_IDEMPOTENCY_TTL must be positive, got %s", c.Redis.IdempotencyTTL)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required")
	}
	if err := validateURLScheme(c.NATS.URL, "NATS_URL", "nats", "tls"); err != nil {
		return err
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("NATS_STREAM_NAME is required")
	}
	if c.NATS.Subject == "" {
		return fmt.Errorf("NATS_SUBJECT is required")
	}
	if c.NATS.ConsumerName == "" {
		return fmt.Errorf("NATS_CONSUMER_NAME is required")
	}
	if c.NATS.MaxAge <= 0 {
		return fmt.Errorf("NATS_MAX_AGE must be positive, got %s", c.NATS.MaxAge)
	}
	if c.NATS.MaxMsgs < 1 {
		return fmt.Errorf("NATS_MAX_MSGS must be at least 1, got %d", c.NATS.MaxMsgs)
	}
	if c.NATS.MaxBytes < 1 {
		return fmt.Errorf("NATS_MAX_BYTES must be at least 1, got %d", c.NATS.MaxBytes)
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
	}
	return nil
}

func (c *Config) validateWorker() error {
	if c.Worker.FetchBatch < 1 {
		return fmt.Errorf("WORKER_FETCH_BATCH must be at least 1, got %d", c.Worker.FetchBatch)
	}
	if c.Worker.FetchTimeout <= 0 {
		return fmt.Errorf("WORKER_FETCH_TIMEOUT must be positive, got %s", c.Worker.FetchTimeout)
	}
	if c.Worker.AckWait <= 0 {
		return fmt.Errorf("WORKER_ACK_WAIT must be positive, got %s", c.Worker.AckWait)
	}
	if c.Worker.MaxDeliver < 1 {
		return fmt.Errorf("WORKER_MAX_DELIVER must be at least 1, got %d", c.Worker.MaxDeliver)
	}
	if c.Worker.NakDelay < 0 {
		return fmt.Errorf("WORKER_NAK_DELAY must not be negative, got %s", c.Worker.NakDelay)
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	if !c.RateLimit.Enabled {
		return nil
	}
	if c.RateLimit.Requests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.RateLimit.Requests)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.RateLimit.Window)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be a valid level, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// validateURLScheme checks that a URL parses and uses one of the allowed schemes.
func validateURLScheme(raw, name string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", name, err)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("%s must use scheme %s, got %q", name, strings.Join(schemes, " or "), u.Scheme)
}
