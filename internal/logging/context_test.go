// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	if got := RequestIDFromContext(ctx); got != "" {
		t.Errorf("empty context returned request ID %q", got)
	}

	ctx = ContextWithRequestID(ctx, "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext = %q, want %q", got, "req-123")
	}
}

func TestGenerateRequestID(t *testing.T) {
	a := GenerateRequestID()
	b := GenerateRequestID()

	if a == "" || b == "" {
		t.Fatal("generated empty request ID")
	}
	if a == b {
		t.Errorf("consecutive request IDs collided: %q", a)
	}
	if len(a) != 36 {
		t.Errorf("expected canonical UUID length 36, got %d (%q)", len(a), a)
	}
}

func TestCtxAddsRequestID(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "abc-def")
	Ctx(ctx).Info().Msg("with request id")

	if !strings.Contains(buf.String(), `"request_id":"abc-def"`) {
		t.Errorf("expected request_id field, got %q", buf.String())
	}
}

func TestCtxWithoutRequestID(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})

	Ctx(context.Background()).Info().Msg("plain")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected request_id field: %q", buf.String())
	}
}

func TestLoggerFromContext(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	stored := NewTestLogger(&buf)

	ctx := ContextWithLogger(context.Background(), stored)
	logger := LoggerFromContext(ctx)
	logger.Info().Msg("stored logger")

	if !strings.Contains(buf.String(), "stored logger") {
		t.Errorf("expected output through stored logger, got %q", buf.String())
	}
}

func TestCtxWithExtraFields(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})

	ctx := ContextWithRequestID(context.Background(), "req-9")
	logger := CtxWith(ctx).Str("user_id", "u-1").Logger()
	logger.Info().Msg("combined")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-9"`) {
		t.Errorf("expected request_id field, got %q", out)
	}
	if !strings.Contains(out, `"user_id":"u-1"`) {
		t.Errorf("expected user_id field, got %q", out)
	}
}
