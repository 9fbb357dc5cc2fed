// Eventide - Event Ingestion and Analytics Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  zerolog.Level
	}{
		{name: "trace", input: "trace", want: zerolog.TraceLevel},
		{name: "debug", input: "debug", want: zerolog.DebugLevel},
		{name: "info", input: "info", want: zerolog.InfoLevel},
		{name: "warn", input: "warn", want: zerolog.WarnLevel},
		{name: "warning alias", input: "warning", want: zerolog.WarnLevel},
		{name: "error", input: "error", want: zerolog.ErrorLevel},
		{name: "fatal", input: "fatal", want: zerolog.FatalLevel},
		{name: "panic", input: "panic", want: zerolog.PanicLevel},
		{name: "disabled", input: "disabled", want: zerolog.Disabled},
		{name: "mixed case", input: "DeBuG", want: zerolog.DebugLevel},
		{name: "unknown defaults to info", input: "verbose", want: zerolog.InfoLevel},
		{name: "empty defaults to info", input: "", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestInitJSONOutput(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Timestamp: true, Output: &buf})

	Info().Str("stream", "EVENTS").Msg("stream ready")

	out := buf.String()
	if !strings.Contains(out, `"level":"info"`) {
		t.Errorf("expected level field in output, got %q", out)
	}
	if !strings.Contains(out, `"stream":"EVENTS"`) {
		t.Errorf("expected structured field in output, got %q", out)
	}
	if !strings.Contains(out, `"message":"stream ready"`) {
		t.Errorf("expected message field in output, got %q", out)
	}
	if !strings.Contains(out, `"time":`) {
		t.Errorf("expected timestamp in output, got %q", out)
	}
}

func TestInitLevelFiltering(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "warn", Format: "json", Output: &buf})

	Debug().Msg("hidden")
	Info().Msg("hidden too")
	Warn().Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("sub-level messages leaked: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestInitConsoleFormat(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "console", Output: &buf})

	Info().Msg("console output")

	out := buf.String()
	if !strings.Contains(out, "console output") {
		t.Errorf("console message missing: %q", out)
	}
	// Console format is human-readable, not a JSON object.
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("expected console format, got JSON: %q", out)
	}
}

func TestWithComponent(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	Init(Config{Level: "info", Format: "json", Output: &buf})

	logger := WithComponent("worker")
	logger.Info().Msg("component test")

	if !strings.Contains(buf.String(), `"component":"worker"`) {
		t.Errorf("expected component field, got %q", buf.String())
	}
}

func TestSetLogger(t *testing.T) {
	defer Init(DefaultConfig())

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	Info().Msg("replaced")

	if !strings.Contains(buf.String(), "replaced") {
		t.Errorf("expected output through replaced logger, got %q", buf.String())
	}
}
