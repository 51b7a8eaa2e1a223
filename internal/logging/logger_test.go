// Launchpad - Marketing Site and Admin Dashboard Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/launchpad

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	if !ValidLevel("warn") {
		t.Error("expected warn to be valid")
	}
	if ValidLevel("loud") {
		t.Error("expected loud to be invalid")
	}
}

func TestCtxAddsRequestIDAndActor(t *testing.T) {
	var buf bytes.Buffer
	prev := Logger()
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() { SetLogger(prev) })

	ctx := ContextWithRequestID(context.Background(), "req-123")
	ctx = ContextWithActor(ctx, "admin@example.com")
	Ctx(ctx).Info().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON log line: %v (%s)", err, buf.String())
	}
	if entry["request_id"] != "req-123" {
		t.Errorf("expected request_id req-123, got %v", entry["request_id"])
	}
	if entry["actor"] != "ad***@example.com" {
		t.Errorf("expected masked actor, got %v", entry["actor"])
	}
}

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	h := &SlogHandler{logger: NewTestLogger(&buf)}
	logger := slog.New(h).WithGroup("svc").With("name", "outbox")
	logger.Warn("service restarted", "attempt", 3)

	out := buf.String()
	for _, want := range []string{`"svc.name":"outbox"`, `"svc.attempt":3`, `"level":"warn"`, "service restarted"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestSanitizers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"email", SanitizeEmail("jane.doe@example.com"), "ja***@example.com"},
		{"short email", SanitizeEmail("jd@example.com"), "***@example.com"},
		{"not email", SanitizeEmail("nope"), "***"},
		{"token", SanitizeToken("eyJhbGciOiJIUzI1NiJ9.payload"), "eyJh...load"},
		{"short token", SanitizeToken("abc"), "***"},
		{"secret key", SanitizeValue("password", "hunter2hunter2"), "hunt...ter2"},
		{"plain", SanitizeValue("status", "paid"), "paid"},
		{"control chars", SanitizeLogValue("a\nb\tc"), "abc"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}
