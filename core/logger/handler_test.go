package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	coreconfig "github.com/m3rciful/familybudget/core/config"
)

func captureLine(t *testing.T, format logFormat, emit func(*slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{
		level:    slog.LevelDebug,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	emit(slog.New(h))
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	line := captureLine(t, formatKV, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "fsm"), slog.LevelInfo, "fsm.transition",
			slog.String("status", "OK"),
			slog.String("from", "title"),
			slog.String("to", "category"),
		)
	})

	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=fsm", "event=fsm.transition", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "from=title", "to=category"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-json")

	line := captureLine(t, formatJSON, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "api.budget"), slog.LevelError, "api.call",
			slog.String("status", "fail"),
			slog.Int("http_code", 500),
			slog.String("err", "boom"),
		)
	})

	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"api.budget"`, `"event":"api.call"`, `"status":"fail"`, `"rid":"rid-json"`, `"http_code":500`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := "123:456:789"
	ctx := WithRID(context.Background(), rawRID)

	kv := captureLine(t, formatKV, func(l *slog.Logger) {
		LogEvent(ctx, l, slog.LevelInfo, "rid.test")
	})
	if !strings.Contains(kv, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", kv)
	}
	if strings.Contains(kv, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", kv)
	}

	js := captureLine(t, formatJSON, func(l *slog.Logger) {
		LogEvent(ctx, l, slog.LevelInfo, "rid.test")
	})
	if !strings.Contains(js, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", js)
	}
	if !strings.Contains(js, `"component":"app"`) {
		t.Fatalf("expected default component, got %s", js)
	}
}

func TestStructuredHandlerDurationsAndGroups(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		l.WithGroup("http").Info("api.call",
			slog.Duration("duration", 1499*time.Microsecond),
			slog.String("method", "GET"),
		)
	})
	if !strings.Contains(line, "http.duration_ms=1") {
		t.Fatalf("expected rounded grouped duration, got %s", line)
	}
	if !strings.Contains(line, "http.method=GET") {
		t.Fatalf("expected grouped key, got %s", line)
	}
	if !strings.Contains(line, "event=api.call") {
		t.Fatalf("expected message used as event, got %s", line)
	}
}

func TestStructuredHandlerQuotesAndDropsEmpty(t *testing.T) {
	line := captureLine(t, formatKV, func(l *slog.Logger) {
		LogEvent(context.Background(), l, slog.LevelWarn, "x",
			slog.String("payload", "Groceries at market"),
			slog.String("username", ""),
			slog.String("outcome", "weird"),
		)
	})
	if !strings.Contains(line, `payload="Groceries at market"`) {
		t.Fatalf("expected quoted payload, got %s", line)
	}
	if strings.Contains(line, "username=") || strings.Contains(line, "outcome=") {
		t.Fatalf("expected empty and unknown values dropped, got %s", line)
	}
}

func TestCompactRID(t *testing.T) {
	cases := map[string]string{
		"36:0:1":  "10.0.1",
		"1:-36:2": "1.-10.2",
		"abc":     "abc",
		"1:x:2":   "1:x:2",
	}
	for in, want := range cases {
		if got := CompactRID(in); got != want {
			t.Fatalf("CompactRID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDebugSample(t *testing.T) {
	cases := []struct {
		spec     string
		num, den int
	}{
		{"", 1, 50},
		{"1/10", 1, 10},
		{"20", 1, 20},
		{"0", 0, 0},
		{"bad", 1, 50},
		{"3/0", 1, 50},
	}
	for _, tc := range cases {
		cfg := &coreconfig.Config{Logging: coreconfig.LoggingConfig{DebugSample: tc.spec}}
		num, den := parseDebugSample(cfg)
		if num != tc.num || den != tc.den {
			t.Fatalf("parseDebugSample(%q) = %d/%d, want %d/%d", tc.spec, num, den, tc.num, tc.den)
		}
	}
}

func TestRatioSampler(t *testing.T) {
	s := &ratioSampler{}
	s.set(1, 3)
	var allowed int
	for i := 0; i < 9; i++ {
		if s.allow() {
			allowed++
		}
	}
	if allowed != 3 {
		t.Fatalf("allowed = %d, want 3", allowed)
	}
}

func TestAsyncWriterDiscardsAfterClose(t *testing.T) {
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 64)
	if err := aw.Write([]byte("a\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := aw.Write([]byte("b\n")); err == nil {
		t.Fatalf("expected error after close")
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if buf.String() != "a\n" {
		t.Fatalf("buf = %q", buf.String())
	}
}
