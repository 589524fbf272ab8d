package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func jsonLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return New(Config{Level: level, Format: "json", Output: buf})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, slog.LevelInfo).WithComponent(ComponentCheckout)

	logger.Info("Sale finalized", FieldSaleID, "s1")
	logger.Debug("hidden")

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line below debug level, got %d", len(lines))
	}
	if lines[0][FieldComponent] != ComponentCheckout || lines[0][FieldSaleID] != "s1" {
		t.Fatalf("unexpected record %v", lines[0])
	}
	if logger.Component() != ComponentCheckout {
		t.Fatalf("component %q", logger.Component())
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %q", got.Component())
	}
	logger := New(DefaultConfig())
	ctx := NewContext(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatal("expected logger from context")
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithOperation("checkout").
		WithError(errors.New("boom")).
		WithError(nil).
		WithPeriod(2026, 3).
		WithHTTPResponse(404, 12)

	if f[FieldOperation] != "checkout" || f[FieldError] != "boom" {
		t.Fatalf("unexpected fields %v", f)
	}
	if f[FieldYear] != 2026 || f[FieldMonth] != 3 {
		t.Fatalf("period fields %v", f)
	}
	if f[FieldSuccess] != false {
		t.Fatal("404 is not a success")
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatalf("slice length %d", len(f.ToSlice()))
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, slog.LevelInfo)

	var inner *Logger
	h := middleware.RequestID(Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/x?q=1", nil))

	if inner == nil || inner.Component() != ComponentHTTP {
		t.Fatal("handler should see the request logger")
	}
	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	rec0 := lines[0]
	if rec0["level"] != "WARN" {
		t.Errorf("404 should log at warn, got %v", rec0["level"])
	}
	if rec0[FieldPath] != "/api/products/x" || rec0[FieldQuery] != "q=1" {
		t.Errorf("unexpected request fields %v", rec0)
	}
	if rec0[FieldStatusCode] != float64(http.StatusNotFound) {
		t.Errorf("status %v", rec0[FieldStatusCode])
	}
	if id, _ := rec0[FieldRequestID].(string); id == "" {
		t.Error("missing request id")
	}
}
