package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	return trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
}

func TestNewWithWriter(t *testing.T) {
	t.Run("service attribute", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter("storefront", "info", &buf).Info("ready")

		out := decodeLine(t, &buf)
		assert.Equal(t, "storefront", out["service"])
		assert.Equal(t, "ready", out["msg"])
		assert.NotContains(t, out, "source")
	})

	t.Run("debug adds source", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter("storefront", "debug", &buf).Debug("verbose")
		assert.Contains(t, decodeLine(t, &buf), "source")
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		NewWithWriter("storefront", "error", &buf).Warn("dropped")
		assert.Zero(t, buf.Len())
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":    slog.LevelDebug,
		" Debug ":  slog.LevelDebug,
		"info":     slog.LevelInfo,
		"warn":     slog.LevelWarn,
		"WARNING":  slog.LevelWarn,
		"error":    slog.LevelError,
		"":         slog.LevelInfo,
		"critical": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestContextHandler_TagsRecords(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("storefront", "info", &buf)

	ctx := WithUserID(WithCorrelationID(spanContext(t), "corr-1"), "user-42")
	l.InfoContext(ctx, "review created")

	out := decodeLine(t, &buf)
	assert.Equal(t, "corr-1", out["correlation_id"])
	assert.Equal(t, "user-42", out["user_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", out["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", out["span_id"])
}

func TestContextHandler_EmptyContext(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("storefront", "info", &buf).InfoContext(context.Background(), "startup")

	out := decodeLine(t, &buf)
	for _, key := range []string{"correlation_id", "user_id", "trace_id", "span_id"} {
		assert.NotContains(t, out, key)
	}
}

func TestContextHandler_SurvivesWithAndGroup(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("storefront", "info", &buf).With(slog.String("component", "cache")).WithGroup("op")

	l.InfoContext(WithCorrelationID(context.Background(), "corr-2"), "miss", slog.String("key", "product:1"))

	out := decodeLine(t, &buf)
	assert.Equal(t, "cache", out["component"])
	op, ok := out["op"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "product:1", op["key"])
	assert.Equal(t, "corr-2", op["correlation_id"])
}

func TestFromContext(t *testing.T) {
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	assert.Same(t, l, FromContext(NewContext(context.Background(), l)))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
