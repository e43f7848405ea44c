package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	FromContext(ctx).Info("hello")

	assert.Equal(t, 1, recorded.Len())
}

func TestCorrelationAccessors(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, CorrelationID(ctx))
	assert.Empty(t, UserID(ctx))
	assert.Empty(t, TraceID(ctx))

	ctx = WithUserID(WithCorrelationID(ctx, "corr-1"), "user-1")

	assert.Equal(t, "corr-1", CorrelationID(ctx))
	assert.Equal(t, "user-1", UserID(ctx))
}

func TestL_InjectsContextFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(spanContext(t), zap.New(core))
	ctx = WithCorrelationID(ctx, "corr-1")
	ctx = WithUserID(ctx, "user-1")

	L(ctx).Info("entity saved", zap.String("entity_id", "e-1"))

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	assert.Equal(t, "corr-1", fields["correlation_id"])
	assert.Equal(t, "user-1", fields["user_id"])
	assert.Equal(t, "e-1", fields["entity_id"])
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", TraceID(ctx))
}

func TestEnrich_WithoutFieldsReturnsSameLogger(t *testing.T) {
	base := zap.NewNop()
	assert.Same(t, base, Enrich(context.Background(), base))
	assert.NotNil(t, Enrich(context.Background(), nil))
}
