package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *TraceLayer) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, NewTraceLayer(tp.Tracer("test"))
}

func TestInitTracing_Disabled(t *testing.T) {
	prev := Tracer
	t.Cleanup(func() { Tracer = prev })

	shutdown, err := InitTracing(TracingConfig{ServiceName: "snapgram-test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer)
}

func TestTraceRepositoryMethod(t *testing.T) {
	sr, layer := newRecorder(t)

	ctx, span := layer.TraceRepositoryMethod(context.Background(), "Create", "users")
	RecordErrorInContext(ctx, errors.New("boom"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "repository.users.Create", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("db.table", "users"))
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestTraceRedisOperation(t *testing.T) {
	sr, layer := newRecorder(t)

	ctx, span := layer.TraceRedisOperation(context.Background(), "get", "user:1")
	RecordErrorInContext(ctx, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "redis.get", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String("cache.key", "user:1"))
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestRepoLogger_LogErrorMarksSpan(t *testing.T) {
	sr, layer := newRecorder(t)

	ctx, span := layer.TraceRepositoryMethod(context.Background(), "Delete", "posts")
	NewRepoLogger("posts").LogError(ctx, errors.New("locked"), "delete")
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, codes.Error, sr.Ended()[0].Status().Code)
}
