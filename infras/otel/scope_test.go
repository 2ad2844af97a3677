package otel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorded(t *testing.T) (Otel, *tracetest.SpanRecorder) {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	return &tracer{provider: provider}, recorder
}

func generate(o Otel, fail bool) (err error) {
	_, scope := o.NewScope(context.Background(), "service", "service.proposal.Generate")
	defer scope.End()
	defer scope.TraceIfError(&err)

	if fail {
		return errors.New("upload failed")
	}

	return nil
}

func TestTraceIfErrorSeesNamedResult(t *testing.T) {
	o, recorder := newRecorded(t)

	require.Error(t, generate(o, true))
	require.NoError(t, generate(o, false))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "upload failed", spans[0].Status().Description)
	assert.Equal(t, codes.Unset, spans[1].Status().Code)
}

func TestSetAttributes(t *testing.T) {
	o, recorder := newRecorded(t)

	_, scope := o.NewScope(context.Background(), "repository", "repository.lead.Get")
	scope.SetAttributes(map[string]any{
		"lead.attendees": 120,
		"lead.budget":    15000.5,
		"lead.arrival":   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		"lead.lost":      false,
	})
	scope.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)

	got := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		got[kv.Key] = kv.Value
	}

	assert.Equal(t, int64(120), got["lead.attendees"].AsInt64())
	assert.InDelta(t, 15000.5, got["lead.budget"].AsFloat64(), 0.0001)
	assert.Equal(t, "2026-03-01T00:00:00Z", got["lead.arrival"].AsString())
	assert.False(t, got["lead.lost"].AsBool())
}
