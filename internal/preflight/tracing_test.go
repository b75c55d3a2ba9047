package preflight

import (
	"context"
	"testing"

	"github.com/ashivadi/open-interpreter/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider()
	tp.RegisterSpanProcessor(recorder)
	prevProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevProvider)
	})
	return recorder
}

func TestNegotiateEmitsTransitionSpan(t *testing.T) {
	recorder := installRecorder(t)
	h := newHarness(nil)

	require.NoError(t, h.negotiator.Negotiate(context.Background(), &config.ExecutionConfig{Model: "gpt-4"}))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, traceSpanNegotiate, span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)

	var path []string
	for _, event := range span.Events() {
		if event.Name != traceEventTransition {
			continue
		}
		for _, attr := range event.Attributes {
			if string(attr.Key) == traceAttrTo {
				path = append(path, attr.Value.AsString())
			}
		}
	}
	assert.Equal(t, []string{"openai", "dispatch", "local", "done"}, path)

	attrs := map[string]any{}
	for _, attr := range span.Attributes() {
		attrs[string(attr.Key)] = attr.Value.AsInterface()
	}
	assert.Equal(t, true, attrs[traceAttrLocal])
	assert.Equal(t, DefaultLocalModel, attrs[traceAttrModel])
	assert.Equal(t, "success", attrs[traceAttrStatus])
}

func TestNegotiateMarksFailedSpan(t *testing.T) {
	recorder := installRecorder(t)
	h := newHarness(nil)
	h.prompter.err = ErrInterrupted

	err := h.negotiator.Negotiate(context.Background(), &config.ExecutionConfig{Model: "gpt-4"})
	require.ErrorIs(t, err, ErrInterrupted)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
