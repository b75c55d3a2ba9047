package preflight

import (
	"context"

	"github.com/ashivadi/open-interpreter/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	traceScopePreflight = "interpreter.preflight"

	traceSpanNegotiate   = "interpreter.preflight.negotiate"
	traceEventTransition = "interpreter.preflight.transition"

	traceAttrLocal  = "interpreter.local"
	traceAttrModel  = "interpreter.model"
	traceAttrFrom   = "interpreter.state.from"
	traceAttrTo     = "interpreter.state.to"
	traceAttrStatus = "interpreter.status"
)

func startNegotiationSpan(ctx context.Context, cfg *config.ExecutionConfig) (context.Context, trace.Span) {
	return otel.Tracer(traceScopePreflight).Start(ctx, traceSpanNegotiate, trace.WithAttributes(
		attribute.Bool(traceAttrLocal, cfg.Local),
		attribute.String(traceAttrModel, cfg.Model),
	))
}

func recordTransition(span trace.Span, from, to State) {
	if span == nil {
		return
	}
	span.AddEvent(traceEventTransition, trace.WithAttributes(
		attribute.String(traceAttrFrom, from.String()),
		attribute.String(traceAttrTo, to.String()),
	))
}

func markSpanResult(span trace.Span, cfg *config.ExecutionConfig, err error) {
	if span == nil {
		return
	}
	if cfg != nil {
		span.SetAttributes(
			attribute.Bool(traceAttrLocal, cfg.Local),
			attribute.String(traceAttrModel, cfg.Model),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(traceAttrStatus, "error"))
		return
	}
	span.SetStatus(codes.Ok, "")
	span.SetAttributes(attribute.String(traceAttrStatus, "success"))
}
