package instrument

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// startSpan opens a span named after the call. Context-aware functions get
// the span context propagated into the wrapped call; plain functions get a
// detached root span that still records timing and outcome.
func (s *callSite) startSpan(tracer trace.Tracer, ctx context.Context) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return tracer.Start(ctx, s.name)
}

// endSpan closes the span with the call's outcome.
func endSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// endSpanPanic closes the span when the call panicked.
func endSpanPanic(span trace.Span, panicVal any) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Error, fmt.Sprintf("panic: %v", panicVal))
	span.End()
}
