package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "dayplan"

// StartCommandSpan starts a span for one natural language command.
func StartCommandSpan(ctx context.Context, userID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "command",
		trace.WithAttributes(
			attribute.String("user.id", userID),
		),
	)
}

// StartInterpretSpan starts a span for the model-backed parse of a command.
func StartInterpretSpan(ctx context.Context, model string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "interpret",
		trace.WithAttributes(
			attribute.String("llm.model", model),
		),
	)
}
