package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "taskbridge"

// StartSyncSpan starts a span covering one sync pass.
func StartSyncSpan(ctx context.Context, mappingID, userID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "sync.pass",
		trace.WithAttributes(
			attribute.String("mapping.id", mappingID),
			attribute.String("user.id", userID),
		),
	)
}

// StartPhaseSpan starts a child span for one engine phase.
func StartPhaseSpan(ctx context.Context, phase string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "sync."+phase)
}
