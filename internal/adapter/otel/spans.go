package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "notestream"

// StartBroadcastSpan starts a span covering one fan-out.
func StartBroadcastSpan(ctx context.Context, kind string, noteID int64) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "broadcast",
		trace.WithAttributes(
			attribute.String("event.kind", kind),
			attribute.Int64("note.id", noteID),
		),
	)
}

// StartSnapshotSpan starts a span for a subscriber's initial snapshot.
func StartSnapshotSpan(ctx context.Context, connID, transport string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "snapshot",
		trace.WithAttributes(
			attribute.String("conn.id", connID),
			attribute.String("conn.transport", transport),
		),
	)
}

// StartRelaySpan starts a span for one relayed NATS message.
func StartRelaySpan(ctx context.Context, subject string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "relay",
		trace.WithAttributes(attribute.String("messaging.subject", subject)),
	)
}
