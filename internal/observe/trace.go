package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("cascade")

// StartCompile opens a span around a full compile call. The returned span
// must be ended by the caller.
func StartCompile(ctx context.Context, class string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "cascade.compile",
		trace.WithAttributes(attribute.String("cascade.class", class)))
}

// StartNode opens a per-node child span during tree compilation.
func StartNode(ctx context.Context, node, class string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "cascade.compile.node",
		trace.WithAttributes(
			attribute.String("cascade.node", node),
			attribute.String("cascade.class", class),
		))
}
