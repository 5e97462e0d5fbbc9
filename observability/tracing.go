package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/kashstash/stash"

// Tracer provides OpenTelemetry tracing for upload attempts.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new tracer.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartUploadSpan starts a span for one upload attempt. The probe key is
// deliberately not recorded.
func (t *Tracer) StartUploadSpan(ctx context.Context, endpointID, filename string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "stash.upload",
		trace.WithAttributes(
			attribute.String("stash.endpoint_id", endpointID),
			attribute.String("stash.filename", filename),
		),
	)
}

// EndUploadSpan ends an upload span with result attributes.
func (t *Tracer) EndUploadSpan(span trace.Span, statusCode, latencyMs int, err string) {
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Int("stash.latency_ms", latencyMs),
	)
	if err != "" {
		span.SetAttributes(attribute.String("stash.error", err))
	}
	span.End()
}
