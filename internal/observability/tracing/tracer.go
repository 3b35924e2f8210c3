// Package tracing provides OpenTelemetry tracing integration for the HTTP
// surface and the generation pipeline.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the cryptopress application.
var tracer = otel.Tracer("cryptopress")

// GetTracer returns the global tracer for creating spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "generate-one")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}
