// Package otel provides metric instruments, HTTP tracing middleware and a
// stub for OpenTelemetry exporter setup. Exporter wiring is deferred until a
// collector is deployed; instruments record into the global no-op provider
// until then.
package otel

import (
	"context"
	"log/slog"
)

// ShutdownFunc is called to flush and shut down the trace provider.
type ShutdownFunc func(ctx context.Context) error

// InitTracer returns a no-op shutdown function. Once an OTLP collector
// exists this will install a real TracerProvider.
func InitTracer(serviceName string) ShutdownFunc {
	slog.Info("otel: tracer provider not configured, using global default", "service", serviceName)
	return func(_ context.Context) error {
		return nil
	}
}
