// Package logger provides a zap-based application logger correlated
// with OpenTelemetry traces.
package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// New configures a production JSON logger for the named service.
func New(service string) (*zap.Logger, error) {
	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return log.With(zap.String("service", service)), nil
}

// For returns a logger stamped with the trace and span ids of the
// active span in ctx, so log lines can be joined with traces. Without
// an active span the logger is returned unchanged.
func For(ctx context.Context, log *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return log
	}
	return log.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
