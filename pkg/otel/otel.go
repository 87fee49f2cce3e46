// Package otel initialises the OpenTelemetry SDK for the process and
// provides small helpers for creating spans and reading trace ids.
//
// Call InitTracing once at the top of main and defer the returned
// shutdown function; every span created anywhere in the process is
// then exported over OTLP gRPC.
package otel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the tracing settings.
type Config struct {
	ServiceName string
	// Host is the OTLP gRPC collector endpoint, host:port. Empty
	// disables exporting; spans are still created so trace ids remain
	// available for correlation.
	Host        string
	Probability float64
}

// ShutdownFunc flushes buffered spans and closes the exporter.
type ShutdownFunc func(ctx context.Context) error

// InitTracing registers the global TracerProvider and W3C propagators
// for the given config and returns the provider plus its shutdown
// function.
func InitTracing(cfg Config) (*sdktrace.TracerProvider, ShutdownFunc, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.Probability)),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		)),
	}

	if cfg.Host != "" {
		exp, err := otlptrace.New(context.Background(), otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(cfg.Host),
			otlptracegrpc.WithInsecure(),
		))
		if err != nil {
			return nil, nil, fmt.Errorf("create otlp exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp, sdktrace.WithBatchTimeout(5*time.Second)))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	// W3C traceparent/baggage headers, so trace ids survive process
	// boundaries.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, tp.Shutdown, nil
}

type ctxKey int

const tracerKey ctxKey = 1

// InjectTracing stores the tracer in the context so AddSpan can reach
// it from any layer. Used by the HTTP middleware.
func InjectTracing(ctx context.Context, tracer trace.Tracer) context.Context {
	return context.WithValue(ctx, tracerKey, tracer)
}

// AddSpan starts a child span with the given name and optional
// key/value attribute pairs. If no tracer was injected the context is
// returned with a no-op span, so call sites never need to guard.
func AddSpan(ctx context.Context, name string, keyValues ...string) (context.Context, trace.Span) {
	tracer, ok := ctx.Value(tracerKey).(trace.Tracer)
	if !ok || tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	ctx, span := tracer.Start(ctx, name)
	for i := 0; i+1 < len(keyValues); i += 2 {
		span.SetAttributes(attribute.String(keyValues[i], keyValues[i+1]))
	}
	return ctx, span
}

// GetTraceID returns the hex trace id of the active span, or the empty
// string when no span is recording.
func GetTraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
