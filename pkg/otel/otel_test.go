package otel

import (
	"context"
	"testing"
)

func TestGetTraceIDWithoutSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Fatalf("expected empty trace id, got %q", id)
	}
}

func TestAddSpanWithoutTracer(t *testing.T) {
	ctx, span := AddSpan(context.Background(), "noop")
	if span == nil {
		t.Fatal("expected a span even without an injected tracer")
	}
	span.End()
	if ctx == nil {
		t.Fatal("expected a context back")
	}
}

func TestInitTracingWithoutExporter(t *testing.T) {
	tp, shutdown, err := InitTracing(Config{ServiceName: "test", Probability: 1.0})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if tp == nil {
		t.Fatal("expected a tracer provider")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
