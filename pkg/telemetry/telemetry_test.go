package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/mathforge-ai/mathforge/pkg/config"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TelemetryConfig{Enabled: false}, "v0")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestTracerProviderEmitsSpans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()

	tp, shutdown, err := newTracerProvider(exp, "v-test")
	if err != nil {
		t.Fatalf("new tracer provider: %v", err)
	}

	_, sp := tp.Tracer("test").Start(context.Background(), "attempt")
	sp.End()

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush: %v", err)
	}
	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "attempt" {
		t.Fatalf("unexpected span name: %q", spans[0].Name)
	}

	found := false
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == attribute.Key("service.name") && kv.Value.AsString() == serviceName {
			found = true
		}
	}
	if !found {
		t.Fatal("span resource missing service.name")
	}

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}
