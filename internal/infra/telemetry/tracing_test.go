package telemetry

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap/zaptest"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
)

func newTestTracer(t *testing.T, rate float64) (*TracerProvider, *tracetest.InMemoryExporter) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := newTracerProvider(exporter, config.TelemetrySettings{
		ServiceName:  "launchkart-console",
		SamplingRate: rate,
	}, "staging", zaptest.NewLogger(t))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, exporter
}

func TestTracerProviderExportsResourceAttributes(t *testing.T) {
	tp, exporter := newTestTracer(t, 1)

	_, span := tp.provider.Tracer("test").Start(context.Background(), "backend list resources")
	span.End()
	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("ForceFlush returned error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	attrs := spans[0].Resource.Set()
	if v, ok := attrs.Value(semconv.ServiceNameKey); !ok || v.AsString() != "launchkart-console" {
		t.Fatalf("unexpected service name %v", v)
	}
	if v, ok := attrs.Value(semconv.DeploymentEnvironmentKey); !ok || v.AsString() != "staging" {
		t.Fatalf("unexpected deployment environment %v", v)
	}
}

func TestSamplerClampsRate(t *testing.T) {
	cases := []struct {
		rate    float64
		sampled bool
	}{
		{rate: -1, sampled: false},
		{rate: 0, sampled: false},
		{rate: 1, sampled: true},
		{rate: 3, sampled: true},
	}
	for _, tc := range cases {
		tp, _ := newTestTracer(t, tc.rate)
		_, span := tp.provider.Tracer("test").Start(context.Background(), "root")
		if got := span.SpanContext().IsSampled(); got != tc.sampled {
			t.Fatalf("rate %v: sampled = %v, want %v", tc.rate, got, tc.sampled)
		}
		span.End()
	}
}

func TestExporterOptions(t *testing.T) {
	valid := []string{"localhost:4318", "http://collector:4318", "https://otel.launchkart.io/v1/traces"}
	for _, endpoint := range valid {
		if _, err := exporterOptions(endpoint); err != nil {
			t.Fatalf("exporterOptions(%q) returned error: %v", endpoint, err)
		}
	}

	invalid := []string{"http://", "grpc://collector:4317"}
	for _, endpoint := range invalid {
		if _, err := exporterOptions(endpoint); err == nil {
			t.Fatalf("expected error for %q", endpoint)
		}
	}
}
