package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
)

// ServiceVersion is reported on every exported span.
const ServiceVersion = "0.4.0"

const (
	exportTimeout = 10 * time.Second
	flushTimeout  = 5 * time.Second
)

// TracerProvider exports the spans of backend calls and gRPC traffic.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	logger   *zap.Logger
}

// NewTracerProvider installs a global provider exporting over OTLP HTTP. The endpoint may be
// a bare host:port or a full URL; bare endpoints and http URLs are sent without TLS.
func NewTracerProvider(ctx context.Context, cfg config.TelemetrySettings, environment string, logger *zap.Logger) (*TracerProvider, error) {
	opts, err := exporterOptions(cfg.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create OTLP exporter: %w", err)
	}
	return newTracerProvider(exporter, cfg, environment, logger), nil
}

func newTracerProvider(exporter sdktrace.SpanExporter, cfg config.TelemetrySettings, environment string, logger *zap.Logger) *TracerProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(ServiceVersion),
	}
	if environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(environment))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(flushTimeout)),
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attrs...)),
		sdktrace.WithSampler(samplerFor(cfg.SamplingRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Tracing enabled",
		zap.String("otlp_endpoint", cfg.OTLPEndpoint),
		zap.String("service_name", cfg.ServiceName),
		zap.Float64("sampling_rate", cfg.SamplingRate),
	)
	return &TracerProvider{provider: tp, logger: logger}
}

// samplerFor follows the caller's decision when a parent span exists and samples root spans
// at rate, clamped to [0, 1].
func samplerFor(rate float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case rate >= 1:
		root = sdktrace.AlwaysSample()
	case rate <= 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(rate)
	}
	return sdktrace.ParentBased(root)
}

func exporterOptions(endpoint string) ([]otlptracehttp.Option, error) {
	endpoint = strings.TrimSpace(endpoint)
	opts := []otlptracehttp.Option{otlptracehttp.WithTimeout(exportTimeout)}
	if !strings.Contains(endpoint, "://") {
		return append(opts, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure()), nil
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid otlp endpoint %q", endpoint)
	}
	switch u.Scheme {
	case "http":
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint), otlptracehttp.WithInsecure())
	case "https":
		opts = append(opts, otlptracehttp.WithEndpointURL(endpoint))
	default:
		return nil, fmt.Errorf("unsupported otlp endpoint scheme %q", u.Scheme)
	}
	return opts, nil
}

// ForceFlush exports buffered spans.
func (tp *TracerProvider) ForceFlush(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	if err := tp.provider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("flush spans: %w", err)
	}
	return nil
}

// Shutdown stops the exporter. Spans ended afterwards are dropped.
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	tp.logger.Debug("Stopping tracer provider")
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()
	if err := tp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	return nil
}
