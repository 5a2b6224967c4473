package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
)

// Provider bundles the metrics collectors and the optional tracer provider.
type Provider struct {
	metrics *ConsoleMetrics
	tracer  *TracerProvider
}

// Attach registers the console collectors on reg and starts tracing when an OTLP endpoint is configured.
func Attach(ctx context.Context, cfg *config.AppConfig, reg prometheus.Registerer, logger *zap.Logger) (*Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	metrics, err := NewConsoleMetrics(MetricsOptions{Registerer: reg})
	if err != nil {
		return nil, fmt.Errorf("console metrics: %w", err)
	}

	provider := &Provider{metrics: metrics}
	if cfg.Telemetry.OTLPEndpoint == "" {
		logger.Debug("Tracing disabled, no OTLP endpoint configured")
		return provider, nil
	}

	tracer, err := NewTracerProvider(ctx, cfg.Telemetry, cfg.App.Env, logger)
	if err != nil {
		return nil, err
	}
	provider.tracer = tracer
	return provider, nil
}

// Metrics exposes the console collectors.
func (p *Provider) Metrics() *ConsoleMetrics {
	if p == nil {
		return nil
	}
	return p.metrics
}

// Tracing reports whether spans are being exported.
func (p *Provider) Tracing() bool {
	return p != nil && p.tracer != nil
}

// Shutdown flushes pending spans.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tracer == nil {
		return nil
	}
	return errors.Join(p.tracer.ForceFlush(ctx), p.tracer.Shutdown(ctx))
}
