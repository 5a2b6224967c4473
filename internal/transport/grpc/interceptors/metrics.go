package interceptors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// GRPCMetricsOptions controls construction of gRPC metrics collectors.
type GRPCMetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Subsystem  string
	Buckets    []float64
}

// GRPCMetrics wraps Prometheus collectors for gRPC instrumentation.
type GRPCMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight *prometheus.GaugeVec
}

// NewGRPCMetrics constructs collectors and registers them with the supplied registerer.
// Collectors already registered under the same name are reused.
func NewGRPCMetrics(opts GRPCMetricsOptions) (*GRPCMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "console"
	}
	subsystem := opts.Subsystem
	if subsystem == "" {
		subsystem = "grpc"
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	requests, err := registerOrReuse(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "Total number of gRPC calls partitioned by service, method, and status code.",
	}, []string{"service", "method", "code"}))
	if err != nil {
		return nil, fmt.Errorf("register gRPC requests collector: %w", err)
	}

	duration, err := registerOrReuse(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request_duration_seconds",
		Help:      "Histogram of gRPC call latencies in seconds partitioned by service, method, and status code.",
		Buckets:   buckets,
	}, []string{"service", "method", "code"}))
	if err != nil {
		return nil, fmt.Errorf("register gRPC duration collector: %w", err)
	}

	inFlight, err := registerOrReuse(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "in_flight_requests",
		Help:      "Current number of in-flight gRPC calls partitioned by service.",
	}, []string{"service"}))
	if err != nil {
		return nil, fmt.Errorf("register gRPC inflight collector: %w", err)
	}

	return &GRPCMetrics{requests: requests, duration: duration, inFlight: inFlight}, nil
}

func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return collector, err
		}
		existing, ok := already.ExistingCollector.(C)
		if !ok {
			return collector, fmt.Errorf("existing collector has wrong type %T", already.ExistingCollector)
		}
		return existing, nil
	}
	return collector, nil
}

// UnaryServerInterceptor returns a unary interceptor that records metrics.
func (m *GRPCMetrics) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	if m == nil {
		return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			return handler(ctx, req)
		}
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		done := m.begin(info.FullMethod)
		resp, err := handler(ctx, req)
		done(err)
		return resp, err
	}
}

// StreamServerInterceptor returns a stream interceptor that records metrics once the stream ends.
func (m *GRPCMetrics) StreamServerInterceptor() grpc.StreamServerInterceptor {
	if m == nil {
		return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
			return handler(srv, ss)
		}
	}

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		done := m.begin(info.FullMethod)
		err := handler(srv, ss)
		done(err)
		return err
	}
}

func (m *GRPCMetrics) begin(fullMethod string) func(error) {
	service, method := splitFullMethod(fullMethod)
	start := time.Now()

	inflight := m.inFlight.WithLabelValues(service)
	inflight.Inc()

	return func(err error) {
		inflight.Dec()
		labels := prometheus.Labels{
			"service": service,
			"method":  method,
			"code":    status.Code(err).String(),
		}
		m.requests.With(labels).Inc()
		m.duration.With(labels).Observe(time.Since(start).Seconds())
	}
}

func splitFullMethod(full string) (string, string) {
	full = strings.TrimPrefix(full, "/")
	if full == "" {
		return "unknown", "unknown"
	}
	service, method, ok := strings.Cut(full, "/")
	if !ok || strings.Contains(method, "/") {
		return full, "unknown"
	}
	if service == "" {
		service = "unknown"
	}
	if method == "" {
		method = "unknown"
	}
	return service, method
}
