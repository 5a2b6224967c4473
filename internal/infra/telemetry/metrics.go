package telemetry

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
)

// MetricsOptions configures the console collectors.
type MetricsOptions struct {
	Registerer prometheus.Registerer
	Namespace  string
	Buckets    []float64
}

// ConsoleMetrics records session, gate, login and query activity in Prometheus.
type ConsoleMetrics struct {
	fetches          *prometheus.CounterVec
	gateDecisions    *prometheus.CounterVec
	loginTransitions *prometheus.CounterVec
	sessionStatus    *prometheus.GaugeVec
	backendRequests  *prometheus.CounterVec
	backendDuration  *prometheus.HistogramVec
}

// NewConsoleMetrics registers the console collectors, reusing any that are already registered.
func NewConsoleMetrics(opts MetricsOptions) (*ConsoleMetrics, error) {
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "console"
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	var err error
	m := &ConsoleMetrics{}

	if m.fetches, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_total",
		Help:      "Resource fetches partitioned by resource kind and outcome.",
	}, []string{"kind", "outcome"})); err != nil {
		return nil, err
	}
	if m.gateDecisions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Route gate decisions partitioned by decision.",
	}, []string{"decision"})); err != nil {
		return nil, err
	}
	if m.loginTransitions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_transitions_total",
		Help:      "OTP login state transitions.",
	}, []string{"from", "to"})); err != nil {
		return nil, err
	}
	if m.sessionStatus, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "session_status",
		Help:      "Current session status, 1 for the active status and 0 otherwise.",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if m.backendRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "requests_total",
		Help:      "Requests sent to the platform API partitioned by endpoint and status.",
	}, []string{"endpoint", "status"})); err != nil {
		return nil, err
	}
	if m.backendDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "backend",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests sent to the platform API.",
		Buckets:   buckets,
	}, []string{"endpoint"})); err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	if err := reg.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return collector, fmt.Errorf("register collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(C)
		if !ok {
			return collector, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return existing, nil
	}
	return collector, nil
}

func (m *ConsoleMetrics) ObserveFetch(kind, outcome string) {
	m.fetches.WithLabelValues(kind, outcome).Inc()
}

func (m *ConsoleMetrics) ObserveGateDecision(decision string) {
	m.gateDecisions.WithLabelValues(decision).Inc()
}

func (m *ConsoleMetrics) ObserveLoginTransition(from, to string) {
	m.loginTransitions.WithLabelValues(from, to).Inc()
}

// ObserveSessionStatus flips the gauge so exactly one status reads 1.
func (m *ConsoleMetrics) ObserveSessionStatus(status string) {
	m.sessionStatus.Reset()
	m.sessionStatus.WithLabelValues(status).Set(1)
}

// ObserveBackendRequest records one round trip to the platform API.
func (m *ConsoleMetrics) ObserveBackendRequest(endpoint, status string, elapsed time.Duration) {
	m.backendRequests.WithLabelValues(endpoint, status).Inc()
	m.backendDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

var _ port.ConsoleMetrics = (*ConsoleMetrics)(nil)
