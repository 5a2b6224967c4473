package transportgrpc

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	grpcinterceptors "github.com/Skiblinx/launchkart-FE-sub001/internal/transport/grpc/interceptors"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

// ConsoleService is the health service name reported for the console core.
const ConsoleService = "launchkart.console.v1.Console"

// ServerDependencies encapsulates what the gRPC server layer needs.
type ServerDependencies struct {
	Session *usecase.SessionStore
	Metrics *grpcinterceptors.GRPCMetrics
	Tracing *grpcinterceptors.TracingOptions
	Logger  *zap.Logger
}

// NewServer builds the gRPC server exposing health and reflection. Health reports
// NOT_SERVING until the persisted session has been resolved.
func NewServer(deps ServerDependencies) (*grpc.Server, *health.Server) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []grpc.ServerOption{
		grpc.ChainUnaryInterceptor(deps.Metrics.UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(deps.Metrics.StreamServerInterceptor()),
	}
	if deps.Tracing != nil {
		opts = append(opts, grpc.StatsHandler(grpcinterceptors.NewTracingHandler(*deps.Tracing)))
	}
	server := grpc.NewServer(opts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(server, healthServer)
	BindSessionHealth(healthServer, deps.Session, logger)

	reflection.Register(server)

	return server, healthServer
}

// BindSessionHealth keeps the console service status in step with the session store.
func BindSessionHealth(healthServer *health.Server, session *usecase.SessionStore, logger *zap.Logger) {
	if session == nil {
		healthServer.SetServingStatus(ConsoleService, healthpb.HealthCheckResponse_SERVING)
		return
	}

	apply := func(snapshot domain.SessionSnapshot) {
		status := healthpb.HealthCheckResponse_SERVING
		if snapshot.Loading() {
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
		healthServer.SetServingStatus(ConsoleService, status)
		logger.Debug("console health updated",
			zap.String("session", string(snapshot.Status)),
			zap.String("health", status.String()),
		)
	}

	session.Subscribe(apply)
	apply(session.Snapshot())
}
