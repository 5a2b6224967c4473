package transportgrpc

import (
	"context"
	"net"
	"testing"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/repository"
	grpcinterceptors "github.com/Skiblinx/launchkart-FE-sub001/internal/transport/grpc/interceptors"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

type emptyTokenStore struct{}

func (emptyTokenStore) Load(context.Context) (string, error) { return "", repository.ErrNotFound }
func (emptyTokenStore) Save(context.Context, string) error   { return nil }
func (emptyTokenStore) Clear(context.Context) error          { return nil }

func dialServer(t *testing.T, server *grpc.Server) healthpb.HealthClient {
	t.Helper()

	listener := bufconn.Listen(1 << 20)
	go func() { _ = server.Serve(listener) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func TestHealthFollowsSessionResolution(t *testing.T) {
	logger := zaptest.NewLogger(t)
	session := usecase.NewSessionStore(nil, emptyTokenStore{}, usecase.NewPermissionEngine(), logger)

	exporter := tracetest.NewInMemoryExporter()
	provider := trace.NewTracerProvider(trace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	server, _ := NewServer(ServerDependencies{
		Session: session,
		Tracing: &grpcinterceptors.TracingOptions{TracerProvider: provider},
		Logger:  logger,
	})
	client := dialServer(t, server)
	ctx := context.Background()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ConsoleService})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING while loading, got %v", resp.GetStatus())
	}

	if err := session.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ConsoleService})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING after init, got %v", resp.GetStatus())
	}

	if len(exporter.GetSpans()) == 0 {
		t.Fatal("expected server spans to be recorded")
	}
}

func TestHealthWithoutSessionServes(t *testing.T) {
	server, _ := NewServer(ServerDependencies{})
	client := dialServer(t, server)

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ConsoleService})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", resp.GetStatus())
	}
}
