package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
	transportgrpc "github.com/Skiblinx/launchkart-FE-sub001/internal/transport/grpc"
	grpcinterceptors "github.com/Skiblinx/launchkart-FE-sub001/internal/transport/grpc/interceptors"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/transport/http/middleware"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/transport/http/routes"
)

const defaultRateLimitWindow = time.Minute

// Application serves the console core over HTTP and exposes gRPC health.
type Application struct {
	core       *Core
	engine     *gin.Engine
	logger     *zap.Logger
	grpcServer *grpc.Server
	grpcAddr   string
}

// New builds the serving application on top of an assembled core.
func New(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*Application, error) {
	core, err := Build(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log = core.Logger

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: core.Registry})
	if err != nil {
		core.Close(ctx)
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	var rateLimiter *middleware.RateLimiter
	if store := core.RateLimitStore(); store != nil {
		rateLimiter = middleware.NewRateLimiter(store, log)
	} else {
		log.Info("Redis disabled, OTP requests are not rate limited")
	}

	deps := routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Console:     core.Console,
		RateLimiter: rateLimiter,
		Metrics:     httpMetrics,
		Gatherer:    core.Registry,
	}
	if core.Redis != nil {
		deps.Cache = core.Redis
	}
	engine := routes.Register(deps)

	application := &Application{core: core, engine: engine, logger: log}

	if cfg.GRPC.Enabled {
		grpcMetrics, err := grpcinterceptors.NewGRPCMetrics(grpcinterceptors.GRPCMetricsOptions{Registerer: core.Registry})
		if err != nil {
			core.Close(ctx)
			return nil, fmt.Errorf("init grpc metrics: %w", err)
		}
		var tracing *grpcinterceptors.TracingOptions
		if core.Telemetry.Tracing() {
			tracing = &grpcinterceptors.TracingOptions{}
		}
		application.grpcServer, _ = transportgrpc.NewServer(transportgrpc.ServerDependencies{
			Session: core.Console.Session,
			Metrics: grpcMetrics,
			Tracing: tracing,
			Logger:  log,
		})
		application.grpcAddr = fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	}

	return application, nil
}

// Run resolves the persisted session in the background and serves until ctx ends.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.core.Close(closeCtx)
	}()

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	console := a.core.Console
	go console.Login.Run(runCtx)
	go func() {
		if err := console.Session.Init(runCtx); err != nil {
			a.logger.Warn("Session init failed", zap.Error(err))
			return
		}
		snapshot := console.Session.Snapshot()
		a.logger.Info("Session resolved", zap.String("status", string(snapshot.Status)))
	}()

	grpcErrCh := make(chan error, 1)
	if a.grpcServer != nil {
		lis, err := net.Listen("tcp", a.grpcAddr)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		a.logger.Info("Starting gRPC server", zap.String("address", a.grpcAddr))
		go func() {
			if err := a.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				grpcErrCh <- fmt.Errorf("run grpc server: %w", err)
			}
		}()
		defer a.grpcServer.GracefulStop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.core.Config.App.Host, a.core.Config.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("Starting console API",
		zap.String("env", a.core.Config.App.Env),
		zap.String("address", srv.Addr),
		zap.String("backend", a.core.Config.Backend.BaseURL),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	case err := <-grpcErrCh:
		return err
	}
}
