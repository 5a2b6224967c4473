package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
	kafkainfra "github.com/Skiblinx/launchkart-FE-sub001/internal/infra/kafka"
	redisinfra "github.com/Skiblinx/launchkart-FE-sub001/internal/infra/redis"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/telemetry"
	filerepo "github.com/Skiblinx/launchkart-FE-sub001/internal/repository/file"
	redisrepo "github.com/Skiblinx/launchkart-FE-sub001/internal/repository/redis"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/transport/rest"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

// Core is the assembled console together with the infrastructure it owns.
type Core struct {
	Config    *config.AppConfig
	Logger    *zap.Logger
	Console   *usecase.Console
	Backend   *rest.Client
	Redis     *redisinfra.Client
	Registry  *prometheus.Registry
	Telemetry *telemetry.Provider

	producer *kafkainfra.Producer
}

// Build wires configuration into a ready Console. The session is left loading; callers
// decide whether to resolve it in the background or before their first command.
func Build(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*Core, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	core := &Core{Config: cfg, Logger: log, Registry: prometheus.NewRegistry()}
	core.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tel, err := telemetry.Attach(ctx, cfg, core.Registry, log)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	core.Telemetry = tel

	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			core.Close(ctx)
			return nil, fmt.Errorf("init redis: %w", err)
		}
		core.Redis = client
		if err := client.RegisterPoolMetrics(core.Registry); err != nil {
			core.Close(ctx)
			return nil, err
		}
	}

	tokens, err := core.tokenStore()
	if err != nil {
		core.Close(ctx)
		return nil, err
	}

	backend, err := rest.NewClient(cfg.Backend, nil, log)
	if err != nil {
		core.Close(ctx)
		return nil, fmt.Errorf("init backend client: %w", err)
	}
	backend.WithMetrics(tel.Metrics())
	core.Backend = backend

	console := usecase.NewConsole(usecase.ConsoleDeps{
		Auth:   backend,
		Tokens: tokens,
		Listers: usecase.Listers{
			Users:       rest.NewLister[domain.PlatformUser](backend),
			KYC:         rest.NewLister[domain.KYCSubmission](backend),
			Services:    rest.NewLister[domain.ServiceRequest](backend),
			Mentorship:  rest.NewLister[domain.Mentor](backend),
			Investments: rest.NewLister[domain.Pitch](backend),
		},
		Mutator:   backend,
		Promoter:  backend,
		Events:    core.eventPublisher(),
		Metrics:   tel.Metrics(),
		Logger:    log,
		PageSize:  cfg.Query.DefaultPageSize,
		OTPLength: cfg.OTP.CodeLength,
	})
	console.Login.WithValidity(cfg.OTP.TTL)
	backend.BindSession(console.Session)
	core.Console = console

	return core, nil
}

func (c *Core) tokenStore() (port.TokenStore, error) {
	settings := c.Config.Session
	switch settings.TokenStore {
	case config.TokenStoreRedis:
		if c.Redis == nil {
			return nil, errors.New("redis token store selected but redis is disabled")
		}
		c.Logger.Info("Session tokens stored in redis", zap.String("key", settings.RedisKey))
		return redisrepo.NewSessionTokenRepository(c.Redis.Client(), settings.RedisKey, settings.RedisTTL), nil
	default:
		path := settings.ResolvedTokenPath()
		c.Logger.Info("Session tokens stored on disk", zap.String("path", path))
		return filerepo.NewTokenStore(path), nil
	}
}

func (c *Core) eventPublisher() port.EventPublisher {
	if len(c.Config.Kafka.Brokers) == 0 {
		c.Logger.Info("Kafka brokers not configured, using stub publisher")
		return kafkainfra.NewStubPublisher(c.Logger)
	}

	producer, err := kafkainfra.NewProducer(c.Config.Kafka, c.Logger)
	if err != nil {
		c.Logger.Warn("Failed to init kafka producer, using stub publisher", zap.Error(err))
		return kafkainfra.NewStubPublisher(c.Logger)
	}
	c.producer = producer
	c.Logger.Info("Kafka event publisher initialized", zap.Strings("brokers", c.Config.Kafka.Brokers))
	return kafkainfra.NewEventPublisher(producer, c.Config.App, c.Logger)
}

// RateLimitStore returns the OTP request limiter backend, or nil when redis is disabled.
func (c *Core) RateLimitStore() port.RateLimitStore {
	if c.Redis == nil {
		return nil
	}
	window := c.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = defaultRateLimitWindow
	}
	return redisrepo.NewRateLimitRepository(c.Redis.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "console:rate-limit",
		TTL:       window * 2,
	})
}

// Close releases the producer, redis and tracer in reverse order of construction.
func (c *Core) Close(ctx context.Context) {
	if c.Console != nil {
		c.Console.Session.Teardown()
	}
	if c.producer != nil {
		if err := c.producer.Close(); err != nil {
			c.Logger.Warn("Failed to close kafka producer", zap.Error(err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if err := c.Telemetry.Shutdown(ctx); err != nil {
		c.Logger.Warn("Failed to flush traces", zap.Error(err))
	}
}
