package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
)

const (
	dialTimeout   = 3 * time.Second
	healthTimeout = time.Second
)

// Client holds the connection shared by the session token store and the OTP rate limiter.
type Client struct {
	client *redis.Client
	logger *zap.Logger
}

// NewClient connects and pings once so a misconfigured address fails at startup.
func NewClient(ctx context.Context, cfg config.RedisSettings, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := options(cfg)
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	logger.Info("Redis connected",
		zap.String("addr", opts.Addr),
		zap.Int("db", cfg.DB),
		zap.Bool("tls", opts.TLSConfig != nil),
	)
	return &Client{client: client, logger: logger}, nil
}

// options sizes the pool for one operator: a token read on start and a handful of
// rate-limit checks per login.
func options(cfg config.RedisSettings) *redis.Options {
	opts := &redis.Options{
		Addr:            net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        4,
		MaxRetries:      2,
		DialTimeout:     dialTimeout,
		ReadTimeout:     2 * time.Second,
		WriteTimeout:    2 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12, ServerName: cfg.Host}
	}
	return opts
}

// Client returns the underlying redis.Client for repositories.
func (c *Client) Client() *redis.Client {
	return c.client
}

// HealthCheck pings with a short deadline so readiness probes never hang on redis.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check: %w", err)
	}
	return nil
}

// RegisterPoolMetrics exports connection pool gauges on reg.
func (c *Client) RegisterPoolMetrics(reg prometheus.Registerer) error {
	stat := func(name, help string, read func(*redis.PoolStats) uint32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "console",
			Subsystem: "redis_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(read(c.client.PoolStats())) })
	}
	for _, collector := range []prometheus.Collector{
		stat("connections", "Open connections in the redis pool.", func(s *redis.PoolStats) uint32 { return s.TotalConns }),
		stat("idle_connections", "Idle connections in the redis pool.", func(s *redis.PoolStats) uint32 { return s.IdleConns }),
		stat("timeouts", "Times a caller waited for a pooled connection and gave up.", func(s *redis.PoolStats) uint32 { return s.Timeouts }),
	} {
		if err := reg.Register(collector); err != nil {
			return fmt.Errorf("register redis pool metrics: %w", err)
		}
	}
	return nil
}

// Close releases the pool.
func (c *Client) Close() error {
	c.logger.Debug("Closing redis connection")
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("close redis client: %w", err)
	}
	return nil
}
