package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "CONSOLE"

type AppConfig struct {
	App       AppSettings       `mapstructure:"app"`
	GRPC      GRPCSettings      `mapstructure:"grpc"`
	Backend   BackendSettings   `mapstructure:"backend"`
	Session   SessionSettings   `mapstructure:"session"`
	OTP       OTPSettings       `mapstructure:"otp"`
	Query     QuerySettings     `mapstructure:"query"`
	Redis     RedisSettings     `mapstructure:"redis"`
	Kafka     KafkaSettings     `mapstructure:"kafka"`
	Telemetry TelemetrySettings `mapstructure:"telemetry"`
	RateLimit RateLimitSettings `mapstructure:"rate_limit"`
}

type AppSettings struct {
	Name           string   `mapstructure:"name"`
	Env            string   `mapstructure:"env"`
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type GRPCSettings struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// BackendSettings configures the REST client used to reach the platform API.
type BackendSettings struct {
	BaseURL          string        `mapstructure:"base_url"`
	UserAgent        string        `mapstructure:"user_agent"`
	RequestRate      float64       `mapstructure:"request_rate"`
	RequestBurst     int           `mapstructure:"request_burst"`
	BreakerThreshold uint32        `mapstructure:"breaker_threshold"`
	BreakerInterval  time.Duration `mapstructure:"breaker_interval"`
	BreakerTimeout   time.Duration `mapstructure:"breaker_timeout"`
}

// SessionSettings selects where the session token survives between runs.
type SessionSettings struct {
	TokenStore string        `mapstructure:"token_store"`
	TokenPath  string        `mapstructure:"token_path"`
	RedisKey   string        `mapstructure:"redis_key"`
	RedisTTL   time.Duration `mapstructure:"redis_ttl"`
}

type OTPSettings struct {
	TTL        time.Duration `mapstructure:"ttl"`
	CodeLength int           `mapstructure:"code_length"`
}

type QuerySettings struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
}

// RedisSettings configures Redis connection and TLS
type RedisSettings struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	DB         int    `mapstructure:"db"`
	Password   string `mapstructure:"password"`
	TLSEnabled bool   `mapstructure:"tls_enabled"`
}

// KafkaSettings configures Kafka producer
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

type TelemetrySettings struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SamplingRate float64 `mapstructure:"sampling_rate"`
}

// RateLimitSettings configures the sliding window applied to OTP requests.
type RateLimitSettings struct {
	WindowDuration        time.Duration `mapstructure:"window_duration"`
	OTPRequestMaxAttempts int           `mapstructure:"otp_request_max_attempts"`
}

// Token store backends.
const (
	TokenStoreFile  = "file"
	TokenStoreRedis = "redis"
)

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.allowed_origins",
		"grpc.enabled",
		"grpc.host",
		"grpc.port",
		"backend.base_url",
		"backend.user_agent",
		"backend.request_rate",
		"backend.request_burst",
		"backend.breaker_threshold",
		"backend.breaker_interval",
		"backend.breaker_timeout",
		"session.token_store",
		"session.token_path",
		"session.redis_key",
		"session.redis_ttl",
		"otp.ttl",
		"otp.code_length",
		"query.default_page_size",
		"redis.enabled",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"telemetry.otlp_endpoint",
		"telemetry.service_name",
		"telemetry.sampling_rate",
		"rate_limit.window_duration",
		"rate_limit.otp_request_max_attempts",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the console cannot start with.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	switch c.Session.TokenStore {
	case TokenStoreFile:
	case TokenStoreRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("session.token_store=redis requires redis.enabled")
		}
	default:
		return fmt.Errorf("unsupported session.token_store %q", c.Session.TokenStore)
	}
	if c.OTP.CodeLength <= 0 {
		return fmt.Errorf("otp.code_length must be positive")
	}
	return nil
}

// ResolvedTokenPath returns the session file location with a leading ~ expanded.
func (s SessionSettings) ResolvedTokenPath() string {
	path := strings.TrimSpace(s.TokenPath)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "launchkart-console")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "127.0.0.1")
	v.SetDefault("app.port", 8090)
	v.SetDefault("app.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.host", "127.0.0.1")
	v.SetDefault("grpc.port", 50061)

	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.user_agent", "launchkart-console")
	v.SetDefault("backend.request_rate", 20.0)
	v.SetDefault("backend.request_burst", 10)
	v.SetDefault("backend.breaker_threshold", 5)
	v.SetDefault("backend.breaker_interval", "60s")
	v.SetDefault("backend.breaker_timeout", "30s")

	v.SetDefault("session.token_store", TokenStoreFile)
	v.SetDefault("session.token_path", "~/.launchkart/session")
	v.SetDefault("session.redis_key", "console:session")
	v.SetDefault("session.redis_ttl", "24h")

	v.SetDefault("otp.ttl", "600s")
	v.SetDefault("otp.code_length", 6)

	v.SetDefault("query.default_page_size", 10)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "console")
	v.SetDefault("kafka.async", true)

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.service_name", "launchkart-console")
	v.SetDefault("telemetry.sampling_rate", 1.0)

	v.SetDefault("rate_limit.window_duration", "1m")
	v.SetDefault("rate_limit.otp_request_max_attempts", 5)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envPrefix+"_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
