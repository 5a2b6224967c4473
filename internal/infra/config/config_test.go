package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.Port != 8090 || cfg.App.Host != "127.0.0.1" {
		t.Fatalf("unexpected app settings %+v", cfg.App)
	}
	if cfg.OTP.TTL != 600*time.Second || cfg.OTP.CodeLength != 6 {
		t.Fatalf("unexpected otp settings %+v", cfg.OTP)
	}
	if cfg.Session.TokenStore != TokenStoreFile {
		t.Fatalf("expected file token store, got %q", cfg.Session.TokenStore)
	}
	if cfg.Query.DefaultPageSize != 10 {
		t.Fatalf("expected page size 10, got %d", cfg.Query.DefaultPageSize)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Fatalf("expected no brokers by default, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONSOLE_BACKEND_BASE_URL", "https://api.launchkart.test")
	t.Setenv("CONSOLE_APP_PORT", "9100")
	t.Setenv("CONSOLE_OTP_TTL", "5m")
	t.Setenv("CONSOLE_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("CONSOLE_SESSION_TOKEN_STORE", "redis")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.BaseURL != "https://api.launchkart.test" || cfg.App.Port != 9100 {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Backend, cfg.App)
	}
	if cfg.OTP.TTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl, got %v", cfg.OTP.TTL)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Fatalf("expected two brokers, got %v", cfg.Kafka.Brokers)
	}
	if !cfg.Redis.Enabled || cfg.Session.TokenStore != TokenStoreRedis {
		t.Fatalf("expected redis token store, got %+v %+v", cfg.Redis, cfg.Session)
	}
}

func TestValidateRejectsInconsistentSettings(t *testing.T) {
	t.Setenv("CONSOLE_SESSION_TOKEN_STORE", "redis")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "redis.enabled") {
		t.Fatalf("expected redis requirement error, got %v", err)
	}

	t.Setenv("CONSOLE_SESSION_TOKEN_STORE", "keychain")
	if _, err := Load(); err == nil {
		t.Fatal("expected unsupported store error")
	}
}

func TestResolvedTokenPathExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/home/operator")
	got := SessionSettings{TokenPath: "~/.launchkart/session"}.ResolvedTokenPath()
	if got != filepath.Join("/home/operator", ".launchkart/session") {
		t.Fatalf("unexpected path %q", got)
	}
	if got := (SessionSettings{TokenPath: "/tmp/session"}).ResolvedTokenPath(); got != "/tmp/session" {
		t.Fatalf("absolute path changed: %q", got)
	}
}
