package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
	filerepo "github.com/Skiblinx/launchkart-FE-sub001/internal/repository/file"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/me" || r.Header.Get("Authorization") != "Bearer persisted-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Invalid token"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "admin-7",
			"full_name":   "Grace",
			"email":       "grace@launchkart.io",
			"admin_role":  "admin",
			"permissions": []string{"user_management", "kyc_verification"},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(backendURL, tokenPath string) *config.AppConfig {
	return &config.AppConfig{
		App:     config.AppSettings{Name: "launchkart-console", Env: "test"},
		Backend: config.BackendSettings{BaseURL: backendURL, BreakerThreshold: 5},
		Session: config.SessionSettings{
			TokenStore: config.TokenStoreFile,
			TokenPath:  tokenPath,
			RedisKey:   "console:session:test",
			RedisTTL:   time.Hour,
		},
		OTP:       config.OTPSettings{TTL: 10 * time.Minute, CodeLength: 6},
		Query:     config.QuerySettings{DefaultPageSize: 10},
		RateLimit: config.RateLimitSettings{WindowDuration: time.Minute, OTPRequestMaxAttempts: 5},
	}
}

func TestBuildRestoresPersistedSession(t *testing.T) {
	backend := newBackend(t)
	path := filepath.Join(t.TempDir(), "session")
	if err := filerepo.NewTokenStore(path).Save(context.Background(), "persisted-token"); err != nil {
		t.Fatalf("seed token: %v", err)
	}

	ctx := context.Background()
	core, err := Build(ctx, testConfig(backend.URL, path), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { core.Close(ctx) })

	if core.RateLimitStore() != nil {
		t.Fatal("expected no rate limit store without redis")
	}
	if err := core.Console.Session.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	snapshot := core.Console.Session.Snapshot()
	if !snapshot.Authenticated() || snapshot.Identity.ID != "admin-7" {
		t.Fatalf("expected restored session, got %+v", snapshot)
	}
	if !core.Console.Session.HasPermission(domain.PermKYCVerification) {
		t.Fatal("expected kyc_verification from the backend identity")
	}
	if token, ok := core.Console.Session.Token(); !ok || token != "persisted-token" {
		t.Fatalf("expected bound token, got %q", token)
	}
}

func TestBuildWithRedisTokenStore(t *testing.T) {
	server := miniredis.RunT(t)
	host, portStr, err := net.SplitHostPort(server.Addr())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	backend := newBackend(t)
	cfg := testConfig(backend.URL, "")
	cfg.Session.TokenStore = config.TokenStoreRedis
	cfg.Redis = config.RedisSettings{Enabled: true, Host: host, Port: port}

	ctx := context.Background()
	core, err := Build(ctx, cfg, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() { core.Close(ctx) })

	if core.RateLimitStore() == nil {
		t.Fatal("expected a redis rate limit store")
	}
	if err := core.Console.Session.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if core.Console.Session.Snapshot().Authenticated() {
		t.Fatal("expected no session with an empty redis store")
	}
	if err := core.Redis.HealthCheck(ctx); err != nil {
		t.Fatalf("health check: %v", err)
	}
	if n, err := testutil.GatherAndCount(core.Registry, "console_redis_pool_connections"); err != nil || n != 1 {
		t.Fatalf("expected redis pool gauge on the console registry, got %d (%v)", n, err)
	}
}

func TestBuildRejectsRedisStoreWithoutRedis(t *testing.T) {
	cfg := testConfig("http://localhost:8000", "")
	cfg.Session.TokenStore = config.TokenStoreRedis

	if _, err := Build(context.Background(), cfg, zaptest.NewLogger(t)); err == nil {
		t.Fatal("expected an error when redis is disabled")
	}
}
