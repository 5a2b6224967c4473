package redis

import (
	"context"
	"strconv"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap/zaptest"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/config"
)

func settingsFor(t *testing.T, server *miniredis.Miniredis) config.RedisSettings {
	t.Helper()
	host, portStr, _ := strings.Cut(server.Addr(), ":")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse miniredis port: %v", err)
	}
	return config.RedisSettings{Host: host, Port: port}
}

func TestNewClientPingsAndCloses(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := NewClient(context.Background(), settingsFor(t, server), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestNewClientFailsWhenUnreachable(t *testing.T) {
	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	settings := settingsFor(t, server)
	server.Close()

	if _, err := NewClient(context.Background(), settings, nil); err == nil {
		t.Fatal("expected ping failure")
	}
}

func TestHealthCheckReportsLostConnection(t *testing.T) {
	server := miniredis.RunT(t)
	client, err := NewClient(context.Background(), settingsFor(t, server), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	server.Close()
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail once redis is gone")
	}
}

func TestOptionsForConsole(t *testing.T) {
	opts := options(config.RedisSettings{Host: "cache.internal", Port: 6380, DB: 2, TLSEnabled: true})
	if opts.Addr != "cache.internal:6380" || opts.DB != 2 {
		t.Fatalf("unexpected address %q db %d", opts.Addr, opts.DB)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.ServerName != "cache.internal" {
		t.Fatalf("expected TLS with server name, got %+v", opts.TLSConfig)
	}
	if plain := options(config.RedisSettings{Host: "localhost", Port: 6379}); plain.TLSConfig != nil {
		t.Fatal("expected no TLS by default")
	}
}

func TestRegisterPoolMetrics(t *testing.T) {
	server := miniredis.RunT(t)
	client, err := NewClient(context.Background(), settingsFor(t, server), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	reg := prometheus.NewRegistry()
	if err := client.RegisterPoolMetrics(reg); err != nil {
		t.Fatalf("RegisterPoolMetrics returned error: %v", err)
	}
	got, err := testutil.GatherAndCount(reg, "console_redis_pool_connections")
	if err != nil || got != 1 {
		t.Fatalf("expected pool connections gauge, got %d (%v)", got, err)
	}
	if err := client.RegisterPoolMetrics(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
