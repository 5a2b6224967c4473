package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	red "github.com/redis/go-redis/v9"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/repository"
)

func newTestRedis(t *testing.T) (*red.Client, *miniredis.Miniredis) {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := red.NewClient(&red.Options{Addr: server.Addr()})

	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})

	return client, server
}

func TestSessionTokenRepository_RoundTrip(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSessionTokenRepository(client, "console:session:test", time.Hour)
	savedAt := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	repo.WithClock(func() time.Time { return savedAt })
	ctx := context.Background()

	if _, err := repo.Load(ctx); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	if err := repo.Save(ctx, " token-abc "); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	token, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if token != "token-abc" {
		t.Fatalf("expected token-abc, got %q", token)
	}
	got, err := repo.SavedAt(ctx)
	if err != nil || !got.Equal(savedAt) {
		t.Fatalf("unexpected saved_at %v, %v", got, err)
	}
	if ttl := server.TTL("console:session:test"); ttl <= 0 || ttl > time.Hour {
		t.Fatalf("expected ttl within (0, 1h], got %v", ttl)
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if _, err := repo.Load(ctx); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after clear, got %v", err)
	}
	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("second Clear returned error: %v", err)
	}
}

func TestSessionTokenRepository_NoTTL(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewSessionTokenRepository(client, "", 0)

	if err := repo.Save(context.Background(), "tok"); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if !server.Exists(defaultSessionKey) {
		t.Fatalf("expected default key %s", defaultSessionKey)
	}
	if ttl := server.TTL(defaultSessionKey); ttl != 0 {
		t.Fatalf("expected no ttl, got %v", ttl)
	}
	if err := repo.Save(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestRateLimitRepository_SlidingWindow(t *testing.T) {
	client, server := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{KeyPrefix: "rl:otp", TTL: time.Minute})
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	window := 30 * time.Second

	for _, offset := range []time.Duration{0, 10 * time.Second, 20 * time.Second} {
		if err := repo.RecordAttempt(ctx, "10.0.0.1", base.Add(offset)); err != nil {
			t.Fatalf("RecordAttempt returned error: %v", err)
		}
	}
	if ttl := server.TTL("rl:otp:10.0.0.1"); ttl <= 0 {
		t.Fatalf("expected ttl on key, got %v", ttl)
	}

	reference := base.Add(35 * time.Second)
	if err := repo.TrimWindow(ctx, "10.0.0.1", window, reference); err != nil {
		t.Fatalf("TrimWindow returned error: %v", err)
	}
	count, err := repo.CountAttempts(ctx, "10.0.0.1", window, reference)
	if err != nil {
		t.Fatalf("CountAttempts returned error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 attempts in window, got %d", count)
	}

	oldest, ok, err := repo.OldestAttempt(ctx, "10.0.0.1", window, reference)
	if err != nil || !ok {
		t.Fatalf("OldestAttempt returned %v, %v", ok, err)
	}
	if !oldest.Equal(base.Add(10 * time.Second)) {
		t.Fatalf("expected oldest at +10s, got %v", oldest)
	}
}

func TestRateLimitRepository_Validation(t *testing.T) {
	client, _ := newTestRedis(t)
	repo := NewRateLimitRepository(client, SlidingWindowConfig{})
	ctx := context.Background()

	if _, err := repo.CountAttempts(ctx, "id", 0, time.Now()); err == nil {
		t.Fatal("expected error for non-positive window")
	}
	if err := repo.RecordAttempt(ctx, " ", time.Now()); err == nil {
		t.Fatal("expected error for empty identifier")
	}
	if _, ok, err := repo.OldestAttempt(ctx, "none", time.Minute, time.Now()); err != nil || ok {
		t.Fatalf("expected empty result, got %v, %v", ok, err)
	}
}
