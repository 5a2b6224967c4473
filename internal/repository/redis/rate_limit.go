package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
)

// SlidingWindowConfig defines configuration for the sliding window limiter.
type SlidingWindowConfig struct {
	KeyPrefix string
	TTL       time.Duration
}

// RateLimitRepository persists attempts, such as OTP requests per client, in Redis sorted sets.
// Each attempt is scored by its timestamp in nanoseconds.
type RateLimitRepository struct {
	client *redis.Client
	cfg    SlidingWindowConfig
}

// NewRateLimitRepository constructs a repository using the provided Redis client and config.
func NewRateLimitRepository(client *redis.Client, cfg SlidingWindowConfig) *RateLimitRepository {
	return &RateLimitRepository{client: client, cfg: cfg}
}

// RecordAttempt stores the attempt and refreshes the key TTL in one transaction.
func (r *RateLimitRepository) RecordAttempt(ctx context.Context, identifier string, at time.Time) error {
	key, err := r.key(identifier)
	if err != nil {
		return err
	}
	member := redis.Z{Score: float64(at.UnixNano()), Member: strconv.FormatInt(at.UnixNano(), 10)}

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, key, member)
	if r.cfg.TTL > 0 {
		pipe.Expire(ctx, key, r.cfg.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record attempt: %w", err)
	}
	return nil
}

// CountAttempts returns how many attempts occurred within the window ending at reference time.
func (r *RateLimitRepository) CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	key, min, max, err := r.bounds(identifier, window, reference)
	if err != nil {
		return 0, err
	}

	count, err := r.client.ZCount(ctx, key, min, max).Result()
	if err != nil {
		return 0, fmt.Errorf("redis zcount: %w", err)
	}
	return int(count), nil
}

// TrimWindow removes attempts older than the window relative to reference time.
func (r *RateLimitRepository) TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error {
	key, min, _, err := r.bounds(identifier, window, reference)
	if err != nil {
		return err
	}

	if err := r.client.ZRemRangeByScore(ctx, key, "-inf", "("+min).Err(); err != nil {
		return fmt.Errorf("redis zremrangebyscore: %w", err)
	}
	return nil
}

// OldestAttempt returns the oldest attempt remaining inside the active window.
func (r *RateLimitRepository) OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	key, min, max, err := r.bounds(identifier, window, reference)
	if err != nil {
		return time.Time{}, false, err
	}

	values, err := r.client.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: min, Max: max, Count: 1}).Result()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis zrangebyscore: %w", err)
	}
	if len(values) == 0 {
		return time.Time{}, false, nil
	}

	ts, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse timestamp: %w", err)
	}
	return time.Unix(0, ts), true, nil
}

func (r *RateLimitRepository) bounds(identifier string, window time.Duration, reference time.Time) (string, string, string, error) {
	if window <= 0 {
		return "", "", "", errors.New("window must be positive")
	}
	key, err := r.key(identifier)
	if err != nil {
		return "", "", "", err
	}
	min := strconv.FormatInt(reference.Add(-window).UnixNano(), 10)
	max := strconv.FormatInt(reference.UnixNano(), 10)
	return key, min, max, nil
}

func (r *RateLimitRepository) key(identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", errors.New("identifier is required")
	}
	if r.cfg.KeyPrefix == "" {
		return identifier, nil
	}
	return r.cfg.KeyPrefix + ":" + identifier, nil
}

var _ port.RateLimitStore = (*RateLimitRepository)(nil)
