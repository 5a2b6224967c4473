package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/repository"
)

const (
	defaultSessionKey = "console:session"

	fieldToken   = "token"
	fieldSavedAt = "saved_at"
)

// SessionTokenRepository keeps the operator session token in a Redis hash so several
// console processes on one host can share a login.
type SessionTokenRepository struct {
	client *red.Client
	key    string
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionTokenRepository constructs the store. A zero ttl keeps the token until cleared.
func NewSessionTokenRepository(client *red.Client, key string, ttl time.Duration) *SessionTokenRepository {
	key = strings.TrimSpace(key)
	if key == "" {
		key = defaultSessionKey
	}
	return &SessionTokenRepository{
		client: client,
		key:    key,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Load returns the stored token or repository.ErrNotFound.
func (r *SessionTokenRepository) Load(ctx context.Context) (string, error) {
	token, err := r.client.HGet(ctx, r.key, fieldToken).Result()
	if errors.Is(err, red.Nil) {
		return "", repository.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis load session token: %w", err)
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", repository.ErrNotFound
	}
	return token, nil
}

// Save replaces the stored token.
func (r *SessionTokenRepository) Save(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.key, map[string]any{
		fieldToken:   token,
		fieldSavedAt: strconv.FormatInt(r.now().UTC().Unix(), 10),
	})
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	} else {
		pipe.Persist(ctx, r.key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save session token: %w", err)
	}
	return nil
}

// Clear removes the stored token. Clearing an empty store is not an error.
func (r *SessionTokenRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis clear session token: %w", err)
	}
	return nil
}

// SavedAt reports when the current token was stored.
func (r *SessionTokenRepository) SavedAt(ctx context.Context) (time.Time, error) {
	raw, err := r.client.HGet(ctx, r.key, fieldSavedAt).Result()
	if errors.Is(err, red.Nil) {
		return time.Time{}, repository.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("redis load session saved_at: %w", err)
	}
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse saved_at: %w", err)
	}
	return time.Unix(v, 0).UTC(), nil
}

// WithClock overrides the internal clock, used in tests.
func (r *SessionTokenRepository) WithClock(clock func() time.Time) {
	if clock != nil {
		r.now = clock
	}
}

var _ port.TokenStore = (*SessionTokenRepository)(nil)
