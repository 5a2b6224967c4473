package port

import "context"

// TokenStore persists the session token between process runs.
// Load returns repository.ErrNotFound when no token is stored.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}
