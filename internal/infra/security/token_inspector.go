package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken indicates the session token is not a JWT and carries no readable claims.
var ErrOpaqueToken = errors.New("token: not a jwt")

// TokenClaims is the subset of session token claims the console displays.
type TokenClaims struct {
	Subject   string
	Email     string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry at or before now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Remaining returns the time left before expiry, zero when expired or unknown.
func (c TokenClaims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() || !now.Before(c.ExpiresAt) {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenInspector decodes session tokens without verifying their signature.
// The backend stays authoritative; results are display hints only.
type TokenInspector struct {
	parser *jwt.Parser
}

// NewTokenInspector constructs an inspector.
func NewTokenInspector() *TokenInspector {
	return &TokenInspector{parser: jwt.NewParser()}
}

// Inspect returns the claims of a JWT-shaped token or ErrOpaqueToken.
func (i *TokenInspector) Inspect(token string) (TokenClaims, error) {
	token = strings.TrimSpace(token)
	if strings.Count(token, ".") != 2 {
		return TokenClaims{}, ErrOpaqueToken
	}

	var claims sessionClaims
	if _, _, err := i.parser.ParseUnverified(token, &claims); err != nil {
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}

	out := TokenClaims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
