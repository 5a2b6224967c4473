package port

import (
	"context"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
)

// AuthGateway reaches the backend endpoints that issue and verify operator credentials.
type AuthGateway interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (string, domain.AdminIdentity, error)
	VerifyIdentity(ctx context.Context, token string) (domain.AdminIdentity, error)
}
