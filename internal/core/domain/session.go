package domain

import "time"

// OTPValidity is how long an issued challenge is honoured by the backend.
const OTPValidity = 600 * time.Second

// LoginState enumerates the steps of the OTP login flow.
type LoginState string

const (
	LoginEnteringEmail LoginState = "entering_email"
	LoginAwaitingOTP   LoginState = "awaiting_otp"
	LoginAuthenticated LoginState = "authenticated"
)

// OTPChallenge mirrors a backend-issued challenge. The code itself is never part of it.
type OTPChallenge struct {
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Consumed  bool
}

// NewOTPChallenge derives a challenge issued at the supplied moment.
func NewOTPChallenge(email string, issuedAt time.Time) OTPChallenge {
	return OTPChallenge{
		Email:     email,
		IssuedAt:  issuedAt,
		ExpiresAt: issuedAt.Add(OTPValidity),
	}
}

// IsExpired reports whether the challenge has elapsed its validity window.
func (c OTPChallenge) IsExpired(at time.Time) bool {
	return !c.ExpiresAt.After(at)
}

// Consume marks the challenge as used.
// Returns true when the challenge transitions from unused to used.
func (c *OTPChallenge) Consume() bool {
	if c.Consumed {
		return false
	}
	c.Consumed = true
	return true
}

// SessionStatus is the lifecycle position of the session store.
type SessionStatus string

const (
	SessionLoading         SessionStatus = "loading"
	SessionAuthenticated   SessionStatus = "authenticated"
	SessionUnauthenticated SessionStatus = "unauthenticated"
)

// SessionSnapshot is an immutable view of the session store.
type SessionSnapshot struct {
	Status   SessionStatus
	Identity *AdminIdentity
}

// Loading reports whether initialization has not resolved yet.
func (s SessionSnapshot) Loading() bool {
	return s.Status == SessionLoading
}

// Authenticated reports whether an identity is present.
func (s SessionSnapshot) Authenticated() bool {
	return s.Status == SessionAuthenticated && s.Identity != nil
}
