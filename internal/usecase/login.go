package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/logger"
)

var (
	// ErrInvalidTransition indicates an operation not permitted from the current login state.
	ErrInvalidTransition = errors.New("invalid login transition")
	// ErrStaleAttempt indicates a verification whose attempt was superseded by Back, Reset or a new request.
	ErrStaleAttempt = errors.New("login attempt superseded")
)

const (
	defaultCodeLength     = 6
	msgOTPRequestFailed   = "Failed to send OTP. Please try again."
	msgOTPVerifyFailed    = "Invalid or expired OTP. Please try again."
	msgEmailRequired      = "Email is required"
	msgCodeMalformedFmt   = "Enter the %d-digit code sent to your email"
	msgSessionNotAccepted = "Login succeeded but the session could not be established"
)

// LoginSnapshot is the observable state of the login flow.
type LoginSnapshot struct {
	State            domain.LoginState
	Email            string
	RemainingSeconds int
	Countdown        string
	Expired          bool
	Error            string
}

// OTPLoginMachine drives the two-step email and passcode login.
type OTPLoginMachine struct {
	mu        sync.Mutex
	state     domain.LoginState
	email     string
	challenge *domain.OTPChallenge
	remaining int
	errMsg    string
	seq       uint64

	auth       port.AuthGateway
	session    *SessionStore
	validate   *validator.Validate
	codeLength int
	validity   time.Duration
	metrics    port.ConsoleMetrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewOTPLoginMachine constructs a machine in the EnteringEmail state.
func NewOTPLoginMachine(auth port.AuthGateway, session *SessionStore, logger *zap.Logger) *OTPLoginMachine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OTPLoginMachine{
		state:      domain.LoginEnteringEmail,
		auth:       auth,
		session:    session,
		validate:   validator.New(),
		codeLength: defaultCodeLength,
		validity:   domain.OTPValidity,
		metrics:    port.NopMetrics{},
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the internal clock for deterministic tests.
func (m *OTPLoginMachine) WithClock(clock func() time.Time) *OTPLoginMachine {
	if clock != nil {
		m.now = clock
	}
	return m
}

// WithMetrics injects telemetry hooks.
func (m *OTPLoginMachine) WithMetrics(metrics port.ConsoleMetrics) *OTPLoginMachine {
	if metrics != nil {
		m.metrics = metrics
	}
	return m
}

// WithCodeLength overrides the expected passcode length.
func (m *OTPLoginMachine) WithCodeLength(length int) *OTPLoginMachine {
	if length > 0 {
		m.codeLength = length
	}
	return m
}

// WithValidity overrides the countdown length started after a successful request.
func (m *OTPLoginMachine) WithValidity(validity time.Duration) *OTPLoginMachine {
	if validity >= time.Second {
		m.validity = validity
	}
	return m
}

type otpRequestInput struct {
	Email string `validate:"required"`
}

// RequestOTP asks the backend to issue a passcode. On success the machine awaits the code and
// the countdown restarts; on failure the current state is kept and the error is surfaced.
func (m *OTPLoginMachine) RequestOTP(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	m.mu.Lock()
	if m.state == domain.LoginAuthenticated {
		m.mu.Unlock()
		return fmt.Errorf("request otp from %s: %w", domain.LoginAuthenticated, ErrInvalidTransition)
	}
	if err := m.validate.Struct(otpRequestInput{Email: email}); err != nil {
		m.errMsg = msgEmailRequired
		m.mu.Unlock()
		return domain.ValidationError("request otp", msgEmailRequired)
	}
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	err := m.auth.RequestOTP(ctx, email)

	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq {
		return err
	}
	if err != nil {
		m.errMsg = userMessage(err, msgOTPRequestFailed)
		m.logger.Info("otp request failed",
			zap.String("email", logger.MaskEmail(email)),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return err
	}

	challenge := domain.NewOTPChallenge(email, m.now())
	challenge.ExpiresAt = challenge.IssuedAt.Add(m.validity)
	m.challenge = &challenge
	m.email = email
	m.remaining = int(m.validity / time.Second)
	m.errMsg = ""
	m.transitionLocked(domain.LoginAwaitingOTP)
	m.logger.Info("otp issued", zap.String("email", logger.MaskEmail(email)))
	return nil
}

// VerifyOTP submits the passcode. On success the session store receives the verified
// identity; on failure the machine keeps awaiting the code and the countdown continues.
// An empty email falls back to the address the code was requested for.
func (m *OTPLoginMachine) VerifyOTP(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)

	m.mu.Lock()
	if m.state != domain.LoginAwaitingOTP {
		state := m.state
		m.mu.Unlock()
		return fmt.Errorf("verify otp from %s: %w", state, ErrInvalidTransition)
	}
	if email == "" {
		email = m.email
	}
	if err := m.validate.Var(code, fmt.Sprintf("required,numeric,len=%d", m.codeLength)); err != nil {
		detail := fmt.Sprintf(msgCodeMalformedFmt, m.codeLength)
		m.errMsg = detail
		m.mu.Unlock()
		return domain.ValidationError("verify otp", detail)
	}
	if email == "" {
		m.errMsg = msgEmailRequired
		m.mu.Unlock()
		return domain.ValidationError("verify otp", msgEmailRequired)
	}
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	token, identity, err := m.auth.VerifyOTP(ctx, email, code)

	// The handoff runs under m.mu so Back and Reset cannot interleave with it.
	// Session subscribers must not call back into the machine on authentication.
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq {
		m.logger.Info("otp verification discarded",
			zap.String("email", logger.MaskEmail(email)),
			zap.Bool("backend_accepted", err == nil),
		)
		return fmt.Errorf("verify otp: %w", ErrStaleAttempt)
	}
	if err == nil && m.session != nil {
		if loginErr := m.session.Login(ctx, token, identity); loginErr != nil {
			err = domain.NewError(domain.KindAuth, "verify otp", msgSessionNotAccepted, loginErr)
		}
	}
	if err != nil {
		m.errMsg = userMessage(err, msgOTPVerifyFailed)
		m.logger.Info("otp verification failed",
			zap.String("email", logger.MaskEmail(email)),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return err
	}

	if m.challenge != nil {
		m.challenge.Consume()
	}
	m.challenge = nil
	m.remaining = 0
	m.errMsg = ""
	m.transitionLocked(domain.LoginAuthenticated)
	return nil
}

// Back returns to email entry, discarding the countdown and any error.
func (m *OTPLoginMachine) Back() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != domain.LoginAwaitingOTP {
		return fmt.Errorf("back from %s: %w", m.state, ErrInvalidTransition)
	}
	m.seq++
	m.resetLocked()
	return nil
}

// Reset returns the machine to email entry from any state. Used after logout.
func (m *OTPLoginMachine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.email = ""
	m.resetLocked()
}

// Tick advances the countdown by one second while a code is awaited.
// Reaching zero marks the challenge as expired but never changes the state.
func (m *OTPLoginMachine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == domain.LoginAwaitingOTP && m.remaining > 0 {
		m.remaining--
	}
}

// Run ticks the countdown once per second until the context ends.
func (m *OTPLoginMachine) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick()
		}
	}
}

// Snapshot returns the current state of the flow.
func (m *OTPLoginMachine) Snapshot() LoginSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return LoginSnapshot{
		State:            m.state,
		Email:            m.email,
		RemainingSeconds: m.remaining,
		Countdown:        FormatCountdown(m.remaining),
		Expired:          m.state == domain.LoginAwaitingOTP && m.remaining == 0,
		Error:            m.errMsg,
	}
}

// ClearError drops the transient error message without touching the state.
func (m *OTPLoginMachine) ClearError() {
	m.mu.Lock()
	m.errMsg = ""
	m.mu.Unlock()
}

func (m *OTPLoginMachine) resetLocked() {
	m.challenge = nil
	m.remaining = 0
	m.errMsg = ""
	m.transitionLocked(domain.LoginEnteringEmail)
}

func (m *OTPLoginMachine) transitionLocked(to domain.LoginState) {
	from := m.state
	m.state = to
	if from != to {
		m.metrics.ObserveLoginTransition(string(from), string(to))
	}
}

// FormatCountdown renders whole seconds as mm:ss.
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func userMessage(err error, fallback string) string {
	if detail := domain.DetailOf(err); detail != "" {
		return detail
	}
	return fallback
}
