package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/logger"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/repository"
)

var (
	// ErrSessionAlreadyInitialized indicates Init was called after the store resolved.
	ErrSessionAlreadyInitialized = errors.New("session already initialized")
	// ErrIncompleteIdentity indicates a login attempt with a partially populated identity.
	ErrIncompleteIdentity = errors.New("identity is incomplete")
	// ErrMissingToken indicates a login attempt without a session token.
	ErrMissingToken = errors.New("session token is required")
)

// SessionStore owns the authenticated identity and session token for the process.
// State changes only through Init, Login, Logout and Teardown.
type SessionStore struct {
	mu       sync.RWMutex
	status   domain.SessionStatus
	identity *domain.AdminIdentity
	token    string
	epoch    uint64
	ready    chan struct{}
	resolved bool

	// persistMu orders token store writes the same way epoch orders state changes.
	persistMu sync.Mutex

	auth    port.AuthGateway
	tokens  port.TokenStore
	engine  *PermissionEngine
	events  port.EventPublisher
	metrics port.ConsoleMetrics
	logger  *zap.Logger
	now     func() time.Time

	listenersMu sync.Mutex
	listeners   []func(domain.SessionSnapshot)
}

// NewSessionStore constructs a store in the loading state.
func NewSessionStore(auth port.AuthGateway, tokens port.TokenStore, engine *PermissionEngine, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = NewPermissionEngine()
	}
	return &SessionStore{
		status:  domain.SessionLoading,
		ready:   make(chan struct{}),
		auth:    auth,
		tokens:  tokens,
		engine:  engine,
		metrics: port.NopMetrics{},
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithEventPublisher injects the audit event publisher.
func (s *SessionStore) WithEventPublisher(events port.EventPublisher) *SessionStore {
	s.events = events
	return s
}

// WithMetrics injects telemetry hooks.
func (s *SessionStore) WithMetrics(metrics port.ConsoleMetrics) *SessionStore {
	if metrics != nil {
		s.metrics = metrics
	}
	return s
}

// WithClock overrides the internal clock for deterministic tests.
func (s *SessionStore) WithClock(clock func() time.Time) *SessionStore {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Subscribe registers a callback invoked after every state change.
func (s *SessionStore) Subscribe(fn func(domain.SessionSnapshot)) {
	if fn == nil {
		return
	}
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

// Init resolves the persisted session. It is the only network call made during startup:
// a persisted token is verified against the backend, and any failure clears it.
func (s *SessionStore) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.resolved {
		s.mu.Unlock()
		return ErrSessionAlreadyInitialized
	}
	epoch := s.epoch
	s.mu.Unlock()

	token, err := s.loadToken(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("failed to load persisted session token", zap.Error(err))
			s.rejectInit(ctx, epoch)
			return nil
		}
		s.resolveInit(epoch, "", nil)
		return nil
	}

	identity, err := s.auth.VerifyIdentity(ctx, token)
	if err == nil && !identity.Complete() {
		err = domain.NewError(domain.KindAuth, "verify identity", "backend returned an incomplete identity", ErrIncompleteIdentity)
	}
	if err != nil {
		s.logger.Info("persisted session rejected",
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		if s.rejectInit(ctx, epoch) {
			s.publishLogout(ctx, "", domain.LogoutReasonInitFailure)
		}
		return nil
	}

	verified := identity.Clone()
	s.resolveInit(epoch, token, &verified)
	s.logger.Info("session restored",
		zap.String("admin_id", verified.ID),
		zap.String("email", logger.MaskEmail(verified.Email)),
		zap.String("role", string(verified.Role)),
	)
	return nil
}

// Login installs a verified session. It is called once the OTP verification succeeds.
func (s *SessionStore) Login(ctx context.Context, token string, identity domain.AdminIdentity) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrMissingToken
	}
	if !identity.Complete() {
		return ErrIncompleteIdentity
	}

	installed := identity.Clone()
	s.persistMu.Lock()
	s.mu.Lock()
	s.epoch++
	s.token = token
	s.identity = &installed
	s.status = domain.SessionAuthenticated
	s.markReadyLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if s.tokens != nil {
		if err := s.tokens.Save(ctx, token); err != nil {
			// The in-memory session stays valid; only the next process start is affected.
			s.logger.Warn("failed to persist session token", zap.Error(err))
		}
	}
	s.persistMu.Unlock()

	s.notify(snapshot)
	s.logger.Info("operator logged in",
		zap.String("admin_id", installed.ID),
		zap.String("email", logger.MaskEmail(installed.Email)),
		zap.String("role", string(installed.Role)),
	)

	if s.events != nil {
		event := domain.AdminLoggedInEvent{
			EventID:    uuid.NewString(),
			AdminID:    installed.ID,
			Email:      installed.Email,
			Role:       installed.Role,
			LoggedInAt: s.now(),
		}
		if err := s.events.PublishAdminLoggedIn(ctx, event); err != nil {
			s.logger.Warn("failed to publish login event", zap.Error(err))
		}
	}

	return nil
}

// Logout clears the session. Calling it repeatedly is harmless.
func (s *SessionStore) Logout(ctx context.Context) {
	s.logout(ctx, domain.LogoutReasonOperator)
}

// HandleUnauthorized reacts to a missing or rejected bearer credential by logging out.
func (s *SessionStore) HandleUnauthorized(ctx context.Context) {
	s.logout(ctx, domain.LogoutReasonRejected)
}

func (s *SessionStore) logout(ctx context.Context, reason string) {
	s.persistMu.Lock()
	s.mu.Lock()
	s.epoch++
	previous := s.identity
	changed := s.status != domain.SessionUnauthenticated
	s.token = ""
	s.identity = nil
	s.status = domain.SessionUnauthenticated
	s.markReadyLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.clearPersisted(ctx)
	s.persistMu.Unlock()

	if !changed {
		return
	}

	s.notify(snapshot)

	adminID := ""
	if previous != nil {
		adminID = previous.ID
	}
	s.logger.Info("operator logged out", zap.String("admin_id", adminID), zap.String("reason", reason))
	if previous != nil {
		s.publishLogout(ctx, adminID, reason)
	}
}

// Teardown drops in-memory state and returns the store to loading so Init may run again.
// The persisted token is left untouched.
func (s *SessionStore) Teardown() {
	s.mu.Lock()
	s.epoch++
	s.token = ""
	s.identity = nil
	s.status = domain.SessionLoading
	s.resolved = false
	s.ready = make(chan struct{})
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

// Snapshot returns the current state. The identity is a copy.
func (s *SessionStore) Snapshot() domain.SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Loading reports whether Init has not resolved yet.
func (s *SessionStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status == domain.SessionLoading
}

// Ready returns a channel closed once the store leaves the loading state.
func (s *SessionStore) Ready() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// AwaitReady blocks until the store resolves or the context ends.
func (s *SessionStore) AwaitReady(ctx context.Context) error {
	select {
	case <-s.Ready():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("await session readiness: %w", ctx.Err())
	}
}

// Token returns the bearer credential when authenticated.
func (s *SessionStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.status != domain.SessionAuthenticated || s.token == "" {
		return "", false
	}
	return s.token, true
}

// HasPermission delegates to the permission engine with the current identity.
func (s *SessionStore) HasPermission(permission domain.PermissionID) bool {
	s.mu.RLock()
	identity := s.identity
	s.mu.RUnlock()
	return s.engine.HasPermission(identity, permission)
}

// Engine exposes the permission engine the store delegates to.
func (s *SessionStore) Engine() *PermissionEngine {
	return s.engine
}

func (s *SessionStore) loadToken(ctx context.Context) (string, error) {
	if s.tokens == nil {
		return "", repository.ErrNotFound
	}
	token, err := s.tokens.Load(ctx)
	if err != nil {
		return "", err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", repository.ErrNotFound
	}
	return token, nil
}

func (s *SessionStore) clearPersisted(ctx context.Context) {
	if s.tokens == nil {
		return
	}
	if err := s.tokens.Clear(ctx); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("failed to clear persisted session token", zap.Error(err))
	}
}

// rejectInit clears the persisted token and resolves Init as unauthenticated. Nothing
// happens when Login or Logout moved the store on while Init was in flight; it reports
// whether the rejection applied.
func (s *SessionStore) rejectInit(ctx context.Context, epoch uint64) bool {
	s.persistMu.Lock()
	s.mu.RLock()
	current := s.epoch == epoch
	s.mu.RUnlock()
	if current {
		s.clearPersisted(ctx)
	}
	s.persistMu.Unlock()

	s.resolveInit(epoch, "", nil)
	return current
}

// resolveInit applies the outcome of Init unless Login or Logout already moved the store on.
func (s *SessionStore) resolveInit(epoch uint64, token string, identity *domain.AdminIdentity) {
	s.mu.Lock()
	s.resolved = true
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	if identity != nil {
		s.token = token
		s.identity = identity
		s.status = domain.SessionAuthenticated
	} else {
		s.token = ""
		s.identity = nil
		s.status = domain.SessionUnauthenticated
	}
	s.markReadyLocked()
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snapshot)
}

func (s *SessionStore) markReadyLocked() {
	s.resolved = true
	select {
	case <-s.ready:
	default:
		close(s.ready)
	}
}

func (s *SessionStore) snapshotLocked() domain.SessionSnapshot {
	snapshot := domain.SessionSnapshot{Status: s.status}
	if s.identity != nil {
		identity := s.identity.Clone()
		snapshot.Identity = &identity
	}
	return snapshot
}

func (s *SessionStore) notify(snapshot domain.SessionSnapshot) {
	s.metrics.ObserveSessionStatus(string(snapshot.Status))

	s.listenersMu.Lock()
	listeners := append([]func(domain.SessionSnapshot){}, s.listeners...)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

func (s *SessionStore) publishLogout(ctx context.Context, adminID, reason string) {
	if s.events == nil {
		return
	}
	event := domain.AdminLoggedOutEvent{
		EventID:     uuid.NewString(),
		AdminID:     adminID,
		Reason:      reason,
		LoggedOutAt: s.now(),
	}
	if err := s.events.PublishAdminLoggedOut(ctx, event); err != nil {
		s.logger.Warn("failed to publish logout event", zap.Error(err))
	}
}
