package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/repository"
)

type fakeAuthGateway struct {
	mu sync.Mutex

	requestErr  error
	verifyErr   error
	identityErr error

	validCode string
	token     string
	identity  domain.AdminIdentity

	requestCalls  []string
	verifyCalls   []string
	identityCalls []string
}

func (f *fakeAuthGateway) RequestOTP(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requestCalls = append(f.requestCalls, email)
	return f.requestErr
}

func (f *fakeAuthGateway) VerifyOTP(_ context.Context, email, code string) (string, domain.AdminIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls = append(f.verifyCalls, email+":"+code)
	if f.verifyErr != nil {
		return "", domain.AdminIdentity{}, f.verifyErr
	}
	if f.validCode != "" && code != f.validCode {
		return "", domain.AdminIdentity{}, &domain.Error{Kind: domain.KindAuth, Op: "verify otp", Detail: "Invalid OTP", Status: 401}
	}
	return f.token, f.identity.Clone(), nil
}

func (f *fakeAuthGateway) VerifyIdentity(_ context.Context, token string) (domain.AdminIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.identityCalls = append(f.identityCalls, token)
	if f.identityErr != nil {
		return domain.AdminIdentity{}, f.identityErr
	}
	return f.identity.Clone(), nil
}

type fakeTokenStore struct {
	mu      sync.Mutex
	token   string
	loadErr error
	saveErr error
	saves   int
	clears  int
}

func (f *fakeTokenStore) Load(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return "", f.loadErr
	}
	if f.token == "" {
		return "", repository.ErrNotFound
	}
	return f.token, nil
}

func (f *fakeTokenStore) Save(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.token = token
	return nil
}

func (f *fakeTokenStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.token = ""
	return nil
}

type fakeEventPublisher struct {
	mu        sync.Mutex
	loggedIn  []domain.AdminLoggedInEvent
	loggedOut []domain.AdminLoggedOutEvent
	promoted  []domain.UserPromotedEvent
	mutated   []domain.ResourceMutatedEvent
}

func (f *fakeEventPublisher) PublishAdminLoggedIn(_ context.Context, event domain.AdminLoggedInEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = append(f.loggedIn, event)
	return nil
}

func (f *fakeEventPublisher) PublishAdminLoggedOut(_ context.Context, event domain.AdminLoggedOutEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, event)
	return nil
}

func (f *fakeEventPublisher) PublishUserPromoted(_ context.Context, event domain.UserPromotedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.promoted = append(f.promoted, event)
	return nil
}

func (f *fakeEventPublisher) PublishResourceMutated(_ context.Context, event domain.ResourceMutatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutated = append(f.mutated, event)
	return nil
}

type fakeMutator struct {
	err   error
	calls []string
}

func (f *fakeMutator) MutateResource(_ context.Context, kind domain.ResourceKind, itemID string, _ map[string]any) error {
	f.calls = append(f.calls, string(kind)+"/"+itemID)
	return f.err
}

type fakePromoter struct {
	err         error
	userID      string
	role        domain.Role
	permissions []domain.PermissionID
	calls       int
}

func (f *fakePromoter) PromoteUser(_ context.Context, userID string, role domain.Role, permissions []domain.PermissionID) error {
	f.calls++
	f.userID = userID
	f.role = role
	f.permissions = append([]domain.PermissionID(nil), permissions...)
	return f.err
}

type recordingMetrics struct {
	mu          sync.Mutex
	fetches     map[string]int
	decisions   map[string]int
	transitions []string
	statuses    []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{fetches: map[string]int{}, decisions: map[string]int{}}
}

func (m *recordingMetrics) ObserveFetch(kind, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches[kind+":"+outcome]++
}

func (m *recordingMetrics) ObserveGateDecision(decision string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[decision]++
}

func (m *recordingMetrics) ObserveLoginTransition(from, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, from+"->"+to)
}

func (m *recordingMetrics) ObserveSessionStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
}

func (m *recordingMetrics) fetchCount(kind, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches[kind+":"+outcome]
}

func testIdentity(role domain.Role, perms ...domain.PermissionID) domain.AdminIdentity {
	return domain.AdminIdentity{
		ID:          "admin-1",
		DisplayName: "Ada Admin",
		Email:       "ada@launchkart.test",
		Role:        role,
		Permissions: domain.NewPermissionSet(perms...),
	}
}

// authenticatedSession returns a resolved store logged in with the given identity.
func authenticatedSession(t *testing.T, identity domain.AdminIdentity) *SessionStore {
	t.Helper()
	store := NewSessionStore(&fakeAuthGateway{}, &fakeTokenStore{}, nil, nil)
	if err := store.Login(context.Background(), "token-1", identity); err != nil {
		t.Fatalf("login: %v", err)
	}
	return store
}

func unauthenticatedSession(t *testing.T) *SessionStore {
	t.Helper()
	store := NewSessionStore(&fakeAuthGateway{}, &fakeTokenStore{}, nil, nil)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return store
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}
