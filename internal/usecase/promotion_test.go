package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
)

func newPromotionFixture(t *testing.T, perms ...domain.PermissionID) (*PromotionService, *fakePromoter, *fakeEventPublisher) {
	t.Helper()
	session := authenticatedSession(t, testIdentity(domain.RoleSuperAdmin, perms...))
	promoter := &fakePromoter{}
	events := &fakeEventPublisher{}
	svc := NewPromotionService(promoter, session, NewRouteGate(session), zaptest.NewLogger(t)).
		WithEventPublisher(events).
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) })
	return svc, promoter, events
}

func TestPromotionExplicitSetWinsOverDefaults(t *testing.T) {
	svc, promoter, events := newPromotionFixture(t, domain.PermAdminManagement)

	draft, err := svc.Draft(domain.RoleAdmin)
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	if len(draft) <= 1 {
		t.Fatalf("expected admin defaults to be broader than the submission, got %v", draft.Strings())
	}

	granted, err := svc.Submit(context.Background(), "user-42", domain.RoleAdmin, []domain.PermissionID{domain.PermUserManagement})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	want := domain.NewPermissionSet(domain.PermUserManagement)
	if !granted.Equal(want) {
		t.Fatalf("expected exactly %v granted, got %v", want.Strings(), granted.Strings())
	}
	if !domain.NewPermissionSet(promoter.permissions...).Equal(want) || len(promoter.permissions) != 1 {
		t.Fatalf("expected exactly user_management sent, got %v", promoter.permissions)
	}
	if promoter.userID != "user-42" || promoter.role != domain.RoleAdmin {
		t.Fatalf("unexpected promotion call %+v", promoter)
	}
	if len(events.promoted) != 1 || events.promoted[0].PromotedBy != "admin-1" {
		t.Fatalf("unexpected promotion events %+v", events.promoted)
	}
}

func TestPromotionRequiresAdminManagement(t *testing.T) {
	svc, promoter, _ := newPromotionFixture(t, domain.PermUserManagement)

	_, err := svc.Submit(context.Background(), "user-42", domain.RoleSupport, []domain.PermissionID{domain.PermUserManagement})
	if !errors.Is(err, ErrPermissionDenied) || !errors.Is(err, domain.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if promoter.calls != 0 {
		t.Fatal("forbidden promotion must not reach the backend")
	}
}

func TestPromotionRequiresSession(t *testing.T) {
	session := unauthenticatedSession(t)
	promoter := &fakePromoter{}
	svc := NewPromotionService(promoter, session, NewRouteGate(session), nil)

	if _, err := svc.Submit(context.Background(), "u", domain.RoleAdmin, []domain.PermissionID{domain.PermUserManagement}); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	loading := NewSessionStore(&fakeAuthGateway{}, &fakeTokenStore{}, nil, nil)
	svc = NewPromotionService(promoter, loading, NewRouteGate(loading), nil)
	if _, err := svc.Submit(context.Background(), "u", domain.RoleAdmin, []domain.PermissionID{domain.PermUserManagement}); !errors.Is(err, ErrSessionLoading) {
		t.Fatalf("expected ErrSessionLoading, got %v", err)
	}
}

func TestPromotionValidation(t *testing.T) {
	svc, promoter, _ := newPromotionFixture(t, domain.PermAdminManagement)

	cases := []struct {
		name   string
		userID string
		role   domain.Role
		perms  []domain.PermissionID
		target error
	}{
		{"empty user", " ", domain.RoleAdmin, []domain.PermissionID{domain.PermUserManagement}, domain.ErrValidation},
		{"unknown role", "u", domain.Role("owner"), []domain.PermissionID{domain.PermUserManagement}, ErrUnknownRole},
		{"unknown permission", "u", domain.RoleAdmin, []domain.PermissionID{"root"}, ErrUnknownPermission},
		{"no permissions", "u", domain.RoleAdmin, nil, ErrNoPermissions},
		{"self promotion", "admin-1", domain.RoleAdmin, []domain.PermissionID{domain.PermUserManagement}, ErrSelfPromotion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(context.Background(), tc.userID, tc.role, tc.perms); !errors.Is(err, tc.target) {
				t.Fatalf("expected %v, got %v", tc.target, err)
			}
		})
	}
	if promoter.calls != 0 {
		t.Fatalf("invalid promotions must not reach the backend, got %d calls", promoter.calls)
	}
}

func TestPromotionBackendFailure(t *testing.T) {
	svc, promoter, events := newPromotionFixture(t, domain.PermAdminManagement)
	promoter.err = &domain.Error{Kind: domain.KindNotFound, Detail: "User not found", Status: 404}

	if _, err := svc.Submit(context.Background(), "ghost", domain.RoleModerator, []domain.PermissionID{domain.PermContentModeration}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(events.promoted) != 0 {
		t.Fatal("failed promotion must not publish an event")
	}
}

func TestPromotionDraftUnknownRole(t *testing.T) {
	svc, _, _ := newPromotionFixture(t, domain.PermAdminManagement)
	if _, err := svc.Draft(domain.Role("owner")); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}
