package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
)

type usersLister struct {
	items []domain.PlatformUser
}

func (l *usersLister) ListResources(context.Context, domain.ResourceKind, domain.ResourceQuery) ([]domain.PlatformUser, int, error) {
	out := make([]domain.PlatformUser, len(l.items))
	copy(out, l.items)
	return out, 1, nil
}

func newConsoleFixture(t *testing.T, perms ...domain.PermissionID) (*Console, *fakeMutator, *fakeEventPublisher) {
	t.Helper()
	mutator := &fakeMutator{}
	events := &fakeEventPublisher{}
	auth := &fakeAuthGateway{
		validCode: "123456",
		token:     "tok",
		identity:  testIdentity(domain.RoleAdmin, perms...),
	}
	console := NewConsole(ConsoleDeps{
		Auth:   auth,
		Tokens: &fakeTokenStore{},
		Listers: Listers{
			Users: &usersLister{items: []domain.PlatformUser{
				{ID: "u1", FullName: "Founder One", Status: "active", UserType: "founder"},
				{ID: "u2", FullName: "Mentor Two", Status: "active", UserType: "mentor"},
			}},
		},
		Mutator:  mutator,
		Promoter: &fakePromoter{},
		Events:   events,
		Logger:   zaptest.NewLogger(t),
	})
	ctx := context.Background()
	if err := console.Session.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := console.Login.RequestOTP(ctx, "ada@launchkart.test"); err != nil {
		t.Fatalf("request otp: %v", err)
	}
	if err := console.Login.VerifyOTP(ctx, "", "123456"); err != nil {
		t.Fatalf("verify otp: %v", err)
	}
	return console, mutator, events
}

func TestConsoleMutateAppliesOptimisticPatch(t *testing.T) {
	console, mutator, events := newConsoleFixture(t, domain.PermUserManagement)
	ctx := testContext(t)
	if err := console.Users.Await(ctx, console.Users.Refetch(ctx)); err != nil {
		t.Fatalf("await: %v", err)
	}

	patched, err := console.Mutate(ctx, domain.ResourceUsers, "u2", "user.suspend", map[string]any{"status": "suspended"})
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if !patched {
		t.Fatal("expected visible item patched")
	}
	items := console.Users.State().Page.Items
	if items[1].Status != "suspended" || items[0].Status != "active" {
		t.Fatalf("unexpected items after patch %+v", items)
	}
	if len(mutator.calls) != 1 || mutator.calls[0] != "users/u2" {
		t.Fatalf("unexpected mutator calls %v", mutator.calls)
	}
	if len(events.mutated) != 1 || events.mutated[0].ActorID != "admin-1" {
		t.Fatalf("unexpected mutation events %+v", events.mutated)
	}
}

func TestConsoleMutateForbiddenAction(t *testing.T) {
	console, mutator, _ := newConsoleFixture(t, domain.PermKYCVerification)

	_, err := console.Mutate(context.Background(), domain.ResourceKYC, "k1", "kyc.approve", map[string]any{"status": "approved"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(mutator.calls) != 0 {
		t.Fatal("forbidden mutation must not reach the backend")
	}
}

func TestConsoleMutateBackendFailureLeavesPage(t *testing.T) {
	console, mutator, _ := newConsoleFixture(t, domain.PermUserManagement)
	ctx := testContext(t)
	if err := console.Users.Await(ctx, console.Users.Refetch(ctx)); err != nil {
		t.Fatalf("await: %v", err)
	}
	mutator.err = &domain.Error{Kind: domain.KindServer, Status: 500}

	if _, err := console.Mutate(ctx, domain.ResourceUsers, "u1", "user.suspend", map[string]any{"status": "suspended"}); !errors.Is(err, domain.ErrServer) {
		t.Fatalf("expected server error, got %v", err)
	}
	if got := console.Users.State().Page.Items[0].Status; got != "active" {
		t.Fatalf("failed mutation must not patch, got %q", got)
	}
}

func TestConsoleLogoutResetsLogin(t *testing.T) {
	console, _, _ := newConsoleFixture(t, domain.PermUserManagement)
	if console.Login.Snapshot().State != domain.LoginAuthenticated {
		t.Fatal("expected authenticated login state")
	}

	console.Session.Logout(context.Background())

	if got := console.Login.Snapshot().State; got != domain.LoginEnteringEmail {
		t.Fatalf("expected login reset after logout, got %s", got)
	}
}

func TestConsoleLogoutClearsLoadedPages(t *testing.T) {
	console, _, _ := newConsoleFixture(t, domain.PermUserManagement)
	ctx := testContext(t)
	gen, err := console.Users.SetSearch(ctx, "founder")
	if err != nil {
		t.Fatalf("set search: %v", err)
	}
	if err := console.Users.Await(ctx, gen); err != nil {
		t.Fatalf("await: %v", err)
	}
	if !console.Users.View().HasPage {
		t.Fatal("expected a loaded page before logout")
	}

	console.Session.Logout(ctx)

	view := console.Users.View()
	if view.HasPage || view.TotalPages != 0 || view.Query.SearchText != "" {
		t.Fatalf("expected previous operator's page dropped, got %+v", view)
	}
}

func TestConsoleControllerLookup(t *testing.T) {
	console, _, _ := newConsoleFixture(t)
	for _, kind := range domain.ResourceKinds {
		ctrl, ok := console.Controller(kind)
		if !ok || ctrl.Kind() != kind {
			t.Fatalf("missing controller for %s", kind)
		}
	}
	if _, ok := console.Controller("payments"); ok {
		t.Fatal("unexpected controller for unknown kind")
	}
}
