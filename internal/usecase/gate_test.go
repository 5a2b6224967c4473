package usecase

import (
	"testing"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
)

func TestGatePendingWhileLoading(t *testing.T) {
	store := NewSessionStore(&fakeAuthGateway{}, &fakeTokenStore{}, nil, nil)
	gate := NewRouteGate(store)

	required := domain.PermKYCApproval
	if got := gate.Evaluate(&required); got != DecisionPending {
		t.Fatalf("expected pending, got %s", got)
	}
	if got := gate.Evaluate(nil); got != DecisionPending {
		t.Fatalf("expected pending, got %s", got)
	}
	if got := gate.EvaluateScreen("nowhere"); got != DecisionPending {
		t.Fatalf("expected pending for unknown screen, got %s", got)
	}
}

func TestGateUnauthenticated(t *testing.T) {
	gate := NewRouteGate(unauthenticatedSession(t))

	if got := gate.Evaluate(nil); got != DecisionUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", got)
	}
	for _, perm := range NewPermissionEngine().Catalog() {
		id := perm.ID
		if got := gate.Evaluate(&id); got != DecisionUnauthenticated {
			t.Fatalf("expected unauthenticated for %s, got %s", id, got)
		}
	}
}

func TestGateForbiddenWithoutPermission(t *testing.T) {
	gate := NewRouteGate(authenticatedSession(t, testIdentity(domain.RoleModerator, domain.PermKYCVerification)))

	required := domain.PermKYCApproval
	if got := gate.Evaluate(&required); got != DecisionForbidden {
		t.Fatalf("expected forbidden, got %s", got)
	}
}

func TestGateAllowWithPermission(t *testing.T) {
	gate := NewRouteGate(authenticatedSession(t, testIdentity(domain.RoleAdmin, domain.PermKYCApproval)))

	required := domain.PermKYCApproval
	if got := gate.Evaluate(&required); got != DecisionAllow {
		t.Fatalf("expected allow, got %s", got)
	}
	if got := gate.Evaluate(nil); got != DecisionAllow {
		t.Fatalf("expected allow for landing screen, got %s", got)
	}
}

func TestGateScreensAndActions(t *testing.T) {
	gate := NewRouteGate(authenticatedSession(t, testIdentity(domain.RoleSupport, domain.PermUserManagement, domain.PermKYCVerification)))

	cases := []struct {
		name string
		eval func(string) Decision
		want Decision
	}{
		{"dashboard", gate.EvaluateScreen, DecisionAllow},
		{"Users", gate.EvaluateScreen, DecisionAllow},
		{"kyc", gate.EvaluateScreen, DecisionAllow},
		{"admins", gate.EvaluateScreen, DecisionForbidden},
		{"unknown", gate.EvaluateScreen, DecisionForbidden},
		{"user.suspend", gate.EvaluateAction, DecisionAllow},
		{"kyc.approve", gate.EvaluateAction, DecisionForbidden},
		{"user.promote", gate.EvaluateAction, DecisionForbidden},
		{"drop.database", gate.EvaluateAction, DecisionForbidden},
	}
	for _, tc := range cases {
		if got := tc.eval(tc.name); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestGateVisibleScreens(t *testing.T) {
	gate := NewRouteGate(authenticatedSession(t, testIdentity(domain.RoleSupport, domain.PermUserManagement, domain.PermEmailManagement)))

	var names []string
	for _, screen := range gate.VisibleScreens() {
		names = append(names, screen.Name)
	}
	want := []string{"dashboard", "users", "emails"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}

	if got := NewRouteGate(unauthenticatedSession(t)).VisibleScreens(); len(got) != 0 {
		t.Fatalf("expected no visible screens when logged out, got %d", len(got))
	}
}

func TestGateResourceScreens(t *testing.T) {
	gate := NewRouteGate(authenticatedSession(t, testIdentity(domain.RoleAdmin, domain.PermPaymentManagement)))
	if got := gate.EvaluateResource(domain.ResourceInvestments); got != DecisionAllow {
		t.Fatalf("expected allow, got %s", got)
	}
	if got := gate.EvaluateResource(domain.ResourceMentorship); got != DecisionForbidden {
		t.Fatalf("expected forbidden, got %s", got)
	}
}

func TestGateObservesDecisions(t *testing.T) {
	metrics := newRecordingMetrics()
	gate := NewRouteGate(unauthenticatedSession(t)).WithMetrics(metrics)
	gate.Evaluate(nil)
	gate.EvaluateScreen("users")

	if metrics.decisions["unauthenticated"] != 2 {
		t.Fatalf("expected two observations, got %v", metrics.decisions)
	}
}

func TestGateFollowsLogout(t *testing.T) {
	store := authenticatedSession(t, testIdentity(domain.RoleAdmin, domain.PermUserManagement))
	gate := NewRouteGate(store)
	if got := gate.EvaluateScreen("users"); got != DecisionAllow {
		t.Fatalf("expected allow, got %s", got)
	}
	store.Logout(testContext(t))
	if got := gate.EvaluateScreen("users"); got != DecisionUnauthenticated {
		t.Fatalf("expected unauthenticated after logout, got %s", got)
	}
}
