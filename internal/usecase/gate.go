package usecase

import (
	"strings"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
)

// Decision is the outcome of a gate evaluation.
type Decision string

const (
	DecisionAllow           Decision = "allow"
	DecisionUnauthenticated Decision = "unauthenticated"
	DecisionForbidden       Decision = "forbidden"
	// DecisionPending is returned while the session is still loading. Callers render a
	// neutral state and retry once the session resolves.
	DecisionPending Decision = "pending"
)

// Screen is a navigable console area and the permission required to enter it.
// A nil Required means any authenticated operator may enter.
type Screen struct {
	Name     string
	Title    string
	Required *domain.PermissionID
}

func requires(p domain.PermissionID) *domain.PermissionID { return &p }

var screenRegistry = []Screen{
	{Name: "dashboard", Title: "Dashboard"},
	{Name: "users", Title: "User Management", Required: requires(domain.PermUserManagement)},
	{Name: "admins", Title: "Admin Management", Required: requires(domain.PermAdminManagement)},
	{Name: "kyc", Title: "KYC Verification", Required: requires(domain.PermKYCVerification)},
	{Name: "services", Title: "Service Approval", Required: requires(domain.PermServiceApproval)},
	{Name: "mentorship", Title: "Mentorship", Required: requires(domain.PermContentModeration)},
	{Name: "investments", Title: "Investments", Required: requires(domain.PermPaymentManagement)},
	{Name: "analytics", Title: "Analytics", Required: requires(domain.PermAnalyticsAccess)},
	{Name: "reports", Title: "Reports", Required: requires(domain.PermReportGeneration)},
	{Name: "settings", Title: "Settings", Required: requires(domain.PermSystemConfiguration)},
	{Name: "emails", Title: "Email Management", Required: requires(domain.PermEmailManagement)},
}

var actionRegistry = map[string]domain.PermissionID{
	"kyc.approve":       domain.PermKYCApproval,
	"kyc.reject":        domain.PermKYCApproval,
	"service.approve":   domain.PermServiceApproval,
	"service.reject":    domain.PermServiceApproval,
	"user.promote":      domain.PermAdminManagement,
	"user.suspend":      domain.PermUserManagement,
	"user.activate":     domain.PermUserManagement,
	"payment.refund":    domain.PermRefundProcessing,
	"mentorship.assign": domain.PermContentModeration,
	"investment.review": domain.PermPaymentManagement,
}

// resourceScreens maps each resource collection to the screen that lists it.
var resourceScreens = map[domain.ResourceKind]string{
	domain.ResourceUsers:       "users",
	domain.ResourceKYC:         "kyc",
	domain.ResourceServices:    "services",
	domain.ResourceMentorship:  "mentorship",
	domain.ResourceInvestments: "investments",
}

// RouteGate decides whether the current operator may enter a screen or invoke an action.
// Evaluation reads a session snapshot and has no side effects besides metrics.
type RouteGate struct {
	session *SessionStore
	screens map[string]Screen
	metrics port.ConsoleMetrics
}

// NewRouteGate composes the gate over the session store.
func NewRouteGate(session *SessionStore) *RouteGate {
	screens := make(map[string]Screen, len(screenRegistry))
	for _, screen := range screenRegistry {
		screens[screen.Name] = screen
	}
	return &RouteGate{session: session, screens: screens, metrics: port.NopMetrics{}}
}

// WithMetrics injects telemetry hooks.
func (g *RouteGate) WithMetrics(metrics port.ConsoleMetrics) *RouteGate {
	if metrics != nil {
		g.metrics = metrics
	}
	return g
}

// Evaluate decides access for the required permission. A nil permission admits any
// authenticated operator.
func (g *RouteGate) Evaluate(required *domain.PermissionID) Decision {
	return g.observe(g.decide(g.session.Snapshot(), required))
}

// EvaluateScreen resolves the screen's requirement through the registry.
// Unknown screens are forbidden to authenticated operators.
func (g *RouteGate) EvaluateScreen(name string) Decision {
	snapshot := g.session.Snapshot()
	screen, ok := g.screens[normalizeName(name)]
	if !ok {
		return g.observe(g.unknown(snapshot))
	}
	return g.observe(g.decide(snapshot, screen.Required))
}

// EvaluateAction resolves the action's requirement through the registry.
// Unknown actions are forbidden to authenticated operators.
func (g *RouteGate) EvaluateAction(name string) Decision {
	snapshot := g.session.Snapshot()
	required, ok := actionRegistry[normalizeName(name)]
	if !ok {
		return g.observe(g.unknown(snapshot))
	}
	return g.observe(g.decide(snapshot, &required))
}

// EvaluateResource decides access to the screen listing the resource collection.
func (g *RouteGate) EvaluateResource(kind domain.ResourceKind) Decision {
	return g.EvaluateScreen(resourceScreens[kind])
}

// VisibleScreens lists the screens the current operator is allowed to enter, in menu order.
func (g *RouteGate) VisibleScreens() []Screen {
	snapshot := g.session.Snapshot()
	visible := make([]Screen, 0, len(screenRegistry))
	for _, screen := range screenRegistry {
		if g.decide(snapshot, screen.Required) == DecisionAllow {
			visible = append(visible, screen)
		}
	}
	return visible
}

// Screens returns the full registry in menu order.
func (g *RouteGate) Screens() []Screen {
	out := make([]Screen, len(screenRegistry))
	copy(out, screenRegistry)
	return out
}

// ActionPermission returns the permission an action requires.
func ActionPermission(name string) (domain.PermissionID, bool) {
	required, ok := actionRegistry[normalizeName(name)]
	return required, ok
}

func (g *RouteGate) decide(snapshot domain.SessionSnapshot, required *domain.PermissionID) Decision {
	switch {
	case snapshot.Loading():
		return DecisionPending
	case !snapshot.Authenticated():
		return DecisionUnauthenticated
	case required == nil:
		return DecisionAllow
	case g.session.Engine().HasPermission(snapshot.Identity, *required):
		return DecisionAllow
	default:
		return DecisionForbidden
	}
}

func (g *RouteGate) unknown(snapshot domain.SessionSnapshot) Decision {
	switch {
	case snapshot.Loading():
		return DecisionPending
	case !snapshot.Authenticated():
		return DecisionUnauthenticated
	default:
		return DecisionForbidden
	}
}

func (g *RouteGate) observe(decision Decision) Decision {
	g.metrics.ObserveGateDecision(string(decision))
	return decision
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
