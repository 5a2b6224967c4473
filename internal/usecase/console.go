package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
)

// Listers supplies one typed list collaborator per resource collection.
type Listers struct {
	Users       port.ResourceLister[domain.PlatformUser]
	KYC         port.ResourceLister[domain.KYCSubmission]
	Services    port.ResourceLister[domain.ServiceRequest]
	Mentorship  port.ResourceLister[domain.Mentor]
	Investments port.ResourceLister[domain.Pitch]
}

// ConsoleDeps groups the collaborators needed to assemble a Console.
type ConsoleDeps struct {
	Auth      port.AuthGateway
	Tokens    port.TokenStore
	Listers   Listers
	Mutator   port.ResourceMutator
	Promoter  port.PromotionGateway
	Events    port.EventPublisher
	Metrics   port.ConsoleMetrics
	Logger    *zap.Logger
	PageSize  int
	OTPLength int
}

// Console is the assembled authorization and resource-query core for one operator.
type Console struct {
	Engine     *PermissionEngine
	Session    *SessionStore
	Login      *OTPLoginMachine
	Gate       *RouteGate
	Mutations  *MutationService
	Promotions *PromotionService

	Users       *ResourceQueryController[domain.PlatformUser]
	KYC         *ResourceQueryController[domain.KYCSubmission]
	Services    *ResourceQueryController[domain.ServiceRequest]
	Mentorship  *ResourceQueryController[domain.Mentor]
	Investments *ResourceQueryController[domain.Pitch]

	controllers map[domain.ResourceKind]QueryController
	logger      *zap.Logger
}

// NewConsole assembles the core. The session starts loading; call Session.Init before
// consulting the gate.
func NewConsole(deps ConsoleDeps) *Console {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = port.NopMetrics{}
	}

	engine := NewPermissionEngine()
	session := NewSessionStore(deps.Auth, deps.Tokens, engine, log).
		WithEventPublisher(deps.Events).
		WithMetrics(metrics)
	login := NewOTPLoginMachine(deps.Auth, session, log).
		WithMetrics(metrics).
		WithCodeLength(deps.OTPLength)
	gate := NewRouteGate(session).WithMetrics(metrics)

	c := &Console{
		Engine:     engine,
		Session:    session,
		Login:      login,
		Gate:       gate,
		Mutations:  NewMutationService(deps.Mutator, session, gate, log).WithEventPublisher(deps.Events),
		Promotions: NewPromotionService(deps.Promoter, session, gate, log).WithEventPublisher(deps.Events),
		logger:     log,
	}

	c.Users = NewResourceQueryController(domain.ResourceUsers, deps.Listers.Users, deps.PageSize, log).WithMetrics(metrics)
	c.KYC = NewResourceQueryController(domain.ResourceKYC, deps.Listers.KYC, deps.PageSize, log).WithMetrics(metrics)
	c.Services = NewResourceQueryController(domain.ResourceServices, deps.Listers.Services, deps.PageSize, log).WithMetrics(metrics)
	c.Mentorship = NewResourceQueryController(domain.ResourceMentorship, deps.Listers.Mentorship, deps.PageSize, log).WithMetrics(metrics)
	c.Investments = NewResourceQueryController(domain.ResourceInvestments, deps.Listers.Investments, deps.PageSize, log).WithMetrics(metrics)

	c.controllers = map[domain.ResourceKind]QueryController{
		domain.ResourceUsers:       c.Users,
		domain.ResourceKYC:         c.KYC,
		domain.ResourceServices:    c.Services,
		domain.ResourceMentorship:  c.Mentorship,
		domain.ResourceInvestments: c.Investments,
	}

	session.Subscribe(func(snapshot domain.SessionSnapshot) {
		if snapshot.Status == domain.SessionUnauthenticated {
			login.Reset()
		}
		if snapshot.Status != domain.SessionAuthenticated {
			for _, ctrl := range c.controllers {
				ctrl.Reset()
			}
		}
	})

	return c
}

// Controller returns the query controller for a collection.
func (c *Console) Controller(kind domain.ResourceKind) (QueryController, bool) {
	ctrl, ok := c.controllers[kind]
	return ctrl, ok
}

// Mutate applies a change through the backend and patches the visible page on success.
func (c *Console) Mutate(ctx context.Context, kind domain.ResourceKind, itemID, action string, patch map[string]any) (bool, error) {
	ctrl, ok := c.controllers[kind]
	if !ok {
		return false, domain.NewError(domain.KindNotFound, "mutate resource", fmt.Sprintf("unknown resource %q", kind), nil)
	}
	if err := c.Mutations.Mutate(ctx, kind, itemID, action, patch); err != nil {
		return false, err
	}
	patched, err := ctrl.PatchItem(itemID, patch)
	if err != nil {
		c.logger.Warn("optimistic patch failed; refetching",
			zap.String("resource", string(kind)),
			zap.String("item_id", itemID),
			zap.Error(err),
		)
		ctrl.Refetch(ctx)
		return false, nil
	}
	return patched, nil
}
