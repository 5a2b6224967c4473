package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
)

var (
	// ErrSessionLoading indicates an authorization decision was requested before the session resolved.
	ErrSessionLoading = errors.New("session is still loading")
	// ErrNotAuthenticated indicates the operator has no session.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrPermissionDenied indicates the operator lacks the required permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSelfPromotion indicates an operator attempted to change their own role.
	ErrSelfPromotion = errors.New("operators cannot promote themselves")
	// ErrNoPermissions indicates a promotion without any granted permission.
	ErrNoPermissions = errors.New("at least one permission is required")
)

// decisionError converts a non-allow gate decision into a classified error.
func decisionError(op string, decision Decision) error {
	switch decision {
	case DecisionAllow:
		return nil
	case DecisionPending:
		return fmt.Errorf("%s: %w", op, ErrSessionLoading)
	case DecisionUnauthenticated:
		return domain.NewError(domain.KindAuth, op, "", ErrNotAuthenticated)
	default:
		return domain.NewError(domain.KindAuthorization, op, "", ErrPermissionDenied)
	}
}

// PromotionService grants administrative roles. The defaults of a role are only a starting
// suggestion; the submitted permission set is what gets granted.
type PromotionService struct {
	gateway port.PromotionGateway
	session *SessionStore
	gate    *RouteGate
	events  port.EventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewPromotionService wires the promotion flow.
func NewPromotionService(gateway port.PromotionGateway, session *SessionStore, gate *RouteGate, logger *zap.Logger) *PromotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{
		gateway: gateway,
		session: session,
		gate:    gate,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithEventPublisher injects the audit event publisher.
func (s *PromotionService) WithEventPublisher(events port.EventPublisher) *PromotionService {
	s.events = events
	return s
}

// WithClock overrides the internal clock for deterministic tests.
func (s *PromotionService) WithClock(clock func() time.Time) *PromotionService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Draft returns the suggested permissions for a role.
func (s *PromotionService) Draft(role domain.Role) (domain.PermissionSet, error) {
	if _, ok := domain.ParseRole(string(role)); !ok {
		return nil, fmt.Errorf("draft promotion %q: %w", role, ErrUnknownRole)
	}
	return s.session.Engine().ResolveDefaults(role), nil
}

// Submit promotes userID to role with exactly the given permissions and returns the granted set.
func (s *PromotionService) Submit(ctx context.Context, userID string, role domain.Role, permissions []domain.PermissionID) (domain.PermissionSet, error) {
	const op = "promote user"

	if err := decisionError(op, s.gate.EvaluateAction("user.promote")); err != nil {
		return nil, err
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ValidationError(op, "user id is required")
	}
	parsed, ok := domain.ParseRole(string(role))
	if !ok {
		return nil, domain.NewError(domain.KindValidation, op, fmt.Sprintf("unknown role %q", role), ErrUnknownRole)
	}
	granted, err := s.session.Engine().Validate(permissions)
	if err != nil {
		return nil, domain.NewError(domain.KindValidation, op, err.Error(), err)
	}
	if len(granted) == 0 {
		return nil, domain.NewError(domain.KindValidation, op, ErrNoPermissions.Error(), ErrNoPermissions)
	}

	actor := s.session.Snapshot().Identity
	if actor != nil && actor.ID == userID {
		return nil, domain.NewError(domain.KindAuthorization, op, ErrSelfPromotion.Error(), ErrSelfPromotion)
	}

	submitted := granted.Sorted()
	if err := s.gateway.PromoteUser(ctx, userID, parsed, submitted); err != nil {
		s.logger.Warn("promotion failed",
			zap.String("user_id", userID),
			zap.String("role", string(parsed)),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	s.logger.Info("user promoted",
		zap.String("user_id", userID),
		zap.String("role", string(parsed)),
		zap.Strings("permissions", granted.Strings()),
		zap.String("promoted_by", actorID),
	)

	if s.events != nil {
		event := domain.UserPromotedEvent{
			EventID:     uuid.NewString(),
			UserID:      userID,
			Role:        parsed,
			Permissions: submitted,
			PromotedBy:  actorID,
			PromotedAt:  s.now(),
		}
		if err := s.events.PublishUserPromoted(ctx, event); err != nil {
			s.logger.Warn("failed to publish promotion event", zap.Error(err))
		}
	}

	return granted, nil
}
