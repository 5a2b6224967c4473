package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
)

// MutationService applies single-item changes on behalf of the operator.
type MutationService struct {
	mutator port.ResourceMutator
	session *SessionStore
	gate    *RouteGate
	events  port.EventPublisher
	logger  *zap.Logger
	now     func() time.Time
}

// NewMutationService wires the mutation flow.
func NewMutationService(mutator port.ResourceMutator, session *SessionStore, gate *RouteGate, logger *zap.Logger) *MutationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MutationService{
		mutator: mutator,
		session: session,
		gate:    gate,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// WithEventPublisher injects the audit event publisher.
func (s *MutationService) WithEventPublisher(events port.EventPublisher) *MutationService {
	s.events = events
	return s
}

// WithClock overrides the internal clock for deterministic tests.
func (s *MutationService) WithClock(clock func() time.Time) *MutationService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Mutate checks access to the collection and the named action, then sends the patch.
// An empty action only requires access to the collection's screen.
func (s *MutationService) Mutate(ctx context.Context, kind domain.ResourceKind, itemID, action string, patch map[string]any) error {
	const op = "mutate resource"

	if err := decisionError(op, s.gate.EvaluateResource(kind)); err != nil {
		return err
	}
	action = strings.TrimSpace(action)
	if action != "" {
		if err := decisionError(op, s.gate.EvaluateAction(action)); err != nil {
			return err
		}
	}

	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return domain.ValidationError(op, "item id is required")
	}
	if len(patch) == 0 {
		return domain.ValidationError(op, "patch must not be empty")
	}

	if err := s.mutator.MutateResource(ctx, kind, itemID, patch); err != nil {
		s.logger.Warn("mutation failed",
			zap.String("resource", string(kind)),
			zap.String("item_id", itemID),
			zap.String("action", action),
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err),
		)
		return err
	}

	actorID := ""
	if actor := s.session.Snapshot().Identity; actor != nil {
		actorID = actor.ID
	}
	s.logger.Info("resource mutated",
		zap.String("resource", string(kind)),
		zap.String("item_id", itemID),
		zap.String("action", action),
		zap.String("actor_id", actorID),
	)

	if s.events != nil {
		event := domain.ResourceMutatedEvent{
			EventID:   uuid.NewString(),
			Kind:      kind,
			ItemID:    itemID,
			Action:    action,
			Patch:     patch,
			ActorID:   actorID,
			MutatedAt: s.now(),
		}
		if err := s.events.PublishResourceMutated(ctx, event); err != nil {
			s.logger.Warn("failed to publish mutation event", zap.Error(err))
		}
	}
	return nil
}
