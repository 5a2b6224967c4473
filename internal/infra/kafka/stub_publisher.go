package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/port"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/infra/logger"
)

// StubPublisher logs events instead of sending them to Kafka. Used when no brokers are configured.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, actorID string, at time.Time, fields ...zap.Field) {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	base := []zap.Field{
		zap.String("event_type", eventType),
		zap.String("actor_id", actorID),
		zap.Time("timestamp", at.UTC()),
	}
	p.logger.Info("Stub event published", append(base, fields...)...)
}

func (p *StubPublisher) PublishAdminLoggedIn(_ context.Context, event domain.AdminLoggedInEvent) error {
	p.logEvent(EventAdminLoggedIn, event.AdminID, event.LoggedInAt,
		zap.String("email", logger.MaskEmail(event.Email)),
		zap.String("role", string(event.Role)),
	)
	return nil
}

func (p *StubPublisher) PublishAdminLoggedOut(_ context.Context, event domain.AdminLoggedOutEvent) error {
	p.logEvent(EventAdminLoggedOut, event.AdminID, event.LoggedOutAt, zap.String("reason", event.Reason))
	return nil
}

func (p *StubPublisher) PublishUserPromoted(_ context.Context, event domain.UserPromotedEvent) error {
	p.logEvent(EventUserPromoted, event.PromotedBy, event.PromotedAt,
		zap.String("user_id", event.UserID),
		zap.String("role", string(event.Role)),
		zap.Any("permissions", event.Permissions),
	)
	return nil
}

func (p *StubPublisher) PublishResourceMutated(_ context.Context, event domain.ResourceMutatedEvent) error {
	p.logEvent(EventResourceMutated, event.ActorID, event.MutatedAt,
		zap.String("kind", string(event.Kind)),
		zap.String("item_id", event.ItemID),
		zap.String("action", event.Action),
	)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
