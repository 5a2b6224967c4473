package port

import (
	"context"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
)

// EventPublisher publishes console audit events to the message bus.
type EventPublisher interface {
	PublishAdminLoggedIn(ctx context.Context, event domain.AdminLoggedInEvent) error
	PublishAdminLoggedOut(ctx context.Context, event domain.AdminLoggedOutEvent) error
	PublishUserPromoted(ctx context.Context, event domain.UserPromotedEvent) error
	PublishResourceMutated(ctx context.Context, event domain.ResourceMutatedEvent) error
}
