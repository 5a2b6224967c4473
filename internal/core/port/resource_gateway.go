package port

import (
	"context"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
)

// ResourceLister fetches one page of a resource collection.
type ResourceLister[T any] interface {
	ListResources(ctx context.Context, kind domain.ResourceKind, query domain.ResourceQuery) ([]T, int, error)
}

// ResourceMutator applies a partial update to a single resource item.
type ResourceMutator interface {
	MutateResource(ctx context.Context, kind domain.ResourceKind, itemID string, patch map[string]any) error
}

// PromotionGateway grants an administrative role and an explicit permission set to a user.
type PromotionGateway interface {
	PromoteUser(ctx context.Context, userID string, role domain.Role, permissions []domain.PermissionID) error
}
