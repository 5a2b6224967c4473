package domain

import "time"

// AdminLoggedInEvent represents the payload for console.admin.logged_in messages.
type AdminLoggedInEvent struct {
	EventID    string
	AdminID    string
	Email      string
	Role       Role
	LoggedInAt time.Time
}

// AdminLoggedOutEvent represents the payload for console.admin.logged_out messages.
type AdminLoggedOutEvent struct {
	EventID     string
	AdminID     string
	Reason      string
	LoggedOutAt time.Time
}

// UserPromotedEvent represents the payload for console.user.promoted messages.
type UserPromotedEvent struct {
	EventID     string
	UserID      string
	Role        Role
	Permissions []PermissionID
	PromotedBy  string
	PromotedAt  time.Time
}

// ResourceMutatedEvent represents the payload for console.resource.mutated messages.
type ResourceMutatedEvent struct {
	EventID   string
	Kind      ResourceKind
	ItemID    string
	Action    string
	Patch     map[string]any
	ActorID   string
	MutatedAt time.Time
}

// Logout reasons recorded on AdminLoggedOutEvent.
const (
	LogoutReasonOperator     = "operator"
	LogoutReasonRejected     = "token_rejected"
	LogoutReasonInitFailure  = "init_verification_failed"
	LogoutReasonMissingToken = "token_missing"
)
