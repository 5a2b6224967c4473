package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/transport/http/middleware"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

// ErrorResponse is the error payload, with the trace ID for debugging.
type ErrorResponse struct {
	Error   string           `json:"error"`
	Kind    domain.ErrorKind `json:"kind,omitempty"`
	TraceID string           `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response carrying the request trace ID.
func NewErrorResponse(c *gin.Context, message string) ErrorResponse {
	return ErrorResponse{Error: message, TraceID: middleware.GetTraceID(c)}
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports readiness and the result of each dependency check.
type ReadinessResponse struct {
	Status  string            `json:"status"`
	Session string            `json:"session"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// IdentityPayload is the operator identity as exposed to the console UI.
type IdentityPayload struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

func newIdentityPayload(identity *domain.AdminIdentity) *IdentityPayload {
	if identity == nil {
		return nil
	}
	return &IdentityPayload{
		ID:          identity.ID,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		Role:        string(identity.Role),
		Permissions: identity.Permissions.Strings(),
	}
}

// SessionResponse describes the session store.
type SessionResponse struct {
	Status   domain.SessionStatus `json:"status"`
	Identity *IdentityPayload     `json:"identity,omitempty"`
}

func newSessionResponse(snapshot domain.SessionSnapshot) SessionResponse {
	return SessionResponse{Status: snapshot.Status, Identity: newIdentityPayload(snapshot.Identity)}
}

// OTPRequest starts a login.
type OTPRequest struct {
	Email string `json:"email"`
}

// OTPVerifyRequest completes a login. An empty email reuses the one the code was sent to.
type OTPVerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// LoginResponse mirrors the login machine.
type LoginResponse struct {
	State            domain.LoginState `json:"state"`
	Email            string            `json:"email,omitempty"`
	RemainingSeconds int               `json:"remaining_seconds"`
	Countdown        string            `json:"countdown"`
	Expired          bool              `json:"expired"`
	Error            string            `json:"error,omitempty"`
}

func newLoginResponse(s usecase.LoginSnapshot) LoginResponse {
	return LoginResponse{
		State:            s.State,
		Email:            s.Email,
		RemainingSeconds: s.RemainingSeconds,
		Countdown:        s.Countdown,
		Expired:          s.Expired,
		Error:            s.Error,
	}
}

// ScreenPayload describes one navigable screen.
type ScreenPayload struct {
	Name     string           `json:"name"`
	Title    string           `json:"title"`
	Required string           `json:"required_permission,omitempty"`
	Decision usecase.Decision `json:"decision,omitempty"`
}

func newScreenPayload(screen usecase.Screen) ScreenPayload {
	out := ScreenPayload{Name: screen.Name, Title: screen.Title}
	if screen.Required != nil {
		out.Required = string(*screen.Required)
	}
	return out
}

// ScreenListResponse lists the screens visible to the operator.
type ScreenListResponse struct {
	Screens []ScreenPayload `json:"screens"`
}

// FilterRequest changes one filter field.
type FilterRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// PageRequest moves to another page.
type PageRequest struct {
	Page int `json:"page" binding:"required"`
}

// ActionRequest carries the fields an action changes.
type ActionRequest struct {
	Patch map[string]any `json:"patch"`
}

// ActionResponse reports the mutation and the refreshed screen.
type ActionResponse struct {
	Patched bool              `json:"patched"`
	View    usecase.QueryView `json:"view"`
}

// PermissionPayload is one catalog entry.
type PermissionPayload struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// RoleDefaultsResponse is the suggested permission set for a role.
type RoleDefaultsResponse struct {
	Role        string              `json:"role"`
	Permissions []PermissionPayload `json:"permissions"`
}

// PromoteRequest grants a role with an explicit permission set.
type PromoteRequest struct {
	Role        string   `json:"role" binding:"required"`
	Permissions []string `json:"permissions"`
}

// PromoteResponse echoes what was granted.
type PromoteResponse struct {
	UserID      string   `json:"user_id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}
