package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

// PromotionHandler exposes role defaults and user promotion.
type PromotionHandler struct {
	promotions *usecase.PromotionService
	engine     *usecase.PermissionEngine
}

// NewPromotionHandler constructs a promotion handler.
func NewPromotionHandler(promotions *usecase.PromotionService, engine *usecase.PermissionEngine) *PromotionHandler {
	return &PromotionHandler{promotions: promotions, engine: engine}
}

var promotionCases = []ErrorCase{
	{Err: usecase.ErrUnknownRole, Status: http.StatusBadRequest, Message: "unknown role"},
	{Err: usecase.ErrUnknownPermission, Status: http.StatusBadRequest, Message: "unknown permission"},
	{Err: usecase.ErrNoPermissions, Status: http.StatusBadRequest, Message: "at least one permission is required"},
	{Err: usecase.ErrSelfPromotion, Status: http.StatusForbidden, Message: "you cannot change your own role"},
}

// RoleDefaults godoc
// @Summary Suggested permissions for a role
// @Tags Promotion
// @Produce json
// @Param role path string true "Role"
// @Success 200 {object} RoleDefaultsResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/roles/{role}/defaults [get]
func (h *PromotionHandler) RoleDefaults(c *gin.Context) {
	role, ok := domain.ParseRole(c.Param("role"))
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown role"))
		return
	}

	defaults, err := h.promotions.Draft(role)
	if err != nil {
		RespondWithMappedError(c, err, promotionCases, http.StatusBadRequest, "unknown role")
		return
	}

	out := RoleDefaultsResponse{Role: string(role), Permissions: make([]PermissionPayload, 0, len(defaults))}
	for _, id := range defaults.Sorted() {
		entry, _ := h.engine.Lookup(id)
		out.Permissions = append(out.Permissions, PermissionPayload{
			ID:       string(id),
			Label:    entry.Label,
			Category: string(entry.Category),
		})
	}
	c.JSON(http.StatusOK, out)
}

// Promote godoc
// @Summary Promote a user
// @Description Grants the role with exactly the submitted permissions.
// @Tags Promotion
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body PromoteRequest true "Role and permissions"
// @Success 200 {object} PromoteResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/users/{id}/promote [post]
func (h *PromotionHandler) Promote(c *gin.Context) {
	var req PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "role is required"))
		return
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown role"))
		return
	}
	permissions := make([]domain.PermissionID, len(req.Permissions))
	for i, p := range req.Permissions {
		permissions[i] = domain.PermissionID(p)
	}

	userID := c.Param("id")
	granted, err := h.promotions.Submit(c.Request.Context(), userID, role, permissions)
	if err != nil {
		RespondWithMappedError(c, err, promotionCases, http.StatusInternalServerError, "failed to promote user")
		return
	}

	c.JSON(http.StatusOK, PromoteResponse{
		UserID:      userID,
		Role:        string(role),
		Permissions: granted.Strings(),
	})
}
