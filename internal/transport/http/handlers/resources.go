package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

const resourceControllerKey = "resource_controller"

// ResourceHandler drives the per-screen query controllers. Write endpoints wait for the
// fetch they issued to settle and answer 202 with the loading view if the request ends first.
type ResourceHandler struct {
	console *usecase.Console
}

// NewResourceHandler constructs a resource handler.
func NewResourceHandler(console *usecase.Console) *ResourceHandler {
	return &ResourceHandler{console: console}
}

// RegisterRoutes binds the resource routes. The group is expected to be gated per kind.
func (h *ResourceHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.View)
	r.POST("/filters", h.SetFilter)
	r.POST("/page", h.SetPage)
	r.POST("/refetch", h.Refetch)
	r.POST("/:id/actions/:action", h.Act)
}

// ResolveKind loads the controller named by the :kind parameter, rejecting unknown kinds with 404.
func (h *ResourceHandler) ResolveKind(c *gin.Context) {
	kind, ok := domain.ParseResourceKind(c.Param("kind"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, NewErrorResponse(c, "unknown resource"))
		return
	}
	ctrl, ok := h.console.Controller(kind)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, NewErrorResponse(c, "unknown resource"))
		return
	}
	c.Set(resourceControllerKey, ctrl)
	c.Next()
}

// EvaluateKind is the gate function for resource routes.
func (h *ResourceHandler) EvaluateKind(c *gin.Context) usecase.Decision {
	kind, _ := domain.ParseResourceKind(c.Param("kind"))
	return h.console.Gate.EvaluateResource(kind)
}

func controllerFrom(c *gin.Context) usecase.QueryController {
	v, _ := c.Get(resourceControllerKey)
	ctrl, _ := v.(usecase.QueryController)
	return ctrl
}

// View returns the controller snapshot without fetching.
func (h *ResourceHandler) View(c *gin.Context) {
	c.JSON(http.StatusOK, controllerFrom(c).View())
}

// SetFilter godoc
// @Summary Change a filter
// @Description Resets to page 1 and returns the view once the resulting fetch settles.
// @Tags Resources
// @Accept json
// @Produce json
// @Param kind path string true "Resource kind"
// @Param request body FilterRequest true "Filter field and value"
// @Success 200 {object} usecase.QueryView
// @Failure 400 {object} ErrorResponse
// @Router /api/v1/resources/{kind}/filters [post]
func (h *ResourceHandler) SetFilter(c *gin.Context) {
	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "field is required"))
		return
	}

	ctrl := controllerFrom(c)
	gen, err := ctrl.SetFilter(c.Request.Context(), req.Field, req.Value)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusBadRequest, "invalid filter")
		return
	}
	h.respondSettled(c, ctrl, gen)
}

// SetPage moves to the requested page, clamped to the known page range.
func (h *ResourceHandler) SetPage(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "page is required"))
		return
	}

	ctrl := controllerFrom(c)
	h.respondSettled(c, ctrl, ctrl.SetPage(c.Request.Context(), req.Page))
}

// Refetch reloads the current page with the current query.
func (h *ResourceHandler) Refetch(c *gin.Context) {
	ctrl := controllerFrom(c)
	h.respondSettled(c, ctrl, ctrl.Refetch(c.Request.Context()))
}

// Act godoc
// @Summary Apply an action to an item
// @Description Checks the action permission, sends the patch and patches the visible page.
// @Tags Resources
// @Accept json
// @Produce json
// @Param kind path string true "Resource kind"
// @Param id path string true "Item ID"
// @Param action path string true "Action name, such as kyc.approve"
// @Param request body ActionRequest true "Fields to change"
// @Success 200 {object} ActionResponse
// @Failure 403 {object} ErrorResponse
// @Router /api/v1/resources/{kind}/{id}/actions/{action} [post]
func (h *ResourceHandler) Act(c *gin.Context) {
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request body"))
		return
	}

	ctrl := controllerFrom(c)
	action := strings.TrimSpace(c.Param("action"))
	patched, err := h.console.Mutate(c.Request.Context(), ctrl.Kind(), c.Param("id"), action, req.Patch)
	if err != nil {
		RespondWithMappedError(c, err, nil, http.StatusInternalServerError, "failed to apply action")
		return
	}
	c.JSON(http.StatusOK, ActionResponse{Patched: patched, View: ctrl.View()})
}

func (h *ResourceHandler) respondSettled(c *gin.Context, ctrl usecase.QueryController, gen uint64) {
	if err := ctrl.Await(c.Request.Context(), gen); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusAccepted, ctrl.View())
		return
	}
	c.JSON(http.StatusOK, ctrl.View())
}
