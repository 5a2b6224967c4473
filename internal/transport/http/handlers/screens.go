package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

// ScreenHandler answers navigation questions through the route gate.
type ScreenHandler struct {
	gate *usecase.RouteGate
}

// NewScreenHandler constructs a screen handler.
func NewScreenHandler(gate *usecase.RouteGate) *ScreenHandler {
	return &ScreenHandler{gate: gate}
}

// RegisterRoutes binds the screen routes.
func (h *ScreenHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.Visible)
	r.GET("/:screen", h.Evaluate)
}

// Visible lists the screens the operator may open, in menu order.
func (h *ScreenHandler) Visible(c *gin.Context) {
	screens := h.gate.VisibleScreens()
	out := make([]ScreenPayload, 0, len(screens))
	for _, screen := range screens {
		payload := newScreenPayload(screen)
		payload.Decision = usecase.DecisionAllow
		out = append(out, payload)
	}
	c.JSON(http.StatusOK, ScreenListResponse{Screens: out})
}

// Evaluate reports the decision for one screen. The body is returned for every decision;
// the status code mirrors it.
func (h *ScreenHandler) Evaluate(c *gin.Context) {
	name := c.Param("screen")
	decision := h.gate.EvaluateScreen(name)

	payload := ScreenPayload{Name: name, Decision: decision}
	for _, screen := range h.gate.Screens() {
		if screen.Name == name {
			payload = newScreenPayload(screen)
			payload.Decision = decision
			break
		}
	}

	status := http.StatusOK
	switch decision {
	case usecase.DecisionPending:
		status = http.StatusServiceUnavailable
	case usecase.DecisionUnauthenticated:
		status = http.StatusUnauthorized
	case usecase.DecisionForbidden:
		status = http.StatusForbidden
	}
	c.JSON(status, payload)
}
