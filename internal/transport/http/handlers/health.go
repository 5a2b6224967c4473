package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

// ReadinessCheck probes one dependency.
type ReadinessCheck func(ctx context.Context) error

// HealthOption configures a HealthHandler.
type HealthOption func(*HealthHandler)

// WithReadinessCheck adds a named dependency probe to /readyz.
func WithReadinessCheck(name string, check ReadinessCheck) HealthOption {
	return func(h *HealthHandler) {
		if check != nil {
			h.checks[name] = check
		}
	}
}

// HealthHandler exposes liveness and readiness.
type HealthHandler struct {
	startedAt time.Time
	session   *usecase.SessionStore
	checks    map[string]ReadinessCheck
}

// NewHealthHandler builds a health handler. Readiness waits for the session to resolve.
func NewHealthHandler(session *usecase.SessionStore, opts ...HealthOption) *HealthHandler {
	h := &HealthHandler{
		startedAt: time.Now().UTC(),
		session:   session,
		checks:    make(map[string]ReadinessCheck),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Status godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", StartedAt: h.startedAt})
}

// Readiness godoc
// @Summary Readiness probe
// @Description Ready once the persisted session has been resolved and every dependency answers.
// @Tags Health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} ReadinessResponse
// @Router /readyz [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	resp := ReadinessResponse{Status: "ready", Session: "unknown"}
	status := http.StatusOK

	if h.session != nil {
		snapshot := h.session.Snapshot()
		resp.Session = string(snapshot.Status)
		if snapshot.Loading() {
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
		}
	}

	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		resp.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "not_ready"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	c.JSON(status, resp)
}
