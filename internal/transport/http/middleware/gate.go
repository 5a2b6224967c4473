package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

// SessionRetryAfter is the Retry-After hint, in seconds, while the session is still loading.
const SessionRetryAfter = 1

// GateFunc evaluates the route for the current request.
type GateFunc func(c *gin.Context) usecase.Decision

// Gate aborts requests the route gate does not allow: 503 while the session is loading,
// 401 without a session, 403 without the permission.
func Gate(evaluate GateFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := evaluate(c)
		c.Set("gate_decision", string(decision))

		switch decision {
		case usecase.DecisionAllow:
			c.Next()
		case usecase.DecisionPending:
			c.Header("Retry-After", strconv.Itoa(SessionRetryAfter))
			abortWithDecision(c, http.StatusServiceUnavailable, "session is still loading", decision)
		case usecase.DecisionUnauthenticated:
			abortWithDecision(c, http.StatusUnauthorized, "authentication required", decision)
		default:
			abortWithDecision(c, http.StatusForbidden, "you do not have access to this resource", decision)
		}
	}
}

// RequireSession allows any authenticated operator.
func RequireSession(gate *usecase.RouteGate) gin.HandlerFunc {
	return Gate(func(*gin.Context) usecase.Decision { return gate.Evaluate(nil) })
}

// RequireAction gates on a named action.
func RequireAction(gate *usecase.RouteGate, action string) gin.HandlerFunc {
	return Gate(func(*gin.Context) usecase.Decision { return gate.EvaluateAction(action) })
}

func abortWithDecision(c *gin.Context, status int, message string, decision usecase.Decision) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":    message,
		"decision": decision,
		"trace_id": GetTraceID(c),
	})
}
