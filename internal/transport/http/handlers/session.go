package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

// SessionHandler exposes the session store and the OTP login flow.
type SessionHandler struct {
	session *usecase.SessionStore
	login   *usecase.OTPLoginMachine
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(session *usecase.SessionStore, login *usecase.OTPLoginMachine) *SessionHandler {
	return &SessionHandler{session: session, login: login}
}

// RegisterRoutes binds the session and login routes. otpLimits guard the OTP request endpoint.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup, otpLimits ...gin.HandlerFunc) {
	if r == nil {
		return
	}

	r.GET("/session", h.GetSession)
	r.POST("/logout", h.Logout)

	login := r.Group("/login")
	login.GET("", h.GetLogin)
	login.POST("/otp", append(otpLimits, h.RequestOTP)...)
	login.POST("/verify", h.VerifyOTP)
	login.POST("/back", h.Back)
}

// GetSession godoc
// @Summary Current session
// @Tags Session
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /api/v1/session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, newSessionResponse(h.session.Snapshot()))
}

// Logout clears the session. It succeeds when no session exists.
func (h *SessionHandler) Logout(c *gin.Context) {
	h.session.Logout(c.Request.Context())
	c.JSON(http.StatusOK, newSessionResponse(h.session.Snapshot()))
}

// GetLogin returns the login flow state including the countdown.
func (h *SessionHandler) GetLogin(c *gin.Context) {
	c.JSON(http.StatusOK, newLoginResponse(h.login.Snapshot()))
}

// RequestOTP godoc
// @Summary Request a login code
// @Tags Session
// @Accept json
// @Produce json
// @Param request body OTPRequest true "Operator email"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} LoginResponse
// @Failure 429 {object} middleware.ProblemDetails
// @Router /api/v1/login/otp [post]
func (h *SessionHandler) RequestOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request body"))
		return
	}

	err := h.login.RequestOTP(c.Request.Context(), req.Email)
	h.respondLogin(c, err)
}

// VerifyOTP godoc
// @Summary Submit the login code
// @Tags Session
// @Accept json
// @Produce json
// @Param request body OTPVerifyRequest true "Email and code"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} LoginResponse
// @Router /api/v1/login/verify [post]
func (h *SessionHandler) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request body"))
		return
	}

	err := h.login.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	h.respondLogin(c, err)
}

// Back returns from code entry to email entry.
func (h *SessionHandler) Back(c *gin.Context) {
	err := h.login.Back()
	h.respondLogin(c, err)
}

// respondLogin always returns the login snapshot; its error field carries the user-facing message.
func (h *SessionHandler) respondLogin(c *gin.Context, err error) {
	status := http.StatusOK
	if err != nil {
		_ = c.Error(err)
		status = StatusFor(err)
	}
	c.JSON(status, newLoginResponse(h.login.Snapshot()))
}
