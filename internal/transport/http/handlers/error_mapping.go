package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/transport/http/middleware"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// commonCases apply to every console endpoint after the endpoint-specific ones.
var commonCases = []ErrorCase{
	{Err: usecase.ErrSessionLoading, Status: http.StatusServiceUnavailable, Message: "session is still loading"},
	{Err: usecase.ErrNotAuthenticated, Status: http.StatusUnauthorized, Message: "authentication required"},
	{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "you do not have access to this resource"},
	{Err: usecase.ErrInvalidTransition, Status: http.StatusConflict, Message: "not allowed in the current login state"},
	{Err: usecase.ErrStaleAttempt, Status: http.StatusConflict, Message: "login attempt was superseded"},
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:    http.StatusBadRequest,
	domain.KindAuth:          http.StatusUnauthorized,
	domain.KindAuthorization: http.StatusForbidden,
	domain.KindNotFound:      http.StatusNotFound,
	domain.KindTransport:     http.StatusBadGateway,
	domain.KindServer:        http.StatusBadGateway,
}

// StatusFor returns the HTTP status for err after the given cases and the error taxonomy.
func StatusFor(err error, cases ...ErrorCase) int {
	if cs, ok := matchCase(err, cases); ok {
		return cs.Status
	}
	if status, ok := kindStatus[domain.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// RespondWithMappedError resolves err against the cases, then the shared cases, then the
// error taxonomy. A server-provided detail wins over the case message.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}
	_ = c.Error(err)

	kind := domain.KindOf(err)
	message := domain.DetailOf(err)

	status := fallbackStatus
	if cs, ok := matchCase(err, cases); ok {
		status = cs.Status
		if message == "" {
			message = cs.Message
		}
	} else if mapped, ok := kindStatus[kind]; ok {
		status = mapped
	}
	if message == "" {
		message = fallbackMessage
	}

	if status == http.StatusServiceUnavailable && errors.Is(err, usecase.ErrSessionLoading) {
		c.Header("Retry-After", strconv.Itoa(middleware.SessionRetryAfter))
	}

	resp := NewErrorResponse(c, message)
	resp.Kind = kind
	c.JSON(status, resp)
}

func matchCase(err error, cases []ErrorCase) (ErrorCase, bool) {
	for _, list := range [][]ErrorCase{cases, commonCases} {
		for _, cs := range list {
			if cs.Err != nil && errors.Is(err, cs.Err) {
				return cs, true
			}
		}
	}
	return ErrorCase{}, false
}
