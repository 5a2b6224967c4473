package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Skiblinx/launchkart-FE-sub001/internal/core/domain"
	"github.com/Skiblinx/launchkart-FE-sub001/internal/usecase"
)

func respond(t *testing.T, err error, cases []ErrorCase) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondWithMappedError(c, err, cases, http.StatusInternalServerError, "fallback")

	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rr, body
}

func TestRespondWithMappedErrorPrefersServerDetail(t *testing.T) {
	err := domain.NewError(domain.KindNotFound, "request otp", "Admin not found", nil)
	rr, body := respond(t, fmt.Errorf("login: %w", err), nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if body.Error != "Admin not found" || body.Kind != domain.KindNotFound {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRespondWithMappedErrorUsesCaseMessage(t *testing.T) {
	rr, body := respond(t, fmt.Errorf("promote: %w", usecase.ErrSelfPromotion), promotionCases)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if body.Error != "you cannot change your own role" {
		t.Fatalf("unexpected message %q", body.Error)
	}
}

func TestRespondWithMappedErrorLoadingSetsRetryAfter(t *testing.T) {
	rr, _ := respond(t, usecase.ErrSessionLoading, nil)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", rr.Header().Get("Retry-After"))
	}
}

func TestRespondWithMappedErrorFallback(t *testing.T) {
	rr, body := respond(t, errors.New("boom"), nil)

	if rr.Code != http.StatusInternalServerError || body.Error != "fallback" {
		t.Fatalf("unexpected fallback %d %+v", rr.Code, body)
	}
}

func TestStatusForKinds(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ValidationError("op", "bad"), http.StatusBadRequest},
		{domain.NewError(domain.KindAuth, "op", "", nil), http.StatusUnauthorized},
		{domain.NewError(domain.KindAuthorization, "op", "", nil), http.StatusForbidden},
		{domain.NewError(domain.KindTransport, "op", "", nil), http.StatusBadGateway},
		{fmt.Errorf("back: %w", usecase.ErrInvalidTransition), http.StatusConflict},
		{fmt.Errorf("verify otp: %w", usecase.ErrStaleAttempt), http.StatusConflict},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestReadinessReportsChecks(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHealthHandler(nil, WithReadinessCheck("redis", func(context.Context) error {
		return errors.New("connection refused")
	}))

	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	h.Readiness(c)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	var body ReadinessResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Checks["redis"] != "connection refused" || body.Session != "unknown" {
		t.Fatalf("unexpected readiness %+v", body)
	}
}
